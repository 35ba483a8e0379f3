package pos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newAuthServer(t *testing.T, exchanges *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req authRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		exchanges.Add(1)
		_ = json.NewEncoder(w).Encode(authResponse{AccessToken: "tok-1", ExpiresIn: 86400})
	}))
}

func TestTokenSource(t *testing.T) {
	Convey("Given a token source against an auth endpoint", t, func() {
		var exchanges atomic.Int32
		server := newAuthServer(t, &exchanges)
		defer server.Close()

		creds := Credentials{ClientID: "id", ClientSecret: "secret"}
		source := NewTokenSource(server.URL, creds, server.Client(), time.Hour)

		Convey("The first call exchanges credentials", func() {
			token, err := source.Token(context.Background())
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "tok-1")
			So(exchanges.Load(), ShouldEqual, 1)
		})

		Convey("Repeated calls within the TTL reuse the cached token", func() {
			_, err := source.Token(context.Background())
			So(err, ShouldBeNil)
			_, err = source.Token(context.Background())
			So(err, ShouldBeNil)
			So(exchanges.Load(), ShouldEqual, 1)
		})

		Convey("An expired token triggers a fresh exchange", func() {
			_, err := source.Token(context.Background())
			So(err, ShouldBeNil)

			source.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
			_, err = source.Token(context.Background())
			So(err, ShouldBeNil)
			So(exchanges.Load(), ShouldEqual, 2)
		})

		Convey("Invalidate forces a fresh exchange", func() {
			_, err := source.Token(context.Background())
			So(err, ShouldBeNil)
			source.Invalidate()
			_, err = source.Token(context.Background())
			So(err, ShouldBeNil)
			So(exchanges.Load(), ShouldEqual, 2)
		})

		Convey("Missing credentials fail before any network call", func() {
			empty := NewTokenSource(server.URL, Credentials{}, server.Client(), time.Hour)
			_, err := empty.Token(context.Background())
			So(err, ShouldWrap, ErrConfiguration)
			So(exchanges.Load(), ShouldEqual, 0)
		})
	})

	Convey("Given an auth endpoint that rejects the exchange", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		source := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "bad"}, server.Client(), time.Hour)

		Convey("The failure maps to ErrAuth", func() {
			_, err := source.Token(context.Background())
			So(err, ShouldWrap, ErrAuth)
		})
	})

	Convey("Given an auth endpoint returning an empty token", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(authResponse{})
		}))
		defer server.Close()

		source := NewTokenSource(server.URL, Credentials{ClientID: "id", ClientSecret: "secret"}, server.Client(), time.Hour)

		Convey("The response is rejected as ErrAuth", func() {
			_, err := source.Token(context.Background())
			So(err, ShouldWrap, ErrAuth)
		})
	})
}
