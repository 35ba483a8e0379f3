package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/opskitchen/shiftboard/internal/adapters/pos"
	"github.com/opskitchen/shiftboard/internal/domain/attribution"
	"github.com/opskitchen/shiftboard/internal/domain/model"
)

type fakeDeps struct {
	syncResult  attribution.Result
	syncErr     error
	enqueueOK   bool
	entries     []model.LeaderboardEntry
	entriesErr  error
	lastStoreID string
}

func (f *fakeDeps) SyncOrderAttributions(_ context.Context, _, storeID string, _, _ time.Time) (attribution.Result, error) {
	f.lastStoreID = storeID
	return f.syncResult, f.syncErr
}

func (f *fakeDeps) EnqueueSync(_ context.Context, _, _ string, _, _ time.Time) (string, bool) {
	if !f.enqueueOK {
		return "", false
	}
	return "job-123", true
}

func (f *fakeDeps) CalculateLeaderboard(_ context.Context, storeID string) ([]model.LeaderboardEntry, error) {
	f.lastStoreID = storeID
	return f.entries, f.entriesErr
}

func (f *fakeDeps) Stats(_ context.Context) map[string]any {
	return map[string]any{"started": true}
}

func signedToken(t *testing.T, secret []byte, issuer, audience string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		Subject:   "u-admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func syncBody(async bool) *bytes.Buffer {
	body, _ := json.Marshal(syncRequest{
		LocationID: "loc-1",
		StoreID:    "store-1",
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-07",
		Async:      async,
	})
	return bytes.NewBuffer(body)
}

func TestSyncEndpoint(t *testing.T) {
	secret := []byte("test-secret")
	auth := NewAuthenticator(secret, "shiftboard", "ops")

	Convey("Given the API with auth enabled", t, func() {
		deps := &fakeDeps{
			enqueueOK: true,
			syncResult: attribution.Result{
				Attributed: []model.AttributedOrder{{ID: "t-1"}},
				Days: []attribution.DayResult{
					{Date: "2024-03-01", Outcome: attribution.DayAttributed, Attributed: 1},
					{Date: "2024-03-02", Outcome: attribution.DaySkippedNoAttendance},
				},
			},
		}
		router := NewServer(deps, auth).Router()

		Convey("A valid token and body run a sync", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync", syncBody(false))
			req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, "shiftboard", "ops"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var resp syncResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Attributed, ShouldEqual, 1)
			So(resp.SkippedDays, ShouldEqual, 1)
			So(resp.Days, ShouldHaveLength, 2)
		})

		Convey("An async request is accepted with a job id", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync", syncBody(true))
			req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, "shiftboard", "ops"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			var resp asyncAccepted
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.JobID, ShouldEqual, "job-123")
		})

		Convey("A full queue yields 503", func() {
			deps.enqueueOK = false
			req := httptest.NewRequest(http.MethodPost, "/sync", syncBody(true))
			req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, "shiftboard", "ops"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("A missing token is rejected", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync", syncBody(false))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A token with the wrong issuer is rejected", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync", syncBody(false))
			req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, "other", "ops"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A token signed with a different secret is rejected", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync", syncBody(false))
			req.Header.Set("Authorization", "Bearer "+signedToken(t, []byte("wrong"), "shiftboard", "ops"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A malformed body is rejected", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync", bytes.NewBufferString("{"))
			req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, "shiftboard", "ops"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An inverted date range is rejected", func() {
			body, _ := json.Marshal(syncRequest{
				LocationID: "loc-1", StoreID: "store-1",
				StartDate: "2024-03-07", EndDate: "2024-03-01",
			})
			req := httptest.NewRequest(http.MethodPost, "/sync", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, "shiftboard", "ops"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Upstream failures map onto gateway statuses", func() {
			token := signedToken(t, secret, "shiftboard", "ops")

			deps.syncErr = pos.ErrRateLimited
			req := httptest.NewRequest(http.MethodPost, "/sync", syncBody(false))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)

			deps.syncErr = pos.ErrUpstream
			req = httptest.NewRequest(http.MethodPost, "/sync", syncBody(false))
			req.Header.Set("Authorization", "Bearer "+token)
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusBadGateway)

			deps.syncErr = errors.New("boom")
			req = httptest.NewRequest(http.MethodPost, "/sync", syncBody(false))
			req.Header.Set("Authorization", "Bearer "+token)
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})

	Convey("Given the API without auth", t, func() {
		deps := &fakeDeps{enqueueOK: true}
		router := NewServer(deps, nil).Router()

		Convey("The sync endpoint is open", func() {
			req := httptest.NewRequest(http.MethodPost, "/sync", syncBody(false))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestReadEndpoints(t *testing.T) {
	Convey("Given the API router", t, func() {
		deps := &fakeDeps{entries: []model.LeaderboardEntry{
			{LeaderID: "u-ana", LeaderName: "Ana Silva", ShiftCount: 3, EffectiveScore: 91.5},
			{LeaderID: "u-ben", LeaderName: "Ben Carter", ShiftCount: 1, EffectiveScore: 72.0},
		}}
		router := NewServer(deps, nil).Router()

		Convey("GET /leaderboard ranks the entries", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard?store=store-1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got []leaderboardEntry
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[0].Rank, ShouldEqual, 1)
			So(got[0].LeaderID, ShouldEqual, "u-ana")
			So(got[1].Rank, ShouldEqual, 2)
			So(deps.lastStoreID, ShouldEqual, "store-1")
		})

		Convey("GET /leaderboard without a store is rejected", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /healthz reports ok", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "ok")
		})

		Convey("GET /stats returns the snapshot", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "started")
		})

		Convey("GET /metrics serves the Prometheus registry", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
