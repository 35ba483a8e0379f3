package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const authLeeway = 30 * time.Second

// Authenticator validates HS256 bearer tokens on protected routes.
type Authenticator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewAuthenticator creates an authenticator for the given signing secret.
// Issuer and audience checks are skipped when empty.
func NewAuthenticator(secret []byte, issuer, audience string) *Authenticator {
	return &Authenticator{secret: secret, issuer: issuer, audience: audience}
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(header, bearerPrefix) {
			writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if err := a.verify(token); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// verify checks the signature, expiry, issuer, and audience.
func (a *Authenticator) verify(tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: unexpected signing method", ErrUnauthorized)
		}
		return a.secret, nil
	}, jwt.WithLeeway(authLeeway))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !token.Valid {
		return ErrUnauthorized
	}

	if a.issuer != "" && claims.Issuer != a.issuer {
		return fmt.Errorf("%w: issuer mismatch", ErrUnauthorized)
	}
	if a.audience != "" && !containsAudience(claims.Audience, a.audience) {
		return fmt.Errorf("%w: audience mismatch", ErrUnauthorized)
	}
	return nil
}

func containsAudience(audiences jwt.ClaimStrings, want string) bool {
	for _, audience := range audiences {
		if audience == want {
			return true
		}
	}
	return false
}
