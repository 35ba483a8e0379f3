package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/opskitchen/shiftboard/pkg/metrics"
)

// defaultTokenTTL is deliberately shorter than the provider's real token
// lifetime to avoid edge-of-expiry failures.
const defaultTokenTTL = 23 * time.Hour

const grantTypeClientCredentials = "client_credentials"

// Credentials are the long-lived secrets exchanged for a bearer token.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// TokenSource exchanges credentials for a short-lived bearer token and
// caches it until its guarded expiry. Concurrent callers observe a
// consistent token via a double-checked cache read; a duplicate exchange
// under contention is harmless, so the exchange itself runs unlocked.
type TokenSource struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	ttl        time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewTokenSource creates a token source for the given endpoint.
func NewTokenSource(baseURL string, creds Credentials, httpClient *http.Client, ttl time.Duration) *TokenSource {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenSource{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: httpClient,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Token returns the cached bearer token, exchanging credentials only when
// no valid cached token exists.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.token != "" && s.now().Before(s.expiresAt) {
		token := s.token
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	if s.creds.ClientID == "" || s.creds.ClientSecret == "" {
		return "", ErrConfiguration
	}

	// No lock across the exchange. Losing a race just repeats a cheap call.
	token, err := s.exchange(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.token = token
	s.expiresAt = s.now().Add(s.ttl)
	s.mu.Unlock()

	return token, nil
}

// Invalidate drops the cached token, forcing a fresh exchange on next use.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

func (s *TokenSource) exchange(ctx context.Context) (string, error) {
	payload, err := json.Marshal(authRequest{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		GrantType:    grantTypeClientCredentials,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	}

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuth)
	}

	metrics.RecordTokenRefresh()
	return body.AccessToken, nil
}
