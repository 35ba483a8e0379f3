// Package pos is the point-of-sale client: token exchange, closed-order
// listing, and labor (clock-in/clock-out) retrieval.
package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/opskitchen/shiftboard/pkg/logger"
)

// Default fetch configuration.
const (
	defaultPageSize        = 100
	defaultMaxPages        = 50
	defaultTurnTimeCeiling = 15.0 // minutes; beyond this is instrumentation noise
)

// Client issues authenticated requests against the point-of-sale API.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	tokens          *TokenSource
	pageSize        int
	maxPages        int
	turnTimeCeiling float64
	logger          logger.Logger
}

// NewClient creates a point-of-sale client with configuration options.
func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:         baseURL,
		httpClient:      &http.Client{},
		pageSize:        defaultPageSize,
		maxPages:        defaultMaxPages,
		turnTimeCeiling: defaultTurnTimeCeiling,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		c.tokens = NewTokenSource(baseURL, creds, c.httpClient, defaultTokenTTL)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("pos")
	}

	return c
}

// buildURL joins the base URL, path and query parameters.
func (c *Client) buildURL(path string, query map[string]string) string {
	u, _ := url.Parse(c.baseURL + path)
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// get issues an authenticated GET and decodes the JSON response into target.
// Status mapping: 404 -> errNotFound (no data, not a failure), 429 ->
// ErrRateLimited, any other non-2xx -> ErrUpstream.
func (c *Client) get(ctx context.Context, path string, query map[string]string, target any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: GET %s status %d", ErrUpstream, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrUpstream, path, err)
	}
	return nil
}
