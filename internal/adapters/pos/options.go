package pos

import (
	"net/http"
	"time"

	"github.com/opskitchen/shiftboard/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (timeouts live there).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTokenSource sets a pre-built token source, mainly for tests.
func WithTokenSource(tokens *TokenSource) Option {
	return func(c *Client) {
		if tokens != nil {
			c.tokens = tokens
		}
	}
}

// WithTokenTTL builds the default token source with a custom TTL.
// Ignored when WithTokenSource is also supplied.
func WithTokenTTL(ttl time.Duration, creds Credentials, baseURL string) Option {
	return func(c *Client) {
		if ttl > 0 && c.tokens == nil {
			c.tokens = NewTokenSource(baseURL, creds, c.httpClient, ttl)
		}
	}
}

// WithPageSize sets the order listing page size.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithMaxPages caps order pagination.
func WithMaxPages(pages int) Option {
	return func(c *Client) {
		if pages > 0 {
			c.maxPages = pages
		}
	}
}

// WithTurnTimeCeiling sets the sanity ceiling in minutes beyond which a
// transaction is discarded as an instrumentation error.
func WithTurnTimeCeiling(minutes float64) Option {
	return func(c *Client) {
		if minutes > 0 {
			c.turnTimeCeiling = minutes
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}
