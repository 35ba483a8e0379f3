package pos

import (
	"errors"
	"fmt"
)

// Sentinel kinds for point-of-sale client errors.
var (
	// ErrConfiguration means credentials are absent. Fatal, not retried.
	ErrConfiguration = errors.New("point-of-sale credentials not configured")

	// ErrAuth means the token exchange did not produce a usable token.
	// Fatal for the current sync attempt, retryable on the next one.
	ErrAuth = errors.New("token exchange failed")

	// ErrUpstream is a non-404 HTTP failure from the point of sale.
	ErrUpstream = errors.New("point-of-sale upstream failure")

	// ErrRateLimited is a distinguished upstream failure carrying a
	// user-actionable message. errors.Is(err, ErrUpstream) also holds.
	ErrRateLimited = fmt.Errorf("%w: rate limited, try again in a few minutes", ErrUpstream)

	// errNotFound is internal: upstream 404 means "no data", not a failure.
	errNotFound = errors.New("not found")
)
