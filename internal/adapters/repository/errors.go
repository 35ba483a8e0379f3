package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound = errors.New("attributed order not found")
	ErrStorage  = errors.New("storage failure")
)
