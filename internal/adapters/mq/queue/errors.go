package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueFull = errors.New("sync queue full")
	ErrClosed    = errors.New("sync queue closed")
)
