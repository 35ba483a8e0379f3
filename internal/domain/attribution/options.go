package attribution

import (
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/roster"
	"github.com/opskitchen/shiftboard/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDetector sets a custom leader detector.
func WithDetector(detector *roster.Detector) Option {
	return func(e *Engine) {
		if detector != nil {
			e.detector = detector
		}
	}
}

// WithLocation sets the location used to partition transactions into
// calendar days.
func WithLocation(location *time.Location) Option {
	return func(e *Engine) {
		if location != nil {
			e.location = location
		}
	}
}

// WithLaborBatchSize bounds how many per-date attendance fetches run
// concurrently.
func WithLaborBatchSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// WithClock sets the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}
