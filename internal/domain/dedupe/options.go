package dedupe

// Option applies a configuration option to the memory guard.
type Option func(*memoryGuard)

// WithMaxSize bounds how many IDs the guard remembers before evicting
// the oldest.
func WithMaxSize(maxSize int) Option {
	return func(g *memoryGuard) {
		if maxSize > 0 {
			g.maxSize = maxSize
		}
	}
}
