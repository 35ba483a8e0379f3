// Package dedupe tracks already-processed transaction identifiers so
// overlapping sync runs stay at-most-once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard records seen transaction IDs.
type Guard interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Forget removes an ID, allowing it to be processed again. Used when
	// a transaction was recorded but its persistence failed.
	Forget(ctx context.Context, id string)

	Size() int64
}

// memoryGuard is a bounded in-memory Guard. When the bound is reached the
// oldest recorded ID is evicted, so very old transactions may be seen
// twice; the store's upsert keeps that harmless.
type memoryGuard struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order ring
	next    int      // next eviction slot once full
	maxSize int
	size    atomic.Int64
}

// NewMemoryGuard creates a bounded in-memory guard.
func NewMemoryGuard(opts ...Option) Guard {
	g := &memoryGuard{maxSize: 100_000}

	for _, opt := range opts {
		opt(g)
	}

	g.seen = make(map[string]struct{}, g.maxSize)
	g.order = make([]string, 0, g.maxSize)
	return g
}

func (g *memoryGuard) SeenAndRecord(_ context.Context, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[id]; ok {
		return true
	}

	if len(g.order) < g.maxSize {
		g.order = append(g.order, id)
	} else {
		evicted := g.order[g.next]
		if evicted != "" {
			delete(g.seen, evicted)
			g.size.Add(-1)
		}
		g.order[g.next] = id
		g.next = (g.next + 1) % g.maxSize
	}

	g.seen[id] = struct{}{}
	g.size.Add(1)
	return false
}

func (g *memoryGuard) Forget(_ context.Context, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[id]; !ok {
		return
	}
	delete(g.seen, id)
	g.size.Add(-1)

	// Leave a hole in the ring; eviction skips empty slots.
	for i, slot := range g.order {
		if slot == id {
			g.order[i] = ""
			break
		}
	}
}

func (g *memoryGuard) Size() int64 {
	return g.size.Load()
}
