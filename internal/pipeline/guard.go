package pipeline

import (
	"fmt"
	"sync"
)

// Bulk operations guarded against overlapping runs.
const (
	OpScrape     = "scrape"
	OpEnrich     = "enrich"
	OpCheckLinks = "check-links"
)

// Guard lets at most one run of each named operation proceed at a time.
type Guard struct {
	mu      sync.Mutex
	running map[string]bool
}

// NewGuard creates an idle guard.
func NewGuard() *Guard {
	return &Guard{running: make(map[string]bool)}
}

// Acquire marks op as running and returns the function that releases it.
// It fails with ErrBusy when op is already running.
func (g *Guard) Acquire(op string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[op] {
		return nil, fmt.Errorf("%s: %w", op, ErrBusy)
	}
	g.running[op] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, op)
			g.mu.Unlock()
		})
	}, nil
}

// Running reports whether op is in progress.
func (g *Guard) Running(op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running[op]
}
