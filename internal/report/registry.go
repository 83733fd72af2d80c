package report

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long an untouched report is kept.
const DefaultTTL = 30 * time.Minute

// Registry tracks open reports per viewer and evicts idle ones.
type Registry struct {
	mu      sync.Mutex
	reports map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	report   *Report
	owner    string
	lastUsed time.Time
}

// NewRegistry creates a registry. A zero ttl selects DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{reports: map[string]*entry{}, ttl: ttl, now: time.Now}
}

// Add registers r as owned by viewer.
func (g *Registry) Add(viewer string, r *Report) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reports[r.ID()] = &entry{report: r, owner: viewer, lastUsed: g.now()}
}

// Get returns the report with id if viewer owns it, and marks it used.
func (g *Registry) Get(viewer, id string) (*Report, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.reports[id]
	if !ok || e.owner != viewer {
		return nil, false
	}
	e.lastUsed = g.now()
	return e.report, true
}

// Remove drops the report with id.
func (g *Registry) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.reports, id)
}

// All returns every open report.
func (g *Registry) All() []*Report {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Report, 0, len(g.reports))
	for _, e := range g.reports {
		out = append(out, e.report)
	}
	return out
}

// Len returns the number of open reports.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reports)
}

// Evict removes reports idle for longer than the TTL and returns how many.
func (g *Registry) Evict() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := g.now().Add(-g.ttl)
	n := 0
	for id, e := range g.reports {
		if e.lastUsed.Before(cutoff) {
			delete(g.reports, id)
			n++
		}
	}
	return n
}

// Run evicts idle reports every interval until ctx is done.
func (g *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.Evict()
		}
	}
}
