package refdata

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/jobcraft/internal/types"
)

// DefaultCacheTTL is how long a fetched table is reused.
const DefaultCacheTTL = time.Hour

// Cached memoizes each table of a Source for a fixed window. Failed fetches
// are not cached. Safe for concurrent use.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time

	competencies memo[types.CompetencyEntry]
	catalog      memo[types.CatalogEntry]
}

type memo[T any] struct {
	mu        sync.Mutex
	entries   []T
	fetchedAt time.Time
	ok        bool
}

// CachedOption configures a Cached source.
type CachedOption func(*Cached)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CachedOption {
	return func(c *Cached) { c.now = now }
}

// NewCached wraps src. A non-positive ttl uses DefaultCacheTTL.
func NewCached(src Source, ttl time.Duration, opts ...CachedOption) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cached{src: src, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Competencies(ctx context.Context) ([]types.CompetencyEntry, error) {
	return fetch(c, &c.competencies, func() ([]types.CompetencyEntry, error) {
		return c.src.Competencies(ctx)
	})
}

func (c *Cached) Catalog(ctx context.Context) ([]types.CatalogEntry, error) {
	return fetch(c, &c.catalog, func() ([]types.CatalogEntry, error) {
		return c.src.Catalog(ctx)
	})
}

// Invalidate drops both memoized tables.
func (c *Cached) Invalidate() {
	c.competencies.reset()
	c.catalog.reset()
}

func (m *memo[T]) reset() {
	m.mu.Lock()
	m.entries, m.fetchedAt, m.ok = nil, time.Time{}, false
	m.mu.Unlock()
}

// fetch holds the table's lock across the load so concurrent callers share one
// fetch per table.
func fetch[T any](c *Cached, m *memo[T], load func() ([]T, error)) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := c.now()
	if m.ok && now.Sub(m.fetchedAt) < c.ttl {
		return clone(m.entries), nil
	}

	entries, err := load()
	if err != nil {
		return nil, err
	}
	m.entries, m.fetchedAt, m.ok = entries, now, true
	return clone(entries), nil
}

func clone[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
