// Package cache wraps a graph with an LRU over its vertex lookups.
//
// Graph overrides DynamicLookup, DynamicInLookup and DynamicOutLookup when the
// inner graph offers them and forwards every other capability. Each lookup
// kind is cached separately because an in- or out-lookup may legitimately
// return a partial vertex. Absent results are cached; errors are not.
// Concurrent misses on the same key share one inner fetch, which keeps
// running when a waiting caller is cancelled.
//
// The cache never invalidates. Wrap graphs whose content does not change
// while the cache is in use.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"

	"github.com/katalvlaran/carta/core"
)

// DefaultSize is the number of entries kept when WithSize is not given.
const DefaultSize = 4096

// Option configures a Graph.
type Option func(*options)

type options struct {
	size   int
	logger *slog.Logger
}

// WithSize sets the maximum number of cached lookups. Non-positive values
// are ignored.
func WithSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.size = n
		}
	}
}

// WithLogger sets the logger for evictions and fetch failures. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Stats is a snapshot of cache counters. Misses counts inner fetches;
// callers that joined an in-flight fetch count as neither.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

type key struct {
	kind core.Capability
	id   core.Identity
}

type entry struct {
	v     *core.Vertex
	found bool
}

// Graph is a caching wrapper. Safe for concurrent use.
type Graph struct {
	*core.Wrapper

	logger *slog.Logger

	mu      sync.Mutex
	entries *lru.Cache
	flight  singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Wrap returns a caching view of inner.
func Wrap(inner core.Graph, opts ...Option) (*Graph, error) {
	if inner == nil {
		return nil, core.ErrNilGraph
	}
	o := options{size: DefaultSize, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Graph{logger: o.logger.With("graph", inner.ID().String())}
	g.entries = lru.New(o.size)
	g.entries.OnEvicted = func(lru.Key, interface{}) { g.evictions.Add(1) }
	g.Wrapper = core.NewWrapper(inner, policy, core.Discover(g))

	return g, nil
}

// policy overrides the three lookup capabilities the inner graph offers.
func policy(inner core.Graph, c core.Capability) core.Policy {
	switch c {
	case core.CapDynamic, core.CapDynamicIn, core.CapDynamicOut:
		return core.OverrideIfInner(inner, c)
	default:
		return core.Forward
	}
}

// Stats returns the current counters.
func (g *Graph) Stats() Stats {
	g.mu.Lock()
	n := g.entries.Len()
	g.mu.Unlock()

	return Stats{
		Hits:      g.hits.Load(),
		Misses:    g.misses.Load(),
		Evictions: g.evictions.Load(),
		Entries:   n,
	}
}

// Purge drops every cached entry. Counters are kept.
func (g *Graph) Purge() {
	g.mu.Lock()
	defer g.mu.Unlock()
	evicted := g.entries.OnEvicted
	g.entries.OnEvicted = nil
	g.entries.Clear()
	g.entries.OnEvicted = evicted
}

// Vertex answers from the cache or the inner DynamicLookup.
func (g *Graph) Vertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return g.lookup(ctx, core.CapDynamic, id, func(ctx context.Context) (*core.Vertex, bool, error) {
		dyn, ok := core.Dynamic(g.Inner())
		if !ok {
			return nil, false, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamic)
		}

		return dyn.Vertex(ctx, id)
	})
}

// InVertex answers from the cache or the inner DynamicInLookup.
func (g *Graph) InVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return g.lookup(ctx, core.CapDynamicIn, id, func(ctx context.Context) (*core.Vertex, bool, error) {
		in, ok := core.DynamicIn(g.Inner())
		if !ok {
			return nil, false, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamicIn)
		}

		return in.InVertex(ctx, id)
	})
}

// OutVertex answers from the cache or the inner DynamicOutLookup.
func (g *Graph) OutVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return g.lookup(ctx, core.CapDynamicOut, id, func(ctx context.Context) (*core.Vertex, bool, error) {
		out, ok := core.DynamicOut(g.Inner())
		if !ok {
			return nil, false, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamicOut)
		}

		return out.OutVertex(ctx, id)
	})
}

// ParentVertices resolves the in-edges of id through the cached in-lookup.
func (g *Graph) ParentVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return g.adjacent(ctx, id, g.InVertex, func(v *core.Vertex) []core.Edge { return v.InEdges })
}

// ChildVertices resolves the out-edges of id through the cached out-lookup.
func (g *Graph) ChildVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return g.adjacent(ctx, id, g.OutVertex, func(v *core.Vertex) []core.Edge { return v.OutEdges })
}

type fetchFunc func(ctx context.Context, id core.Identity) (*core.Vertex, bool, error)

func (g *Graph) adjacent(ctx context.Context, id core.Identity, fetch fetchFunc, edgesOf func(*core.Vertex) []core.Edge) core.VertexSeq {
	return func(yield func(*core.Vertex, error) bool) {
		v, found, err := fetch(ctx, id)
		if err != nil {
			yield(nil, err)
			return
		}
		if !found {
			return
		}
		seen := make(core.IdentitySet)
		for _, e := range edgesOf(v) {
			other := e.Other(id)
			if !seen.Add(other) {
				continue
			}
			n, found, err := fetch(ctx, other)
			if err != nil {
				yield(nil, err)
				return
			}
			if !found {
				continue
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

func (g *Graph) lookup(ctx context.Context, kind core.Capability, id core.Identity, fetch func(context.Context) (*core.Vertex, bool, error)) (*core.Vertex, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	k := key{kind: kind, id: id}
	if e, ok := g.get(k); ok {
		g.hits.Add(1)
		return e.v.Clone(), e.found, nil
	}

	// The shared fetch ignores caller cancellation. Each caller waits on
	// its own context.
	detached := context.WithoutCancel(ctx)
	ch := g.flight.DoChan(kind.String()+"\x00"+id.String(), func() (interface{}, error) {
		if e, ok := g.get(k); ok {
			return e, nil
		}
		g.misses.Add(1)
		v, found, err := fetch(detached)
		if err != nil {
			g.logger.Debug("inner lookup failed", "capability", kind.String(), "vertex", id.String(), "error", err)
			return nil, err
		}
		e := entry{v: v, found: found}
		g.mu.Lock()
		g.entries.Add(k, e)
		g.mu.Unlock()

		return e, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, false, res.Err
	}
	if res.Shared {
		g.logger.Debug("lookup shared", "capability", kind.String(), "vertex", id.String())
	}
	e := res.Val.(entry)

	return e.v.Clone(), e.found, nil
}

func (g *Graph) get(k key) (entry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	val, ok := g.entries.Get(k)
	if !ok {
		return entry{}, false
	}

	return val.(entry), true
}
