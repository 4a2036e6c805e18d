package selector

import (
	"context"
	"fmt"

	"github.com/katalvlaran/carta/bfs"
	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/dfs"
)

// TraversalOption configures Ancestors, Descendants, Parents and Children.
type TraversalOption func(*traversalConfig)

type traversalConfig struct {
	includeRoots bool
	depth        *int
	order        dfs.Order
}

// WithIncludeRoots selects the starting vertices themselves. Default false.
func WithIncludeRoots(include bool) TraversalOption {
	return func(c *traversalConfig) { c.includeRoots = include }
}

// WithDepth bounds the number of edges from a starting vertex. nil is unbounded.
func WithDepth(depth *int) TraversalOption {
	return func(c *traversalConfig) {
		if depth == nil {
			c.depth = nil
			return
		}
		d := *depth
		c.depth = &d
	}
}

// WithMaxDepth is WithDepth(&d).
func WithMaxDepth(d int) TraversalOption {
	return func(c *traversalConfig) { c.depth = &d }
}

// WithOrder sets the emission order. Default dfs.Preorder.
func WithOrder(o dfs.Order) TraversalOption {
	return func(c *traversalConfig) { c.order = o }
}

// direction names which way enumeration walks. Containment walks the other way.
type direction int

const (
	towardParents direction = iota
	towardChildren
)

// TraversalSelector selects the ancestors or descendants of a set of vertices.
type TraversalSelector struct {
	bound
	dir   direction
	roots []core.Identity
	ids   core.IdentitySet
	cfg   traversalConfig
}

// Ancestors selects every vertex from which one of ids can be reached by
// following out-edges, up to the configured depth.
// Errors: core.ErrInvalidSelection for no ids or a negative depth.
func Ancestors(g core.Graph, ids []core.Identity, opts ...TraversalOption) (*TraversalSelector, error) {
	return newTraversal(g, towardParents, ids, opts)
}

// Descendants selects every vertex reachable from one of ids by following
// out-edges, up to the configured depth.
// Errors: core.ErrInvalidSelection for no ids or a negative depth.
func Descendants(g core.Graph, ids []core.Identity, opts ...TraversalOption) (*TraversalSelector, error) {
	return newTraversal(g, towardChildren, ids, opts)
}

// Parents selects the immediate parents of ids, excluding ids themselves.
func Parents(g core.Graph, ids ...core.Identity) (*TraversalSelector, error) {
	return Ancestors(g, ids, WithMaxDepth(1), WithIncludeRoots(false))
}

// Children selects the immediate children of ids, excluding ids themselves.
func Children(g core.Graph, ids ...core.Identity) (*TraversalSelector, error) {
	return Descendants(g, ids, WithMaxDepth(1), WithIncludeRoots(false))
}

func newTraversal(g core.Graph, dir direction, ids []core.Identity, opts []TraversalOption) (*TraversalSelector, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: traversal needs at least one identity", core.ErrInvalidSelection)
	}
	cfg := traversalConfig{order: dfs.Preorder}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.depth != nil && *cfg.depth < 0 {
		return nil, fmt.Errorf("%w: negative depth %d", core.ErrInvalidSelection, *cfg.depth)
	}

	return &TraversalSelector{
		bound: bound{g},
		dir:   dir,
		roots: dedupe(ids),
		ids:   core.NewIdentitySet(ids...),
		cfg:   cfg,
	}, nil
}

// ContainsVertex reports whether v is within depth of one of the starting
// vertices in the selector's direction. Starting vertices answer
// IncludeRoots. The test walks from v the opposite way and stops at the
// first starting vertex it meets. Without the lookup it needs it answers
// false.
func (s *TraversalSelector) ContainsVertex(ctx context.Context, v *core.Vertex) (bool, error) {
	if s.ids.Has(v.ID) {
		return s.cfg.includeRoots, nil
	}
	if s.cfg.depth != nil && *s.cfg.depth == 0 {
		return false, nil
	}
	next, ok := s.reverseNeighbours()
	if !ok {
		return false, nil
	}
	opts := []bfs.Option{bfs.WithOnVisit(func(w *core.Vertex, depth int) error {
		if depth > 0 && s.ids.Has(w.ID) {
			return bfs.ErrStop
		}
		return nil
	})}
	if s.cfg.depth != nil {
		opts = append(opts, bfs.WithMaxDepth(*s.cfg.depth))
	}
	res, err := bfs.Walk(ctx, v, next, opts...)
	if err != nil {
		return false, err
	}

	return res.Stopped, nil
}

// Vertices walks from the starting vertices with an explicit stack, emitting
// each reached vertex once. Without the lookup it needs it filters the whole
// graph with ContainsVertex.
func (s *TraversalSelector) Vertices(ctx context.Context) core.VertexSeq {
	next, ok := s.forwardNeighbours()
	if !ok {
		return filterEntire(ctx, s.graph, s.ContainsVertex)
	}
	fetch, _ := fetcher(s.graph)

	return dfs.Traverse(ctx, s.roots, fetch, next,
		dfs.WithOrder(s.cfg.order),
		dfs.WithDepth(s.cfg.depth),
		dfs.WithIncludeRoots(s.cfg.includeRoots),
	)
}

// IDs returns the starting identities.
func (s *TraversalSelector) IDs() []core.Identity { return append([]core.Identity(nil), s.roots...) }

func (s *TraversalSelector) forwardNeighbours() (dfs.NeighbourFunc, bool) {
	if s.dir == towardParents {
		in, ok := core.DynamicIn(s.graph)
		if !ok {
			return nil, false
		}
		return in.ParentVertices, true
	}
	out, ok := core.DynamicOut(s.graph)
	if !ok {
		return nil, false
	}

	return out.ChildVertices, true
}

func (s *TraversalSelector) reverseNeighbours() (bfs.NeighbourFunc, bool) {
	if s.dir == towardParents {
		return bfs.Children(s.graph)
	}

	return bfs.Parents(s.graph)
}
