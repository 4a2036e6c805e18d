package selector

import (
	"context"

	"github.com/katalvlaran/carta/core"
)

// AndSelector selects what every sub-selector selects.
type AndSelector struct {
	bound
	sels []Selector
}

// And is the conjunction of sels. With no sub-selectors it selects everything.
func And(g core.Graph, sels ...Selector) *AndSelector {
	return &AndSelector{bound: bound{g}, sels: sels}
}

func (s *AndSelector) ContainsVertex(ctx context.Context, v *core.Vertex) (bool, error) {
	return every(s.sels, func(sel Selector) (bool, error) { return sel.ContainsVertex(ctx, v) })
}

func (s *AndSelector) ContainsEdge(ctx context.Context, e core.Edge) (bool, error) {
	return every(s.sels, func(sel Selector) (bool, error) { return sel.ContainsEdge(ctx, e) })
}

func (s *AndSelector) ContainsProperty(ctx context.Context, p core.Property) (bool, error) {
	return every(s.sels, func(sel Selector) (bool, error) { return sel.ContainsProperty(ctx, p) })
}

func (s *AndSelector) ContainsValue(ctx context.Context, x any) (bool, error) {
	return every(s.sels, func(sel Selector) (bool, error) { return sel.ContainsValue(ctx, x) })
}

// Vertices is the intersection of the sub-selectors' enumerations, in the
// order the first sub-selector yields them. The other enumerations are
// materialised on first pull.
func (s *AndSelector) Vertices(ctx context.Context) core.VertexSeq {
	if len(s.sels) == 0 {
		return filterEntire(ctx, s.graph, s.ContainsVertex)
	}

	return func(yield func(*core.Vertex, error) bool) {
		others := make([]core.IdentitySet, 0, len(s.sels)-1)
		for _, sel := range s.sels[1:] {
			ids, err := core.VertexIDs(sel.Vertices(ctx))
			if err != nil {
				yield(nil, err)
				return
			}
			others = append(others, core.NewIdentitySet(ids...))
		}
		for v, err := range core.UniqueVertices(s.sels[0].Vertices(ctx)) {
			if err != nil {
				yield(nil, err)
				return
			}
			if inAll(others, v.ID) && !yield(v, nil) {
				return
			}
		}
	}
}

// OrSelector selects what any sub-selector selects.
type OrSelector struct {
	bound
	sels []Selector
}

// Or is the disjunction of sels. With no sub-selectors it selects everything.
func Or(g core.Graph, sels ...Selector) *OrSelector {
	return &OrSelector{bound: bound{g}, sels: sels}
}

func (s *OrSelector) ContainsVertex(ctx context.Context, v *core.Vertex) (bool, error) {
	return some(s.sels, func(sel Selector) (bool, error) { return sel.ContainsVertex(ctx, v) })
}

func (s *OrSelector) ContainsEdge(ctx context.Context, e core.Edge) (bool, error) {
	return some(s.sels, func(sel Selector) (bool, error) { return sel.ContainsEdge(ctx, e) })
}

func (s *OrSelector) ContainsProperty(ctx context.Context, p core.Property) (bool, error) {
	return some(s.sels, func(sel Selector) (bool, error) { return sel.ContainsProperty(ctx, p) })
}

func (s *OrSelector) ContainsValue(ctx context.Context, x any) (bool, error) {
	return some(s.sels, func(sel Selector) (bool, error) { return sel.ContainsValue(ctx, x) })
}

// Vertices is the union of the sub-selectors' enumerations, streamed lazily
// and deduplicated by identity.
func (s *OrSelector) Vertices(ctx context.Context) core.VertexSeq {
	if len(s.sels) == 0 {
		return filterEntire(ctx, s.graph, s.ContainsVertex)
	}

	return core.UniqueVertices(func(yield func(*core.Vertex, error) bool) {
		for _, sel := range s.sels {
			for v, err := range sel.Vertices(ctx) {
				if !yield(v, err) || err != nil {
					return
				}
			}
		}
	})
}

// NotSelector inverts vertex and edge membership of another selector.
//
// Property and value membership are not inverted: a Not selector keeps the
// permissive defaults for them, so actors driven by it still transform the
// properties of the vertices it selects.
type NotSelector struct {
	bound
	inner Selector
}

// Not selects the vertices and edges inner does not.
func Not(g core.Graph, inner Selector) *NotSelector {
	return &NotSelector{bound: bound{g}, inner: inner}
}

func (s *NotSelector) ContainsVertex(ctx context.Context, v *core.Vertex) (bool, error) {
	ok, err := s.inner.ContainsVertex(ctx, v)

	return !ok, err
}

func (s *NotSelector) ContainsEdge(ctx context.Context, e core.Edge) (bool, error) {
	ok, err := s.inner.ContainsEdge(ctx, e)

	return !ok, err
}

// Vertices filters the whole graph.
func (s *NotSelector) Vertices(ctx context.Context) core.VertexSeq {
	return filterEntire(ctx, s.graph, s.ContainsVertex)
}

func every(sels []Selector, check func(Selector) (bool, error)) (bool, error) {
	for _, sel := range sels {
		ok, err := check(sel)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

func some(sels []Selector, check func(Selector) (bool, error)) (bool, error) {
	if len(sels) == 0 {
		return true, nil
	}
	for _, sel := range sels {
		ok, err := check(sel)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

func inAll(sets []core.IdentitySet, id core.Identity) bool {
	for _, set := range sets {
		if !set.Has(id) {
			return false
		}
	}

	return true
}
