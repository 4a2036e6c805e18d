package selector

import (
	"context"
	"fmt"

	"github.com/katalvlaran/carta/core"
)

// AllSelector selects everything.
type AllSelector struct{ bound }

// All selects every vertex, edge, property and value of g.
func All(g core.Graph) *AllSelector { return &AllSelector{bound{g}} }

func (s *AllSelector) ContainsVertex(context.Context, *core.Vertex) (bool, error) { return true, nil }

// Vertices enumerates the whole graph.
func (s *AllSelector) Vertices(ctx context.Context) core.VertexSeq {
	return filterEntire(ctx, s.graph, s.ContainsVertex)
}

// NoneSelector selects nothing.
type NoneSelector struct{ bound }

// None selects no element of g.
func None(g core.Graph) *NoneSelector { return &NoneSelector{bound{g}} }

func (s *NoneSelector) ContainsVertex(context.Context, *core.Vertex) (bool, error) { return false, nil }
func (s *NoneSelector) ContainsEdge(context.Context, core.Edge) (bool, error)      { return false, nil }
func (s *NoneSelector) ContainsProperty(context.Context, core.Property) (bool, error) {
	return false, nil
}
func (s *NoneSelector) ContainsValue(context.Context, any) (bool, error) { return false, nil }

// Vertices is always empty.
func (s *NoneSelector) Vertices(context.Context) core.VertexSeq { return core.EmptyVertices() }

// IncludeSelector selects the vertices with the listed identities.
type IncludeSelector struct {
	bound
	order []core.Identity
	ids   core.IdentitySet
}

// Include selects the vertices of g whose identity is in ids.
// Errors: core.ErrInvalidSelection when ids is empty.
func Include(g core.Graph, ids ...core.Identity) (*IncludeSelector, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: include needs at least one identity", core.ErrInvalidSelection)
	}

	return &IncludeSelector{bound: bound{g}, order: dedupe(ids), ids: core.NewIdentitySet(ids...)}, nil
}

func (s *IncludeSelector) ContainsVertex(_ context.Context, v *core.Vertex) (bool, error) {
	return s.ids.Has(v.ID), nil
}

// Vertices fetches each identity directly when the graph supports lookup,
// in the order given; otherwise it filters the whole graph.
func (s *IncludeSelector) Vertices(ctx context.Context) core.VertexSeq {
	if dyn, ok := core.Dynamic(s.graph); ok {
		return core.FetchVertices(ctx, dyn, core.IdentitiesOf(s.order...))
	}

	return filterEntire(ctx, s.graph, s.ContainsVertex)
}

// ExcludeSelector selects every vertex except the listed identities.
type ExcludeSelector struct {
	bound
	ids core.IdentitySet
}

// Exclude selects the vertices of g whose identity is not in ids.
func Exclude(g core.Graph, ids ...core.Identity) *ExcludeSelector {
	return &ExcludeSelector{bound: bound{g}, ids: core.NewIdentitySet(ids...)}
}

func (s *ExcludeSelector) ContainsVertex(_ context.Context, v *core.Vertex) (bool, error) {
	return !s.ids.Has(v.ID), nil
}

// Vertices filters the whole graph.
func (s *ExcludeSelector) Vertices(ctx context.Context) core.VertexSeq {
	return filterEntire(ctx, s.graph, s.ContainsVertex)
}

func dedupe(ids []core.Identity) []core.Identity {
	seen := make(core.IdentitySet, len(ids))
	out := make([]core.Identity, 0, len(ids))
	for _, id := range ids {
		if seen.Add(id) {
			out = append(out, id)
		}
	}

	return out
}
