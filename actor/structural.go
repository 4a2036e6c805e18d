package actor

import (
	"context"
	"fmt"

	"github.com/katalvlaran/carta/bfs"
	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/selector"
)

// ReverseEdgesActor swaps the endpoints of selected edges.
//
// An edge is reversed when the selector contains the edge and both of its
// endpoints, so every vertex listing the edge sees the same orientation and
// the neighbour lookups agree with the edge lists. Roots of the inner graph
// are not roots of the reversed one, so RootedLookup is always suppressed.
// Lookups need complete inner vertices: the inner DynamicGraph, or its in-
// and out-lookups together.
type ReverseEdgesActor struct {
	*Actor
	PassThrough
}

// ReverseEdges builds a ReverseEdgesActor over inner.
func ReverseEdges(inner core.Graph, sel selector.Selector, opts ...Option) (*ReverseEdgesActor, error) {
	r := &ReverseEdgesActor{Actor: &Actor{}}
	opts = append([]Option{WithPolicy(reversePolicy)}, opts...)
	if err := r.bind(inner, sel, r, r, append(opts, vetoing(core.CapRooted))); err != nil {
		return nil, err
	}

	return r, nil
}

func reversePolicy(inner core.Graph, c core.Capability) core.Policy {
	switch c {
	case core.CapDynamic, core.CapDynamicIn, core.CapDynamicOut:
		if completeLookup(inner) {
			return core.Override
		}
		return core.Suppress
	default:
		return DefaultPolicy(inner, c)
	}
}

func completeLookup(g core.Graph) bool {
	return core.Supports(g, core.CapDynamic) ||
		(core.Supports(g, core.CapDynamicIn) && core.Supports(g, core.CapDynamicOut))
}

// TransformEdge swaps source and target.
func (*ReverseEdgesActor) TransformEdge(_ context.Context, e core.Edge) (core.Edge, error) {
	return e.Reversed(), nil
}

// ReconstructVertex reverses the reversible edges of v. A vertex with none is
// returned as is.
func (r *ReverseEdgesActor) ReconstructVertex(ctx context.Context, v *core.Vertex) (*core.Vertex, error) {
	if v == nil {
		return nil, nil
	}
	incident := v.Edges()
	edges := make([]core.Edge, 0, len(incident))
	changed := false
	for _, e := range incident {
		flip, err := r.reverses(ctx, e, v)
		if err != nil {
			return nil, err
		}
		if flip {
			if e, err = r.TransformEdge(ctx, e); err != nil {
				return nil, err
			}
			changed = true
		}
		edges = append(edges, e)
	}
	if !changed {
		return v, nil
	}
	in, out := core.PartitionEdges(v.ID, edges)

	return &core.Vertex{
		ID:          v.ID,
		Label:       v.Label,
		Description: v.Description,
		Properties:  v.Properties,
		InEdges:     in,
		OutEdges:    out,
	}, nil
}

// Vertices reverses the inner graph's whole-graph enumeration.
func (r *ReverseEdgesActor) Vertices(ctx context.Context) core.VertexSeq {
	entire, ok := core.Entire(r.inner)
	if !ok {
		return core.FailVertices(fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapEntire))
	}

	return core.MapVertices(ctx, entire.Vertices(ctx), r.ReconstructVertex)
}

// Vertex returns id with both edge lists reoriented.
func (r *ReverseEdgesActor) Vertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	v, found, err := r.fetch(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	rv, err := r.ReconstructVertex(ctx, v)
	if err != nil {
		return nil, false, err
	}

	return rv, true, nil
}

// InVertex is Vertex: an in-edge may come from either inner edge list.
func (r *ReverseEdgesActor) InVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return r.Vertex(ctx, id)
}

// OutVertex is Vertex.
func (r *ReverseEdgesActor) OutVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return r.Vertex(ctx, id)
}

// ParentVertices yields the sources of id's reoriented in-edges.
func (r *ReverseEdgesActor) ParentVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return r.neighbours(ctx, id, func(v *core.Vertex) []core.Edge { return v.InEdges })
}

// ChildVertices yields the targets of id's reoriented out-edges.
func (r *ReverseEdgesActor) ChildVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return r.neighbours(ctx, id, func(v *core.Vertex) []core.Edge { return v.OutEdges })
}

// reverses reports whether e is selected together with both endpoints.
// known is the vertex being rebuilt and saves one fetch.
func (r *ReverseEdgesActor) reverses(ctx context.Context, e core.Edge, known *core.Vertex) (bool, error) {
	ok, err := r.selector.ContainsEdge(ctx, e)
	if err != nil || !ok {
		return false, err
	}
	for _, id := range []core.Identity{e.Source, e.Target} {
		v := known
		if v.ID != id {
			if v, err = r.endpoint(ctx, id); err != nil || v == nil {
				return false, err
			}
		}
		if ok, err = r.selector.ContainsVertex(ctx, v); err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// endpoint fetches the inner vertex id for a membership test. A missing
// vertex yields nil. All selects without looking, and a graph without
// lookups is tested on the bare identity.
func (r *ReverseEdgesActor) endpoint(ctx context.Context, id core.Identity) (*core.Vertex, error) {
	if _, all := r.selector.(*selector.AllSelector); all || !completeLookup(r.inner) {
		return core.NewVertex(id), nil
	}
	v, found, err := r.fetch(ctx, id)
	if err != nil || !found {
		return nil, err
	}

	return v, nil
}

// fetch returns the complete inner vertex id, merging the in- and
// out-lookups when the inner graph has no plain lookup.
func (r *ReverseEdgesActor) fetch(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	if dyn, ok := core.Dynamic(r.inner); ok {
		return dyn.Vertex(ctx, id)
	}
	in, okIn := core.DynamicIn(r.inner)
	out, okOut := core.DynamicOut(r.inner)
	if !okIn || !okOut {
		return nil, false, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamic)
	}
	r.logger.DebugContext(ctx, "reverse edges: merging in and out lookups", "vertex", id.String())
	iv, found, err := in.InVertex(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	ov, found, err := out.OutVertex(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}

	return &core.Vertex{
		ID:          iv.ID,
		Label:       iv.Label,
		Description: iv.Description,
		Properties:  iv.Properties,
		InEdges:     iv.InEdges,
		OutEdges:    ov.OutEdges,
	}, true, nil
}

// neighbours fetches id, then each distinct far endpoint of edgesOf(v).
func (r *ReverseEdgesActor) neighbours(ctx context.Context, id core.Identity, edgesOf func(*core.Vertex) []core.Edge) core.VertexSeq {
	return func(yield func(*core.Vertex, error) bool) {
		v, found, err := r.Vertex(ctx, id)
		if err != nil {
			yield(nil, err)
			return
		}
		if !found {
			return
		}
		seen := core.NewIdentitySet()
		for _, e := range edgesOf(v) {
			if !seen.Add(e.Other(id)) {
				continue
			}
			n, ok, err := r.Vertex(ctx, e.Other(id))
			if err != nil {
				yield(nil, err)
				return
			}
			if ok && !yield(n, nil) {
				return
			}
		}
	}
}

// WalkActor gathers the properties of every vertex reachable from a
// selected vertex onto it. Aggregate walks out-edges, Propagate in-edges.
type WalkActor struct {
	*Actor
	PassThrough
	neighbours func(core.Graph) (bfs.NeighbourFunc, bool)
	direction  string
}

// Aggregate collects, onto each selected vertex, the properties of the
// vertex and all its descendants. Values of same-identity properties are
// concatenated in breadth-first visit order, each vertex counted once.
func Aggregate(inner core.Graph, sel selector.Selector, opts ...Option) (*WalkActor, error) {
	return newWalk(inner, sel, bfs.Children, "descendants", opts)
}

// Propagate is Aggregate over ancestors.
func Propagate(inner core.Graph, sel selector.Selector, opts ...Option) (*WalkActor, error) {
	return newWalk(inner, sel, bfs.Parents, "ancestors", opts)
}

func newWalk(inner core.Graph, sel selector.Selector, nbrs func(core.Graph) (bfs.NeighbourFunc, bool), direction string, opts []Option) (*WalkActor, error) {
	w := &WalkActor{Actor: &Actor{}, neighbours: nbrs, direction: direction}
	if err := w.bind(inner, sel, w, w, opts); err != nil {
		return nil, err
	}

	return w, nil
}

// TransformVertex replaces v's properties with the merged properties of the
// walk. Without the needed lookup on the inner graph v is returned as is.
func (w *WalkActor) TransformVertex(ctx context.Context, v *core.Vertex) (*core.Vertex, error) {
	next, ok := w.neighbours(w.inner)
	if !ok {
		w.logger.DebugContext(ctx, "walk actor: inner graph cannot list neighbours",
			"direction", w.direction, "vertex", v.ID.String())
		return v, nil
	}

	res, err := bfs.Walk(ctx, v, next)
	if err != nil {
		return nil, fmt.Errorf("actor: collecting %s of %q: %w", w.direction, v.ID, err)
	}
	lists := make([][]core.Property, len(res.Order))
	for i, u := range res.Order {
		lists[i] = u.Properties
	}

	out := &core.Vertex{
		ID:          v.ID,
		Label:       v.Label,
		Description: v.Description,
		Properties:  core.MergeProperties(lists...),
		InEdges:     v.InEdges,
		OutEdges:    v.OutEdges,
	}

	return out, nil
}
