package actor

import (
	"context"
	"fmt"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/selector"
)

// CombineActor collapses every vertex the selector enumerates into one
// vertex with a given identity and label.
//
// Members are taken from the selector's Vertices on each call; nothing is
// cached between calls. The combined vertex carries the members' merged
// properties, in enumeration order. Edges between two members are dropped;
// an edge with one member endpoint has that endpoint rewritten to the
// combined identity. Non-member vertices see the same rewrite on their own
// edge lists. Member identities no longer resolve.
type CombineActor struct {
	*Actor
	PassThrough
	id    core.Identity
	label string
}

// CombineVertices builds a CombineActor over inner.
// Errors: core.ErrEmptyIdentity when id is zero.
func CombineVertices(inner core.Graph, sel selector.Selector, id core.Identity, label string, opts ...Option) (*CombineActor, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: combined vertex", core.ErrEmptyIdentity)
	}
	c := &CombineActor{Actor: &Actor{}, id: id, label: label}
	opts = append([]Option{WithPolicy(combinePolicy)}, opts...)
	if err := c.bind(inner, sel, c, c, append(opts, vetoing(core.CapRooted))); err != nil {
		return nil, err
	}

	return c, nil
}

// combinePolicy answers every lookup from DynamicLookup plus the members.
func combinePolicy(inner core.Graph, c core.Capability) core.Policy {
	switch c {
	case core.CapEntire:
		return core.OverrideIfInner(inner, core.CapEntire)
	default:
		return core.OverrideIfInner(inner, core.CapDynamic)
	}
}

// CombinedID returns the identity of the combined vertex.
func (c *CombineActor) CombinedID() core.Identity { return c.id }

// combination is one resolution of the member set.
type combination struct {
	members core.IdentitySet
	vertex  *core.Vertex
}

// combine enumerates the selector and builds the combined vertex. vertex is
// nil when the selection is empty.
func (c *CombineActor) combine(ctx context.Context) (*combination, error) {
	vs, err := core.CollectVertices(c.selector.Vertices(ctx))
	if err != nil {
		return nil, fmt.Errorf("actor: combine members: %w", err)
	}
	cb := &combination{members: core.NewIdentitySet()}
	for _, v := range vs {
		cb.members.Add(v.ID)
	}
	if len(cb.members) == 0 {
		return cb, nil
	}

	var (
		props = make([][]core.Property, 0, len(vs))
		edges []core.Edge
		seen  = core.NewIdentitySet()
		done  = core.NewIdentitySet()
	)
	for _, v := range vs {
		if !done.Add(v.ID) {
			continue
		}
		props = append(props, v.Properties)
		for _, e := range v.Edges() {
			if cb.members.Has(e.Source) && cb.members.Has(e.Target) {
				continue
			}
			if !seen.Add(e.ID) {
				continue
			}
			edges = append(edges, c.retarget(e, cb.members))
		}
	}
	in, out := core.PartitionEdges(c.id, edges)
	cb.vertex = &core.Vertex{
		ID:         c.id,
		Label:      c.label,
		Properties: core.MergeProperties(props...),
		InEdges:    in,
		OutEdges:   out,
	}

	return cb, nil
}

// retarget replaces member endpoints of e with the combined identity.
func (c *CombineActor) retarget(e core.Edge, members core.IdentitySet) core.Edge {
	if members.Has(e.Source) {
		e.Source = c.id
	}
	if members.Has(e.Target) {
		e.Target = c.id
	}

	return e
}

// outside rewrites the edges of a non-member vertex. v is returned as is when
// none of its edges touch a member. Edges between two members cannot appear
// here since v is not one.
func (c *CombineActor) outside(v *core.Vertex, members core.IdentitySet) *core.Vertex {
	touches := func(es []core.Edge) bool {
		for _, e := range es {
			if members.Has(e.Source) || members.Has(e.Target) {
				return true
			}
		}
		return false
	}
	if !touches(v.InEdges) && !touches(v.OutEdges) {
		return v
	}

	rewrite := func(es []core.Edge) []core.Edge {
		out := make([]core.Edge, len(es))
		for i, e := range es {
			out[i] = c.retarget(e, members)
		}
		return out
	}

	return &core.Vertex{
		ID:          v.ID,
		Label:       v.Label,
		Description: v.Description,
		Properties:  v.Properties,
		InEdges:     rewrite(v.InEdges),
		OutEdges:    rewrite(v.OutEdges),
	}
}

// Vertices enumerates the inner graph, emitting the combined vertex once, in
// place of the first member met.
func (c *CombineActor) Vertices(ctx context.Context) core.VertexSeq {
	return func(yield func(*core.Vertex, error) bool) {
		entire, ok := core.Entire(c.inner)
		if !ok {
			yield(nil, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapEntire))
			return
		}
		cb, err := c.combine(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		emitted := false
		for v, err := range entire.Vertices(ctx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if cb.members.Has(v.ID) {
				if emitted {
					continue
				}
				emitted = true
				v = cb.vertex
			} else {
				v = c.outside(v, cb.members)
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Vertex resolves the combined identity to the combined vertex, member
// identities to nothing, and anything else to the rewritten inner vertex.
func (c *CombineActor) Vertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	dyn, ok := core.Dynamic(c.inner)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamic)
	}
	cb, err := c.combine(ctx)
	if err != nil {
		return nil, false, err
	}
	if id == c.id {
		return cb.vertex, cb.vertex != nil, nil
	}
	if cb.members.Has(id) {
		return nil, false, nil
	}
	v, found, err := dyn.Vertex(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}

	return c.outside(v, cb.members), true, nil
}

// InVertex is Vertex; combined vertices always carry both edge lists.
func (c *CombineActor) InVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return c.Vertex(ctx, id)
}

// OutVertex is Vertex.
func (c *CombineActor) OutVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return c.Vertex(ctx, id)
}

// ParentVertices resolves the sources of id's in-edges through Vertex.
func (c *CombineActor) ParentVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return c.adjacent(ctx, id, func(v *core.Vertex) []core.Edge { return v.InEdges })
}

// ChildVertices resolves the targets of id's out-edges through Vertex.
func (c *CombineActor) ChildVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return c.adjacent(ctx, id, func(v *core.Vertex) []core.Edge { return v.OutEdges })
}

func (c *CombineActor) adjacent(ctx context.Context, id core.Identity, edgesOf func(*core.Vertex) []core.Edge) core.VertexSeq {
	return func(yield func(*core.Vertex, error) bool) {
		v, found, err := c.Vertex(ctx, id)
		if err != nil {
			yield(nil, err)
			return
		}
		if !found {
			return
		}
		seen := core.NewIdentitySet()
		for _, e := range edgesOf(v) {
			other := e.Other(id)
			if !seen.Add(other) {
				continue
			}
			n, ok, err := c.Vertex(ctx, other)
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
