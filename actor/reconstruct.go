package actor

import (
	"context"

	"github.com/katalvlaran/carta/core"
)

// ReconstructVertex rebuilds v through the actor.
//
// Implementation:
//   - Stage 1: Ask the selector; an unselected vertex is returned as is.
//   - Stage 2: TransformVertex.
//   - Stage 3: Rebuild properties and every incident edge independently,
//     each behind its own membership check.
//   - Stage 4: Re-partition the rebuilt edges into in/out lists by which
//     endpoint is this vertex, since a transform may have moved an edge.
func (a *Actor) ReconstructVertex(ctx context.Context, v *core.Vertex) (*core.Vertex, error) {
	if v == nil {
		return nil, nil
	}
	ok, err := a.selector.ContainsVertex(ctx, v)
	if err != nil || !ok {
		return v, err
	}
	tv, err := a.transform.TransformVertex(ctx, v)
	if err != nil {
		return nil, err
	}
	if tv == nil {
		return nil, nil
	}

	props, err := a.reconstructProperties(ctx, tv.Properties)
	if err != nil {
		return nil, err
	}
	incident := tv.Edges()
	edges := make([]core.Edge, 0, len(incident))
	for _, e := range incident {
		re, err := a.ReconstructEdge(ctx, e)
		if err != nil {
			return nil, err
		}
		edges = append(edges, re)
	}
	in, out := core.PartitionEdges(tv.ID, edges)

	return &core.Vertex{
		ID:          tv.ID,
		Label:       tv.Label,
		Description: tv.Description,
		Properties:  props,
		InEdges:     in,
		OutEdges:    out,
	}, nil
}

// ReconstructEdge rebuilds e when the selector contains it.
func (a *Actor) ReconstructEdge(ctx context.Context, e core.Edge) (core.Edge, error) {
	ok, err := a.selector.ContainsEdge(ctx, e)
	if err != nil || !ok {
		return e, err
	}
	te, err := a.transform.TransformEdge(ctx, e)
	if err != nil {
		return core.Edge{}, err
	}
	te.Properties, err = a.reconstructProperties(ctx, te.Properties)
	if err != nil {
		return core.Edge{}, err
	}

	return te, nil
}

// ReconstructProperty rebuilds p when the selector contains it: the property
// is transformed, then each contained value, then each subproperty.
func (a *Actor) ReconstructProperty(ctx context.Context, p core.Property) (core.Property, error) {
	ok, err := a.selector.ContainsProperty(ctx, p)
	if err != nil || !ok {
		return p, err
	}
	tp, err := a.transform.TransformProperty(ctx, p)
	if err != nil {
		return core.Property{}, err
	}

	out := core.Property{ID: tp.ID}
	if tp.Values != nil {
		out.Values = make([]any, len(tp.Values))
		for i, x := range tp.Values {
			if out.Values[i], err = a.ReconstructValue(ctx, x); err != nil {
				return core.Property{}, err
			}
		}
	}
	if out.Subproperties, err = a.reconstructProperties(ctx, tp.Subproperties); err != nil {
		return core.Property{}, err
	}

	return out, nil
}

// ReconstructValue transforms x when the selector contains it.
func (a *Actor) ReconstructValue(ctx context.Context, x any) (any, error) {
	ok, err := a.selector.ContainsValue(ctx, x)
	if err != nil || !ok {
		return x, err
	}

	return a.transform.TransformValue(ctx, x)
}

func (a *Actor) reconstructProperties(ctx context.Context, props []core.Property) ([]core.Property, error) {
	if props == nil {
		return nil, nil
	}
	out := make([]core.Property, len(props))
	for i, p := range props {
		rp, err := a.ReconstructProperty(ctx, p)
		if err != nil {
			return nil, err
		}
		out[i] = rp
	}

	return out, nil
}
