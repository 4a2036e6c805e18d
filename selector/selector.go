// Package selector decides membership of vertices, edges, properties and
// values in a graph, and enumerates the vertices that match.
//
// Every selector is bound to a graph at construction. Enumeration uses the
// cheapest capability the graph offers; when the capability a variant needs is
// missing it falls back to filtering the whole graph, and when that is not
// possible either it yields nothing (containment answers false).
//
// Selectors hold no per-call state: any number of goroutines may call
// Vertices or the Contains methods on the same selector at once, provided the
// bound graph supports concurrent reads.
package selector

import (
	"context"

	"github.com/katalvlaran/carta/core"
)

// Selector is a predicate over graph elements plus an enumerator of the
// vertices it selects.
type Selector interface {
	// Graph returns the graph the selector is bound to.
	Graph() core.Graph

	ContainsVertex(ctx context.Context, v *core.Vertex) (bool, error)
	ContainsEdge(ctx context.Context, e core.Edge) (bool, error)
	ContainsProperty(ctx context.Context, p core.Property) (bool, error)
	ContainsValue(ctx context.Context, x any) (bool, error)

	// Vertices lazily enumerates the selected vertices.
	Vertices(ctx context.Context) core.VertexSeq
}

// bound supplies the graph binding and the permissive defaults: edges,
// properties and values are selected unless a variant says otherwise.
type bound struct {
	graph core.Graph
}

func (b bound) Graph() core.Graph { return b.graph }

func (bound) ContainsEdge(context.Context, core.Edge) (bool, error)         { return true, nil }
func (bound) ContainsProperty(context.Context, core.Property) (bool, error) { return true, nil }
func (bound) ContainsValue(context.Context, any) (bool, error)              { return true, nil }

// filterEntire is the fallback enumeration: every vertex of a finite graph
// with EntireGraph, filtered by keep. Without that capability it is empty.
func filterEntire(ctx context.Context, g core.Graph, keep func(context.Context, *core.Vertex) (bool, error)) core.VertexSeq {
	if g == nil || !g.Attributes().Finite {
		return core.EmptyVertices()
	}
	entire, ok := core.Entire(g)
	if !ok {
		return core.EmptyVertices()
	}

	return core.FilterVertices(ctx, entire.Vertices(ctx), keep)
}

// fetcher returns the best single-vertex lookup g offers.
func fetcher(g core.Graph) (func(context.Context, core.Identity) (*core.Vertex, bool, error), bool) {
	if dyn, ok := core.Dynamic(g); ok {
		return dyn.Vertex, true
	}
	if in, ok := core.DynamicIn(g); ok {
		return in.InVertex, true
	}
	if out, ok := core.DynamicOut(g); ok {
		return out.OutVertex, true
	}

	return nil, false
}

// Select is shorthand for s.Vertices(ctx) drained into a slice.
func Select(ctx context.Context, s Selector) ([]*core.Vertex, error) {
	return core.CollectVertices(s.Vertices(ctx))
}
