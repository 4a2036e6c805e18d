// Package graphtest holds small deterministic graphs and helpers shared by the
// package tests.
package graphtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/carta/core"
)

// Vertex identities used across fixtures.
const (
	A = "A"
	B = "B"
	C = "C"
	D = "D"
	E = "E"
)

// PropWeight and PropName are the property identities used by fixtures.
var (
	PropWeight = core.ID("weight")
	PropName   = core.ID("name")
)

// Cyclic builds {A,B,C} with A->B, B->C, B->A.
func Cyclic(t testing.TB) *core.MemoryGraph {
	t.Helper()
	g := core.NewMemoryGraph(core.ID("cyclic"))
	for _, id := range []string{A, B, C} {
		_, err := g.AddVertex(core.NewVertex(core.ID(id)))
		require.NoError(t, err)
	}
	require.NoError(t, g.AddEdges(
		core.NewEdge(core.ID(A), core.ID(B)),
		core.NewEdge(core.ID(B), core.ID(C)),
		core.NewEdge(core.ID(B), core.ID(A)),
	))

	return g
}

// Diamond builds A->B, A->C, B->D, C->D, D->E where every vertex carries a
// numeric "weight" property (A=1 .. E=5) and a "name" property.
func Diamond(t testing.TB, opts ...core.MemoryOption) *core.MemoryGraph {
	t.Helper()
	g := core.NewMemoryGraph(core.ID("diamond"), opts...)
	for i, id := range []string{A, B, C, D, E} {
		v := core.NewVertex(core.ID(id),
			core.NewProperty(PropWeight, float64(i+1)),
			core.NewProperty(PropName, "v"+id),
		)
		v.Label = "vertex " + id
		_, err := g.AddVertex(v)
		require.NoError(t, err)
	}
	require.NoError(t, g.AddEdges(
		core.NewEdge(core.ID(A), core.ID(B)),
		core.NewEdge(core.ID(A), core.ID(C)),
		core.NewEdge(core.ID(B), core.ID(D)),
		core.NewEdge(core.ID(C), core.ID(D)),
		core.NewEdge(core.ID(D), core.ID(E)),
	))

	return g
}

// IDs drains seq and returns vertex identities as strings, failing t on error.
func IDs(t testing.TB, seq core.VertexSeq) []string {
	t.Helper()
	ids, err := core.VertexIDs(seq)
	require.NoError(t, err)

	return Strings(ids)
}

// Strings converts identities to their canonical strings.
func Strings(ids []core.Identity) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}

// Fetch returns vertex id through g's DynamicLookup, failing t if it is absent.
func Fetch(t testing.TB, g core.Graph, id string) *core.Vertex {
	t.Helper()
	dyn, ok := core.Dynamic(g)
	require.True(t, ok, "graph %q has no dynamic lookup", g.ID())
	v, found, err := dyn.Vertex(context.Background(), core.ID(id))
	require.NoError(t, err)
	require.True(t, found, "vertex %q not found", id)

	return v
}

// EdgePairs renders edges as "source->target" strings.
func EdgePairs(edges []core.Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Source.String() + "->" + e.Target.String()
	}

	return out
}

// Entire drains the whole graph, failing t on error.
func Entire(t testing.TB, g core.Graph) []*core.Vertex {
	t.Helper()
	vs, err := core.GetEntire(context.Background(), g)
	require.NoError(t, err)

	return vs
}
