package synthetic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/selector"
	"github.com/katalvlaran/carta/synthetic"
)

func newGraph(t *testing.T, mutate func(*synthetic.Params)) *synthetic.InfiniteDirected {
	t.Helper()
	p := synthetic.DefaultParams()
	p.Seed = 7
	if mutate != nil {
		mutate(&p)
	}
	g, err := synthetic.NewInfiniteDirected(p)
	require.NoError(t, err)

	return g
}

func TestCapabilities(t *testing.T) {
	g := newGraph(t, nil)

	assert.False(t, g.Attributes().Finite)
	assert.True(t, g.Attributes().Dynamic)
	assert.ElementsMatch(t,
		[]core.Capability{core.CapDynamic, core.CapDynamicOut, core.CapRooted},
		core.SupportedCapabilities(g))

	_, err := core.EntireVertices(context.Background(), g)
	assert.ErrorIs(t, err, core.ErrNotFinite)
	assert.ErrorIs(t, err, core.ErrUnsupportedCapability)
}

func TestDeterministic(t *testing.T) {
	ctx := context.Background()
	a, b := newGraph(t, nil), newGraph(t, nil)
	require.Equal(t, a.Root(), b.Root())

	va, ok, err := a.Vertex(ctx, a.Root())
	require.NoError(t, err)
	require.True(t, ok)
	vb, _, _ := b.Vertex(ctx, b.Root())
	assert.Equal(t, va, vb)

	again, _, _ := a.Vertex(ctx, a.Root())
	assert.Equal(t, va, again)

	other := newGraph(t, func(p *synthetic.Params) { p.Seed = 8 })
	assert.NotEqual(t, a.Root(), other.Root())
}

func TestChildrenMatchOutEdges(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t, func(p *synthetic.Params) { p.ChildProbability, p.ChildDampener = 1, 0.5 })

	root, _, err := g.Vertex(ctx, g.Root())
	require.NoError(t, err)
	require.NotEmpty(t, root.OutEdges)
	assert.Empty(t, root.InEdges)

	kids, err := core.VertexIDs(g.ChildVertices(ctx, g.Root()))
	require.NoError(t, err)
	targets := make([]core.Identity, len(root.OutEdges))
	for i, e := range root.OutEdges {
		assert.Equal(t, root.ID, e.Source)
		targets[i] = e.Target
	}
	assert.Equal(t, targets, kids)
}

func TestRootsAndMissing(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t, nil)

	roots, err := core.CollectIdentities(g.Roots(ctx))
	require.NoError(t, err)
	assert.Equal(t, []core.Identity{g.Root()}, roots)

	_, found, err := g.Vertex(ctx, core.ID("not-a-uuid"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPropertiesAndLabels(t *testing.T) {
	ctx := context.Background()
	dense := newGraph(t, func(p *synthetic.Params) { p.PropertyCount, p.PropertyDensity = 5, 1 })
	v, _, err := dense.Vertex(ctx, dense.Root())
	require.NoError(t, err)
	assert.Len(t, v.Properties, 5)
	assert.NotEmpty(t, v.Label)

	bare := newGraph(t, func(p *synthetic.Params) { p.PropertyDensity, p.Labeled = 0, false })
	v, _, err = bare.Vertex(ctx, bare.Root())
	require.NoError(t, err)
	assert.Empty(t, v.Properties)
	assert.Empty(t, v.Label)
}

func TestNoChildren(t *testing.T) {
	g := newGraph(t, func(p *synthetic.Params) { p.ChildProbability = 0 })
	kids, err := core.VertexIDs(g.ChildVertices(context.Background(), g.Root()))
	require.NoError(t, err)
	assert.Empty(t, kids)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*synthetic.Params){
		"probability": func(p *synthetic.Params) { p.ChildProbability = 1.5 },
		"dampener":    func(p *synthetic.Params) { p.ChildDampener = -0.1 },
		"unbounded":   func(p *synthetic.Params) { p.ChildProbability, p.ChildDampener = 1, 1 },
		"count":       func(p *synthetic.Params) { p.PropertyCount = -1 },
		"density":     func(p *synthetic.Params) { p.PropertyDensity = 2 },
	} {
		p := synthetic.DefaultParams()
		mutate(&p)
		_, err := synthetic.NewInfiniteDirected(p)
		assert.ErrorIs(t, err, synthetic.ErrInvalidParams, name)
	}
}

// Bounded descendants of the root terminate although the graph does not.
func TestBoundedDescendants(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t, func(p *synthetic.Params) { p.ChildProbability, p.ChildDampener = 1, 0.7 })

	sel, err := selector.Descendants(g, []core.Identity{g.Root()},
		selector.WithMaxDepth(2), selector.WithIncludeRoots(true))
	require.NoError(t, err)
	vs, err := selector.Select(ctx, sel)
	require.NoError(t, err)
	require.NotEmpty(t, vs)
	assert.Equal(t, g.Root(), vs[0].ID)

	kids, err := core.VertexIDs(g.ChildVertices(ctx, g.Root()))
	require.NoError(t, err)
	assert.Greater(t, len(vs), len(kids))

	// Whole-graph enumeration fails closed.
	none, err := selector.Select(ctx, selector.All(g))
	require.NoError(t, err)
	assert.Empty(t, none)
}
