package bfs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/carta/bfs"
	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/internal/graphtest"
)

func order(res *bfs.Result) []string {
	out := make([]string, len(res.Order))
	for i, v := range res.Order {
		out[i] = v.ID.String()
	}

	return out
}

// TestWalk_Errors verifies that invalid inputs and options are rejected.
func TestWalk_Errors(t *testing.T) {
	ctx := context.Background()
	g := graphtest.Diamond(t)
	children, ok := bfs.Children(g)
	require.True(t, ok)

	_, err := bfs.Walk(ctx, nil, children)
	assert.ErrorIs(t, err, bfs.ErrStartNil)

	start := graphtest.Fetch(t, g, graphtest.A)
	_, err = bfs.Walk(ctx, start, nil)
	assert.ErrorIs(t, err, bfs.ErrNoNeighbours)

	_, err = bfs.Walk(ctx, start, children, bfs.WithMaxDepth(-1))
	assert.ErrorIs(t, err, bfs.ErrOptionViolation)
}

// TestWalk_DiamondVisitsOnce checks that D, reachable via B and C, is visited once.
func TestWalk_DiamondVisitsOnce(t *testing.T) {
	g := graphtest.Diamond(t)
	children, _ := bfs.Children(g)

	res, err := bfs.Walk(context.Background(), graphtest.Fetch(t, g, graphtest.A), children)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, order(res))
	assert.Equal(t, 2, res.Depth[core.ID("D")])
	assert.Equal(t, 3, res.Depth[core.ID("E")])

	path, err := res.PathTo(core.ID("E"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D", "E"}, graphtest.Strings(path))

	_, err = res.PathTo(core.ID("missing"))
	assert.Error(t, err)
}

// TestWalk_ParentsOnCycle walks in-edges around a cycle and terminates.
func TestWalk_ParentsOnCycle(t *testing.T) {
	g := graphtest.Cyclic(t)
	parents, ok := bfs.Parents(g)
	require.True(t, ok)

	res, err := bfs.Walk(context.Background(), graphtest.Fetch(t, g, graphtest.C), parents)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, order(res))
}

func TestWalk_MaxDepth(t *testing.T) {
	g := graphtest.Diamond(t)
	children, _ := bfs.Children(g)

	res, err := bfs.Walk(context.Background(), graphtest.Fetch(t, g, graphtest.A), children, bfs.WithMaxDepth(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order(res))
}

func TestWalk_StopEarly(t *testing.T) {
	g := graphtest.Diamond(t)
	children, _ := bfs.Children(g)

	visited := 0
	res, err := bfs.Walk(context.Background(), graphtest.Fetch(t, g, graphtest.A), children,
		bfs.WithOnVisit(func(v *core.Vertex, _ int) error {
			visited++
			if v.ID == core.ID(graphtest.C) {
				return bfs.ErrStop
			}
			return nil
		}))
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, 3, visited)
}

func TestWalk_HookErrorAborts(t *testing.T) {
	g := graphtest.Diamond(t)
	children, _ := bfs.Children(g)
	boom := errors.New("boom")

	_, err := bfs.Walk(context.Background(), graphtest.Fetch(t, g, graphtest.A), children,
		bfs.WithOnVisit(func(*core.Vertex, int) error { return boom }))
	assert.ErrorIs(t, err, boom)
}

func TestWalk_NeighbourErrorWrapped(t *testing.T) {
	boom := errors.New("lookup failed")
	failing := func(context.Context, core.Identity) core.VertexSeq { return core.FailVertices(boom) }

	_, err := bfs.Walk(context.Background(), core.NewVertex(core.ID("x")), failing)
	assert.ErrorIs(t, err, bfs.ErrNeighbors)
	assert.ErrorIs(t, err, boom)
}

func TestWalk_FilterNeighbor(t *testing.T) {
	g := graphtest.Diamond(t)
	children, _ := bfs.Children(g)

	res, err := bfs.Walk(context.Background(), graphtest.Fetch(t, g, graphtest.A), children,
		bfs.WithFilterNeighbor(func(_, nbr *core.Vertex) bool { return nbr.ID != core.ID(graphtest.B) }))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D", "E"}, order(res))
}

func TestWalk_Cancelled(t *testing.T) {
	g := graphtest.Diamond(t)
	children, _ := bfs.Children(g)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bfs.Walk(ctx, graphtest.Fetch(t, g, graphtest.A), children)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChildren_Unsupported(t *testing.T) {
	g := core.NewMemoryGraph(core.ID("g"), core.WithoutCapability(core.CapDynamicOut, core.CapDynamicIn))
	_, ok := bfs.Children(g)
	assert.False(t, ok)
	_, ok = bfs.Parents(g)
	assert.False(t, ok)
}
