package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/internal/graphtest"
)

func vertices(ids ...string) []*core.Vertex {
	out := make([]*core.Vertex, len(ids))
	for i, id := range ids {
		out[i] = core.NewVertex(core.ID(id))
	}

	return out
}

func TestFilterVertices(t *testing.T) {
	ctx := context.Background()
	seq := core.FilterVertices(ctx, core.VerticesOf(vertices("A", "B", "C")...),
		func(_ context.Context, v *core.Vertex) (bool, error) { return v.ID != core.ID("B"), nil })
	assert.Equal(t, []string{"A", "C"}, graphtest.IDs(t, seq))
}

func TestFilterVertices_PropagatesPredicateError(t *testing.T) {
	boom := errors.New("boom")
	seq := core.FilterVertices(context.Background(), core.VerticesOf(vertices("A", "B")...),
		func(context.Context, *core.Vertex) (bool, error) { return false, boom })
	_, err := core.CollectVertices(seq)
	assert.ErrorIs(t, err, boom)
}

func TestMapVertices_StopsWhenConsumerBreaks(t *testing.T) {
	calls := 0
	seq := core.MapVertices(context.Background(), core.VerticesOf(vertices("A", "B", "C")...),
		func(_ context.Context, v *core.Vertex) (*core.Vertex, error) {
			calls++
			return v, nil
		})
	for range seq {
		break
	}
	assert.Equal(t, 1, calls)
}

func TestUniqueVertices(t *testing.T) {
	seq := core.UniqueVertices(core.VerticesOf(vertices("A", "B", "A", "C", "B")...))
	assert.Equal(t, []string{"A", "B", "C"}, graphtest.IDs(t, seq))
}

func TestFailVertices(t *testing.T) {
	boom := errors.New("boom")
	got, err := core.CollectVertices(core.FailVertices(boom))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, got)
	assert.Empty(t, graphtest.IDs(t, core.EmptyVertices()))
}

func TestFetchVertices_SkipsAbsent(t *testing.T) {
	g := graphtest.Diamond(t)
	seq := core.FetchVertices(context.Background(), g, core.IdentitiesOf(core.IDs("E", "missing", "A")...))
	require.Equal(t, []string{"E", "A"}, graphtest.IDs(t, seq))
}
