package jgf_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/internal/graphtest"
	"github.com/katalvlaran/carta/jgf"
	"github.com/katalvlaran/carta/synthetic"
)

const small = `{
  "graph": {
    "id": "small",
    "metadata": {"owner": "ops"},
    "nodes": {
      "A": {"label": "alpha", "metadata": {"weight": 1, "tags": ["x", "y"]}},
      "B": {"label": "beta"}
    },
    "edges": [
      {"source": "A", "target": "B", "metadata": {"cost": 2.5}},
      {"id": "back", "source": "B", "target": "C", "directed": false}
    ]
  }
}`

func TestDecode(t *testing.T) {
	g, err := jgf.Decode(strings.NewReader(small))
	require.NoError(t, err)

	assert.Equal(t, "small", g.ID().String())
	assert.Equal(t, []core.Property{core.NewProperty(core.ID("owner"), "ops")}, g.Properties())
	assert.Equal(t, 3, g.VertexCount(), "edge endpoints are created")

	a := graphtest.Fetch(t, g, "A")
	assert.Equal(t, "alpha", a.Label)
	tags, ok := a.Property(core.ID("tags"))
	require.True(t, ok)
	assert.Equal(t, []any{"x", "y"}, tags.Values)
	w, _ := a.Property(core.ID("weight"))
	assert.Equal(t, 1.0, w.Value())

	edges := g.EdgeList()
	require.Len(t, edges, 2)
	assert.Equal(t, "A::B", edges[0].ID.String())
	assert.True(t, edges[0].Directed)
	assert.Equal(t, "back", edges[1].ID.String())
	assert.False(t, edges[1].Directed)
	assert.Equal(t, []string{"B"}, graphtest.IDs(t, g.ChildVertices(context.Background(), core.ID("C"))))
}

func TestDecodeInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":   `{"graph": `,
		"no graph": `{}`,
		"endpoint": `{"graph": {"edges": [{"source": "A"}]}}`,
	} {
		_, err := jgf.Decode(strings.NewReader(doc))
		assert.ErrorIs(t, err, jgf.ErrInvalidDocument, name)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := graphtest.Diamond(t)

	var buf bytes.Buffer
	require.NoError(t, jgf.Encode(ctx, &buf, src))
	back, err := jgf.Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, src.ID(), back.ID())
	assert.Equal(t, src.EdgeList(), back.EdgeList())
	for _, v := range graphtest.Entire(t, src) {
		got := graphtest.Fetch(t, back, v.ID.String())
		assert.Equal(t, v.Label, got.Label)
		assert.ElementsMatch(t, v.Properties, got.Properties)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	ctx := context.Background()
	var a, b bytes.Buffer
	require.NoError(t, jgf.Encode(ctx, &a, graphtest.Diamond(t)))
	require.NoError(t, jgf.Encode(ctx, &b, graphtest.Diamond(t)))
	assert.Equal(t, a.String(), b.String())
	assert.Contains(t, a.String(), `"directed": true`)
}

func TestEncodeRequiresFiniteGraph(t *testing.T) {
	inf, err := synthetic.NewInfiniteDirected(synthetic.DefaultParams())
	require.NoError(t, err)
	err = jgf.Encode(context.Background(), &bytes.Buffer{}, inf)
	assert.ErrorIs(t, err, core.ErrNotFinite)
}
