package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/jgf"
)

const diamond = `{"graph": {"id": "diamond",
  "nodes": {"A": {"label": "start", "metadata": {"weight": 1}}, "B": {"metadata": {"weight": 2}},
            "C": {"metadata": {"weight": 3}}, "D": {"label": "end", "metadata": {"weight": 4}}},
  "edges": [{"source": "A", "target": "B"}, {"source": "A", "target": "C"},
            {"source": "B", "target": "D"}, {"source": "C", "target": "D"}]}}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

func TestSelect(t *testing.T) {
	graph := writeFile(t, "g.json", diamond)
	sel := writeFile(t, "s.yaml", "type: descendants\nids: [B]\ninclude_roots: true\n")

	out, _, err := run(t, "select", "--graph", graph, "--selector", sel)
	require.NoError(t, err)
	assert.Equal(t, "B\nD\n", out)
}

func TestSelectWithCacheAndStats(t *testing.T) {
	graph := writeFile(t, "g.json", diamond)
	sel := writeFile(t, "s.yaml", "type: children\nids: [A]\n")

	out, stderr, err := run(t, "select", "--graph", graph, "--selector", sel, "--cache-size", "8", "--stats")
	require.NoError(t, err)
	assert.Equal(t, "B\nC\n", out)
	assert.Contains(t, stderr, "carta_capability_requests_total")
}

func TestApplyWritesJGF(t *testing.T) {
	graph := writeFile(t, "g.json", diamond)
	pipe := writeFile(t, "p.yaml", "actors:\n  - type: reverse_edges\n  - type: decrement\n    selector: {type: include, ids: [D]}\n")
	dest := filepath.Join(t.TempDir(), "out.json")

	_, _, err := run(t, "apply", "--graph", graph, "--pipeline", pipe, "--out", dest)
	require.NoError(t, err)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	g, err := jgf.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4, g.VertexCount())
	for _, e := range g.EdgeList() {
		assert.NotEqual(t, "A", e.Source.String(), "A becomes a sink after reversal")
	}
	d, found, err := g.Vertex(t.Context(), core.ID("D"))
	require.NoError(t, err)
	require.True(t, found)
	w, _ := d.Property(core.ID("weight"))
	assert.Equal(t, 3.0, w.Value())
}

func TestImportThenSelectFromStore(t *testing.T) {
	graph := writeFile(t, "g.json", diamond)
	db := filepath.Join(t.TempDir(), "db")

	out, _, err := run(t, "import", "--graph", graph, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 4 vertices")

	sel := writeFile(t, "s.yaml", "type: roots\n")
	out, _, err = run(t, "select", "--db", db, "--selector", sel)
	require.NoError(t, err)
	assert.Equal(t, "A\n", out)
}

func TestSynth(t *testing.T) {
	a, _, err := run(t, "synth", "--seed", "3", "--depth", "1")
	require.NoError(t, err)
	b, _, err := run(t, "synth", "--seed", "3", "--depth", "1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, strings.TrimSpace(a))
}

func TestFlagErrors(t *testing.T) {
	_, _, err := run(t, "select", "--selector", "s.yaml")
	assert.Error(t, err, "--graph or --db is required")

	_, _, err = run(t, "--log-level", "loud", "synth")
	assert.Error(t, err)

	_, _, err = run(t, "synth", "--child-probability", "1", "--child-dampener", "1")
	assert.Error(t, err)
}
