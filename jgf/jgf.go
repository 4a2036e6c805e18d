// Package jgf reads and writes the single-graph form of the JSON Graph Format.
//
//	{"graph": {
//	  "id": "g", "directed": true, "metadata": {...},
//	  "nodes": {"A": {"label": "a", "metadata": {"weight": 1}}},
//	  "edges": [{"id": "A::B", "source": "A", "target": "B", "directed": true}]
//	}}
//
// Properties map to metadata entries: a single value is written as a scalar,
// several values as an array. Subproperties and vertex descriptions are not
// represented. Numbers decode as float64.
package jgf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/katalvlaran/carta/core"
)

// ErrInvalidDocument is returned for malformed or incomplete documents.
var ErrInvalidDocument = errors.New("jgf: invalid document")

// Document is the top-level JGF object.
type Document struct {
	Graph *Graph `json:"graph"`
}

// Graph is a JGF graph object.
type Graph struct {
	ID       string          `json:"id,omitempty"`
	Directed *bool           `json:"directed,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
	Nodes    map[string]Node `json:"nodes,omitempty"`
	Edges    []Edge          `json:"edges,omitempty"`
}

// Node is a JGF node; its identity is the key in Graph.Nodes.
type Node struct {
	Label    string         `json:"label,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Edge is a JGF edge.
type Edge struct {
	ID       string         `json:"id,omitempty"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Directed *bool          `json:"directed,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Decode reads one JGF document into a new MemoryGraph. Edges without an
// identity get "source::target"; edges without a direction inherit the
// graph's, which defaults to directed.
func Decode(r io.Reader) (*core.MemoryGraph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return FromDocument(doc)
}

// FromDocument builds a MemoryGraph from a decoded document.
func FromDocument(doc Document) (*core.MemoryGraph, error) {
	if doc.Graph == nil {
		return nil, fmt.Errorf("%w: missing graph object", ErrInvalidDocument)
	}
	jg := doc.Graph
	id := jg.ID
	if id == "" {
		id = "graph"
	}
	directed := jg.Directed == nil || *jg.Directed

	var opts []core.MemoryOption
	if props := toProperties(jg.Metadata); len(props) > 0 {
		opts = append(opts, core.WithGraphProperties(props...))
	}
	g := core.NewMemoryGraph(core.ID(id), opts...)

	for key, n := range jg.Nodes {
		if key == "" {
			return nil, fmt.Errorf("%w: node with empty id", ErrInvalidDocument)
		}
		v := core.NewVertex(core.ID(key), toProperties(n.Metadata)...)
		v.Label = n.Label
		if _, err := g.AddVertex(v); err != nil {
			return nil, err
		}
	}
	for i, je := range jg.Edges {
		if je.Source == "" || je.Target == "" {
			return nil, fmt.Errorf("%w: edges[%d] needs source and target", ErrInvalidDocument, i)
		}
		e := core.Edge{
			ID:         core.ID(je.ID),
			Source:     core.ID(je.Source),
			Target:     core.ID(je.Target),
			Directed:   directed,
			Properties: toProperties(je.Metadata),
		}
		if je.Directed != nil {
			e.Directed = *je.Directed
		}
		if _, err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
	}

	return g, nil
}

// Encode writes every vertex and edge of g as an indented JGF document.
// g must be finite and offer EntireGraph.
func Encode(ctx context.Context, w io.Writer, g core.Graph) error {
	doc, err := ToDocument(ctx, g)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// ToDocument converts g. Edges are listed in the order they are first seen
// while enumerating vertices.
func ToDocument(ctx context.Context, g core.Graph) (Document, error) {
	vs, err := core.GetEntire(ctx, g)
	if err != nil {
		return Document{}, err
	}

	jg := &Graph{
		ID:       g.ID().String(),
		Metadata: toMetadata(g.Properties()),
		Nodes:    make(map[string]Node, len(vs)),
	}
	seen := make(core.IdentitySet)
	allDirected := true
	for _, v := range vs {
		jg.Nodes[v.ID.String()] = Node{Label: v.Label, Metadata: toMetadata(v.Properties)}
		for _, e := range v.Edges() {
			if !seen.Add(e.ID) {
				continue
			}
			allDirected = allDirected && e.Directed
			directed := e.Directed
			jg.Edges = append(jg.Edges, Edge{
				ID:       e.ID.String(),
				Source:   e.Source.String(),
				Target:   e.Target.String(),
				Directed: &directed,
				Metadata: toMetadata(e.Properties),
			})
		}
	}
	jg.Directed = &allDirected

	return Document{Graph: jg}, nil
}

func toProperties(meta map[string]any) []core.Property {
	if len(meta) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(meta))
	props := make([]core.Property, 0, len(keys))
	for _, k := range keys {
		switch val := meta[k].(type) {
		case []any:
			props = append(props, core.NewProperty(core.ID(k), val...))
		default:
			props = append(props, core.NewProperty(core.ID(k), val))
		}
	}

	return props
}

func toMetadata(props []core.Property) map[string]any {
	if len(props) == 0 {
		return nil
	}
	meta := make(map[string]any, len(props))
	for _, p := range props {
		if len(p.Values) == 1 {
			meta[p.ID.String()] = p.Values[0]
			continue
		}
		meta[p.ID.String()] = append([]any{}, p.Values...)
	}

	return meta
}
