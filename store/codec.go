package store

import (
	"encoding/json"
	"fmt"

	"github.com/katalvlaran/carta/core"
)

// Key layout. Vertex and edge identities are arbitrary strings, so the
// adjacency keys separate the endpoint from the edge with a NUL byte, which
// keeps "o/A\x00" from matching edges of a vertex named "AB".
//
//	v/<vertex>            vertexDoc
//	e/<edge>              edgeDoc (catalog, used to unindex on replace)
//	o/<source>\x00<edge>  edgeDoc (undirected edges under both endpoints)
//	i/<target>\x00<edge>  edgeDoc
const (
	prefixVertex = "v/"
	prefixEdge   = "e/"
	prefixOut    = "o/"
	prefixIn     = "i/"
	sep          = "\x00"
)

func vertexKey(id core.Identity) []byte { return []byte(prefixVertex + id.String()) }
func edgeKey(id core.Identity) []byte   { return []byte(prefixEdge + id.String()) }

func outKey(src, edge core.Identity) []byte { return []byte(prefixOut + src.String() + sep + edge.String()) }
func inKey(tgt, edge core.Identity) []byte  { return []byte(prefixIn + tgt.String() + sep + edge.String()) }

func outPrefix(src core.Identity) []byte { return []byte(prefixOut + src.String() + sep) }
func inPrefix(tgt core.Identity) []byte  { return []byte(prefixIn + tgt.String() + sep) }

type vertexDoc struct {
	ID          string        `json:"id"`
	Label       string        `json:"label,omitempty"`
	Description string        `json:"description,omitempty"`
	Properties  []propertyDoc `json:"properties,omitempty"`
}

type edgeDoc struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Target     string        `json:"target"`
	Directed   bool          `json:"directed"`
	Properties []propertyDoc `json:"properties,omitempty"`
}

type propertyDoc struct {
	ID            string        `json:"id"`
	Values        []valueDoc    `json:"values,omitempty"`
	Subproperties []propertyDoc `json:"subproperties,omitempty"`
}

// valueDoc tags each value with its kind so integers survive the round trip
// instead of coming back as float64.
type valueDoc struct {
	Kind  string          `json:"k"`
	Value json.RawMessage `json:"v"`
}

const (
	kindInt    = "int"
	kindFloat  = "float"
	kindString = "string"
	kindBool   = "bool"
	kindJSON   = "json"
)

func encodeVertex(v *core.Vertex) ([]byte, error) {
	props, err := encodeProperties(v.Properties)
	if err != nil {
		return nil, fmt.Errorf("vertex %q: %w", v.ID, err)
	}

	return json.Marshal(vertexDoc{
		ID:          v.ID.String(),
		Label:       v.Label,
		Description: v.Description,
		Properties:  props,
	})
}

func decodeVertex(data []byte) (*core.Vertex, error) {
	var doc vertexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	props, err := decodeProperties(doc.Properties)
	if err != nil {
		return nil, fmt.Errorf("vertex %q: %w", doc.ID, err)
	}
	v := core.NewVertex(core.ID(doc.ID))
	v.Label, v.Description, v.Properties = doc.Label, doc.Description, props

	return v, nil
}

func encodeEdge(e core.Edge) ([]byte, error) {
	props, err := encodeProperties(e.Properties)
	if err != nil {
		return nil, fmt.Errorf("edge %q: %w", e.ID, err)
	}

	return json.Marshal(edgeDoc{
		ID:         e.ID.String(),
		Source:     e.Source.String(),
		Target:     e.Target.String(),
		Directed:   e.Directed,
		Properties: props,
	})
}

func decodeEdge(data []byte) (core.Edge, error) {
	var doc edgeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.Edge{}, err
	}
	props, err := decodeProperties(doc.Properties)
	if err != nil {
		return core.Edge{}, fmt.Errorf("edge %q: %w", doc.ID, err)
	}

	return core.Edge{
		ID:         core.ID(doc.ID),
		Source:     core.ID(doc.Source),
		Target:     core.ID(doc.Target),
		Directed:   doc.Directed,
		Properties: props,
	}, nil
}

func encodeProperties(props []core.Property) ([]propertyDoc, error) {
	if len(props) == 0 {
		return nil, nil
	}
	out := make([]propertyDoc, 0, len(props))
	for _, p := range props {
		doc := propertyDoc{ID: p.ID.String()}
		for _, val := range p.Values {
			vd, err := encodeValue(val)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", p.ID, err)
			}
			doc.Values = append(doc.Values, vd)
		}
		subs, err := encodeProperties(p.Subproperties)
		if err != nil {
			return nil, err
		}
		doc.Subproperties = subs
		out = append(out, doc)
	}

	return out, nil
}

func decodeProperties(docs []propertyDoc) ([]core.Property, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]core.Property, 0, len(docs))
	for _, doc := range docs {
		p := core.Property{ID: core.ID(doc.ID)}
		for _, vd := range doc.Values {
			val, err := decodeValue(vd)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", doc.ID, err)
			}
			p.Values = append(p.Values, val)
		}
		subs, err := decodeProperties(doc.Subproperties)
		if err != nil {
			return nil, err
		}
		p.Subproperties = subs
		out = append(out, p)
	}

	return out, nil
}

func encodeValue(val any) (valueDoc, error) {
	var kind string
	switch x := val.(type) {
	case int:
		kind = kindInt
	case int8:
		kind, val = kindInt, int(x)
	case int16:
		kind, val = kindInt, int(x)
	case int32:
		kind, val = kindInt, int(x)
	case int64:
		kind, val = kindInt, int(x)
	case float32:
		kind, val = kindFloat, float64(x)
	case float64:
		kind = kindFloat
	case string:
		kind = kindString
	case bool:
		kind = kindBool
	default:
		kind = kindJSON
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return valueDoc{}, err
	}

	return valueDoc{Kind: kind, Value: raw}, nil
}

func decodeValue(vd valueDoc) (any, error) {
	var err error
	switch vd.Kind {
	case kindInt:
		var n int
		err = json.Unmarshal(vd.Value, &n)
		return n, err
	case kindFloat:
		var f float64
		err = json.Unmarshal(vd.Value, &f)
		return f, err
	case kindString:
		var s string
		err = json.Unmarshal(vd.Value, &s)
		return s, err
	case kindBool:
		var b bool
		err = json.Unmarshal(vd.Value, &b)
		return b, err
	case kindJSON:
		var x any
		err = json.Unmarshal(vd.Value, &x)
		return x, err
	}

	return nil, fmt.Errorf("unknown value kind %q", vd.Kind)
}
