// File: entity.go
// Role: Property, Vertex and Edge value types.
//
// Entities are immutable by convention: the engine never mutates a vertex or
// edge it has handed out. Transforms build new values (see Clone helpers).
package core

// Property is a named, multi-valued attribute of a vertex, edge or graph.
type Property struct {
	// ID names the property; unique within its owner.
	ID Identity

	// Values holds the observations for this property. Order is meaningful.
	Values []any

	// Subproperties are nested attributes (for example statistics derived
	// from Values).
	Subproperties []Property
}

// NewProperty builds a Property with the given values.
func NewProperty(id Identity, values ...any) Property {
	return Property{ID: id, Values: values}
}

// Value returns the first value, or nil when the property is empty.
func (p Property) Value() any {
	if len(p.Values) == 0 {
		return nil
	}

	return p.Values[0]
}

// Subproperty returns the nested property named id.
func (p Property) Subproperty(id Identity) (Property, bool) {
	for _, sp := range p.Subproperties {
		if sp.ID == id {
			return sp, true
		}
	}

	return Property{}, false
}

// Append returns a new property whose values are p's followed by other's.
// Subproperties are merged the same way, keyed by identity.
func (p Property) Append(other Property) Property {
	out := Property{ID: p.ID}
	out.Values = make([]any, 0, len(p.Values)+len(other.Values))
	out.Values = append(out.Values, p.Values...)
	out.Values = append(out.Values, other.Values...)
	out.Subproperties = MergeProperties(p.Subproperties, other.Subproperties)

	return out
}

// Clone returns a copy with fresh value and subproperty slices.
func (p Property) Clone() Property {
	out := Property{ID: p.ID}
	if p.Values != nil {
		out.Values = append([]any(nil), p.Values...)
	}
	if p.Subproperties != nil {
		out.Subproperties = make([]Property, len(p.Subproperties))
		for i, sp := range p.Subproperties {
			out.Subproperties[i] = sp.Clone()
		}
	}

	return out
}

// MergeProperties concatenates the values of same-identity properties,
// keeping the order in which identities are first seen.
func MergeProperties(lists ...[]Property) []Property {
	var (
		out   []Property
		index = make(map[Identity]int)
	)
	for _, list := range lists {
		for _, p := range list {
			if i, ok := index[p.ID]; ok {
				out[i] = out[i].Append(p)
				continue
			}
			index[p.ID] = len(out)
			out = append(out, p.Clone())
		}
	}

	return out
}

// Edge connects two vertices.
//
// Source and Target are identities; the edge does not own the vertices.
// An undirected edge is listed as both an in- and an out-edge of both endpoints.
type Edge struct {
	ID         Identity
	Source     Identity
	Target     Identity
	Directed   bool
	Properties []Property
}

// NewEdge returns a directed edge whose identity is "source::target".
func NewEdge(source, target Identity, props ...Property) Edge {
	return Edge{
		ID:         CompoundID(source, target),
		Source:     source,
		Target:     target,
		Directed:   true,
		Properties: props,
	}
}

// NewUndirectedEdge returns an undirected edge whose identity is "source::target".
func NewUndirectedEdge(source, target Identity, props ...Property) Edge {
	e := NewEdge(source, target, props...)
	e.Directed = false

	return e
}

// Reversed returns the edge with its endpoints swapped. The identity is kept.
func (e Edge) Reversed() Edge {
	e.Source, e.Target = e.Target, e.Source

	return e
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id Identity) bool { return e.Source == id || e.Target == id }

// IsLoop reports whether the edge starts and ends at the same vertex.
func (e Edge) IsLoop() bool { return e.Source == e.Target }

// Other returns the endpoint opposite to id.
func (e Edge) Other(id Identity) Identity {
	if e.Source == id {
		return e.Target
	}

	return e.Source
}

// Vertex is a node with properties and incident edges.
//
// InEdges and OutEdges are never nil on vertices produced by this module. A
// vertex obtained from a capability that does not expose edges simply has
// empty lists.
type Vertex struct {
	ID          Identity
	Label       string
	Description string
	Properties  []Property
	InEdges     []Edge
	OutEdges    []Edge
}

// NewVertex builds a vertex with empty edge lists. Duplicate property
// identities are merged by value concatenation.
func NewVertex(id Identity, props ...Property) *Vertex {
	return &Vertex{
		ID:         id,
		Properties: MergeProperties(props),
		InEdges:    []Edge{},
		OutEdges:   []Edge{},
	}
}

// Property returns the property named id.
func (v *Vertex) Property(id Identity) (Property, bool) {
	for _, p := range v.Properties {
		if p.ID == id {
			return p, true
		}
	}

	return Property{}, false
}

// Edges returns the union of in- and out-edges, deduplicated by edge identity,
// in-edges first.
func (v *Vertex) Edges() []Edge {
	return UnionEdges(v.InEdges, v.OutEdges)
}

// InDegree returns the number of in-edges.
func (v *Vertex) InDegree() int { return len(v.InEdges) }

// OutDegree returns the number of out-edges.
func (v *Vertex) OutDegree() int { return len(v.OutEdges) }

// Clone returns a deep copy of v.
func (v *Vertex) Clone() *Vertex {
	if v == nil {
		return nil
	}
	out := &Vertex{
		ID:          v.ID,
		Label:       v.Label,
		Description: v.Description,
		InEdges:     cloneEdges(v.InEdges),
		OutEdges:    cloneEdges(v.OutEdges),
	}
	if v.Properties != nil {
		out.Properties = make([]Property, len(v.Properties))
		for i, p := range v.Properties {
			out.Properties[i] = p.Clone()
		}
	}

	return out
}

// PartitionEdges splits edges into the in- and out-lists of vertex id.
//
// A directed edge is an in-edge when its target is id and an out-edge when its
// source is id (a self-loop is both). An undirected edge touching id is both.
// Edges that do not touch id are dropped.
func PartitionEdges(id Identity, edges []Edge) (in, out []Edge) {
	in, out = []Edge{}, []Edge{}
	for _, e := range edges {
		if !e.Directed {
			if e.Touches(id) {
				in = append(in, e)
				out = append(out, e)
			}
			continue
		}
		if e.Target == id {
			in = append(in, e)
		}
		if e.Source == id {
			out = append(out, e)
		}
	}

	return in, out
}

// UnionEdges concatenates edge lists, dropping repeated edge identities.
func UnionEdges(lists ...[]Edge) []Edge {
	seen := make(IdentitySet)
	out := []Edge{}
	for _, list := range lists {
		for _, e := range list {
			if seen.Add(e.ID) {
				out = append(out, e)
			}
		}
	}

	return out
}

func cloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e
		if e.Properties != nil {
			out[i].Properties = make([]Property, len(e.Properties))
			for j, p := range e.Properties {
				out[i].Properties[j] = p.Clone()
			}
		}
	}

	return out
}
