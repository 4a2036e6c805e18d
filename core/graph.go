// File: graph.go
// Role: the Graph contract, typed capability accessors and whole-graph helpers.
package core

import (
	"context"
	"fmt"
)

// Attributes describe global properties of a graph.
type Attributes struct {
	// Finite graphs have an enumerable vertex set.
	Finite bool
	// Dynamic graphs support on-demand vertex lookup.
	Dynamic bool
}

// Graph is the common surface of every graph in this module: an identity,
// properties, attributes and capability negotiation.
//
// Provide returns the implementation of c and true, or nil and false when the
// capability is not offered. A graph must answer consistently for its lifetime.
type Graph interface {
	ID() Identity
	Properties() []Property
	Attributes() Attributes
	Provide(c Capability) (any, bool)
}

// TryProvide returns the implementation of c on g typed as T.
// It reports false if g is nil, lacks c, or the implementation is not a T.
func TryProvide[T any](g Graph, c Capability) (T, bool) {
	var zero T
	if g == nil {
		return zero, false
	}
	impl, ok := g.Provide(c)
	if !ok || impl == nil {
		return zero, false
	}
	t, ok := impl.(T)
	if !ok {
		return zero, false
	}

	return t, true
}

// Entire returns g's EntireGraph capability.
func Entire(g Graph) (EntireGraph, bool) { return TryProvide[EntireGraph](g, CapEntire) }

// Dynamic returns g's DynamicGraph capability.
func Dynamic(g Graph) (DynamicGraph, bool) { return TryProvide[DynamicGraph](g, CapDynamic) }

// DynamicIn returns g's DynamicInGraph capability.
func DynamicIn(g Graph) (DynamicInGraph, bool) { return TryProvide[DynamicInGraph](g, CapDynamicIn) }

// DynamicOut returns g's DynamicOutGraph capability.
func DynamicOut(g Graph) (DynamicOutGraph, bool) {
	return TryProvide[DynamicOutGraph](g, CapDynamicOut)
}

// Rooted returns g's RootedGraph capability.
func Rooted(g Graph) (RootedGraph, bool) { return TryProvide[RootedGraph](g, CapRooted) }

// Supports reports whether g offers c.
func Supports(g Graph, c Capability) bool {
	if g == nil {
		return false
	}
	_, ok := g.Provide(c)

	return ok
}

// SupportedCapabilities lists the capabilities g offers, in declaration order.
func SupportedCapabilities(g Graph) []Capability {
	var out []Capability
	for _, c := range AllCapabilities {
		if Supports(g, c) {
			out = append(out, c)
		}
	}

	return out
}

// EntireVertices returns the lazy whole-graph enumeration of g.
//
// Errors:
//   - ErrNotFinite if g is not finite.
//   - ErrUnsupportedCapability if g does not offer EntireGraph.
func EntireVertices(ctx context.Context, g Graph) (VertexSeq, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if !g.Attributes().Finite {
		return nil, fmt.Errorf("%w: graph %q", ErrNotFinite, g.ID())
	}
	entire, ok := Entire(g)
	if !ok {
		return nil, fmt.Errorf("%w: %s on graph %q", ErrUnsupportedCapability, CapEntire, g.ID())
	}

	return entire.Vertices(ctx), nil
}

// GetEntire materialises every vertex of g. See EntireVertices for errors.
func GetEntire(ctx context.Context, g Graph) ([]*Vertex, error) {
	seq, err := EntireVertices(ctx, g)
	if err != nil {
		return nil, err
	}

	return CollectVertices(seq)
}

// FetchVertices resolves ids through dyn, skipping absent vertices.
func FetchVertices(ctx context.Context, dyn DynamicGraph, ids IdentitySeq) VertexSeq {
	return func(yield func(*Vertex, error) bool) {
		for id, err := range ids {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(nil, err)
				return
			}
			v, found, err := dyn.Vertex(ctx, id)
			if err != nil {
				yield(nil, err)
				return
			}
			if !found {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// base carries the identity, properties, attributes and capability registry
// shared by concrete graphs in this package.
type base struct {
	id    Identity
	props []Property
	attrs Attributes
	caps  Capabilities
}

func (b *base) ID() Identity           { return b.id }
func (b *base) Properties() []Property { return b.props }
func (b *base) Attributes() Attributes { return b.attrs }

func (b *base) Provide(c Capability) (any, bool) { return b.caps.Provide(c) }
