// File: capability.go
// Role: capability kinds, contracts and the per-instance registry.
//
// A graph advertises optional capabilities through one query,
// Provide(kind). Callers never assume a capability: they ask, and fall back
// or fail with ErrUnsupportedCapability when the answer is no.
package core

import (
	"context"
	"fmt"
)

// Capability names one optional access pattern a graph may support.
type Capability int

const (
	// CapEntire enumerates every vertex of a finite graph.
	CapEntire Capability = iota
	// CapDynamic fetches one vertex by identity.
	CapDynamic
	// CapDynamicIn fetches a vertex with in-edges and enumerates parents.
	CapDynamicIn
	// CapDynamicOut fetches a vertex with out-edges and enumerates children.
	CapDynamicOut
	// CapRooted enumerates the identities of vertices with no in-edges.
	CapRooted
)

// AllCapabilities lists every capability kind in declaration order.
var AllCapabilities = []Capability{CapEntire, CapDynamic, CapDynamicIn, CapDynamicOut, CapRooted}

// String returns a stable lower-case name, used in logs and metric labels.
func (c Capability) String() string {
	switch c {
	case CapEntire:
		return "entire"
	case CapDynamic:
		return "dynamic"
	case CapDynamicIn:
		return "dynamic_in"
	case CapDynamicOut:
		return "dynamic_out"
	case CapRooted:
		return "rooted"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// EntireGraph enumerates all vertices. Only meaningful on finite graphs.
type EntireGraph interface {
	Vertices(ctx context.Context) VertexSeq
}

// DynamicGraph fetches a single vertex. found=false is the absent result and
// is never reported as an error.
type DynamicGraph interface {
	Vertex(ctx context.Context, id Identity) (v *Vertex, found bool, err error)
}

// DynamicInGraph walks toward parents.
type DynamicInGraph interface {
	InVertex(ctx context.Context, id Identity) (v *Vertex, found bool, err error)
	ParentVertices(ctx context.Context, id Identity) VertexSeq
}

// DynamicOutGraph walks toward children.
type DynamicOutGraph interface {
	OutVertex(ctx context.Context, id Identity) (v *Vertex, found bool, err error)
	ChildVertices(ctx context.Context, id Identity) VertexSeq
}

// RootedGraph enumerates vertices without in-edges.
type RootedGraph interface {
	Roots(ctx context.Context) IdentitySeq
}

// Capabilities maps a capability to the value implementing it. A graph builds
// its registry once, so negotiation is a map lookup.
type Capabilities map[Capability]any

// Discover registers every capability contract impl satisfies.
func Discover(impl any) Capabilities {
	caps := make(Capabilities, len(AllCapabilities))
	if c, ok := impl.(EntireGraph); ok {
		caps[CapEntire] = c
	}
	if c, ok := impl.(DynamicGraph); ok {
		caps[CapDynamic] = c
	}
	if c, ok := impl.(DynamicInGraph); ok {
		caps[CapDynamicIn] = c
	}
	if c, ok := impl.(DynamicOutGraph); ok {
		caps[CapDynamicOut] = c
	}
	if c, ok := impl.(RootedGraph); ok {
		caps[CapRooted] = c
	}

	return caps
}

// Without returns a copy of caps minus the given kinds.
func (caps Capabilities) Without(kinds ...Capability) Capabilities {
	out := make(Capabilities, len(caps))
	for k, v := range caps {
		out[k] = v
	}
	for _, k := range kinds {
		delete(out, k)
	}

	return out
}

// Provide looks c up.
func (caps Capabilities) Provide(c Capability) (any, bool) {
	impl, ok := caps[c]

	return impl, ok
}

// implements reports whether impl satisfies the contract of c.
func implements(c Capability, impl any) bool {
	switch c {
	case CapEntire:
		_, ok := impl.(EntireGraph)
		return ok
	case CapDynamic:
		_, ok := impl.(DynamicGraph)
		return ok
	case CapDynamicIn:
		_, ok := impl.(DynamicInGraph)
		return ok
	case CapDynamicOut:
		_, ok := impl.(DynamicOutGraph)
		return ok
	case CapRooted:
		_, ok := impl.(RootedGraph)
		return ok
	default:
		return false
	}
}
