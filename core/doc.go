// Package core defines the entity model and the capability contracts every
// graph in carta is built on.
//
// Entities:
//
//   - Identity: opaque comparable key; structured keys normalise to a string.
//   - Property: named, multi-valued attribute with nested subproperties.
//   - Vertex: identity, label, description, properties, in- and out-edges.
//   - Edge: identity (default "source::target"), endpoints, directedness.
//
// Capabilities:
//
// A Graph exposes its identity, properties and Attributes{Finite, Dynamic}
// and negotiates optional capabilities through a single query:
//
//	impl, ok := g.Provide(core.CapDynamicOut)
//
// or, typed:
//
//	out, ok := core.DynamicOut(g)
//
// The five contracts are EntireGraph (enumerate all vertices), DynamicGraph
// (fetch one vertex), DynamicInGraph (parents), DynamicOutGraph (children) and
// RootedGraph (vertices with no in-edges). Absence of a vertex is reported by a
// false "found" result, never by an error.
//
// Wrappers:
//
// Wrapper decorates another graph and decides per capability whether to
// Forward, Suppress or Override it. Decisions are resolved at construction;
// a suppressed capability stays unavailable through any chain of wrappers.
//
// Sequences:
//
// Enumerations are lazy iter.Seq2 sequences (VertexSeq, IdentitySeq). They do
// no work until ranged over and stop producing when the consumer breaks.
//
// MemoryGraph:
//
// MemoryGraph is the finite, thread-safe in-memory graph offering all five
// capabilities, with deterministic identity-ordered enumeration.
//
// Errors:
//
//	ErrUnsupportedCapability - a required capability is missing.
//	ErrNotFinite             - whole-graph enumeration on a non-finite graph.
//	ErrInvalidSelection      - invalid selector parameters.
//	ErrEmptyIdentity         - empty key where one is required.
//	ErrVertexNotFound        - mutation referenced a missing vertex.
//	ErrEdgeNotFound          - mutation referenced a missing edge.
package core
