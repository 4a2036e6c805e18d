// Package dfs implements lazy depth-first traversal over carta graphs, the
// engine behind the Ancestors and Descendants selectors.
//
// What:
//
//   - Traverse walks from a set of root identities following a NeighbourFunc
//     (parents for ancestors, children for descendants) and yields every
//     reached vertex once, as a core.VertexSeq.
//   - Preorder emits a vertex before the vertices reached from it; Postorder
//     after them.
//   - MaxDepth bounds the number of edges from any root; 0 keeps only roots.
//   - IncludeRoots decides whether roots themselves are emitted.
//
// Why:
//
//   - Graphs may be cyclic or conceptually infinite. An explicit frame stack
//     and a visited set local to each call keep the walk finite under a
//     depth bound, safe on cycles, and independent of call-stack limits.
//   - Neighbours are pulled one at a time, so a consumer that stops early
//     causes no further lookups.
//
// Depth semantics:
//
//	A vertex is emitted at most once per call. When it is reached again with
//	more remaining depth than before (for example from a second root), its
//	neighbours are explored again without re-emitting it, so "depth d from
//	every root" holds exactly.
//
// Complexity:
//
//   - Unbounded depth: Time O(V+E) lookups, Memory O(V).
//   - Bounded depth d: each vertex is expanded at most d+1 times.
//
// Errors:
//
//   - ErrNoNeighbours, ErrNoFetch for missing functions.
//   - ErrUnknownOrder from ParseOrder.
//   - Lookup and context errors are yielded once and end the sequence.
package dfs
