// Package bfs provides breadth-first walks over carta graphs whose neighbours
// are fetched on demand through DynamicInLookup or DynamicOutLookup.
//
// What
//
//   - Explore vertices in non-decreasing distance (edge count) from a start vertex.
//   - Return a Result with visit Order, Depth and Parent links.
//   - Hooks: OnEnqueue, and OnVisit which may end the walk early with ErrStop
//     (used for reachability tests that must not explore further than needed).
//   - WithFilterNeighbor prunes individual neighbours; WithMaxDepth bounds the walk.
//
// Why
//
//   - Property aggregation and propagation visit every descendant or ancestor
//     exactly once, even when two paths lead to the same vertex.
//   - The explicit queue keeps deep hierarchies off the call stack.
//
// Determinism
//
//	Neighbours are enqueued in the order the NeighbourFunc yields them; with a
//	MemoryGraph that order is sorted by edge identity.
//
// Complexity (V = reached vertices, E = traversed edges)
//
//   - Time:   O(V + E) lookups.
//   - Memory: O(V) for queue, depth and parent maps, and the visited set.
//
// Usage
//
//	children, ok := bfs.Children(g)
//	if !ok {
//		// graph cannot walk out-edges
//	}
//	res, err := bfs.Walk(ctx, start, children, bfs.WithMaxDepth(3))
package bfs
