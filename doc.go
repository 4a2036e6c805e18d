// Package carta is a toolkit for selecting, transforming and persisting
// graphs that may be too large, or too lazy, to hold in memory.
//
// 🚀 What is carta?
//
//	A graph in carta is a set of optional capabilities rather than a fixed
//	interface. A graph may be able to:
//		• enumerate every vertex (Entire)
//		• look a vertex up by identity, with in, out or all edges (Dynamic*)
//		• name its roots (Rooted)
//	Every consumer asks for what it needs and degrades gracefully when a
//	capability is absent.
//
// ✨ Building blocks
//
//   - Selectors pick vertices: set algebra, degree filters, label and
//     property matches, ancestors and descendants with depth limits.
//   - Actors are views over a graph that rewrite values, reverse edges,
//     aggregate or propagate properties and merge vertices, without
//     copying the graph.
//   - Wrappers layer behaviour on any graph: an LRU cache, Prometheus
//     instrumentation, a badger-backed store.
//
// Packages:
//
//	core/      - identities, vertices, edges, capabilities and the in-memory graph
//	bfs/, dfs/ - lazy traversals over Dynamic graphs
//	selector/  - composable vertex selection
//	actor/     - composable graph transformations
//	builder/   - fluent construction of small graphs
//	synthetic/ - deterministic, seeded, infinite random graphs
//	store/     - persistent graphs on badger
//	cache/     - memoised vertex lookups
//	metrics/   - instrumented graphs
//	pipeline/  - YAML/JSON documents describing selectors and actor chains
//	jgf/       - JSON Graph Format import and export
//	cmd/carta/ - the command line front end
//
// Quick ASCII example:
//
//	    A
//	   / \
//	  B   C
//	   \ /
//	    D
//
//	selector.Descendants(g, core.IDs("B")) yields D; with WithIncludeRoots
//	it yields B and D.
//
//	go install github.com/katalvlaran/carta/cmd/carta@latest
package carta
