// Package builder assembles deterministic in-memory graphs from topology
// constructors: paths, cycles, stars, wheels, complete graphs and sparse
// random graphs.
//
// Constructors are composed through BuildGraph and configured with
// functional options:
//
//	g, err := builder.BuildGraph(core.ID("ring"), nil,
//		[]builder.BuilderOption{builder.WithLetterIDs(), builder.WithSeed(1)},
//		builder.Cycle(5),
//	)
//
// Options:
//   - WithIDScheme / WithLetterIDs / WithPrefixIDs choose vertex identities.
//   - WithDirected(false) emits undirected edges.
//   - WithSeed / WithRand supply the RNG used by RandomSparse and weights.
//   - WithWeightFn, WithEdgeProperty and WithVertexProperties attach data.
//
// Errors are sentinels (ErrTooFewVertices, ErrInvalidProbability,
// ErrNeedRandSource, ErrConstructFailed) wrapped with the constructor name;
// branch with errors.Is.
package builder
