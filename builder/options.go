// Package: carta/builder
//
// options.go - functional options for the builder package.
//
// Contract:
//   - Option constructors validate and panic on meaningless inputs (nil
//     functions). Constructors themselves never panic.
//   - Determinism is explicit: seeding is done via WithSeed or WithRand.

package builder

import (
	"math/rand"

	"github.com/katalvlaran/carta/core"
)

// BuilderOption customizes a builderConfig before construction begins.
type BuilderOption func(*builderConfig)

// WithIDScheme sets the vertex ID generator: idx -> string.
// Panics on nil.
func WithIDScheme(fn IDFn) BuilderOption {
	if fn == nil {
		panic("builder: WithIDScheme(nil)")
	}
	return func(c *builderConfig) {
		c.idFn = fn
	}
}

// WithDirected chooses directed (default) or undirected edges.
func WithDirected(directed bool) BuilderOption {
	return func(c *builderConfig) {
		c.directed = directed
	}
}

// WithRand provides an explicit RNG for stochastic constructors.
// Panics on nil; prefer WithSeed for reproducible runs.
func WithRand(r *rand.Rand) BuilderOption {
	if r == nil {
		panic("builder: WithRand(nil)")
	}
	return func(c *builderConfig) {
		c.rng = r
	}
}

// WithSeed creates a seeded *rand.Rand.
func WithSeed(seed int64) BuilderOption {
	return func(c *builderConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithWeightFn attaches a "weight" property to every edge, drawn from fn.
// fn receives the (possibly nil) RNG. Panics on nil.
func WithWeightFn(fn func(*rand.Rand) float64) BuilderOption {
	if fn == nil {
		panic("builder: WithWeightFn(nil)")
	}
	return func(c *builderConfig) {
		c.weightFn = fn
	}
}

// WithEdgeProperty attaches a copy of p to every edge. Repeated options
// accumulate.
func WithEdgeProperty(p core.Property) BuilderOption {
	return func(c *builderConfig) {
		c.edgeProps = append(c.edgeProps, p)
	}
}

// WithVertexProperties sets the properties of the vertex built for each
// index. Panics on nil.
func WithVertexProperties(fn func(idx int) []core.Property) BuilderOption {
	if fn == nil {
		panic("builder: WithVertexProperties(nil)")
	}
	return func(c *builderConfig) {
		c.vertexProps = fn
	}
}
