// Package: carta/builder
//
// config.go - internal configuration and deterministic defaults.
//
// Deterministic defaults:
//   - idFn       = DefaultIDFn ("0","1","2",...)
//   - directed   = true
//   - rng        = nil (pure unless seeded)
//   - weightFn   = nil (edges carry no weight property)

package builder

import (
	"math/rand"

	"github.com/katalvlaran/carta/core"
)

// WeightProperty is the edge property written when a weight function is set.
var WeightProperty = core.ID("weight")

// builderConfig aggregates all knobs used by constructors.
// It is passed by value to constructors.
type builderConfig struct {
	// Vertex ID strategy: index -> ID.
	idFn IDFn
	// Directed edges unless false.
	directed bool
	// RNG for stochastic choices; nil means no randomness.
	rng *rand.Rand
	// Edge weight generator; nil means unweighted.
	weightFn func(*rand.Rand) float64
	// Constant properties attached to every emitted edge.
	edgeProps []core.Property
	// Per-index vertex properties; nil means none.
	vertexProps func(idx int) []core.Property
}

// newBuilderConfig applies opts in order over the defaults (later wins).
func newBuilderConfig(opts ...BuilderOption) builderConfig {
	cfg := builderConfig{
		idFn:     DefaultIDFn,
		directed: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// vertex builds the vertex for index idx.
func (c builderConfig) vertex(idx int) *core.Vertex {
	id := core.ID(c.idFn(idx))
	if c.vertexProps == nil {
		return core.NewVertex(id)
	}

	return core.NewVertex(id, c.vertexProps(idx)...)
}

// edge builds the edge u -> v with the configured direction and properties.
func (c builderConfig) edge(u, v string) core.Edge {
	props := make([]core.Property, 0, len(c.edgeProps)+1)
	for _, p := range c.edgeProps {
		props = append(props, p.Clone())
	}
	if c.weightFn != nil {
		props = append(props, core.NewProperty(WeightProperty, c.weightFn(c.rng)))
	}
	if len(props) == 0 {
		props = nil
	}
	if c.directed {
		return core.NewEdge(core.ID(u), core.ID(v), props...)
	}

	return core.NewUndirectedEdge(core.ID(u), core.ID(v), props...)
}
