// Package: carta/builder
//
// api.go - public entry point for the builder package.
//
// Design contract:
//   - One orchestrator: BuildGraph(id, gopts, bopts, cons...). Creates the
//     graph, resolves the config, runs cons in order.
//   - Functional options (BuilderOption) resolve into an immutable
//     builderConfig (no global state).
//   - Determinism: same inputs, options, seed and constructor order give
//     identical graphs.
//   - Constructors never panic; they return sentinel errors.

package builder

import (
	"fmt"

	"github.com/katalvlaran/carta/core"
)

// Constructor applies a deterministic mutation to g using the resolved
// builderConfig. Constructors validate parameters before touching g.
type Constructor func(g *core.MemoryGraph, cfg builderConfig) error

// BuildGraph creates a MemoryGraph named id with options gopts, resolves the
// builder configuration from bopts, and applies all constructors in order.
// The first constructor error is wrapped with "BuildGraph: %w" and returned.
//
// Errors:
//   - ErrConstructFailed for a nil constructor.
//   - Any sentinel returned by a constructor (ErrTooFewVertices, ...).
func BuildGraph(id core.Identity, gopts []core.MemoryOption, bopts []BuilderOption, cons ...Constructor) (*core.MemoryGraph, error) {
	g := core.NewMemoryGraph(id, gopts...)
	cfg := newBuilderConfig(bopts...)

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("BuildGraph: nil constructor at index %d: %w", i, ErrConstructFailed)
		}
		if err := fn(g, cfg); err != nil {
			return nil, fmt.Errorf("BuildGraph: %w", err)
		}
	}

	return g, nil
}
