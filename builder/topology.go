// Package: carta/builder
//
// topology.go - deterministic topology constructors.
//
// Every constructor:
//   - validates its size first and returns ErrTooFewVertices before any
//     mutation;
//   - adds vertices cfg.idFn(0..n-1) in ascending order (re-adding an
//     existing vertex is a no-op, so constructors compose);
//   - emits edges in a stable, documented order.

package builder

import (
	"fmt"

	"github.com/katalvlaran/carta/core"
)

// Method tags and minimum sizes.
const (
	MethodPath         = "Path"
	MethodCycle        = "Cycle"
	MethodStar         = "Star"
	MethodWheel        = "Wheel"
	MethodComplete     = "Complete"
	MethodRandomSparse = "RandomSparse"
	MethodGrid         = "Grid"

	MinPathNodes     = 2
	MinCycleNodes    = 3
	MinStarNodes     = 2
	MinWheelNodes    = 4
	MinCompleteNodes = 1
	MinGridDim       = 1
)

// Grid vertex properties.
var (
	RowProperty = core.ID("row")
	ColProperty = core.ID("col")
)

// Path builds P_n: 0 -> 1 -> ... -> n-1.
func Path(n int) Constructor {
	return func(g *core.MemoryGraph, cfg builderConfig) error {
		if n < MinPathNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", MethodPath, n, MinPathNodes, ErrTooFewVertices)
		}
		if err := addVertices(g, cfg, MethodPath, 0, n); err != nil {
			return err
		}
		for i := 1; i < n; i++ {
			if err := addEdge(g, cfg, MethodPath, i-1, i); err != nil {
				return err
			}
		}

		return nil
	}
}

// Cycle builds C_n: the path 0 -> ... -> n-1 closed by n-1 -> 0.
func Cycle(n int) Constructor {
	return func(g *core.MemoryGraph, cfg builderConfig) error {
		if n < MinCycleNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", MethodCycle, n, MinCycleNodes, ErrTooFewVertices)
		}
		if err := addVertices(g, cfg, MethodCycle, 0, n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := addEdge(g, cfg, MethodCycle, i, (i+1)%n); err != nil {
				return err
			}
		}

		return nil
	}
}

// Star builds a hub (index 0) with n-1 leaves; edges run hub -> leaf, so the
// hub is the only root of a directed star.
func Star(n int) Constructor {
	return func(g *core.MemoryGraph, cfg builderConfig) error {
		if n < MinStarNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", MethodStar, n, MinStarNodes, ErrTooFewVertices)
		}
		if err := addVertices(g, cfg, MethodStar, 0, n); err != nil {
			return err
		}
		for i := 1; i < n; i++ {
			if err := addEdge(g, cfg, MethodStar, 0, i); err != nil {
				return err
			}
		}

		return nil
	}
}

// Wheel builds a hub (index 0) joined to every vertex of the rim cycle
// 1 -> 2 -> ... -> n-1 -> 1. Spokes are emitted before rim edges.
func Wheel(n int) Constructor {
	return func(g *core.MemoryGraph, cfg builderConfig) error {
		if n < MinWheelNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", MethodWheel, n, MinWheelNodes, ErrTooFewVertices)
		}
		if err := addVertices(g, cfg, MethodWheel, 0, n); err != nil {
			return err
		}
		for i := 1; i < n; i++ {
			if err := addEdge(g, cfg, MethodWheel, 0, i); err != nil {
				return err
			}
		}
		for i := 1; i < n; i++ {
			next := i + 1
			if next == n {
				next = 1
			}
			if err := addEdge(g, cfg, MethodWheel, i, next); err != nil {
				return err
			}
		}

		return nil
	}
}

// Complete builds K_n without loops. Directed graphs get both i -> j and
// j -> i; undirected graphs one edge per pair (i < j).
func Complete(n int) Constructor {
	return func(g *core.MemoryGraph, cfg builderConfig) error {
		if n < MinCompleteNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", MethodComplete, n, MinCompleteNodes, ErrTooFewVertices)
		}
		if err := addVertices(g, cfg, MethodComplete, 0, n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j || (!cfg.directed && j < i) {
					continue
				}
				if err := addEdge(g, cfg, MethodComplete, i, j); err != nil {
					return err
				}
			}
		}

		return nil
	}
}

// RandomSparse includes every admissible loop-free edge independently with
// probability p. Trials run for i ascending, then j ascending (j > i when
// undirected), so a fixed seed gives a fixed graph.
//
// Errors: ErrTooFewVertices (n < 1), ErrInvalidProbability, ErrNeedRandSource.
func RandomSparse(n int, p float64) Constructor {
	return func(g *core.MemoryGraph, cfg builderConfig) error {
		if n < 1 {
			return fmt.Errorf("%s: n=%d < min=1: %w", MethodRandomSparse, n, ErrTooFewVertices)
		}
		if p < 0 || p > 1 {
			return fmt.Errorf("%s: p=%.6f not in [0,1]: %w", MethodRandomSparse, p, ErrInvalidProbability)
		}
		if cfg.rng == nil {
			return fmt.Errorf("%s: %w", MethodRandomSparse, ErrNeedRandSource)
		}
		if err := addVertices(g, cfg, MethodRandomSparse, 0, n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			j := 0
			if !cfg.directed {
				j = i + 1
			}
			for ; j < n; j++ {
				if i == j || cfg.rng.Float64() >= p {
					continue
				}
				if err := addEdge(g, cfg, MethodRandomSparse, i, j); err != nil {
					return err
				}
			}
		}

		return nil
	}
}

// Grid builds a rows x cols lattice. Vertex r,c has index r*cols+c and
// carries RowProperty and ColProperty. Each cell links to its right then its
// lower neighbour, so a directed grid is acyclic with index 0 as its only
// root.
func Grid(rows, cols int) Constructor {
	return func(g *core.MemoryGraph, cfg builderConfig) error {
		if rows < MinGridDim || cols < MinGridDim {
			return fmt.Errorf("%s: rows=%d, cols=%d (each must be >= %d): %w",
				MethodGrid, rows, cols, MinGridDim, ErrTooFewVertices)
		}
		for r := range rows {
			for c := range cols {
				v := cfg.vertex(r*cols + c)
				v.Properties = core.MergeProperties(v.Properties, []core.Property{
					core.NewProperty(RowProperty, r),
					core.NewProperty(ColProperty, c),
				})
				if _, err := g.AddVertex(v); err != nil {
					return fmt.Errorf("%s: AddVertex(%s): %w: %w", MethodGrid, v.ID, ErrConstructFailed, err)
				}
			}
		}
		for r := range rows {
			for c := range cols {
				u := r*cols + c
				if c+1 < cols {
					if err := addEdge(g, cfg, MethodGrid, u, u+1); err != nil {
						return err
					}
				}
				if r+1 < rows {
					if err := addEdge(g, cfg, MethodGrid, u, u+cols); err != nil {
						return err
					}
				}
			}
		}

		return nil
	}
}

// addVertices inserts cfg.vertex(lo..hi-1).
func addVertices(g *core.MemoryGraph, cfg builderConfig, method string, lo, hi int) error {
	for i := lo; i < hi; i++ {
		v := cfg.vertex(i)
		if _, err := g.AddVertex(v); err != nil {
			return fmt.Errorf("%s: AddVertex(%s): %w: %w", method, v.ID, ErrConstructFailed, err)
		}
	}

	return nil
}

// addEdge inserts the edge between indices u and v.
func addEdge(g *core.MemoryGraph, cfg builderConfig, method string, u, v int) error {
	e := cfg.edge(cfg.idFn(u), cfg.idFn(v))
	if _, err := g.AddEdge(e); err != nil {
		return fmt.Errorf("%s: AddEdge(%s→%s): %w: %w", method, e.Source, e.Target, ErrConstructFailed, err)
	}

	return nil
}
