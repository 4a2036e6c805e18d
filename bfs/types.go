// Package bfs provides tunable options and error definitions
// for breadth-first walks over capability-backed graphs.
package bfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/carta/core"
)

// Sentinel errors for BFS execution.
var (
	// ErrStartNil is returned when the start vertex is nil.
	ErrStartNil = errors.New("bfs: start vertex is nil")

	// ErrNoNeighbours is returned when no neighbour function is supplied.
	ErrNoNeighbours = errors.New("bfs: neighbour function is nil")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("bfs: invalid option supplied")

	// ErrNeighbors wraps failures of the neighbour lookup.
	ErrNeighbors = errors.New("bfs: neighbor iteration error")

	// ErrStop may be returned by OnVisit to end the walk early without error.
	ErrStop = errors.New("bfs: stop")
)

// NeighbourFunc lazily yields the vertices adjacent to id in the walk direction.
type NeighbourFunc func(ctx context.Context, id core.Identity) core.VertexSeq

// Children walks out-edges through g's DynamicOutLookup.
func Children(g core.Graph) (NeighbourFunc, bool) {
	out, ok := core.DynamicOut(g)
	if !ok {
		return nil, false
	}

	return out.ChildVertices, true
}

// Parents walks in-edges through g's DynamicInLookup.
func Parents(g core.Graph) (NeighbourFunc, bool) {
	in, ok := core.DynamicIn(g)
	if !ok {
		return nil, false
	}

	return in.ParentVertices, true
}

// Option configures BFS behavior via functional arguments.
// An invalid Option is recorded and surfaced as ErrOptionViolation by Walk.
type Option func(*Options)

// Options holds parameters and callbacks to customize a walk.
type Options struct {
	// OnEnqueue is called when a vertex is enqueued.
	OnEnqueue func(v *core.Vertex, depth int)

	// OnVisit is called when a vertex is dequeued. Returning ErrStop ends the
	// walk successfully; any other error aborts it.
	OnVisit func(v *core.Vertex, depth int) error

	// MaxDepth, if > 0, stops exploring beyond this depth.
	// A value of 0 disables any depth limit.
	MaxDepth int

	// FilterNeighbor skips a neighbour when it returns false.
	FilterNeighbor func(curr, neighbor *core.Vertex) bool

	err error
}

// DefaultOptions returns Options with no depth limit, no filtering and no-op hooks.
func DefaultOptions() Options {
	return Options{
		OnEnqueue:      func(*core.Vertex, int) {},
		OnVisit:        func(*core.Vertex, int) error { return nil },
		FilterNeighbor: func(_, _ *core.Vertex) bool { return true },
	}
}

// WithOnEnqueue registers a callback to run on enqueue.
func WithOnEnqueue(fn func(v *core.Vertex, depth int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnEnqueue = fn
		}
	}
}

// WithOnVisit registers a callback to run on visit.
func WithOnVisit(fn func(v *core.Vertex, depth int) error) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnVisit = fn
		}
	}
}

// WithMaxDepth stops the walk at the given depth (inclusive).
//
//	d > 0: limit to depth d
//	d == 0: no depth limit
//	d < 0: ErrOptionViolation
func WithMaxDepth(d int) Option {
	return func(o *Options) {
		if d < 0 {
			o.err = fmt.Errorf("%w: MaxDepth cannot be negative (%d)", ErrOptionViolation, d)
			return
		}
		o.MaxDepth = d
	}
}

// WithFilterNeighbor skips neighbours when fn returns false.
func WithFilterNeighbor(fn func(curr, neighbor *core.Vertex) bool) Option {
	return func(o *Options) {
		if fn != nil {
			o.FilterNeighbor = fn
		}
	}
}

// Result holds the outcome of a walk:
//   - Order: vertices visited, in visit sequence.
//   - Depth: distance (in edges) from the start.
//   - Parent: predecessor in the BFS tree.
//   - Stopped: true if OnVisit ended the walk with ErrStop.
type Result struct {
	Order   []*core.Vertex
	Depth   map[core.Identity]int
	Parent  map[core.Identity]core.Identity
	Stopped bool
}

// PathTo reconstructs the path from the start vertex to dest.
func (r *Result) PathTo(dest core.Identity) ([]core.Identity, error) {
	if _, ok := r.Depth[dest]; !ok {
		return nil, fmt.Errorf("bfs: no path to %q", dest)
	}
	path := []core.Identity{}
	for cur := dest; ; {
		path = append(path, cur)
		prev, ok := r.Parent[cur]
		if !ok {
			break
		}
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}
