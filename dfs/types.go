// Package dfs defines types and options for depth-first traversal,
// including emission order, depth limiting and root handling.
package dfs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/carta/core"
)

var (
	// ErrNoNeighbours is returned when no neighbour function is supplied.
	ErrNoNeighbours = errors.New("dfs: neighbour function is nil")

	// ErrNoFetch is returned when roots must be emitted but no fetch function
	// is supplied.
	ErrNoFetch = errors.New("dfs: fetch function is nil")

	// ErrUnknownOrder is returned by ParseOrder for an unrecognised name.
	ErrUnknownOrder = errors.New("dfs: unknown traversal order")
)

// Order selects when a vertex is emitted relative to its neighbours.
type Order int

const (
	// Preorder emits a vertex before the vertices reached from it.
	Preorder Order = iota
	// Postorder emits a vertex after the vertices reached from it.
	Postorder
)

// String returns "preorder" or "postorder".
func (o Order) String() string {
	switch o {
	case Preorder:
		return "preorder"
	case Postorder:
		return "postorder"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// ParseOrder maps a case-insensitive name to an Order. The empty string is Preorder.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preorder", "pre":
		return Preorder, nil
	case "postorder", "post":
		return Postorder, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOrder, s)
	}
}

// FetchFunc resolves one vertex; found=false means absent.
type FetchFunc func(ctx context.Context, id core.Identity) (v *core.Vertex, found bool, err error)

// NeighbourFunc lazily yields the vertices adjacent to id in the walk direction.
type NeighbourFunc func(ctx context.Context, id core.Identity) core.VertexSeq

// Option configures optional behavior of a traversal.
type Option func(*Options)

// Options holds configurable parameters for a traversal.
type Options struct {
	// Order chooses pre- or post-order emission. Default Preorder.
	Order Order

	// MaxDepth, if non-negative, limits how many edges away from a root the
	// traversal goes. 0 visits only the roots. Default -1 (no limit).
	MaxDepth int

	// IncludeRoots emits the root vertices themselves. Default false.
	IncludeRoots bool
}

// DefaultOptions returns Options with Preorder, no depth limit and roots excluded.
func DefaultOptions() Options {
	return Options{Order: Preorder, MaxDepth: -1}
}

// WithOrder sets the emission order.
func WithOrder(o Order) Option {
	return func(opts *Options) { opts.Order = o }
}

// WithMaxDepth limits traversal depth. A negative limit means unbounded.
func WithMaxDepth(limit int) Option {
	return func(opts *Options) { opts.MaxDepth = limit }
}

// WithDepth limits traversal depth when depth is non-nil.
func WithDepth(depth *int) Option {
	return func(opts *Options) {
		if depth == nil {
			opts.MaxDepth = -1
			return
		}
		opts.MaxDepth = *depth
	}
}

// WithIncludeRoots controls whether root vertices are emitted.
func WithIncludeRoots(include bool) Option {
	return func(opts *Options) { opts.IncludeRoots = include }
}
