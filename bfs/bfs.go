// Package bfs provides breadth-first walks over graphs whose neighbours are
// fetched lazily through a capability, returning visit order, depths and
// parent links.
//
// The walk keeps an explicit work queue and a visited set local to the call,
// so it terminates on cyclic graphs and its depth is not bounded by the call
// stack.
package bfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/carta/core"
)

// queueItem pairs a vertex with its BFS depth and its parent's identity.
type queueItem struct {
	v      *core.Vertex
	depth  int
	parent core.Identity
}

// walker encapsulates mutable BFS state for one call.
type walker struct {
	next    NeighbourFunc
	opts    Options
	ctx     context.Context
	queue   []queueItem
	visited core.IdentitySet
	res     *Result
}

// Walk runs breadth-first search from start, following next.
//
// Errors: ErrStartNil, ErrNoNeighbours, ErrOptionViolation, ErrNeighbors
// (wrapping the lookup failure), context errors, or any hook error other
// than ErrStop.
func Walk(ctx context.Context, start *core.Vertex, next NeighbourFunc, opts ...Option) (*Result, error) {
	if start == nil {
		return nil, ErrStartNil
	}
	if next == nil {
		return nil, ErrNoNeighbours
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	w := &walker{
		next:    next,
		opts:    o,
		ctx:     ctx,
		visited: make(core.IdentitySet),
		res: &Result{
			Depth:  make(map[core.Identity]int),
			Parent: make(map[core.Identity]core.Identity),
		},
	}
	w.enqueue(start, 0, core.Identity{})
	err := w.loop()
	if errors.Is(err, ErrStop) {
		w.res.Stopped = true
		err = nil
	}

	return w.res, err
}

// enqueue marks v visited at depth d, records its parent and queues it.
func (w *walker) enqueue(v *core.Vertex, d int, parent core.Identity) {
	w.visited.Add(v.ID)
	w.res.Depth[v.ID] = d
	if !parent.IsZero() {
		w.res.Parent[v.ID] = parent
	}
	w.opts.OnEnqueue(v, d)
	w.queue = append(w.queue, queueItem{v: v, depth: d, parent: parent})
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		item := w.queue[0]
		w.queue = w.queue[1:]

		w.res.Order = append(w.res.Order, item.v)
		if err := w.opts.OnVisit(item.v, item.depth); err != nil {
			if errors.Is(err, ErrStop) {
				return err
			}
			return fmt.Errorf("bfs: OnVisit error at %q: %w", item.v.ID, err)
		}
		if err := w.enqueueNeighbors(item); err != nil {
			return err
		}
	}

	return nil
}

// enqueueNeighbors pulls neighbours lazily, applying filtering and MaxDepth.
func (w *walker) enqueueNeighbors(item queueItem) error {
	nextDepth := item.depth + 1
	if w.opts.MaxDepth > 0 && nextDepth > w.opts.MaxDepth {
		return nil
	}
	for nbr, err := range w.next(w.ctx, item.v.ID) {
		if err != nil {
			return fmt.Errorf("%w: neighbours of %q: %w", ErrNeighbors, item.v.ID, err)
		}
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if w.visited.Has(nbr.ID) || !w.opts.FilterNeighbor(item.v, nbr) {
			continue
		}
		w.enqueue(nbr, nextDepth, item.v.ID)
	}

	return nil
}
