// Package dfs implements lazy depth-first traversal from a set of roots over
// neighbours fetched through graph capabilities.
package dfs

import (
	"context"
	"iter"
	"math"

	"github.com/katalvlaran/carta/core"
)

// frame is one entry of the explicit traversal stack.
type frame struct {
	id    core.Identity
	v     *core.Vertex // nil when this frame must not emit
	depth int          // remaining depth, -1 unbounded
	next  func() (*core.Vertex, error, bool)
	stop  func()
}

// traversal holds the state of one Traverse call.
type traversal struct {
	ctx     context.Context
	opts    Options
	fetch   FetchFunc
	nbrs    NeighbourFunc
	stack   []frame
	claimed core.IdentitySet       // emitted, or excluded as a root
	reached map[core.Identity]int // best remaining depth each vertex was expanded with
}

// Traverse lazily walks from roots following nbrs and yields each reached
// vertex exactly once, in the configured order.
//
// Implementation:
//   - Stage 1: Without IncludeRoots every root is claimed up front and never
//     emitted. With it, a root is fetched and emitted unless an earlier root
//     already reached it.
//   - Stage 2: Expand with an explicit stack of frames. Each frame pulls its
//     neighbours lazily (iter.Pull2), so nothing is fetched that the consumer
//     does not reach.
//   - Stage 3: A vertex already claimed is never emitted again. It is
//     re-expanded only when reached with more remaining depth than before,
//     so a depth bound holds for every root and cycles terminate.
//
// Errors:
//   - ErrNoNeighbours / ErrNoFetch for missing functions.
//   - The first lookup or context error, yielded once as the last element.
//
// Complexity: O(V + E) lookups for unbounded depth; state is O(V) and local
// to the call.
func Traverse(ctx context.Context, roots []core.Identity, fetch FetchFunc, nbrs NeighbourFunc, opts ...Option) core.VertexSeq {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(*core.Vertex, error) bool) {
		if nbrs == nil {
			yield(nil, ErrNoNeighbours)
			return
		}
		if fetch == nil && o.IncludeRoots {
			yield(nil, ErrNoFetch)
			return
		}
		t := &traversal{
			ctx:     ctx,
			opts:    o,
			fetch:   fetch,
			nbrs:    nbrs,
			claimed: make(core.IdentitySet),
			reached: make(map[core.Identity]int),
		}
		defer t.release()
		t.run(roots, yield)
	}
}

func (t *traversal) run(roots []core.Identity, yield func(*core.Vertex, error) bool) {
	if !t.opts.IncludeRoots {
		for _, root := range roots {
			t.claimed.Add(root)
		}
	}
	for _, root := range roots {
		if err := t.ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		fresh := t.opts.IncludeRoots && t.claimed.Add(root)
		if !fresh && !t.needsExpansion(root, t.opts.MaxDepth) {
			continue
		}
		var v *core.Vertex
		if fresh {
			got, found, err := t.fetch(t.ctx, root)
			if err != nil {
				yield(nil, err)
				return
			}
			if found {
				v = got
			}
		}
		if !t.push(root, v, t.opts.MaxDepth, yield) {
			return
		}
		if !t.drain(yield) {
			return
		}
	}
}

// drain processes the stack until it is empty. It reports false when the
// traversal must end (consumer stopped or an error was yielded).
func (t *traversal) drain(yield func(*core.Vertex, error) bool) bool {
	for len(t.stack) > 0 {
		if err := t.ctx.Err(); err != nil {
			yield(nil, err)
			return false
		}
		top := &t.stack[len(t.stack)-1]
		if top.next != nil {
			nbr, err, ok := top.next()
			if err != nil {
				yield(nil, err)
				return false
			}
			if ok {
				childDepth := top.depth - 1
				if top.depth < 0 {
					childDepth = -1
				}
				fresh := t.claimed.Add(nbr.ID)
				if !fresh && !t.needsExpansion(nbr.ID, childDepth) {
					continue
				}
				var emit *core.Vertex
				if fresh {
					emit = nbr
				}
				if !t.push(nbr.ID, emit, childDepth, yield) {
					return false
				}
				continue
			}
			top.stop()
			top.next, top.stop = nil, nil
		}

		done := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		if done.v != nil && t.opts.Order == Postorder {
			if !yield(done.v, nil) {
				return false
			}
		}
	}

	return true
}

// push emits v in preorder and opens a frame, expanding id when depth allows.
func (t *traversal) push(id core.Identity, v *core.Vertex, depth int, yield func(*core.Vertex, error) bool) bool {
	if v != nil && t.opts.Order == Preorder {
		if !yield(v, nil) {
			return false
		}
	}
	f := frame{id: id, v: v, depth: depth}
	if t.needsExpansion(id, depth) {
		t.reached[id] = remaining(depth)
		f.next, f.stop = iter.Pull2(t.nbrs(t.ctx, id))
	}
	t.stack = append(t.stack, f)

	return true
}

// needsExpansion reports whether id has neighbours left to explore at depth.
func (t *traversal) needsExpansion(id core.Identity, depth int) bool {
	if depth == 0 {
		return false
	}
	prev, ok := t.reached[id]

	return !ok || prev < remaining(depth)
}

// release stops every neighbour iterator still open.
func (t *traversal) release() {
	for _, f := range t.stack {
		if f.stop != nil {
			f.stop()
		}
	}
	t.stack = nil
}

func remaining(depth int) int {
	if depth < 0 {
		return math.MaxInt
	}

	return depth
}
