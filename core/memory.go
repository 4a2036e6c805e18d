// File: memory.go
// Role: MemoryGraph, the in-memory graph offering every capability.
//
// Determinism:
//   - Vertices are kept in a B-tree ordered by identity; Vertices() and Roots()
//     enumerate in ascending identity order.
//   - Edge lists on returned vertices are sorted by edge identity.
//
// Concurrency:
//   - muVert guards the vertex tree; muEdgeAdj guards the edge catalog and the
//     in/out adjacency indexes. Lock order is muVert -> muEdgeAdj.
//   - Enumeration works on a copy-on-write snapshot of the tree, so consumers
//     may mutate the graph while ranging without deadlocking.
package core

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tidwall/btree"
)

// MemoryOption configures a MemoryGraph before first use.
type MemoryOption func(*MemoryGraph)

// WithGraphProperties attaches graph-level properties.
func WithGraphProperties(props ...Property) MemoryOption {
	return func(g *MemoryGraph) { g.props = MergeProperties(props) }
}

// WithoutCapability hides capabilities from negotiation. Useful to model a
// source that only supports part of the contract.
func WithoutCapability(kinds ...Capability) MemoryOption {
	return func(g *MemoryGraph) { g.hidden = append(g.hidden, kinds...) }
}

// MemoryGraph is a finite, dynamic, thread-safe graph held in memory.
//
// Storage:
//
//	vertices            B-tree of *Vertex ordered by ID (edge lists empty)
//	edges[edgeID]       Edge
//	outIdx[src][edgeID] Edge  (undirected edges are indexed under both endpoints)
//	inIdx[tgt][edgeID]  Edge
type MemoryGraph struct {
	base

	muVert    sync.RWMutex
	muEdgeAdj sync.RWMutex

	vertices *btree.BTreeG[*Vertex]
	edges    map[Identity]Edge
	outIdx   map[Identity]map[Identity]Edge
	inIdx    map[Identity]map[Identity]Edge

	hidden []Capability
}

func vertexLess(a, b *Vertex) bool { return a.ID.Less(b.ID) }

// NewMemoryGraph creates an empty graph named id.
// Complexity: O(1).
func NewMemoryGraph(id Identity, opts ...MemoryOption) *MemoryGraph {
	g := &MemoryGraph{
		vertices: btree.NewBTreeG[*Vertex](vertexLess),
		edges:    make(map[Identity]Edge),
		outIdx:   make(map[Identity]map[Identity]Edge),
		inIdx:    make(map[Identity]map[Identity]Edge),
	}
	g.id = id
	g.attrs = Attributes{Finite: true, Dynamic: true}
	for _, opt := range opts {
		opt(g)
	}
	g.caps = Discover(g).Without(g.hidden...)

	return g
}

// AddVertex inserts v if no vertex with its identity exists.
//
// Implementation:
//   - Stage 1: Reject nil and empty identities.
//   - Stage 2: Under muVert, insert a copy with edge lists stripped; edges are
//     owned by the adjacency indexes.
//
// Returns:
//   - bool: true if inserted, false if the identity was already present.
//
// Errors:
//   - ErrEmptyIdentity for a nil vertex or an empty identity.
func (g *MemoryGraph) AddVertex(v *Vertex) (bool, error) {
	if v == nil || v.ID.IsZero() {
		return false, ErrEmptyIdentity
	}
	stored := v.Clone()
	stored.Properties = MergeProperties(stored.Properties)
	stored.InEdges, stored.OutEdges = nil, nil

	g.muVert.Lock()
	defer g.muVert.Unlock()
	if _, ok := g.vertices.Get(stored); ok {
		return false, nil
	}
	g.vertices.Set(stored)

	return true, nil
}

// AddVertices inserts every vertex, stopping at the first error.
func (g *MemoryGraph) AddVertices(vs ...*Vertex) error {
	for _, v := range vs {
		if _, err := g.AddVertex(v); err != nil {
			return err
		}
	}

	return nil
}

// HasVertex reports whether id is present.
func (g *MemoryGraph) HasVertex(id Identity) bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	_, ok := g.vertices.Get(&Vertex{ID: id})

	return ok
}

// RemoveVertex deletes id and every edge incident to it.
// Errors: ErrVertexNotFound.
func (g *MemoryGraph) RemoveVertex(id Identity) error {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	if _, ok := g.vertices.Delete(&Vertex{ID: id}); !ok {
		return fmt.Errorf("%w: %q", ErrVertexNotFound, id)
	}

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	for eid, e := range g.edges {
		if e.Touches(id) {
			g.unindexEdge(eid, e)
		}
	}
	delete(g.outIdx, id)
	delete(g.inIdx, id)

	return nil
}

// AddEdge inserts e, creating missing endpoint vertices. An edge with an
// empty identity gets the default "source::target" identity. Re-adding an
// identity replaces the previous edge.
// Errors: ErrEmptyIdentity if an endpoint is empty.
func (g *MemoryGraph) AddEdge(e Edge) (Identity, error) {
	if e.Source.IsZero() || e.Target.IsZero() {
		return Identity{}, fmt.Errorf("%w: edge endpoint", ErrEmptyIdentity)
	}
	if e.ID.IsZero() {
		e.ID = CompoundID(e.Source, e.Target)
	}
	for _, end := range []Identity{e.Source, e.Target} {
		if _, err := g.AddVertex(NewVertex(end)); err != nil {
			return Identity{}, err
		}
	}

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	if old, ok := g.edges[e.ID]; ok {
		g.unindexEdge(old.ID, old)
	}
	g.edges[e.ID] = e
	index(g.outIdx, e.Source, e)
	index(g.inIdx, e.Target, e)
	if !e.Directed {
		index(g.outIdx, e.Target, e)
		index(g.inIdx, e.Source, e)
	}

	return e.ID, nil
}

// AddEdges inserts every edge, stopping at the first error.
func (g *MemoryGraph) AddEdges(es ...Edge) error {
	for _, e := range es {
		if _, err := g.AddEdge(e); err != nil {
			return err
		}
	}

	return nil
}

// RemoveEdge deletes the edge with identity id.
// Errors: ErrEdgeNotFound.
func (g *MemoryGraph) RemoveEdge(id Identity) error {
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrEdgeNotFound, id)
	}
	g.unindexEdge(id, e)

	return nil
}

// Clear removes every vertex and edge.
func (g *MemoryGraph) Clear() {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	g.vertices.Clear()
	g.edges = make(map[Identity]Edge)
	g.outIdx = make(map[Identity]map[Identity]Edge)
	g.inIdx = make(map[Identity]map[Identity]Edge)
}

// VertexCount returns the number of vertices.
func (g *MemoryGraph) VertexCount() int {
	g.muVert.RLock()
	defer g.muVert.RUnlock()

	return g.vertices.Len()
}

// EdgeCount returns the number of edges.
func (g *MemoryGraph) EdgeCount() int {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	return len(g.edges)
}

// EdgeList returns every edge sorted by identity.
func (g *MemoryGraph) EdgeList() []Edge {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sortEdges(out)

	return out
}

// Vertices enumerates every vertex with its edges, in identity order.
func (g *MemoryGraph) Vertices(ctx context.Context) VertexSeq {
	return func(yield func(*Vertex, error) bool) {
		g.muVert.RLock()
		snapshot := g.vertices.Copy()
		g.muVert.RUnlock()

		snapshot.Scan(func(stored *Vertex) bool {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return false
			}

			return yield(g.withEdges(stored), nil)
		})
	}
}

// Vertex returns the vertex id with both edge lists populated.
func (g *MemoryGraph) Vertex(ctx context.Context, id Identity) (*Vertex, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	stored, ok := g.lookup(id)
	if !ok {
		return nil, false, nil
	}

	return g.withEdges(stored), true, nil
}

// InVertex is Vertex; a MemoryGraph always returns full vertices.
func (g *MemoryGraph) InVertex(ctx context.Context, id Identity) (*Vertex, bool, error) {
	return g.Vertex(ctx, id)
}

// OutVertex is Vertex; a MemoryGraph always returns full vertices.
func (g *MemoryGraph) OutVertex(ctx context.Context, id Identity) (*Vertex, bool, error) {
	return g.Vertex(ctx, id)
}

// ParentVertices yields the distinct source vertices of id's in-edges.
func (g *MemoryGraph) ParentVertices(ctx context.Context, id Identity) VertexSeq {
	return g.neighbours(ctx, id, g.inIdx)
}

// ChildVertices yields the distinct target vertices of id's out-edges.
func (g *MemoryGraph) ChildVertices(ctx context.Context, id Identity) VertexSeq {
	return g.neighbours(ctx, id, g.outIdx)
}

// Roots yields the identities of vertices without in-edges, in identity order.
func (g *MemoryGraph) Roots(ctx context.Context) IdentitySeq {
	return func(yield func(Identity, error) bool) {
		g.muVert.RLock()
		snapshot := g.vertices.Copy()
		g.muVert.RUnlock()

		snapshot.Scan(func(stored *Vertex) bool {
			if err := ctx.Err(); err != nil {
				yield(Identity{}, err)
				return false
			}
			g.muEdgeAdj.RLock()
			in := len(g.inIdx[stored.ID])
			g.muEdgeAdj.RUnlock()
			if in > 0 {
				return true
			}

			return yield(stored.ID, nil)
		})
	}
}

func (g *MemoryGraph) neighbours(ctx context.Context, id Identity, idx map[Identity]map[Identity]Edge) VertexSeq {
	return func(yield func(*Vertex, error) bool) {
		g.muEdgeAdj.RLock()
		edges := edgeSlice(idx[id])
		g.muEdgeAdj.RUnlock()

		seen := make(IdentitySet, len(edges))
		for _, e := range edges {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			other := e.Other(id)
			if !seen.Add(other) {
				continue
			}
			stored, ok := g.lookup(other)
			if !ok {
				continue
			}
			if !yield(g.withEdges(stored), nil) {
				return
			}
		}
	}
}

func (g *MemoryGraph) lookup(id Identity) (*Vertex, bool) {
	g.muVert.RLock()
	defer g.muVert.RUnlock()

	return g.vertices.Get(&Vertex{ID: id})
}

// withEdges returns a copy of stored carrying its sorted in/out edges.
func (g *MemoryGraph) withEdges(stored *Vertex) *Vertex {
	v := stored.Clone()
	g.muEdgeAdj.RLock()
	v.InEdges = edgeSlice(g.inIdx[v.ID])
	v.OutEdges = edgeSlice(g.outIdx[v.ID])
	g.muEdgeAdj.RUnlock()

	return v
}

// unindexEdge removes e from the catalog and indexes. Caller holds muEdgeAdj.
func (g *MemoryGraph) unindexEdge(id Identity, e Edge) {
	delete(g.edges, id)
	for _, end := range []Identity{e.Source, e.Target} {
		delete(g.outIdx[end], id)
		delete(g.inIdx[end], id)
	}
}

func index(idx map[Identity]map[Identity]Edge, key Identity, e Edge) {
	bucket, ok := idx[key]
	if !ok {
		bucket = make(map[Identity]Edge)
		idx[key] = bucket
	}
	bucket[e.ID] = e
}

func edgeSlice(bucket map[Identity]Edge) []Edge {
	out := make([]Edge, 0, len(bucket))
	for _, e := range bucket {
		out = append(out, e)
	}
	sortEdges(out)

	return out
}

func sortEdges(es []Edge) {
	slices.SortFunc(es, func(a, b Edge) int { return a.ID.Compare(b.ID) })
}
