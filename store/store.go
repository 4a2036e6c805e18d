// Package store persists graphs in badger and serves them back through every
// capability: EntireGraph, DynamicGraph, DynamicInGraph, DynamicOutGraph and
// RootedGraph.
//
// Vertices and edges are stored as JSON documents (see codec.go for the key
// layout). Enumeration follows badger's key order, so vertices come out in
// identity order and edge lists are sorted by edge identity, matching
// core.MemoryGraph.
//
// A sequence returned by Vertices, Roots, ParentVertices or ChildVertices
// holds one read transaction open while it is being ranged over. Writes made
// during the range are not visible to it.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/katalvlaran/carta/core"
)

// ErrClosed is returned by every operation on a closed Graph.
var ErrClosed = errors.New("store: graph is closed")

// Graph is a finite, dynamic graph persisted in badger. Safe for concurrent use.
type Graph struct {
	db     *badger.DB
	id     core.Identity
	path   string
	logger *slog.Logger
	caps   core.Capabilities

	closed atomic.Bool
	stopGC chan struct{}
	gcWG   sync.WaitGroup
}

// Open opens (or creates) the database described by cfg.
//
// Errors: a configuration error, a failure to create cfg.Path, or the error
// returned by badger.Open.
func Open(cfg Config) (*Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(max(cfg.NumVersionsToKeep, 1))
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := cfg.ID
	if id.IsZero() {
		id = core.ID("store")
	}
	g := &Graph{
		db:     db,
		id:     id,
		path:   cfg.Path,
		logger: logger.With("graph", id.String()),
		stopGC: make(chan struct{}),
	}
	g.caps = core.Discover(g)

	if !cfg.InMemory && cfg.GCInterval > 0 {
		g.gcWG.Add(1)
		go g.collect(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	g.logger.Debug("store opened", "path", cfg.Path, "in_memory", cfg.InMemory)

	return g, nil
}

// Close stops garbage collection and closes the database.
// A second Close returns ErrClosed.
func (g *Graph) Close() error {
	if g.closed.Swap(true) {
		return ErrClosed
	}
	close(g.stopGC)
	g.gcWG.Wait()
	if err := g.db.Close(); err != nil {
		return fmt.Errorf("store: close badger: %w", err)
	}
	g.logger.Debug("store closed")

	return nil
}

// collect runs value-log GC every interval until Close.
func (g *Graph) collect(interval time.Duration, ratio float64) {
	defer g.gcWG.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-g.stopGC:
			return
		case <-ticker.C:
			for {
				err := g.db.RunValueLogGC(ratio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					g.logger.Warn("value log gc failed", "error", err)
				}
				break
			}
		}
	}
}

func (g *Graph) ID() core.Identity           { return g.id }
func (g *Graph) Properties() []core.Property { return nil }

func (g *Graph) Provide(c core.Capability) (any, bool) { return g.caps.Provide(c) }

// Attributes reports a finite, dynamic graph.
func (g *Graph) Attributes() core.Attributes {
	return core.Attributes{Finite: true, Dynamic: true}
}

// Path returns the database directory, empty for in-memory graphs.
func (g *Graph) Path() string { return g.path }

// PutVertex writes v's document, replacing any earlier one with the same
// identity. Edge lists on v are ignored; edges are written with PutEdge.
// Errors: core.ErrEmptyIdentity, ErrClosed, or a badger write error.
func (g *Graph) PutVertex(ctx context.Context, v *core.Vertex) error {
	if v == nil || v.ID.IsZero() {
		return core.ErrEmptyIdentity
	}
	data, err := encodeVertex(v)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	return g.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(vertexKey(v.ID), data)
	})
}

// PutEdge writes e, creating empty documents for missing endpoints. An empty
// edge identity defaults to "source::target". Writing an existing identity
// replaces the previous edge and its adjacency entries.
// Errors: core.ErrEmptyIdentity, ErrClosed, or a badger write error.
func (g *Graph) PutEdge(ctx context.Context, e core.Edge) (core.Identity, error) {
	if e.Source.IsZero() || e.Target.IsZero() {
		return core.Identity{}, fmt.Errorf("%w: edge endpoint", core.ErrEmptyIdentity)
	}
	if e.ID.IsZero() {
		e.ID = core.CompoundID(e.Source, e.Target)
	}
	data, err := encodeEdge(e)
	if err != nil {
		return core.Identity{}, fmt.Errorf("store: %w", err)
	}

	err = g.update(ctx, func(txn *badger.Txn) error {
		for _, end := range []core.Identity{e.Source, e.Target} {
			if err := ensureVertex(txn, end); err != nil {
				return err
			}
		}
		if err := unindexEdge(txn, e.ID); err != nil {
			return err
		}
		keys := [][]byte{edgeKey(e.ID), outKey(e.Source, e.ID), inKey(e.Target, e.ID)}
		if !e.Directed {
			keys = append(keys, outKey(e.Target, e.ID), inKey(e.Source, e.ID))
		}
		for _, k := range keys {
			if err := txn.Set(k, data); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return core.Identity{}, err
	}

	return e.ID, nil
}

// Import copies every vertex and edge of src into the store and returns the
// number of vertices written. Edges are written after all vertices, once per
// edge identity.
// Errors: core.ErrNotFinite or core.ErrUnsupportedCapability when src cannot
// be enumerated, plus any read or write failure.
func (g *Graph) Import(ctx context.Context, src core.Graph) (int, error) {
	seq, err := core.EntireVertices(ctx, src)
	if err != nil {
		return 0, err
	}

	var (
		n     int
		edges []core.Edge
		seen  = make(core.IdentitySet)
	)
	for v, err := range seq {
		if err != nil {
			return n, err
		}
		if err := g.PutVertex(ctx, v); err != nil {
			return n, err
		}
		n++
		for _, e := range v.Edges() {
			if seen.Add(e.ID) {
				edges = append(edges, e)
			}
		}
	}
	for _, e := range edges {
		if _, err := g.PutEdge(ctx, e); err != nil {
			return n, err
		}
	}
	g.logger.Info("graph imported", "source", src.ID().String(), "vertices", n, "edges", len(edges))

	return n, nil
}

// Count returns the number of stored vertices.
func (g *Graph) Count(ctx context.Context) (int, error) {
	n := 0
	err := g.view(ctx, func(txn *badger.Txn) error {
		return scanKeys(txn, []byte(prefixVertex), func([]byte) (bool, error) {
			n++
			return true, nil
		})
	})

	return n, err
}

// Vertices enumerates every vertex with its edges, in identity order.
func (g *Graph) Vertices(ctx context.Context) core.VertexSeq {
	return g.stream(ctx, func(txn *badger.Txn, yield func(*core.Vertex) bool) error {
		return scanKeys(txn, []byte(prefixVertex), func(key []byte) (bool, error) {
			v, _, err := readVertex(txn, core.ID(string(key[len(prefixVertex):])))
			if err != nil {
				return false, err
			}

			return yield(v), nil
		})
	})
}

// Vertex returns the vertex id with both edge lists populated.
func (g *Graph) Vertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	var (
		v     *core.Vertex
		found bool
	)
	err := g.view(ctx, func(txn *badger.Txn) error {
		var err error
		v, found, err = readVertex(txn, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return v, found, nil
}

// InVertex is Vertex; stored vertices are always complete.
func (g *Graph) InVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return g.Vertex(ctx, id)
}

// OutVertex is Vertex; stored vertices are always complete.
func (g *Graph) OutVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return g.Vertex(ctx, id)
}

// ParentVertices yields the distinct source vertices of id's in-edges.
func (g *Graph) ParentVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return g.neighbours(ctx, id, inPrefix(id))
}

// ChildVertices yields the distinct target vertices of id's out-edges.
func (g *Graph) ChildVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return g.neighbours(ctx, id, outPrefix(id))
}

// Roots yields the identities of vertices without in-edges, in identity order.
func (g *Graph) Roots(ctx context.Context) core.IdentitySeq {
	return func(yield func(core.Identity, error) bool) {
		stopped := false
		err := g.view(ctx, func(txn *badger.Txn) error {
			return scanKeys(txn, []byte(prefixVertex), func(key []byte) (bool, error) {
				if err := ctx.Err(); err != nil {
					return false, err
				}
				id := core.ID(string(key[len(prefixVertex):]))
				if hasPrefix(txn, inPrefix(id)) {
					return true, nil
				}
				if !yield(id, nil) {
					stopped = true
					return false, nil
				}

				return true, nil
			})
		})
		if err != nil && !stopped {
			yield(core.Identity{}, err)
		}
	}
}

func (g *Graph) neighbours(ctx context.Context, id core.Identity, prefix []byte) core.VertexSeq {
	return g.stream(ctx, func(txn *badger.Txn, yield func(*core.Vertex) bool) error {
		edges, err := scanEdges(txn, prefix)
		if err != nil {
			return err
		}
		seen := make(core.IdentitySet, len(edges))
		for _, e := range edges {
			if err := ctx.Err(); err != nil {
				return err
			}
			other := e.Other(id)
			if !seen.Add(other) {
				continue
			}
			v, found, err := readVertex(txn, other)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			if !yield(v) {
				return nil
			}
		}

		return nil
	})
}

// stream adapts a transaction body to a VertexSeq. The body stops producing
// once yield returns false; a failure is yielded once afterwards.
func (g *Graph) stream(ctx context.Context, body func(*badger.Txn, func(*core.Vertex) bool) error) core.VertexSeq {
	return func(yield func(*core.Vertex, error) bool) {
		stopped := false
		err := g.view(ctx, func(txn *badger.Txn) error {
			return body(txn, func(v *core.Vertex) bool {
				if err := ctx.Err(); err != nil {
					return false
				}
				if !yield(v, nil) {
					stopped = true
					return false
				}

				return true
			})
		})
		if err == nil && !stopped {
			err = ctx.Err()
		}
		if err != nil && !stopped {
			yield(nil, err)
		}
	}
}

func (g *Graph) view(ctx context.Context, fn func(*badger.Txn) error) error {
	if g.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return g.db.View(fn)
}

func (g *Graph) update(ctx context.Context, fn func(*badger.Txn) error) error {
	if g.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return g.db.Update(fn)
}

// readVertex loads the vertex document and its adjacency.
func readVertex(txn *badger.Txn, id core.Identity) (*core.Vertex, bool, error) {
	item, err := txn.Get(vertexKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v *core.Vertex
	if err := item.Value(func(val []byte) error {
		v, err = decodeVertex(val)
		return err
	}); err != nil {
		return nil, false, fmt.Errorf("store: decode vertex %q: %w", id, err)
	}
	if v.InEdges, err = scanEdges(txn, inPrefix(id)); err != nil {
		return nil, false, err
	}
	if v.OutEdges, err = scanEdges(txn, outPrefix(id)); err != nil {
		return nil, false, err
	}

	return v, true, nil
}

// scanEdges decodes every edge document under prefix. Never returns nil.
func scanEdges(txn *badger.Txn, prefix []byte) ([]core.Edge, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	out := []core.Edge{}
	for it.Rewind(); it.Valid(); it.Next() {
		var e core.Edge
		err := it.Item().Value(func(val []byte) error {
			var err error
			e, err = decodeEdge(val)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("store: decode edge %q: %w", it.Item().Key(), err)
		}
		out = append(out, e)
	}

	return out, nil
}

// scanKeys calls fn with a copy of every key under prefix until fn returns
// false or an error.
func scanKeys(txn *badger.Txn, prefix []byte, fn func(key []byte) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		more, err := fn(it.Item().KeyCopy(nil))
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}

	return nil
}

func hasPrefix(txn *badger.Txn, prefix []byte) bool {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()
	it.Rewind()

	return it.Valid() && bytes.HasPrefix(it.Item().Key(), prefix)
}

func ensureVertex(txn *badger.Txn, id core.Identity) error {
	_, err := txn.Get(vertexKey(id))
	if err == nil {
		return nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	data, err := encodeVertex(core.NewVertex(id))
	if err != nil {
		return err
	}

	return txn.Set(vertexKey(id), data)
}

// unindexEdge deletes the catalog and adjacency keys of a stored edge.
func unindexEdge(txn *badger.Txn, id core.Identity) error {
	item, err := txn.Get(edgeKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var old core.Edge
	if err := item.Value(func(val []byte) error {
		old, err = decodeEdge(val)
		return err
	}); err != nil {
		return fmt.Errorf("store: decode edge %q: %w", id, err)
	}
	for _, k := range [][]byte{
		edgeKey(id),
		outKey(old.Source, id), inKey(old.Target, id),
		outKey(old.Target, id), inKey(old.Source, id),
	} {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}

	return nil
}
