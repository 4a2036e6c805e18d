// File: seq.go
// Role: lazy, pull-based vertex and identity sequences.
//
// A sequence produces elements only while the consumer keeps ranging; breaking
// out of the loop stops upstream work. A failure is delivered once, as the last
// element, with a nil value.
package core

import (
	"context"
	"iter"
)

// VertexSeq is a lazy sequence of vertices. A non-nil error ends the sequence.
type VertexSeq = iter.Seq2[*Vertex, error]

// IdentitySeq is a lazy sequence of identities. A non-nil error ends the sequence.
type IdentitySeq = iter.Seq2[Identity, error]

// EmptyVertices yields nothing.
func EmptyVertices() VertexSeq {
	return func(func(*Vertex, error) bool) {}
}

// VerticesOf yields vs in order.
func VerticesOf(vs ...*Vertex) VertexSeq {
	return func(yield func(*Vertex, error) bool) {
		for _, v := range vs {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// FailVertices yields err and stops.
func FailVertices(err error) VertexSeq {
	return func(yield func(*Vertex, error) bool) {
		yield(nil, err)
	}
}

// CollectVertices drains seq. It returns the vertices read before the first error.
func CollectVertices(seq VertexSeq) ([]*Vertex, error) {
	var out []*Vertex
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}

	return out, nil
}

// FilterVertices yields the vertices of seq for which keep reports true.
// Context cancellation is checked before every element.
func FilterVertices(ctx context.Context, seq VertexSeq, keep func(context.Context, *Vertex) (bool, error)) VertexSeq {
	return func(yield func(*Vertex, error) bool) {
		for v, err := range seq {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(nil, err)
				return
			}
			ok, err := keep(ctx, v)
			if err != nil {
				yield(nil, err)
				return
			}
			if ok && !yield(v, nil) {
				return
			}
		}
	}
}

// MapVertices yields fn(v) for every vertex of seq.
func MapVertices(ctx context.Context, seq VertexSeq, fn func(context.Context, *Vertex) (*Vertex, error)) VertexSeq {
	return func(yield func(*Vertex, error) bool) {
		for v, err := range seq {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(nil, err)
				return
			}
			mv, err := fn(ctx, v)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(mv, nil) {
				return
			}
		}
	}
}

// UniqueVertices drops vertices whose identity was already yielded.
func UniqueVertices(seq VertexSeq) VertexSeq {
	return func(yield func(*Vertex, error) bool) {
		seen := make(IdentitySet)
		for v, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			if !seen.Add(v.ID) {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// IdentitiesOf yields ids in order.
func IdentitiesOf(ids ...Identity) IdentitySeq {
	return func(yield func(Identity, error) bool) {
		for _, id := range ids {
			if !yield(id, nil) {
				return
			}
		}
	}
}

// CollectIdentities drains seq.
func CollectIdentities(seq IdentitySeq) ([]Identity, error) {
	var out []Identity
	for id, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, id)
	}

	return out, nil
}

// VertexIDs drains seq and returns the identities of the vertices read.
func VertexIDs(seq VertexSeq) ([]Identity, error) {
	var out []Identity
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v.ID)
	}

	return out, nil
}
