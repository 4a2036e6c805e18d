// Package synthetic provides procedurally generated graphs for exercising
// selectors and actors against sources of unknown, unbounded size.
//
// InfiniteDirected is a tree-like directed graph that is never materialised:
// every vertex is derived on demand from (seed, vertex identity), so the same
// identity always yields the same properties and children. It offers
// DynamicLookup, DynamicOutLookup and RootedLookup, and reports itself as not
// finite, so whole-graph enumeration fails closed.
package synthetic

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/katalvlaran/carta/core"
)

// ErrInvalidParams is returned for out-of-range generator parameters.
var ErrInvalidParams = errors.New("synthetic: invalid parameters")

// Params control the generator.
type Params struct {
	// Seed fixes the whole graph.
	Seed int64
	// ChildProbability is the chance that a vertex has a first child.
	ChildProbability float64
	// ChildDampener multiplies the probability after each child.
	ChildDampener float64
	// PropertyCount is the number of distinct property names in the schema.
	PropertyCount int
	// PropertyDensity is the chance that a vertex carries a given property.
	PropertyDensity float64
	// Labeled gives every vertex a pseudoword label.
	Labeled bool
}

// DefaultParams returns parameters producing roughly two children per vertex
// near the root and a handful of properties.
func DefaultParams() Params {
	return Params{
		ChildProbability: 0.9,
		ChildDampener:    0.6,
		PropertyCount:    8,
		PropertyDensity:  0.5,
		Labeled:          true,
	}
}

// Validate reports the first out-of-range parameter.
func (p Params) Validate() error {
	switch {
	case p.ChildProbability < 0 || p.ChildProbability > 1:
		return fmt.Errorf("%w: child probability %g not in [0,1]", ErrInvalidParams, p.ChildProbability)
	case p.ChildDampener < 0 || p.ChildDampener > 1:
		return fmt.Errorf("%w: child dampener %g not in [0,1]", ErrInvalidParams, p.ChildDampener)
	case p.ChildProbability == 1 && p.ChildDampener == 1:
		return fmt.Errorf("%w: probability and dampener of 1 give unbounded fan-out", ErrInvalidParams)
	case p.PropertyCount < 0:
		return fmt.Errorf("%w: property count %d < 0", ErrInvalidParams, p.PropertyCount)
	case p.PropertyDensity < 0 || p.PropertyDensity > 1:
		return fmt.Errorf("%w: property density %g not in [0,1]", ErrInvalidParams, p.PropertyDensity)
	}

	return nil
}

// kind is the value type of a schema property.
type kind int

const (
	kindInt kind = iota
	kindFloat
	kindString
)

type field struct {
	id   core.Identity
	kind kind
}

// stream salts keep the property and child draws of a vertex independent.
const (
	saltProperties uint64 = 0x70726f70
	saltChildren   uint64 = 0x6b696473
)

// InfiniteDirected is an unbounded directed graph generated from a seed.
type InfiniteDirected struct {
	id     core.Identity
	params Params
	root   uuid.UUID
	schema []field
	caps   core.Capabilities
}

// NewInfiniteDirected validates p and derives the property schema and root.
func NewInfiniteDirected(p Params) (*InfiniteDirected, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(p.Seed))
	root, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return nil, fmt.Errorf("synthetic: root identity: %w", err)
	}

	g := &InfiniteDirected{
		id:     core.ID("synthetic-" + strconv.FormatInt(p.Seed, 10)),
		params: p,
		root:   root,
	}
	seen := make(map[string]bool, p.PropertyCount)
	for len(g.schema) < p.PropertyCount {
		name := pseudoword(rng)
		if seen[name] {
			continue
		}
		seen[name] = true
		g.schema = append(g.schema, field{id: core.ID(name), kind: kind(rng.Intn(3))})
	}
	g.caps = core.Discover(g)

	return g, nil
}

func (g *InfiniteDirected) ID() core.Identity           { return g.id }
func (g *InfiniteDirected) Properties() []core.Property { return nil }

func (g *InfiniteDirected) Provide(c core.Capability) (any, bool) { return g.caps.Provide(c) }

// Attributes reports a dynamic, non-finite graph.
func (g *InfiniteDirected) Attributes() core.Attributes {
	return core.Attributes{Finite: false, Dynamic: true}
}

// Params returns the generator parameters.
func (g *InfiniteDirected) Params() Params { return g.params }

// Root returns the identity of the single root vertex.
func (g *InfiniteDirected) Root() core.Identity { return core.IdentityOf(g.root) }

// Roots yields the root identity.
func (g *InfiniteDirected) Roots(ctx context.Context) core.IdentitySeq {
	return func(yield func(core.Identity, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(core.Identity{}, err)
			return
		}
		yield(g.Root(), nil)
	}
}

// Vertex generates the vertex id. Identities that are not UUIDs do not exist.
// The generated vertex carries its out-edges; in-edges are unknown and empty.
func (g *InfiniteDirected) Vertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	u, err := uuid.Parse(id.String())
	if err != nil {
		return nil, false, nil
	}

	return g.generate(u), true, nil
}

// OutVertex is Vertex.
func (g *InfiniteDirected) OutVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	return g.Vertex(ctx, id)
}

// ChildVertices generates each child of id in edge order.
func (g *InfiniteDirected) ChildVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	return func(yield func(*core.Vertex, error) bool) {
		u, err := uuid.Parse(id.String())
		if err != nil {
			return
		}
		for _, child := range g.children(u) {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(g.generate(child), nil) {
				return
			}
		}
	}
}

func (g *InfiniteDirected) generate(u uuid.UUID) *core.Vertex {
	id := core.IdentityOf(u)
	rng := g.stream(u, saltProperties)

	var props []core.Property
	for _, f := range g.schema {
		if rng.Float64() >= g.params.PropertyDensity {
			continue
		}
		props = append(props, core.NewProperty(f.id, value(rng, f.kind)))
	}
	v := core.NewVertex(id, props...)
	if g.params.Labeled {
		v.Label = pseudoword(rng)
	}
	for _, child := range g.children(u) {
		v.OutEdges = append(v.OutEdges, core.NewEdge(id, core.IdentityOf(child)))
	}

	return v
}

// children draws the child identities of u.
func (g *InfiniteDirected) children(u uuid.UUID) []uuid.UUID {
	rng := g.stream(u, saltChildren)
	var out []uuid.UUID
	for p := g.params.ChildProbability; rng.Float64() < p; p *= g.params.ChildDampener {
		child, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			break
		}
		out = append(out, child)
	}

	return out
}

// stream seeds a generator from (seed, vertex, salt).
func (g *InfiniteDirected) stream(u uuid.UUID, salt uint64) *rand.Rand {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(g.params.Seed))
	copy(buf[8:24], u[:])
	binary.LittleEndian.PutUint64(buf[24:32], salt)

	return rand.New(rand.NewSource(int64(xxhash.Sum64(buf[:]))))
}

func value(rng *rand.Rand, k kind) any {
	switch k {
	case kindInt:
		return rng.Intn(10) + 1
	case kindFloat:
		return rng.Float64()
	default:
		return pseudoword(rng)
	}
}

var (
	consonants = []string{"b", "c", "d", "f", "g", "h", "j", "k", "l", "m", "n", "p", "r", "s", "t", "v", "w", "z", "ch", "sh", "th"}
	vowels     = []string{"a", "e", "i", "o", "u", "ai", "ea", "ou"}
)

// pseudoword builds a pronounceable word of two to four syllables.
func pseudoword(rng *rand.Rand) string {
	var b strings.Builder
	for n := 2 + rng.Intn(3); n > 0; n-- {
		b.WriteString(consonants[rng.Intn(len(consonants))])
		b.WriteString(vowels[rng.Intn(len(vowels))])
	}

	return b.String()
}
