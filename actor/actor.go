// Package actor exposes graphs whose selected elements are replaced by
// transformed versions while everything else passes through unchanged.
//
// An Actor wraps an inner graph and is bound to a Selector at construction.
// Every lookup is answered from the inner graph and rebuilt on the way out:
// only elements the selector contains are handed to the Transformer, and
// unselected elements are returned as the very same values.
package actor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/selector"
)

// Transformer is the set of override points an actor variant implements.
type Transformer interface {
	TransformValue(ctx context.Context, x any) (any, error)
	TransformProperty(ctx context.Context, p core.Property) (core.Property, error)
	TransformEdge(ctx context.Context, e core.Edge) (core.Edge, error)
	TransformVertex(ctx context.Context, v *core.Vertex) (*core.Vertex, error)
}

// PassThrough implements Transformer as the identity. Embed it and override
// the transforms a variant needs.
type PassThrough struct{}

func (PassThrough) TransformValue(_ context.Context, x any) (any, error) { return x, nil }
func (PassThrough) TransformProperty(_ context.Context, p core.Property) (core.Property, error) {
	return p, nil
}
func (PassThrough) TransformEdge(_ context.Context, e core.Edge) (core.Edge, error) { return e, nil }
func (PassThrough) TransformVertex(_ context.Context, v *core.Vertex) (*core.Vertex, error) {
	return v, nil
}

// Option configures an Actor.
type Option func(*config)

type config struct {
	policy core.PolicyFunc
	logger *slog.Logger
	id     *core.Identity
	vetoed []core.Capability
}

// WithPolicy replaces the capability policy.
func WithPolicy(p core.PolicyFunc) Option {
	return func(c *config) { c.policy = p }
}

// WithLogger sets the logger used for capability fallbacks. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithID renames the resulting graph. Default: the inner graph's identity.
func WithID(id core.Identity) Option {
	return func(c *config) { c.id = &id }
}

// vetoing suppresses caps whatever policy is configured. Variants append it
// after the caller's options.
func vetoing(caps ...core.Capability) Option {
	return func(c *config) { c.vetoed = append(c.vetoed, caps...) }
}

// DefaultPolicy rebuilds EntireGraph and the dynamic lookups when the inner
// graph has them, and forwards RootedLookup, which value transforms cannot
// change.
func DefaultPolicy(inner core.Graph, c core.Capability) core.Policy {
	if c == core.CapRooted {
		return core.Forward
	}

	return core.OverrideIfInner(inner, c)
}

// Actor is a graph that reconstructs the vertices of an inner graph.
type Actor struct {
	*core.Wrapper

	inner     core.Graph
	selector  selector.Selector
	transform Transformer
	logger    *slog.Logger
}

// New binds t and sel over inner.
func New(inner core.Graph, sel selector.Selector, t Transformer, opts ...Option) (*Actor, error) {
	a := &Actor{}
	if err := a.bind(inner, sel, t, a, opts); err != nil {
		return nil, err
	}

	return a, nil
}

// bind initialises a. self is the outermost value (the variant), whose
// methods provide the overriding capability implementations.
func (a *Actor) bind(inner core.Graph, sel selector.Selector, t Transformer, self any, opts []Option) error {
	if inner == nil {
		return core.ErrNilGraph
	}
	if sel == nil {
		return fmt.Errorf("%w: actor needs a selector", core.ErrInvalidSelection)
	}
	if t == nil {
		t = PassThrough{}
	}
	cfg := config{policy: DefaultPolicy, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	a.inner, a.selector, a.transform, a.logger = inner, sel, t, cfg.logger
	if len(cfg.vetoed) > 0 {
		cfg.policy = core.Veto(cfg.policy, cfg.vetoed...)
	}

	var wopts []core.WrapperOption
	if cfg.id != nil {
		wopts = append(wopts, core.WithWrapperID(*cfg.id))
	}
	a.Wrapper = core.NewWrapper(inner, cfg.policy, core.Discover(self), wopts...)

	return nil
}

// Inner returns the wrapped graph.
func (a *Actor) Inner() core.Graph { return a.inner }

// Selector returns the bound selector.
func (a *Actor) Selector() selector.Selector { return a.selector }

// Vertices reconstructs the inner graph's whole-graph enumeration.
func (a *Actor) Vertices(ctx context.Context) core.VertexSeq {
	entire, ok := core.Entire(a.inner)
	if !ok {
		return core.FailVertices(fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapEntire))
	}

	return core.MapVertices(ctx, entire.Vertices(ctx), a.ReconstructVertex)
}

// Vertex reconstructs the inner graph's lookup.
func (a *Actor) Vertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	dyn, ok := core.Dynamic(a.inner)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamic)
	}

	v, found, err := dyn.Vertex(ctx, id)

	return a.rebuild(ctx, v, found, err)
}

// InVertex reconstructs the inner graph's in-lookup.
func (a *Actor) InVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	in, ok := core.DynamicIn(a.inner)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamicIn)
	}

	v, found, err := in.InVertex(ctx, id)

	return a.rebuild(ctx, v, found, err)
}

// ParentVertices reconstructs the inner graph's parents of id.
func (a *Actor) ParentVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	in, ok := core.DynamicIn(a.inner)
	if !ok {
		return core.FailVertices(fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamicIn))
	}

	return core.MapVertices(ctx, in.ParentVertices(ctx, id), a.ReconstructVertex)
}

// OutVertex reconstructs the inner graph's out-lookup.
func (a *Actor) OutVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	out, ok := core.DynamicOut(a.inner)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamicOut)
	}

	v, found, err := out.OutVertex(ctx, id)

	return a.rebuild(ctx, v, found, err)
}

// ChildVertices reconstructs the inner graph's children of id.
func (a *Actor) ChildVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	out, ok := core.DynamicOut(a.inner)
	if !ok {
		return core.FailVertices(fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, core.CapDynamicOut))
	}

	return core.MapVertices(ctx, out.ChildVertices(ctx, id), a.ReconstructVertex)
}

// rebuild reconstructs the result of an inner lookup.
func (a *Actor) rebuild(ctx context.Context, v *core.Vertex, found bool, err error) (*core.Vertex, bool, error) {
	if err != nil || !found {
		return nil, false, err
	}
	rv, err := a.ReconstructVertex(ctx, v)
	if err != nil {
		return nil, false, err
	}

	return rv, true, nil
}
