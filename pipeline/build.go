package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/carta/actor"
	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/dfs"
	"github.com/katalvlaran/carta/selector"
)

// Option configures Apply and Run.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for stage progress and handed to every
// actor. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	c := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// BuildSelector binds spec to g. A nil spec selects everything.
//
// Errors: ErrUnknownType for an unrecognised type; core.ErrInvalidSelection
// for missing or invalid fields.
func BuildSelector(g core.Graph, spec *SelectorSpec) (selector.Selector, error) {
	if spec == nil {
		return selector.All(g), nil
	}
	ids := core.IDs(spec.IDs...)

	switch spec.Type {
	case SelectAll:
		return selector.All(g), nil
	case SelectNone:
		return selector.None(g), nil
	case SelectInclude:
		return bound(selector.Include(g, ids...))
	case SelectExclude:
		return selector.Exclude(g, ids...), nil
	case SelectAnd, SelectOr:
		ops := make([]selector.Selector, 0, len(spec.Selectors))
		for i := range spec.Selectors {
			op, err := BuildSelector(g, &spec.Selectors[i])
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", spec.Type, i, err)
			}
			ops = append(ops, op)
		}
		if spec.Type == SelectAnd {
			return selector.And(g, ops...), nil
		}
		return selector.Or(g, ops...), nil
	case SelectNot:
		if spec.Selector == nil {
			return nil, fmt.Errorf("%w: not needs a selector", core.ErrInvalidSelection)
		}
		op, err := BuildSelector(g, spec.Selector)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return selector.Not(g, op), nil
	case SelectDegree:
		return bound(selector.Degree(g, spec.In, spec.Out))
	case SelectRoots:
		return selector.Roots(g), nil
	case SelectAncestors, SelectDescendants:
		order, err := dfs.ParseOrder(spec.Order)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrInvalidSelection, err)
		}
		opts := []selector.TraversalOption{
			selector.WithDepth(spec.Depth),
			selector.WithIncludeRoots(spec.IncludeRoots),
			selector.WithOrder(order),
		}
		if spec.Type == SelectAncestors {
			return bound(selector.Ancestors(g, ids, opts...))
		}
		return bound(selector.Descendants(g, ids, opts...))
	case SelectParents:
		return bound(selector.Parents(g, ids...))
	case SelectChildren:
		return bound(selector.Children(g, ids...))
	case SelectLabel:
		return bound(selector.Label(g, spec.Pattern))
	case SelectProperty:
		return bound(selector.HasProperty(g, core.IDs(spec.Properties...)...))
	}

	return nil, fmt.Errorf("%w: selector %q", ErrUnknownType, spec.Type)
}

// BuildActor binds spec over inner. Its selector is bound to inner.
func BuildActor(inner core.Graph, spec ActorSpec, opts ...Option) (core.Graph, error) {
	cfg := newConfig(opts)
	sel, err := BuildSelector(inner, spec.Selector)
	if err != nil {
		return nil, fmt.Errorf("%s selector: %w", spec.Type, err)
	}
	aopts := []actor.Option{actor.WithLogger(cfg.logger.With("actor", spec.Type))}
	if spec.Graph != "" {
		aopts = append(aopts, actor.WithID(core.ID(spec.Graph)))
	}

	switch spec.Type {
	case ActDecrement:
		return built(actor.Decrement(inner, sel, aopts...))
	case ActToNumber:
		return built(actor.ToNumber(inner, sel, aopts...))
	case ActStringReplace:
		return built(actor.StringReplace(inner, sel, spec.Pattern, spec.Replacement, aopts...))
	case ActVariance:
		return built(actor.Variance(inner, sel, spec.Bessel, aopts...))
	case ActStandardDeviation:
		return built(actor.StandardDeviation(inner, sel, spec.Bessel, aopts...))
	case ActReverseEdges:
		return built(actor.ReverseEdges(inner, sel, aopts...))
	case ActAggregate:
		return built(actor.Aggregate(inner, sel, aopts...))
	case ActPropagate:
		return built(actor.Propagate(inner, sel, aopts...))
	case ActCombineVertices:
		if spec.ID == "" {
			return nil, fmt.Errorf("%w: combine_vertices needs an id", core.ErrInvalidSelection)
		}
		return built(actor.CombineVertices(inner, sel, core.ID(spec.ID), spec.Label, aopts...))
	}

	return nil, fmt.Errorf("%w: actor %q", ErrUnknownType, spec.Type)
}

// Apply chains the actors of p over g, each wrapping the previous result,
// and returns the outermost graph. An empty pipeline returns g.
func Apply(g core.Graph, p *Pipeline, opts ...Option) (core.Graph, error) {
	if g == nil {
		return nil, core.ErrNilGraph
	}
	if p == nil {
		return g, nil
	}
	cfg := newConfig(opts)
	current := g
	for i, spec := range p.Actors {
		next, err := BuildActor(current, spec, opts...)
		if err != nil {
			return nil, fmt.Errorf("actors[%d]: %w", i, err)
		}
		cfg.logger.Debug("actor applied", "stage", i, "actor", spec.Type,
			"capabilities", fmt.Sprint(core.SupportedCapabilities(next)))
		current = next
	}

	return current, nil
}

// Run applies p to g and returns the vertices its selector picks from the
// result. Without a selector every vertex of the result is returned, which
// requires a finite graph with EntireGraph.
func Run(ctx context.Context, g core.Graph, p *Pipeline, opts ...Option) ([]*core.Vertex, error) {
	out, err := Apply(g, p, opts...)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Selector == nil {
		return core.GetEntire(ctx, out)
	}
	sel, err := BuildSelector(out, p.Selector)
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}

	return selector.Select(ctx, sel)
}

// bound and built drop the typed nil a failed constructor returns.
func bound[S selector.Selector](s S, err error) (selector.Selector, error) {
	if err != nil {
		return nil, err
	}

	return s, nil
}

func built[G core.Graph](g G, err error) (core.Graph, error) {
	if err != nil {
		return nil, err
	}

	return g, nil
}
