package selector

import (
	"context"
	"fmt"
	"regexp"

	"github.com/katalvlaran/carta/core"
)

// LabelSelector selects vertices whose label matches a regular expression.
type LabelSelector struct {
	bound
	re *regexp.Regexp
}

// Label selects vertices of g whose label matches pattern (RE2 syntax,
// unanchored).
// Errors: core.ErrInvalidSelection for an empty or invalid pattern.
func Label(g core.Graph, pattern string) (*LabelSelector, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty label pattern", core.ErrInvalidSelection)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: label pattern: %w", core.ErrInvalidSelection, err)
	}

	return &LabelSelector{bound: bound{g}, re: re}, nil
}

func (s *LabelSelector) ContainsVertex(_ context.Context, v *core.Vertex) (bool, error) {
	return s.re.MatchString(v.Label), nil
}

// Vertices filters the whole graph.
func (s *LabelSelector) Vertices(ctx context.Context) core.VertexSeq {
	return filterEntire(ctx, s.graph, s.ContainsVertex)
}

// PropertySelector selects named properties and the vertices carrying them.
type PropertySelector struct {
	bound
	names core.IdentitySet
}

// HasProperty selects the properties named in names, and the vertices that
// carry at least one of them. Edges and values are not restricted.
// Errors: core.ErrInvalidSelection when names is empty.
func HasProperty(g core.Graph, names ...core.Identity) (*PropertySelector, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: property selector needs at least one name", core.ErrInvalidSelection)
	}

	return &PropertySelector{bound: bound{g}, names: core.NewIdentitySet(names...)}, nil
}

func (s *PropertySelector) ContainsVertex(_ context.Context, v *core.Vertex) (bool, error) {
	for _, p := range v.Properties {
		if s.names.Has(p.ID) {
			return true, nil
		}
	}

	return false, nil
}

func (s *PropertySelector) ContainsProperty(_ context.Context, p core.Property) (bool, error) {
	return s.names.Has(p.ID), nil
}

// Vertices filters the whole graph.
func (s *PropertySelector) Vertices(ctx context.Context) core.VertexSeq {
	return filterEntire(ctx, s.graph, s.ContainsVertex)
}
