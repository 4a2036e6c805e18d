// Package pipeline describes selectors and actors as plain data and builds
// them over a graph.
//
// A pipeline document lists actors applied in order, each wrapping the graph
// produced by the previous one, plus an optional final selector:
//
//	actors:
//	  - type: decrement
//	    selector: {type: include, ids: [A, B]}
//	  - type: reverse_edges
//	selector:
//	  type: descendants
//	  ids: [A]
//	  depth: 2
//
// Documents are YAML; JSON is accepted as well. Unknown fields are rejected.
package pipeline

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrUnknownType is returned for an unrecognised selector or actor type.
var ErrUnknownType = errors.New("pipeline: unknown type")

// Selector types.
const (
	SelectAll         = "all"
	SelectNone        = "none"
	SelectInclude     = "include"
	SelectExclude     = "exclude"
	SelectAnd         = "and"
	SelectOr          = "or"
	SelectNot         = "not"
	SelectDegree      = "degree"
	SelectRoots       = "roots"
	SelectAncestors   = "ancestors"
	SelectDescendants = "descendants"
	SelectParents     = "parents"
	SelectChildren    = "children"
	SelectLabel       = "label"
	SelectProperty    = "property"
)

// Actor types.
const (
	ActDecrement         = "decrement"
	ActToNumber          = "to_number"
	ActStringReplace     = "string_replace"
	ActVariance          = "variance"
	ActStandardDeviation = "standard_deviation"
	ActReverseEdges      = "reverse_edges"
	ActAggregate         = "aggregate"
	ActPropagate         = "propagate"
	ActCombineVertices   = "combine_vertices"
)

// SelectorSpec is the plain-data form of a selector. Which fields apply
// depends on Type.
type SelectorSpec struct {
	Type string `yaml:"type" json:"type"`

	// IDs for include, exclude and the traversal types.
	IDs []string `yaml:"ids,omitempty" json:"ids,omitempty"`

	// Selectors are the operands of and / or.
	Selectors []SelectorSpec `yaml:"selectors,omitempty" json:"selectors,omitempty"`

	// Selector is the operand of not.
	Selector *SelectorSpec `yaml:"selector,omitempty" json:"selector,omitempty"`

	// In and Out are the degree bounds; nil is not checked.
	In  *int `yaml:"in,omitempty" json:"in,omitempty"`
	Out *int `yaml:"out,omitempty" json:"out,omitempty"`

	// Depth bounds ancestors / descendants; nil is unbounded.
	Depth *int `yaml:"depth,omitempty" json:"depth,omitempty"`

	// IncludeRoots selects the starting vertices of a traversal.
	IncludeRoots bool `yaml:"include_roots,omitempty" json:"include_roots,omitempty"`

	// Order is "preorder" (default) or "postorder".
	Order string `yaml:"order,omitempty" json:"order,omitempty"`

	// Pattern is the label regular expression.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Properties names the properties of a property selector.
	Properties []string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// ActorSpec is the plain-data form of an actor.
type ActorSpec struct {
	Type string `yaml:"type" json:"type"`

	// Selector limits the actor; nil selects everything.
	Selector *SelectorSpec `yaml:"selector,omitempty" json:"selector,omitempty"`

	// Pattern and Replacement configure string_replace.
	Pattern     string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Replacement string `yaml:"replacement,omitempty" json:"replacement,omitempty"`

	// Bessel selects the sample statistic for variance and standard_deviation.
	Bessel bool `yaml:"bessel,omitempty" json:"bessel,omitempty"`

	// ID and Label name the vertex produced by combine_vertices.
	ID    string `yaml:"id,omitempty" json:"id,omitempty"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// Graph renames the graph the actor produces.
	Graph string `yaml:"graph,omitempty" json:"graph,omitempty"`
}

// Pipeline is an ordered list of actors and a final selector.
type Pipeline struct {
	Actors   []ActorSpec   `yaml:"actors,omitempty" json:"actors,omitempty"`
	Selector *SelectorSpec `yaml:"selector,omitempty" json:"selector,omitempty"`
}

// Validate checks every type discriminant, recursively.
func (p *Pipeline) Validate() error {
	for i, a := range p.Actors {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("actors[%d]: %w", i, err)
		}
	}
	if p.Selector != nil {
		if err := p.Selector.Validate(); err != nil {
			return fmt.Errorf("selector: %w", err)
		}
	}

	return nil
}

// Validate checks the actor type and its selector.
func (a ActorSpec) Validate() error {
	switch a.Type {
	case ActDecrement, ActToNumber, ActStringReplace, ActVariance, ActStandardDeviation,
		ActReverseEdges, ActAggregate, ActPropagate, ActCombineVertices:
	default:
		return fmt.Errorf("%w: actor %q", ErrUnknownType, a.Type)
	}
	if a.Selector != nil {
		if err := a.Selector.Validate(); err != nil {
			return fmt.Errorf("%s selector: %w", a.Type, err)
		}
	}

	return nil
}

// Validate checks the selector type and its operands.
func (s SelectorSpec) Validate() error {
	switch s.Type {
	case SelectAll, SelectNone, SelectInclude, SelectExclude, SelectDegree, SelectRoots,
		SelectAncestors, SelectDescendants, SelectParents, SelectChildren, SelectLabel, SelectProperty:
	case SelectAnd, SelectOr:
		for i, op := range s.Selectors {
			if err := op.Validate(); err != nil {
				return fmt.Errorf("%s[%d]: %w", s.Type, i, err)
			}
		}
	case SelectNot:
		if s.Selector != nil {
			if err := s.Selector.Validate(); err != nil {
				return fmt.Errorf("not: %w", err)
			}
		}
	default:
		return fmt.Errorf("%w: selector %q", ErrUnknownType, s.Type)
	}

	return nil
}

// Load decodes and validates a pipeline document.
func Load(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := decode(r, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// LoadSelector decodes and validates a single selector document.
func LoadSelector(r io.Reader) (*SelectorSpec, error) {
	var s SelectorSpec
	if err := decode(r, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

func decode(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return fmt.Errorf("pipeline: decode: %w", err)
	}

	return nil
}
