// File: wrapper.go
// Role: WrapperGraph, a graph that decorates another and decides per
// capability whether to forward, suppress or override it.
//
// Decisions are resolved once, at construction. Because every Wrapper answers
// from its own resolved table and a suppressed capability is never looked up
// on the inner graph, a veto holds through any chain of wrappers.
package core

import "fmt"

// Policy is a wrapper's decision for one capability.
type Policy int

const (
	// Forward answers with the inner graph's implementation, if any.
	Forward Policy = iota
	// Suppress reports the capability as unsupported regardless of the inner graph.
	Suppress
	// Override answers with the wrapper's own implementation.
	Override
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Forward:
		return "forward"
	case Suppress:
		return "suppress"
	case Override:
		return "override"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// PolicyFunc decides how a wrapper treats capability c. It may inspect inner.
type PolicyFunc func(inner Graph, c Capability) Policy

// ForwardAll forwards every capability.
func ForwardAll(Graph, Capability) Policy { return Forward }

// VetoRooted wraps next so that CapRooted is always suppressed.
func VetoRooted(next PolicyFunc) PolicyFunc {
	return Veto(next, CapRooted)
}

// Veto wraps next so that the given capabilities are always suppressed.
func Veto(next PolicyFunc, vetoed ...Capability) PolicyFunc {
	if next == nil {
		next = ForwardAll
	}
	deny := make(map[Capability]bool, len(vetoed))
	for _, c := range vetoed {
		deny[c] = true
	}

	return func(inner Graph, c Capability) Policy {
		if deny[c] {
			return Suppress
		}

		return next(inner, c)
	}
}

// OverrideIfInner overrides c when inner offers any of requires; otherwise the
// capability is suppressed. It is the usual rule for wrappers that rebuild a
// lookup on top of the inner one.
func OverrideIfInner(inner Graph, requires ...Capability) Policy {
	for _, r := range requires {
		if Supports(inner, r) {
			return Override
		}
	}

	return Suppress
}

// WrapperOption configures a Wrapper.
type WrapperOption func(*Wrapper)

// WithWrapperID replaces the forwarded identity.
func WithWrapperID(id Identity) WrapperOption {
	return func(w *Wrapper) { w.id = &id }
}

// WithWrapperAttributes replaces the forwarded attributes.
func WithWrapperAttributes(a Attributes) WrapperOption {
	return func(w *Wrapper) { w.attrs = &a }
}

// WithWrapperProperties replaces the forwarded graph properties.
func WithWrapperProperties(props ...Property) WrapperOption {
	return func(w *Wrapper) { w.props = props }
}

// Wrapper decorates an inner graph.
type Wrapper struct {
	inner    Graph
	id       *Identity
	attrs    *Attributes
	props    []Property
	resolved Capabilities
	policies map[Capability]Policy
}

// NewWrapper resolves the capability table of a wrapper over inner.
//
// Implementation:
//   - Stage 1: For each capability ask policy (nil means ForwardAll).
//   - Stage 2: Forward copies inner's answer; Override copies overrides[c]
//     when present and satisfying the contract; Suppress records nothing.
//
// Complexity: O(#capabilities) at construction, O(1) per Provide.
func NewWrapper(inner Graph, policy PolicyFunc, overrides Capabilities, opts ...WrapperOption) *Wrapper {
	if policy == nil {
		policy = ForwardAll
	}
	w := &Wrapper{
		inner:    inner,
		resolved: make(Capabilities, len(AllCapabilities)),
		policies: make(map[Capability]Policy, len(AllCapabilities)),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, c := range AllCapabilities {
		p := policy(inner, c)
		w.policies[c] = p
		switch p {
		case Forward:
			if impl, ok := inner.Provide(c); ok && impl != nil {
				w.resolved[c] = impl
			}
		case Override:
			if impl, ok := overrides[c]; ok && implements(c, impl) {
				w.resolved[c] = impl
			}
		case Suppress:
		}
	}

	return w
}

// Inner returns the wrapped graph.
func (w *Wrapper) Inner() Graph { return w.inner }

// Policy returns the decision recorded for c.
func (w *Wrapper) Policy(c Capability) Policy { return w.policies[c] }

// ID returns the override identity or the inner graph's.
func (w *Wrapper) ID() Identity {
	if w.id != nil {
		return *w.id
	}

	return w.inner.ID()
}

// Properties returns the override properties or the inner graph's.
func (w *Wrapper) Properties() []Property {
	if w.props != nil {
		return w.props
	}

	return w.inner.Properties()
}

// Attributes returns the override attributes or the inner graph's.
func (w *Wrapper) Attributes() Attributes {
	if w.attrs != nil {
		return *w.attrs
	}

	return w.inner.Attributes()
}

// Provide answers from the table resolved at construction.
func (w *Wrapper) Provide(c Capability) (any, bool) {
	return w.resolved.Provide(c)
}
