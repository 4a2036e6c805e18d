package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for capability negotiation, selection and graph mutation.
//
// Absence of a vertex is not an error: lookups report it through their
// boolean result.
var (
	// ErrUnsupportedCapability indicates a required capability is missing.
	ErrUnsupportedCapability = errors.New("core: unsupported capability")

	// ErrNotFinite indicates whole-graph enumeration was requested on a graph
	// that is not finite. It wraps ErrUnsupportedCapability.
	ErrNotFinite = fmt.Errorf("%w: graph is not finite", ErrUnsupportedCapability)

	// ErrInvalidSelection indicates a selector was built with invalid
	// parameters (for example an empty identity list).
	ErrInvalidSelection = errors.New("core: invalid selection")

	// ErrEmptyIdentity indicates an empty identity where a key is required.
	ErrEmptyIdentity = errors.New("core: identity is empty")

	// ErrVertexNotFound indicates a mutation referenced a missing vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrEdgeNotFound indicates a mutation referenced a missing edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrNilGraph indicates a nil graph was supplied.
	ErrNilGraph = errors.New("core: graph is nil")
)

