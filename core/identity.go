// File: identity.go
// Role: Identity value type and its canonicalisation rules.
//
// Determinism:
//   - Compare orders identities by canonical string; every sorted surface in
//     this module relies on it.
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// identitySeparator joins the parts of a compound identity.
const identitySeparator = "::"

// Identity is an opaque, comparable key for vertices, edges, properties and graphs.
//
// Structured keys are normalised to a canonical string on construction, so two
// identities are equal exactly when their canonical forms are equal. The zero
// Identity is "empty" and is rejected wherever a real key is required.
type Identity struct {
	key string
}

// ID returns the Identity whose canonical form is s.
func ID(s string) Identity { return Identity{key: s} }

// IDs converts a list of strings into identities, preserving order.
func IDs(ss ...string) []Identity {
	out := make([]Identity, len(ss))
	for i, s := range ss {
		out[i] = ID(s)
	}

	return out
}

// IdentityOf normalises a structured key into an Identity.
//
// Strings are used verbatim; integers and floats use their shortest decimal
// form; uuid.UUID uses its canonical hyphenated form; Identity is returned
// unchanged; any fmt.Stringer uses String(). Everything else falls back to
// the %v representation.
func IdentityOf(key any) Identity {
	switch k := key.(type) {
	case Identity:
		return k
	case string:
		return ID(k)
	case int:
		return ID(strconv.Itoa(k))
	case int64:
		return ID(strconv.FormatInt(k, 10))
	case int32:
		return ID(strconv.FormatInt(int64(k), 10))
	case uint64:
		return ID(strconv.FormatUint(k, 10))
	case uint32:
		return ID(strconv.FormatUint(uint64(k), 10))
	case float64:
		return ID(strconv.FormatFloat(k, 'g', -1, 64))
	case float32:
		return ID(strconv.FormatFloat(float64(k), 'g', -1, 32))
	case uuid.UUID:
		return ID(k.String())
	case fmt.Stringer:
		return ID(k.String())
	default:
		return ID(fmt.Sprint(k))
	}
}

// CompoundID joins parts into a single identity ("a::b::c").
// Edge identities default to CompoundID(source, target).
func CompoundID(parts ...Identity) Identity {
	ss := make([]string, len(parts))
	for i, p := range parts {
		ss[i] = p.key
	}

	return ID(strings.Join(ss, identitySeparator))
}

// String returns the canonical form.
func (id Identity) String() string { return id.key }

// IsZero reports whether id is the empty identity.
func (id Identity) IsZero() bool { return id.key == "" }

// Compare returns -1, 0 or +1 ordering identities by canonical form.
func (id Identity) Compare(other Identity) int { return strings.Compare(id.key, other.key) }

// Less reports whether id sorts before other.
func (id Identity) Less(other Identity) bool { return id.key < other.key }

// IdentitySet is a membership set of identities.
type IdentitySet map[Identity]struct{}

// NewIdentitySet returns a set containing ids.
func NewIdentitySet(ids ...Identity) IdentitySet {
	s := make(IdentitySet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}

	return s
}

// Add inserts id and reports whether it was absent.
func (s IdentitySet) Add(id Identity) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}

	return true
}

// Has reports membership.
func (s IdentitySet) Has(id Identity) bool {
	_, ok := s[id]

	return ok
}
