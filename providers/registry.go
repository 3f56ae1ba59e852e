// Package providers holds the generic registry shared by every algorithm
// provider kind (compression, AEAD, checksum, KDF — see the compress,
// aead, checksum, and kdf sub-packages). Each kind defines its own narrow
// Provider interface and wraps Registry[P] around it; this package supplies
// the lookup-by-string-or-numeric-ID and idempotent-registration behavior
// once, generalizing the functional-options generic pattern
// (internal/options.Option[T]) to algorithm providers (§4.2).
package providers

import "strings"

// Identified is the minimum any algorithm provider must implement to be
// registered: a case-insensitive string name and a stable numeric ID stored
// in archive headers.
type Identified interface {
	StringID() string
	NumericID() uint8
}

// Registry looks providers of kind P up by string ID (case-insensitive) or
// numeric ID. Registration is idempotent: the first provider registered
// under a given ID wins, and later registrations under the same ID are
// silently ignored (§8 property 10) rather than erroring, so a caller can
// always register a fallback without checking whether it's already present.
type Registry[P Identified] struct {
	byName   map[string]P
	byNumber map[uint8]P
	order    []P
}

// NewRegistry returns an empty Registry.
func NewRegistry[P Identified]() *Registry[P] {
	return &Registry[P]{
		byName:   make(map[string]P),
		byNumber: make(map[uint8]P),
	}
}

// Register adds p under both its string and numeric ID. If either ID is
// already registered, Register is a no-op: the existing registration wins.
func (r *Registry[P]) Register(p P) {
	name := strings.ToLower(p.StringID())
	if _, ok := r.byName[name]; ok {
		return
	}
	if _, ok := r.byNumber[p.NumericID()]; ok {
		return
	}

	r.byName[name] = p
	r.byNumber[p.NumericID()] = p
	r.order = append(r.order, p)
}

// ByName looks a provider up by its case-insensitive string ID.
func (r *Registry[P]) ByName(name string) (P, bool) {
	p, ok := r.byName[strings.ToLower(name)]
	return p, ok
}

// ByNumericID looks a provider up by its numeric ID.
func (r *Registry[P]) ByNumericID(id uint8) (P, bool) {
	p, ok := r.byNumber[id]
	return p, ok
}

// All returns every registered provider in registration order.
func (r *Registry[P]) All() []P {
	out := make([]P, len(r.order))
	copy(out, r.order)

	return out
}
