// Package kdf provides the APACK key-derivation provider contract and its
// built-in implementations (Argon2id, PBKDF2-HMAC-SHA256), following the
// same registry shape as the compress, checksum, and aead packages so the
// encryption envelope (§4.6) can resolve a KDF by the numeric ID recorded in
// an archive's encryption block exactly like any other algorithm provider.
package kdf

import (
	"fmt"

	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/providers"
)

// Provider derives a key-encryption key from a password and per-archive
// salt (§4.6). The envelope copies Params field by field into and out of
// the iterations/memory/parallelism fields of format.EncryptionBlock;
// providers do no serialization of their own.
type Provider interface {
	ID() string
	NumericID() format.KDFID
	MinSaltLen() int

	// Derive stretches password+salt into a keyLen-byte key under params.
	Derive(password, salt []byte, keyLen int, params Params) ([]byte, error)
	// DefaultParams returns the parameters new archives are created with.
	DefaultParams() Params
}

// Params are a KDF's tuning knobs, serialized into format.EncryptionBlock's
// Iterations/MemoryKiB/Parallelism fields. Fields unused by a given
// algorithm are left zero.
type Params struct {
	Iterations  uint32
	MemoryKiB   uint32
	Parallelism uint32
}

var _ providers.Identified = providerAdapter{}

type providerAdapter struct{ Provider }

func (a providerAdapter) StringID() string { return a.Provider.ID() }
func (a providerAdapter) NumericID() uint8 { return uint8(a.Provider.NumericID()) }

var registry = providers.NewRegistry[providerAdapter]()

// Register adds p to the registry. First registration for a given ID wins.
func Register(p Provider) { registry.Register(providerAdapter{p}) }

// ByName looks a provider up by case-insensitive string ID.
func ByName(name string) (Provider, bool) {
	p, ok := registry.ByName(name)
	return p.Provider, ok
}

// ByNumericID looks a provider up by numeric ID.
func ByNumericID(id format.KDFID) (Provider, bool) {
	p, ok := registry.ByNumericID(uint8(id))
	return p.Provider, ok
}

// All returns every registered provider in registration order.
func All() []Provider {
	raw := registry.All()
	out := make([]Provider, len(raw))
	for i, p := range raw {
		out[i] = p.Provider
	}

	return out
}

// Resolve turns "unknown numeric ID" into a formatted error.
func Resolve(id format.KDFID) (Provider, error) {
	p, ok := ByNumericID(id)
	if !ok {
		return nil, fmt.Errorf("kdf: unknown kdf id %d", id)
	}

	return p, nil
}

func init() {
	Register(newArgon2idProvider())
	Register(newPBKDF2Provider())
}
