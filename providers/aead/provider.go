// Package aead provides the APACK authenticated-encryption provider
// contract and its built-in implementations (AES-256-GCM, ChaCha20-
// Poly1305), grounded on the random-nonce-prefixed AEAD layout used by
// couchbase-tools-common's cbcrypto.Reader/Writer (crypto/aes +
// crypto/cipher, nonce || ciphertext || tag per chunk) and generalized into
// a pluggable Provider contract registered through providers.Registry, the
// same shape as the compress and checksum packages.
package aead

import (
	"fmt"

	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/providers"
)

// Provider is the AEAD contract chunk and envelope payloads are encrypted
// and decrypted through (§4.2, §4.3 step 2, §4.6).
type Provider interface {
	ID() string
	NumericID() format.EncryptionID

	KeySize() int
	NonceSize() int
	TagSize() int

	// EncryptBlock encrypts plaintext under key, authenticating aad, and
	// returns nonce || ciphertext || tag.
	EncryptBlock(plaintext, key, aad []byte) ([]byte, error)
	// DecryptBlock reverses EncryptBlock. Any authentication failure -
	// wrong key, tampered ciphertext, tampered aad - returns the same
	// undifferentiated error (§4.6, side-channel neutrality).
	DecryptBlock(data, key, aad []byte) ([]byte, error)
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
func ByNumericID(id format.EncryptionID) (Provider, bool) {
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
func Resolve(id format.EncryptionID) (Provider, error) {
	p, ok := ByNumericID(id)
	if !ok {
		return nil, fmt.Errorf("aead: unknown encryption id %d", id)
	}

	return p, nil
}

func init() {
	Register(newAESGCMProvider())
	Register(newChaCha20Poly1305Provider())
}
