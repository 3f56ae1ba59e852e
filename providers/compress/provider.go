// Package compress provides the APACK compression provider contract and its
// built-in implementations (Store/None, Zstd, LZ4, S2), adapted from the
// teacher's compress package: same Compressor/Decompressor split and pooled
// encoder/decoder strategy, generalized to APACK's per-chunk Provider
// contract (§4.2) instead of mebo's columnar timestamp/value payloads.
package compress

import (
	"fmt"

	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/providers"
)

// Provider is the compression algorithm contract chunk pipelines compress
// and decompress blocks through (§4.2).
type Provider interface {
	// ID is the case-insensitive string identifier, e.g. "zstd".
	ID() string
	// NumericID is the stable numeric ID stored in entry headers.
	NumericID() format.CompressionID
	DefaultLevel() int
	MinLevel() int
	MaxLevel() int

	// CompressBlock compresses data at the given level.
	CompressBlock(data []byte, level int) ([]byte, error)
	// DecompressBlock decompresses data, failing if the decoded length does
	// not equal expectedOriginalSize.
	DecompressBlock(data []byte, expectedOriginalSize int) ([]byte, error)
	// MaxCompressedSize bounds the output size of CompressBlock for an n-byte
	// input, used to size buffers ahead of time.
	MaxCompressedSize(n int) int
}

var _ providers.Identified = providerAdapter{}

// providerAdapter satisfies providers.Identified (uint8 NumericID) on top of
// a Provider (format.CompressionID NumericID) so Provider can be stored in a
// providers.Registry without every implementation duplicating the cast.
type providerAdapter struct{ Provider }

func (a providerAdapter) StringID() string { return a.Provider.ID() }
func (a providerAdapter) NumericID() uint8 { return uint8(a.Provider.NumericID()) }

// Registry is the process-wide compression provider registry. Built-ins
// register themselves in this package's init().
var registry = providers.NewRegistry[providerAdapter]()

// Register adds p to the registry. First registration for a given string or
// numeric ID wins (§8 property 10).
func Register(p Provider) { registry.Register(providerAdapter{p}) }

// ByName looks a provider up by case-insensitive string ID.
func ByName(name string) (Provider, bool) {
	p, ok := registry.ByName(name)
	return p.Provider, ok
}

// ByNumericID looks a provider up by numeric ID.
func ByNumericID(id format.CompressionID) (Provider, bool) {
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

// Resolve is a convenience wrapper that turns "unknown numeric ID" into a
// formatted error for callers that don't want to handle the bool themselves.
func Resolve(id format.CompressionID) (Provider, error) {
	p, ok := ByNumericID(id)
	if !ok {
		return nil, fmt.Errorf("compress: unknown compression id %d", id)
	}

	return p, nil
}

func init() {
	Register(storeProvider{})
	Register(newZstdProvider())
	Register(newLZ4Provider())
	Register(newS2Provider())
}
