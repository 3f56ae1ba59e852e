// Package limits defines the configurable security ceilings the chunk
// pipeline and crypto envelope enforce before trusting attacker-controlled
// size fields (§4.3, §6, §9 C9).
package limits

import "github.com/apack-format/apack/format"

// SecurityLimits bounds values the chunk pipeline and envelope will accept
// from a file being read, independent of whether the underlying data is
// otherwise well-formed.
type SecurityLimits struct {
	// MaxChunkOriginalSize is the largest plaintext size a single chunk may
	// declare. Chunks whose header claims more are rejected without
	// allocating the decode buffer (§8 property 5).
	MaxChunkOriginalSize uint32

	// MaxDecompressionRatio bounds decoded length relative to stored length:
	// decoded length must be <= MaxDecompressionRatio * stored length. Guards
	// against decompression bombs (§4.3 step 4).
	MaxDecompressionRatio uint32

	// MaxWrappedKeyLength bounds the wrapped-CEK field of the encryption
	// block; the wrapped-key-tag field is not checked against it.
	MaxWrappedKeyLength uint32
}

// Default returns the limits a caller gets if it doesn't configure any.
// MaxChunkOriginalSize matches the format's maximum chunk size (§3) and is
// the primary bomb guard: it caps the decoded size outright regardless of
// ratio. MaxDecompressionRatio of 4096 is a secondary check sized to clear
// legitimate highly-redundant input (e.g. long runs of a repeated byte,
// which Zstd/LZ4 can shrink several thousandfold at the tiny end since the
// compressed form is close to a single literal plus a repeat count) while
// still catching a chunk whose declared size is wildly out of proportion
// to what it stored.
func Default() SecurityLimits {
	return SecurityLimits{
		MaxChunkOriginalSize:  format.MaxChunkSize,
		MaxDecompressionRatio: 4096,
		MaxWrappedKeyLength:   1 << 16,
	}
}
