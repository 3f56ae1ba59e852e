package archive

import (
	"github.com/apack-format/apack/internal/options"
	"github.com/apack-format/apack/limits"
	"github.com/apack-format/apack/providers/aead"
	"github.com/apack-format/apack/providers/checksum"
	"github.com/apack-format/apack/providers/compress"
	"github.com/apack-format/apack/providers/kdf"
)

// writerConfig holds Writer construction options, generalizing the teacher's
// NumericEncoderConfig pattern: a plain struct of settings mutated by
// functional options before the real object (Writer) is built.
type writerConfig struct {
	chunkSize           uint32
	checksum            checksum.Provider
	compression         compress.Provider
	compressionLevel    int
	randomAccess        bool
	streamMode          bool
	authenticateHeaders bool
	limits              limits.SecurityLimits

	// Encryption: exactly one of the two paths below may be set.
	password  []byte
	kdf       kdf.Provider
	kdfParams kdf.Params
	cipher    aead.Provider

	externalKey    []byte
	externalCipher aead.Provider
}

func defaultWriterConfig() *writerConfig {
	cs, _ := checksum.ByName("xxh3-64")
	return &writerConfig{
		chunkSize:    1 << 16, // 64 KiB
		checksum:     cs,
		randomAccess: true,
		limits:       limits.Default(),
	}
}

// WriterOption configures a Writer at Create time.
type WriterOption = options.Option[*writerConfig]

// WithChunkSize sets the plaintext bytes per chunk, clamped to
// [format.MinChunkSize, format.MaxChunkSize] (§3, §6).
func WithChunkSize(n uint32) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.chunkSize = clampChunkSize(n)
	})
}

// WithChecksumProvider sets the archive-wide checksum algorithm (§3 file
// header byte 10).
func WithChecksumProvider(p checksum.Provider) WriterOption {
	return options.NoError(func(c *writerConfig) { c.checksum = p })
}

// WithCompression configures the compressor and level every entry is
// written with; absence means STORE (§6 configuration surface).
func WithCompression(p compress.Provider, level int) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.compression = p
		c.compressionLevel = level
	})
}

// WithRandomAccess controls whether Close emits a TOC + trailer (default
// true). Disabling it removes the seek requirement on the sink (§4.4, §6).
func WithRandomAccess(enabled bool) WriterOption {
	return options.NoError(func(c *writerConfig) { c.randomAccess = enabled })
}

// WithStreamMode restricts the writer to a single entry and forces
// WithRandomAccess(false); the sink need not support seeking at all (§4.4,
// §8 property 9, §6 "append-only sinks are sufficient for STREAM mode").
func WithStreamMode() WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.streamMode = true
		c.randomAccess = false
	})
}

// WithSecurityLimits overrides the default chunk/ratio/wrapped-key ceilings
// (§4.3, C9).
func WithSecurityLimits(l limits.SecurityLimits) WriterOption {
	return options.NoError(func(c *writerConfig) { c.limits = l })
}

// WithAuthenticateHeaders feeds the entry ID and a chunk's index, original
// size, and last-chunk flag to the AEAD cipher as associated data, so a reorder or
// truncation surfaces as a CryptoError instead of only a ChecksumError.
// Default off; the on-disk format is unchanged either way (§9 open
// question). A reader opening this archive must set the same option.
func WithAuthenticateHeaders(enabled bool) WriterOption {
	return options.NoError(func(c *writerConfig) { c.authenticateHeaders = enabled })
}

// WithPassword enables password-based encryption (§4.6): at Create, a fresh
// salt and CEK are generated, the KEK is derived from password via
// kdfProvider, the CEK is wrapped under the KEK, and the resulting
// EncryptionBlock is written to the archive. password is zeroed once the
// KEK has been derived.
func WithPassword(password []byte, cipher aead.Provider, kdfProvider kdf.Provider, params kdf.Params) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.password = password
		c.cipher = cipher
		c.kdf = kdfProvider
		c.kdfParams = params
	})
}

// WithExternalKey enables encryption with a caller-managed CEK: ENCRYPTED is
// set in the file header but no EncryptionBlock is written, so a reader
// must be given the same key out-of-band (§9 open question: "the source
// accepts it if a key is provided", preserved here as an explicit,
// named footgun rather than an implicit one).
func WithExternalKey(cek []byte, cipher aead.Provider) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.externalKey = cek
		c.externalCipher = cipher
	})
}

func clampChunkSize(n uint32) uint32 {
	const (
		minChunk = 1 << 10
		maxChunk = 64 << 20
	)
	if n < minChunk {
		return minChunk
	}
	if n > maxChunk {
		return maxChunk
	}
	return n
}

// readerConfig holds Reader construction options.
type readerConfig struct {
	password            []byte
	externalKey         []byte
	externalCipher      aead.Provider
	limits              limits.SecurityLimits
	authenticateHeaders bool
}

func defaultReaderConfig() *readerConfig {
	return &readerConfig{limits: limits.Default()}
}

// ReaderOption configures a Reader at Open time.
type ReaderOption = options.Option[*readerConfig]

// WithReaderPassword supplies the password to recover the CEK from an
// archive's EncryptionBlock (§4.6).
func WithReaderPassword(password []byte) ReaderOption {
	return options.NoError(func(c *readerConfig) { c.password = password })
}

// WithReaderExternalKey supplies a CEK directly, for archives written with
// WithExternalKey or for ENCRYPTED archives with no EncryptionBlock at all
// (§9 open question).
func WithReaderExternalKey(cek []byte, cipher aead.Provider) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		c.externalKey = cek
		c.externalCipher = cipher
	})
}

// WithReaderSecurityLimits overrides the default chunk/ratio/wrapped-key
// ceilings enforced while reading (C9).
func WithReaderSecurityLimits(l limits.SecurityLimits) ReaderOption {
	return options.NoError(func(c *readerConfig) { c.limits = l })
}

// WithReaderAuthenticateHeaders must match the writer's
// WithAuthenticateHeaders setting for the archive being opened, since the
// on-disk format carries no bit recording the writer's choice (§9).
func WithReaderAuthenticateHeaders(enabled bool) ReaderOption {
	return options.NoError(func(c *readerConfig) { c.authenticateHeaders = enabled })
}
