// Package chunk implements the per-chunk encode/decode pipeline (§4.3):
// checksum the plaintext, compress it (falling back to store if compression
// didn't shrink it), optionally encrypt it, and pair the result with a
// format.ChunkHeader. Adapted from the teacher's compress.Codec split
// (Compressor/Decompressor) generalized across the full
// checksum→compress→encrypt chain and wired to providers/checksum,
// providers/compress, and providers/aead instead of a single fixed codec.
package chunk

import (
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/limits"
	"github.com/apack-format/apack/providers/aead"
	"github.com/apack-format/apack/providers/checksum"
	"github.com/apack-format/apack/providers/compress"
)

// Pipeline holds the algorithm providers and security limits a chunk is
// encoded and decoded through. A zero-value Compression or Encryption means
// "none": the pipeline is store + unencrypted.
type Pipeline struct {
	Checksum         checksum.Provider
	Compression      compress.Provider
	CompressionLevel int
	Encryption       aead.Provider // nil if the entry is not encrypted
	Key              []byte        // CEK; required when Encryption is set
	Limits           limits.SecurityLimits
}

// Encode runs one chunk of plaintext through checksum→compress→encrypt and
// returns its header and on-disk body. aad is the associated data passed to
// the AEAD cipher when Encryption is set; the caller controls what it
// contains (§9, WithAuthenticateHeaders).
func (p Pipeline) Encode(index uint32, plaintext []byte, last bool, aad []byte) (format.ChunkHeader, []byte, error) {
	sum := p.Checksum.Sum(plaintext)

	stored := plaintext
	flags := format.ChunkFlags(0)
	if last {
		flags |= format.ChunkLastChunk
	}

	if p.Compression != nil && p.Compression.NumericID() != format.CompressionNone && len(plaintext) > 0 {
		compressed, err := p.Compression.CompressBlock(plaintext, p.CompressionLevel)
		if err != nil || len(compressed) >= len(plaintext) {
			flags |= format.ChunkUncompressed
		} else {
			stored = compressed
		}
	} else {
		flags |= format.ChunkUncompressed
	}

	body := stored
	if p.Encryption != nil {
		sealed, err := p.Encryption.EncryptBlock(stored, p.Key, aad)
		if err != nil {
			return format.ChunkHeader{}, nil, err
		}

		body = sealed
	}

	header := format.ChunkHeader{
		Index:        index,
		OriginalSize: uint32(len(plaintext)),
		StoredSize:   uint32(len(body)),
		Checksum:     sum,
		Flags:        flags,
	}

	return header, body, nil
}

// Decode reverses Encode: decrypt, decompress (unless the chunk is flagged
// store), and verify the plaintext checksum. entryID is used only to
// annotate a ChecksumError.
func (p Pipeline) Decode(entryID uint64, header format.ChunkHeader, body []byte, aad []byte) ([]byte, error) {
	if uint64(header.OriginalSize) > uint64(p.Limits.MaxChunkOriginalSize) {
		return nil, &errs.SecurityLimitError{
			Limit: "max_chunk_original_size",
			Value: uint64(header.OriginalSize),
			Max:   uint64(p.Limits.MaxChunkOriginalSize),
			Err:   errs.ErrChunkTooLarge,
		}
	}

	storedSize := uint64(header.StoredSize)
	if storedSize == 0 {
		storedSize = 1
	}
	if p.Limits.MaxDecompressionRatio > 0 && uint64(header.OriginalSize) > storedSize*uint64(p.Limits.MaxDecompressionRatio) {
		return nil, &errs.SecurityLimitError{
			Limit: "max_decompression_ratio",
			Value: uint64(header.OriginalSize),
			Max:   storedSize * uint64(p.Limits.MaxDecompressionRatio),
			Err:   errs.ErrDecompressionRatio,
		}
	}

	stored := body
	if p.Encryption != nil {
		opened, err := p.Encryption.DecryptBlock(body, p.Key, aad)
		if err != nil {
			return nil, err
		}

		stored = opened
	}

	var plaintext []byte
	if header.Flags.Has(format.ChunkUncompressed) || p.Compression == nil {
		if uint32(len(stored)) != header.OriginalSize {
			return nil, errs.NewFormatError("decode chunk", errs.ErrOffsetOutOfRange)
		}

		plaintext = stored
	} else {
		decompressed, err := p.Compression.DecompressBlock(stored, int(header.OriginalSize))
		if err != nil {
			return nil, errs.NewFormatError("decode chunk", err)
		}

		plaintext = decompressed
	}

	sum := p.Checksum.Sum(plaintext)
	if sum != header.Checksum {
		return nil, &errs.ChecksumError{
			EntryID:  entryID,
			Chunk:    header.Index,
			Expected: header.Checksum,
			Computed: sum,
		}
	}

	return plaintext, nil
}
