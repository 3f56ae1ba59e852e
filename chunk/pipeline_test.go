package chunk

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/limits"
	"github.com/apack-format/apack/providers/aead"
	"github.com/apack-format/apack/providers/checksum"
	"github.com/apack-format/apack/providers/compress"
)

func newPipeline(t *testing.T, compressionName, checksumName, encryptionName string) Pipeline {
	t.Helper()

	cs, ok := checksum.ByName(checksumName)
	require.True(t, ok)

	var cp compress.Provider
	if compressionName != "" {
		cp, ok = compress.ByName(compressionName)
		require.True(t, ok)
	}

	p := Pipeline{
		Checksum:         cs,
		Compression:      cp,
		CompressionLevel: 0,
		Limits:           limits.Default(),
	}
	if cp != nil {
		p.CompressionLevel = cp.DefaultLevel()
	}

	if encryptionName != "" {
		ap, ok := aead.ByName(encryptionName)
		require.True(t, ok)
		key := make([]byte, ap.KeySize())
		_, err := rand.Read(key)
		require.NoError(t, err)

		p.Encryption = ap
		p.Key = key
	}

	return p
}

func TestEncodeDecodeRoundTripMatrix(t *testing.T) {
	plaintext := bytes.Repeat([]byte("archived payload bytes "), 100)
	aad := []byte("header-bytes")

	compressions := []string{"", "store", "zstd", "lz4", "s2"}
	checksums := []string{"crc32", "xxh3-64", "xxh3-128"}
	encryptions := []string{"", "aes-256-gcm", "chacha20-poly1305"}

	for _, c := range compressions {
		for _, cs := range checksums {
			for _, enc := range encryptions {
				name := c + "/" + cs + "/" + enc
				t.Run(name, func(t *testing.T) {
					p := newPipeline(t, c, cs, enc)

					header, body, err := p.Encode(0, plaintext, true, aad)
					require.NoError(t, err)
					assert.True(t, header.Flags.Has(format.ChunkLastChunk))

					decoded, err := p.Decode(1, header, body, aad)
					require.NoError(t, err)
					assert.Equal(t, plaintext, decoded)
				})
			}
		}
	}
}

func TestEncodeFallsBackToStoreForIncompressibleData(t *testing.T) {
	p := newPipeline(t, "lz4", "crc32", "")

	data := make([]byte, 256)
	_, err := rand.Read(data)
	require.NoError(t, err)

	header, body, err := p.Encode(0, data, true, nil)
	require.NoError(t, err)
	assert.True(t, header.Flags.Has(format.ChunkUncompressed))
	assert.Equal(t, data, body)
}

func TestDecodeDetectsChecksumCorruption(t *testing.T) {
	p := newPipeline(t, "", "crc32", "")

	plaintext := []byte("checksum this please")
	header, body, err := p.Encode(0, plaintext, true, nil)
	require.NoError(t, err)

	header.Checksum ^= 0xFF

	_, err = p.Decode(5, header, body, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestDecodeRejectsOversizedChunk(t *testing.T) {
	p := newPipeline(t, "", "crc32", "")
	p.Limits.MaxChunkOriginalSize = 4

	header, body, err := p.Encode(0, []byte("too big"), true, nil)
	require.NoError(t, err)

	_, err = p.Decode(0, header, body, nil)
	assert.Error(t, err)
}

func TestDecodeRejectsDecompressionBomb(t *testing.T) {
	p := newPipeline(t, "", "crc32", "")
	p.Limits.MaxDecompressionRatio = 2

	header := format.ChunkHeader{
		Index:        0,
		OriginalSize: 1000,
		StoredSize:   10,
		Checksum:     0,
		Flags:        format.ChunkUncompressed,
	}

	_, err := p.Decode(0, header, make([]byte, 10), nil)
	assert.Error(t, err)
}

func TestDecodeAEADBitFlipFails(t *testing.T) {
	p := newPipeline(t, "", "crc32", "aes-256-gcm")

	header, body, err := p.Encode(0, []byte("secret payload"), true, []byte("aad"))
	require.NoError(t, err)

	tampered := bytes.Clone(body)
	tampered[0] ^= 0x01

	_, err = p.Decode(0, header, tampered, []byte("aad"))
	assert.Error(t, err)
}
