package archive_test

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/archive"
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/providers/aead"
	"github.com/apack-format/apack/providers/compress"
	"github.com/apack-format/apack/providers/kdf"
)

// S1 - plain store: one small entry, no compression, no encryption.
func TestScenarioS1PlainStore(t *testing.T) {
	var buf bytes.Buffer
	w, err := archive.Create(&buf, archive.WithChunkSize(1<<10))
	require.NoError(t, err)

	entry, err := w.AddEntry(archive.EntryInput{Name: "hello.txt"}, bytes.NewReader([]byte("Hello, APACK\n")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, uint64(13), entry.OriginalSize)
	assert.Equal(t, uint64(13), entry.StoredSize)
	assert.Equal(t, uint32(1), entry.ChunkCount)

	data := buf.Bytes()
	assert.Equal(t, "APACK", string(data[:5]))

	header, err := format.ParseFileHeader(data[:format.FileHeaderSize])
	require.NoError(t, err)
	assert.Equal(t, uint64(1), header.EntryCount)
}

// S2 - zstd compress: highly redundant data shrinks, and round-trips.
func TestScenarioS2ZstdCompress(t *testing.T) {
	zstd, ok := compress.ByName("zstd")
	require.True(t, ok)

	plaintext := bytes.Repeat([]byte("A"), 10000)

	var buf bytes.Buffer
	w, err := archive.Create(&buf, archive.WithCompression(zstd, 3))
	require.NoError(t, err)

	entry, err := w.AddEntry(archive.EntryInput{Name: "repeated.bin"}, bytes.NewReader(plaintext))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Less(t, entry.StoredSize, entry.OriginalSize)
	assert.True(t, entry.IsCompressed())

	data := buf.Bytes()
	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	got, err := r.GetByName("repeated.bin")
	require.NoError(t, err)
	assert.True(t, got.IsCompressed())

	stream, err := r.OpenEntry(got)
	require.NoError(t, err)
	roundTripped, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, plaintext, roundTripped)
}

// S3 - incompressible data falls back to store.
func TestScenarioS3IncompressibleFallsBackToStore(t *testing.T) {
	zstd, ok := compress.ByName("zstd")
	require.True(t, ok)

	plaintext := make([]byte, 16<<10)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := archive.Create(&buf, archive.WithCompression(zstd, 3))
	require.NoError(t, err)

	entry, err := w.AddEntry(archive.EntryInput{Name: "random.bin"}, bytes.NewReader(plaintext))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, entry.OriginalSize, entry.StoredSize)
}

// S4 - AES-256-GCM with password; wrong password yields a single CryptoError.
func TestScenarioS4PasswordEncryption(t *testing.T) {
	cipher, ok := aead.ByName("aes-256-gcm")
	require.True(t, ok)
	argon2id, ok := kdf.ByName("argon2id")
	require.True(t, ok)

	params := kdf.Params{Iterations: 3, MemoryKiB: 64 * 1024, Parallelism: 4}
	plaintext := make([]byte, 1<<20)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := archive.Create(&buf,
		archive.WithChunkSize(256<<10),
		archive.WithPassword([]byte("correct horse battery staple"), cipher, argon2id, params))
	require.NoError(t, err)

	entry, err := w.AddEntry(archive.EntryInput{Name: "payload.bin"}, bytes.NewReader(plaintext))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, uint32(4), entry.ChunkCount)

	data := buf.Bytes()

	_, err = archive.Open(bytes.NewReader(data), int64(len(data)), archive.WithReaderPassword([]byte("wrong password")))
	require.Error(t, err)
	var cryptoErr *errs.CryptoError
	assert.ErrorAs(t, err, &cryptoErr)

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)), archive.WithReaderPassword([]byte("correct horse battery staple")))
	require.NoError(t, err)
	defer r.Close()

	got, err := r.GetByName("payload.bin")
	require.NoError(t, err)
	stream, err := r.OpenEntry(got)
	require.NoError(t, err)
	roundTripped, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, plaintext, roundTripped)
}

// S5 - random access: fetching one of 1000 entries by name works without
// iterating every preceding entry.
func TestScenarioS5RandomAccessByName(t *testing.T) {
	var buf bytes.Buffer
	w, err := archive.Create(&buf)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		name := fmt.Sprintf("file_%04d", i)
		_, err := w.AddEntry(archive.EntryInput{Name: name}, bytes.NewReader(bytes.Repeat([]byte{byte(i)}, 100)))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	data := buf.Bytes()
	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	e, err := r.GetByName("file_0777")
	require.NoError(t, err)

	stream, err := r.OpenEntry(e)
	require.NoError(t, err)
	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{byte(777 % 256)}, 100), got)
}

// S6 - corruption localized: flipping a byte in one entry's first chunk
// body only breaks that entry.
func TestScenarioS6CorruptionLocalized(t *testing.T) {
	var buf bytes.Buffer
	w, err := archive.Create(&buf)
	require.NoError(t, err)

	const n = 10
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("entry_%d", i)
		_, err := w.AddEntry(archive.EntryInput{Name: name}, bytes.NewReader([]byte(fmt.Sprintf("payload-for-entry-%d", i))))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	data := buf.Bytes()

	needle := []byte("payload-for-entry-5")
	idx := bytes.Index(data, needle)
	require.GreaterOrEqual(t, idx, 0)
	data[idx] ^= 0xFF

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("entry_%d", i)
		e, err := r.GetByName(name)
		require.NoError(t, err)

		stream, err := r.OpenEntry(e)
		require.NoError(t, err)
		_, readErr := io.ReadAll(stream)

		if i == 5 {
			require.Error(t, readErr)
			var checksumErr *errs.ChecksumError
			assert.ErrorAs(t, readErr, &checksumErr)
		} else {
			assert.NoError(t, readErr)
		}
	}
}

// Property 9: STREAM mode archives carry entry_count=0 in the file header
// and have no TOC, but are still readable sequentially.
func TestPropertyStreamModeHeaderAndSequentialRead(t *testing.T) {
	var buf bytes.Buffer
	w, err := archive.Create(&buf, archive.WithStreamMode())
	require.NoError(t, err)

	_, err = w.AddEntry(archive.EntryInput{Name: "only.bin"}, bytes.NewReader([]byte("stream mode payload")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()
	header, err := format.ParseFileHeader(data[:format.FileHeaderSize])
	require.NoError(t, err)
	assert.Equal(t, uint64(0), header.EntryCount)
	assert.False(t, header.Mode.Has(format.ModeRandomAccess))

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	entries := r.Entries()
	require.Len(t, entries, 1)

	stream, err := r.OpenEntry(entries[0])
	require.NoError(t, err)
	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "stream mode payload", string(got))
}

// Property 4: an out-of-range trailer offset is rejected as a FormatError
// without reading at that offset.
func TestPropertyOffsetBoundsRejected(t *testing.T) {
	var buf bytes.Buffer
	w, err := archive.Create(&buf)
	require.NoError(t, err)

	_, err = w.AddEntry(archive.EntryInput{Name: "x"}, bytes.NewReader([]byte("y")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()

	// Corrupt the trailer_offset field (file header bytes [28:36], after
	// entry_count at [20:28]) to point past the end of the file.
	corrupted := bytes.Clone(data)
	for i := 28; i < 36; i++ {
		corrupted[i] = 0xFF
	}

	_, err = archive.Open(bytes.NewReader(corrupted), int64(len(corrupted)))
	require.Error(t, err)
	var formatErr *errs.FormatError
	assert.ErrorAs(t, err, &formatErr)
}

// Property 3: flipping a byte in the file header's CRC-covered region
// rejects the archive on open.
func TestPropertyFileHeaderTamperDetection(t *testing.T) {
	var buf bytes.Buffer
	w, err := archive.Create(&buf)
	require.NoError(t, err)
	_, err = w.AddEntry(archive.EntryInput{Name: "x"}, bytes.NewReader([]byte("y")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()
	corrupted := bytes.Clone(data)
	corrupted[10] ^= 0xFF

	_, err = archive.Open(bytes.NewReader(corrupted), int64(len(corrupted)))
	require.Error(t, err)
	var formatErr *errs.FormatError
	assert.ErrorAs(t, err, &formatErr)
}

// A chunk header whose declared index doesn't match its position in the
// stream is rejected before its body is even decoded.
func TestPropertyChunkOutOfOrderRejected(t *testing.T) {
	var buf bytes.Buffer
	w, err := archive.Create(&buf, archive.WithChunkSize(1<<10))
	require.NoError(t, err)

	// Minimum chunk size is 1KiB, so a payload that starts with a unique
	// marker followed by enough filler spans two chunks.
	payload := append([]byte("ABCD"), bytes.Repeat([]byte{0x55}, 2000)...)
	_, err = w.AddEntry(archive.EntryInput{Name: "split.bin"}, bytes.NewReader(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()

	// The first chunk body ("ABCD"...) is stored verbatim; its 24-byte
	// header immediately precedes it, and the header's first 4 bytes are
	// the little-endian chunk index (0 for the first chunk).
	idx := bytes.Index(data, []byte("ABCD"))
	require.GreaterOrEqual(t, idx, format.ChunkHeaderSize)
	data[idx-format.ChunkHeaderSize] = 0x7A

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	e, err := r.GetByName("split.bin")
	require.NoError(t, err)

	stream, err := r.OpenEntry(e)
	require.NoError(t, err)

	_, err = io.ReadAll(stream)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrChunkOutOfOrder)
}
