package archive_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/archive"
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/providers/aead"
	"github.com/apack-format/apack/providers/compress"
	"github.com/apack-format/apack/providers/kdf"
)

func buildArchive(t *testing.T, opts ...archive.WriterOption) ([]byte, []string) {
	t.Helper()

	var buf bytes.Buffer
	w, err := archive.Create(&buf, opts...)
	require.NoError(t, err)

	payloads := map[string]string{
		"docs/readme.txt": "hello from apack",
		"images/logo.bin": string(bytes.Repeat([]byte{0xCA, 0xFE}, 64)),
		"empty.dat":       "",
	}

	var names []string
	for name, data := range payloads {
		_, err := w.AddEntry(archive.EntryInput{Name: name}, bytes.NewReader([]byte(data)))
		require.NoError(t, err)
		names = append(names, name)
	}

	require.NoError(t, w.Close())

	return buf.Bytes(), names
}

func TestReaderListsEntriesWithoutDecoding(t *testing.T) {
	data, names := buildArchive(t)

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	entries := r.Entries()
	require.Len(t, entries, len(names))

	for _, name := range names {
		e, err := r.GetByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, e.Name)
	}
}

func TestReaderRandomAccessByNameRoundTrips(t *testing.T) {
	data, _ := buildArchive(t)

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	e, err := r.GetByName("docs/readme.txt")
	require.NoError(t, err)

	stream, err := r.OpenEntry(e)
	require.NoError(t, err)

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "hello from apack", string(got))
}

func TestReaderUnknownNameFails(t *testing.T) {
	data, _ := buildArchive(t)

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.GetByName("does/not/exist")
	assert.Error(t, err)
	var notFound *errs.EntryNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRoundTripWithCompression(t *testing.T) {
	zstd, ok := compress.ByName("zstd")
	require.True(t, ok)

	data, names := buildArchive(t, archive.WithCompression(zstd, zstd.DefaultLevel()))

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	for _, name := range names {
		e, err := r.GetByName(name)
		require.NoError(t, err)
		assert.True(t, e.IsCompressed())

		stream, err := r.OpenEntry(e)
		require.NoError(t, err)
		_, err = io.ReadAll(stream)
		require.NoError(t, err)
	}
}

func TestRoundTripWithPasswordEncryption(t *testing.T) {
	cipher, ok := aead.ByName("aes-256-gcm")
	require.True(t, ok)
	kdfProvider, ok := kdf.ByName("argon2id")
	require.True(t, ok)

	password := []byte("correct horse battery staple")
	var buf bytes.Buffer

	w, err := archive.Create(&buf, archive.WithPassword(append([]byte(nil), password...), cipher, kdfProvider, kdfProvider.DefaultParams()))
	require.NoError(t, err)

	_, err = w.AddEntry(archive.EntryInput{Name: "secret.txt"}, bytes.NewReader([]byte("top secret payload")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()

	r, err := archive.Open(bytes.NewReader(data), int64(len(data)), archive.WithReaderPassword(append([]byte(nil), password...)))
	require.NoError(t, err)
	defer r.Close()

	e, err := r.GetByName("secret.txt")
	require.NoError(t, err)
	assert.True(t, e.IsEncrypted())

	stream, err := r.OpenEntry(e)
	require.NoError(t, err)
	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "top secret payload", string(got))

	// The CEK is recovered from the EncryptionBlock eagerly at Open, so a
	// wrong password surfaces as a CryptoError there rather than later at
	// entry-decrypt time.
	_, err = archive.Open(bytes.NewReader(data), int64(len(data)), archive.WithReaderPassword([]byte("wrong password")))
	assert.Error(t, err)
	var cryptoErr *errs.CryptoError
	assert.ErrorAs(t, err, &cryptoErr)
}

func TestOpenEncryptedArchiveWithoutKeyFails(t *testing.T) {
	cipher, ok := aead.ByName("aes-256-gcm")
	require.True(t, ok)
	kdfProvider, ok := kdf.ByName("argon2id")
	require.True(t, ok)

	password := []byte("another password")
	var buf bytes.Buffer

	w, err := archive.Create(&buf, archive.WithPassword(append([]byte(nil), password...), cipher, kdfProvider, kdfProvider.DefaultParams()))
	require.NoError(t, err)
	_, err = w.AddEntry(archive.EntryInput{Name: "x"}, bytes.NewReader([]byte("y")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()

	_, err = archive.Open(bytes.NewReader(data), int64(len(data)))
	assert.Error(t, err)
}

func TestCorruptionIsLocalizedToOneEntry(t *testing.T) {
	data, _ := buildArchive(t)

	// Default mode is store+unencrypted, so a chunk body is the plaintext
	// verbatim; flip a byte inside one entry's payload and confirm that
	// only that entry's stream fails while the others still decode clean.
	needle := []byte("hello from apack")
	idx := bytes.Index(data, needle)
	require.GreaterOrEqual(t, idx, 0)

	corrupted := bytes.Clone(data)
	corrupted[idx] ^= 0xFF

	r, err := archive.Open(bytes.NewReader(corrupted), int64(len(corrupted)))
	require.NoError(t, err)
	defer r.Close()

	var checksumErr *errs.ChecksumError
	var corruptEntrySeen, cleanEntrySeen bool

	for _, e := range r.Entries() {
		stream, err := r.OpenEntry(e)
		require.NoError(t, err)

		_, err = io.ReadAll(stream)
		if e.Name == "docs/readme.txt" {
			require.Error(t, err)
			assert.ErrorAs(t, err, &checksumErr)
			corruptEntrySeen = true
		} else {
			require.NoError(t, err)
			cleanEntrySeen = true
		}
	}

	assert.True(t, corruptEntrySeen)
	assert.True(t, cleanEntrySeen)
}
