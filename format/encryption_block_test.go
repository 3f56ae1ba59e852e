package format_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/format"
)

func TestEncryptionBlockRoundTrip(t *testing.T) {
	b := format.EncryptionBlock{
		KDF:           format.KDFArgon2id,
		Cipher:        format.EncryptionAES256GCM,
		Iterations:    3,
		MemoryKiB:     65536,
		Parallelism:   4,
		Salt:          []byte("0123456789abcdef"),
		WrappedCEK:    []byte{1, 2, 3, 4, 5, 6, 7, 8},
		WrappedKeyTag: nil,
	}

	data, err := b.Bytes()
	require.NoError(t, err)

	got, n, err := format.ParseEncryptionBlock(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, b.KDF, got.KDF)
	require.Equal(t, b.Cipher, got.Cipher)
	require.Equal(t, b.Salt, got.Salt)
	require.Equal(t, b.WrappedCEK, got.WrappedCEK)
	require.Empty(t, got.WrappedKeyTag)
}

func TestEncryptionBlockSaltTooShort(t *testing.T) {
	b := format.EncryptionBlock{
		Salt:       []byte("short"),
		WrappedCEK: []byte{1},
	}
	data, err := b.Bytes()
	require.NoError(t, err)

	_, _, err = format.ParseEncryptionBlock(data)
	require.Error(t, err)
}
