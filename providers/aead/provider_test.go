package aead

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/format"
)

func TestRegistryLookups(t *testing.T) {
	for _, name := range []string{"aes-256-gcm", "chacha20-poly1305"} {
		p, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, p.ID())
	}
}

func TestResolveUnknownID(t *testing.T) {
	_, err := Resolve(format.EncryptionID(99))
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	plaintext := []byte("entry body bytes that need confidentiality and integrity")
	aad := []byte("header bytes used as associated data")

	for _, name := range []string{"aes-256-gcm", "chacha20-poly1305"} {
		t.Run(name, func(t *testing.T) {
			p, _ := ByName(name)
			key := make([]byte, p.KeySize())
			_, err := rand.Read(key)
			require.NoError(t, err)

			sealed, err := p.EncryptBlock(plaintext, key, aad)
			require.NoError(t, err)
			assert.Greater(t, len(sealed), len(plaintext))

			opened, err := p.DecryptBlock(sealed, key, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, opened)
		})
	}
}

func TestBitFlipDetection(t *testing.T) {
	plaintext := []byte("authenticity must be preserved byte for byte")
	aad := []byte("aad")

	for _, name := range []string{"aes-256-gcm", "chacha20-poly1305"} {
		t.Run(name, func(t *testing.T) {
			p, _ := ByName(name)
			key := make([]byte, p.KeySize())
			_, err := rand.Read(key)
			require.NoError(t, err)

			sealed, err := p.EncryptBlock(plaintext, key, aad)
			require.NoError(t, err)

			for i := range sealed {
				tampered := bytes.Clone(sealed)
				tampered[i] ^= 0x01

				_, err := p.DecryptBlock(tampered, key, aad)
				assert.Error(t, err, "byte %d", i)
			}
		})
	}
}

func TestWrongKeyFailsWithSameError(t *testing.T) {
	plaintext := []byte("secret")
	aad := []byte("aad")

	for _, name := range []string{"aes-256-gcm", "chacha20-poly1305"} {
		t.Run(name, func(t *testing.T) {
			p, _ := ByName(name)
			key := make([]byte, p.KeySize())
			wrongKey := make([]byte, p.KeySize())
			_, err := rand.Read(key)
			require.NoError(t, err)
			_, err = rand.Read(wrongKey)
			require.NoError(t, err)

			sealed, err := p.EncryptBlock(plaintext, key, aad)
			require.NoError(t, err)

			_, errWrongKey := p.DecryptBlock(sealed, wrongKey, aad)
			tamperedAAD := append([]byte(nil), aad...)
			tamperedAAD[0] ^= 0x01
			_, errTamperedAAD := p.DecryptBlock(sealed, key, tamperedAAD)

			require.Error(t, errWrongKey)
			require.Error(t, errTamperedAAD)
			assert.ErrorIs(t, errWrongKey, errs.ErrAuthenticationFailed)
			assert.ErrorIs(t, errTamperedAAD, errs.ErrAuthenticationFailed)
		})
	}
}

func TestMismatchedAADFails(t *testing.T) {
	p, _ := ByName("aes-256-gcm")
	key := make([]byte, p.KeySize())
	_, err := rand.Read(key)
	require.NoError(t, err)

	sealed, err := p.EncryptBlock([]byte("data"), key, []byte("aad-1"))
	require.NoError(t, err)

	_, err = p.DecryptBlock(sealed, key, []byte("aad-2"))
	assert.Error(t, err)
}
