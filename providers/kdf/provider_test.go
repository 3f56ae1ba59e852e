package kdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/format"
)

func TestRegistryLookups(t *testing.T) {
	for _, name := range []string{"argon2id", "pbkdf2-hmac-sha256"} {
		p, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, p.ID())
	}
}

func TestResolveUnknownID(t *testing.T) {
	_, err := Resolve(format.KDFID(99))
	assert.Error(t, err)
}

func TestDeriveIsDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")

	for _, name := range []string{"argon2id", "pbkdf2-hmac-sha256"} {
		t.Run(name, func(t *testing.T) {
			p, _ := ByName(name)
			params := p.DefaultParams()

			k1, err := p.Derive([]byte("hunter2"), salt, 32, params)
			require.NoError(t, err)
			k2, err := p.Derive([]byte("hunter2"), salt, 32, params)
			require.NoError(t, err)

			assert.Equal(t, k1, k2)
			assert.Len(t, k1, 32)
		})
	}
}

func TestDeriveDiffersByPassword(t *testing.T) {
	salt := []byte("0123456789abcdef")

	for _, name := range []string{"argon2id", "pbkdf2-hmac-sha256"} {
		t.Run(name, func(t *testing.T) {
			p, _ := ByName(name)
			params := p.DefaultParams()

			k1, err := p.Derive([]byte("hunter2"), salt, 32, params)
			require.NoError(t, err)
			k2, err := p.Derive([]byte("hunter3"), salt, 32, params)
			require.NoError(t, err)

			assert.NotEqual(t, k1, k2)
		})
	}
}

func TestDeriveDiffersBySalt(t *testing.T) {
	for _, name := range []string{"argon2id", "pbkdf2-hmac-sha256"} {
		t.Run(name, func(t *testing.T) {
			p, _ := ByName(name)
			params := p.DefaultParams()

			k1, err := p.Derive([]byte("hunter2"), []byte("saltsaltsaltsalt"), 32, params)
			require.NoError(t, err)
			k2, err := p.Derive([]byte("hunter2"), []byte("differentsaltsal"), 32, params)
			require.NoError(t, err)

			assert.NotEqual(t, k1, k2)
		})
	}
}
