package aead

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/apack-format/apack/format"
)

// chachaProvider is ChaCha20-Poly1305, following the same nonce-prefixed
// sealed-output layout as aesGCMProvider so the chunk pipeline can treat
// every AEAD provider identically regardless of algorithm.
type chachaProvider struct{}

func newChaCha20Poly1305Provider() *chachaProvider { return &chachaProvider{} }

var _ Provider = (*chachaProvider)(nil)

func (p *chachaProvider) ID() string { return "chacha20-poly1305" }
func (p *chachaProvider) NumericID() format.EncryptionID {
	return format.EncryptionChaCha20Poly1305
}
func (p *chachaProvider) KeySize() int   { return chacha20poly1305.KeySize }
func (p *chachaProvider) NonceSize() int { return chacha20poly1305.NonceSize }
func (p *chachaProvider) TagSize() int   { return chacha20poly1305.Overhead }

func (p *chachaProvider) EncryptBlock(plaintext, key, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("aead: failed to create chacha20-poly1305 cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("aead: failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)

	return aead.Seal(out, nonce, plaintext, aad), nil
}

func (p *chachaProvider) DecryptBlock(data, key, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("aead: failed to create chacha20-poly1305 cipher: %w", err)
	}
	if len(data) < aead.NonceSize() {
		return nil, errAuth()
	}

	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, errAuth()
	}

	return plaintext, nil
}
