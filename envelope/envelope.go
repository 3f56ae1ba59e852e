// Package envelope implements the password-based encryption envelope
// (§4.6): deriving a Key-Encryption-Key from a password via a kdf.Provider,
// generating a random Content-Encryption-Key, and wrapping/unwrapping the
// CEK under the KEK with keywrap.Wrap/Unwrap. The result serializes to and
// parses from format.EncryptionBlock.
package envelope

import (
	"crypto/rand"
	"fmt"

	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/keywrap"
	"github.com/apack-format/apack/limits"
	"github.com/apack-format/apack/providers/aead"
	"github.com/apack-format/apack/providers/kdf"
)

// Seal derives a fresh KEK from password via kdfProvider, generates a
// random CEK sized for cipher, and wraps it. It returns the CEK (for the
// caller's chunk pipeline) and the EncryptionBlock to store on disk.
func Seal(password []byte, kdfProvider kdf.Provider, params kdf.Params, cipher aead.Provider, lim limits.SecurityLimits) ([]byte, format.EncryptionBlock, error) {
	salt := make([]byte, kdfProvider.MinSaltLen())
	if _, err := rand.Read(salt); err != nil {
		return nil, format.EncryptionBlock{}, fmt.Errorf("envelope: failed to generate salt: %w", err)
	}

	kek, err := kdfProvider.Derive(password, salt, cipher.KeySize(), params)
	if err != nil {
		return nil, format.EncryptionBlock{}, fmt.Errorf("envelope: kdf derivation failed: %w", err)
	}
	defer zero(kek)

	cek := make([]byte, cipher.KeySize())
	if _, err := rand.Read(cek); err != nil {
		return nil, format.EncryptionBlock{}, fmt.Errorf("envelope: failed to generate cek: %w", err)
	}

	wrapped, err := keywrap.Wrap(kek, cek)
	if err != nil {
		zero(cek)

		return nil, format.EncryptionBlock{}, fmt.Errorf("envelope: key wrap failed: %w", err)
	}
	if lim.MaxWrappedKeyLength > 0 && uint32(len(wrapped)) > lim.MaxWrappedKeyLength {
		zero(cek)

		return nil, format.EncryptionBlock{}, &errs.SecurityLimitError{
			Limit: "max_wrapped_key_length",
			Value: uint64(len(wrapped)),
			Max:   uint64(lim.MaxWrappedKeyLength),
			Err:   errs.ErrWrappedKeyTooLarge,
		}
	}

	block := format.EncryptionBlock{
		KDF:         kdfProvider.NumericID(),
		Cipher:      cipher.NumericID(),
		Iterations:  params.Iterations,
		MemoryKiB:   params.MemoryKiB,
		Parallelism: params.Parallelism,
		Salt:        salt,
		WrappedCEK:  wrapped,
	}

	return cek, block, nil
}

// Open recovers the CEK from block using password. An oversized wrapped key
// is a SecurityLimitError and an unknown KDF or cipher ID is a FormatError.
// A KDF failure is a CryptoError, and a wrong password or tampered wrapping
// is a CryptoError wrapping errs.ErrAuthenticationFailed, without
// distinguishing which of the two caused it (§4.6).
func Open(password []byte, block format.EncryptionBlock, lim limits.SecurityLimits) ([]byte, error) {
	if lim.MaxWrappedKeyLength > 0 && uint32(len(block.WrappedCEK)) > lim.MaxWrappedKeyLength {
		return nil, &errs.SecurityLimitError{
			Limit: "max_wrapped_key_length",
			Value: uint64(len(block.WrappedCEK)),
			Max:   uint64(lim.MaxWrappedKeyLength),
			Err:   errs.ErrWrappedKeyTooLarge,
		}
	}

	kdfProvider, err := kdf.Resolve(block.KDF)
	if err != nil {
		return nil, errs.NewFormatError("resolve kdf", errs.ErrUnknownAlgorithm)
	}
	cipher, err := aead.Resolve(block.Cipher)
	if err != nil {
		return nil, errs.NewFormatError("resolve cipher", errs.ErrUnknownAlgorithm)
	}

	kek, err := kdfProvider.Derive(password, block.Salt, cipher.KeySize(), kdf.Params{
		Iterations:  block.Iterations,
		MemoryKiB:   block.MemoryKiB,
		Parallelism: block.Parallelism,
	})
	if err != nil {
		return nil, errs.NewCryptoError("derive kek", err)
	}
	defer zero(kek)

	cek, err := keywrap.Unwrap(kek, block.WrappedCEK)
	if err != nil {
		return nil, errs.NewCryptoError("unwrap cek", errs.ErrAuthenticationFailed)
	}

	return cek, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
