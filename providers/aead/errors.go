package aead

import "github.com/apack-format/apack/errs"

// errAuth is returned for every decryption failure regardless of cause, so
// a caller can never distinguish "wrong key" from "tampered ciphertext"
// from a timing side channel (§4.6).
func errAuth() error {
	return errs.NewCryptoError("decrypt", errs.ErrAuthenticationFailed)
}
