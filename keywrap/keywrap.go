// Package keywrap implements AES Key Wrap (RFC 3394, NIST SP 800-38F) on top
// of crypto/aes. No example repo in the retrieval pack ships a key-wrap
// library, and the broader ecosystem has no single dominant one either;
// RFC 3394 is a short, fully specified algorithm directly over a block
// cipher primitive already in the standard library, so it's implemented
// here rather than pulled in from a third party (see DESIGN.md).
package keywrap

import (
	"crypto/aes"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/apack-format/apack/errs"
)

// defaultIV is the standard 64-bit initial value from RFC 3394 §2.2.3.1.
var defaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// Wrap wraps cek (the content-encryption key) under kek (the key-encryption
// key derived from a password via a kdf.Provider), per §4.6. cek must be a
// multiple of 8 bytes and at least 16 bytes long, per RFC 3394 §2.
func Wrap(kek, cek []byte) ([]byte, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("keywrap: failed to create aes cipher: %w", err)
	}
	if len(cek) < 16 || len(cek)%8 != 0 {
		return nil, fmt.Errorf("keywrap: cek length %d must be a multiple of 8 and at least 16 bytes", len(cek))
	}

	n := len(cek) / 8
	r := make([][8]byte, n)
	for i := range r {
		copy(r[i][:], cek[i*8:(i+1)*8])
	}

	a := defaultIV

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], a[:])
			copy(buf[8:], r[i-1][:])
			block.Encrypt(buf, buf)

			t := uint64(n*j + i)
			var tBytes [8]byte
			binary.BigEndian.PutUint64(tBytes[:], t)
			for k := range a {
				a[k] = buf[k] ^ tBytes[k]
			}
			copy(r[i-1][:], buf[8:])
		}
	}

	out := make([]byte, 8+len(cek))
	copy(out[:8], a[:])
	for i, block8 := range r {
		copy(out[8+i*8:], block8[:])
	}

	return out, nil
}

// Unwrap reverses Wrap, returning the recovered cek. Any integrity failure -
// wrong kek, truncated/tampered wrapped key - is reported as the same
// undifferentiated authentication error (§4.6).
func Unwrap(kek, wrapped []byte) ([]byte, error) {
	if len(wrapped) < 24 || len(wrapped)%8 != 0 {
		return nil, errs.NewCryptoError("unwrap key", nil)
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("keywrap: failed to create aes cipher: %w", err)
	}

	n := len(wrapped)/8 - 1
	var a [8]byte
	copy(a[:], wrapped[:8])

	r := make([][8]byte, n)
	for i := range r {
		copy(r[i][:], wrapped[8+i*8:8+(i+1)*8])
	}

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(n*j + i)
			var tBytes [8]byte
			binary.BigEndian.PutUint64(tBytes[:], t)

			var xored [8]byte
			for k := range a {
				xored[k] = a[k] ^ tBytes[k]
			}

			copy(buf[:8], xored[:])
			copy(buf[8:], r[i-1][:])
			block.Decrypt(buf, buf)

			copy(a[:], buf[:8])
			copy(r[i-1][:], buf[8:])
		}
	}

	if subtle.ConstantTimeCompare(a[:], defaultIV[:]) != 1 {
		return nil, errs.NewCryptoError("unwrap key", nil)
	}

	cek := make([]byte, 0, n*8)
	for _, block8 := range r {
		cek = append(cek, block8[:]...)
	}

	return cek, nil
}
