package format

import (
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/wire"
)

// EncryptionMagic is the 4-byte magic that opens an EncryptionBlock.
var EncryptionMagic = [4]byte{'E', 'N', 'C', 'R'}

// MinSaltLen is the smallest salt the format accepts (§3).
const MinSaltLen = 8

// EncryptionBlock carries everything needed to recover the Content
// Encryption Key from a password: the KDF used to derive the
// Key-Encryption-Key, its parameters and salt, the cipher the CEK is used
// with, and the CEK itself wrapped under the KEK (§3, §4.6).
type EncryptionBlock struct {
	KDF            KDFID
	Cipher         EncryptionID
	Iterations     uint32
	MemoryKiB      uint32 // meaningful for Argon2id only
	Parallelism    uint32 // meaningful for Argon2id only
	Salt           []byte
	WrappedCEK     []byte
	WrappedKeyTag  []byte // empty when the wrap primitive embeds its own integrity check
}

// Bytes serializes the block, magic first.
func (b EncryptionBlock) Bytes() ([]byte, error) {
	w := wire.NewWriter(nil)
	w.Raw(EncryptionMagic[:])
	w.U8(uint8(b.KDF))
	w.U8(uint8(b.Cipher))
	w.U32(b.Iterations)
	w.U32(b.MemoryKiB)
	w.U32(b.Parallelism)

	if err := w.Bytes32(b.Salt); err != nil {
		return nil, err
	}
	if err := w.Bytes32(b.WrappedCEK); err != nil {
		return nil, err
	}
	if err := w.Bytes32(b.WrappedKeyTag); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// ParseEncryptionBlock parses an EncryptionBlock, validating magic and the
// minimum salt length (§3).
func ParseEncryptionBlock(data []byte) (EncryptionBlock, int, error) {
	var b EncryptionBlock
	if len(data) < 4 || string(data[0:4]) != string(EncryptionMagic[:]) {
		return b, 0, errs.NewFormatError("parse encryption block", errs.ErrBadMagic)
	}

	r := wire.NewReader(data)
	_, _ = r.Raw(4)

	kdf, err := r.U8()
	if err != nil {
		return b, 0, errs.NewFormatError("parse encryption block", err)
	}
	cipher, err := r.U8()
	if err != nil {
		return b, 0, errs.NewFormatError("parse encryption block", err)
	}
	iterations, err := r.U32()
	if err != nil {
		return b, 0, errs.NewFormatError("parse encryption block", err)
	}
	memKiB, err := r.U32()
	if err != nil {
		return b, 0, errs.NewFormatError("parse encryption block", err)
	}
	parallelism, err := r.U32()
	if err != nil {
		return b, 0, errs.NewFormatError("parse encryption block", err)
	}
	salt, err := r.Bytes32()
	if err != nil {
		return b, 0, errs.NewFormatError("parse encryption block", err)
	}
	if len(salt) < MinSaltLen {
		return b, 0, errs.NewFormatError("parse encryption block", errs.ErrOffsetOutOfRange)
	}
	wrappedCEK, err := r.Bytes32()
	if err != nil {
		return b, 0, errs.NewFormatError("parse encryption block", err)
	}
	wrappedTag, err := r.Bytes32()
	if err != nil {
		return b, 0, errs.NewFormatError("parse encryption block", err)
	}

	b = EncryptionBlock{
		KDF:           KDFID(kdf),
		Cipher:        EncryptionID(cipher),
		Iterations:    iterations,
		MemoryKiB:     memKiB,
		Parallelism:   parallelism,
		Salt:          append([]byte(nil), salt...),
		WrappedCEK:    append([]byte(nil), wrappedCEK...),
		WrappedKeyTag: append([]byte(nil), wrappedTag...),
	}

	return b, r.Offset(), nil
}
