// Package format defines the immutable wire records of the APACK container
// format: file header, encryption block, entry header, chunk header, TOC
// entry, and trailer, plus the algorithm ID and flag enumerations used
// throughout them.
//
// Every record follows the same idiom as the rest of the package: a plain
// struct, a Bytes() []byte method that serializes it, and a Parse function
// that reconstructs it from bytes and validates magic/checksum/size before
// trusting any field.
package format

// ChecksumID identifies the checksum algorithm used for chunk plaintext and
// header integrity (file header byte offset 10, §3).
type ChecksumID uint8

const (
	ChecksumCRC32   ChecksumID = 0
	ChecksumXXH3_64 ChecksumID = 1
	ChecksumXXH3_128 ChecksumID = 2
)

func (c ChecksumID) String() string {
	switch c {
	case ChecksumCRC32:
		return "CRC32"
	case ChecksumXXH3_64:
		return "XXH3-64"
	case ChecksumXXH3_128:
		return "XXH3-128"
	default:
		return "Unknown"
	}
}

// CompressionID identifies the compression algorithm applied to a chunk body.
type CompressionID uint8

const (
	CompressionNone CompressionID = 0
	CompressionZstd CompressionID = 1
	CompressionLZ4  CompressionID = 2
	CompressionS2   CompressionID = 3
)

func (c CompressionID) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4:
		return "LZ4"
	case CompressionS2:
		return "S2"
	default:
		return "Unknown"
	}
}

// EncryptionID identifies the AEAD cipher applied to a chunk body.
type EncryptionID uint8

const (
	EncryptionNone           EncryptionID = 0
	EncryptionAES256GCM      EncryptionID = 1
	EncryptionChaCha20Poly1305 EncryptionID = 2
)

func (e EncryptionID) String() string {
	switch e {
	case EncryptionNone:
		return "None"
	case EncryptionAES256GCM:
		return "AES-256-GCM"
	case EncryptionChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	default:
		return "Unknown"
	}
}

// KDFID identifies the key-derivation function used to derive a KEK from a
// password in the encryption block.
type KDFID uint8

const (
	KDFArgon2id           KDFID = 1
	KDFPBKDF2HMACSHA256    KDFID = 2
)

func (k KDFID) String() string {
	switch k {
	case KDFArgon2id:
		return "Argon2id"
	case KDFPBKDF2HMACSHA256:
		return "PBKDF2-HMAC-SHA256"
	default:
		return "Unknown"
	}
}

// ModeFlags is the file header's bitmask of archive-wide operating modes
// (§3 Mode flags).
type ModeFlags uint8

const (
	ModeStream       ModeFlags = 0x01
	ModeEncrypted    ModeFlags = 0x02
	ModeCompressed   ModeFlags = 0x04
	ModeRandomAccess ModeFlags = 0x08
)

func (m ModeFlags) Has(f ModeFlags) bool { return m&f != 0 }

// EntryFlags is the per-entry header flag bitmask (§3 Entry Header).
type EntryFlags uint8

const (
	EntryHasECC     EntryFlags = 0x01
	EntryEncrypted  EntryFlags = 0x02
	EntryCompressed EntryFlags = 0x04
)

func (f EntryFlags) Has(bit EntryFlags) bool { return f&bit != 0 }

// ChunkFlags is the per-chunk header flag bitmask (§3 Chunk Header).
type ChunkFlags uint32

const (
	ChunkLastChunk    ChunkFlags = 0x01
	ChunkUncompressed ChunkFlags = 0x02
	ChunkHasECC       ChunkFlags = 0x04
)

func (f ChunkFlags) Has(bit ChunkFlags) bool { return f&bit != 0 }
