package format

import (
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/wire"
)

// FileHeaderSize is the fixed on-disk size of FileHeader in bytes (§3).
const FileHeaderSize = 64

// Magic is the 5-byte ASCII magic that opens every APACK file.
var Magic = [5]byte{'A', 'P', 'A', 'C', 'K'}

const (
	// MinChunkSize is the smallest allowed DefaultChunkSize (§3).
	MinChunkSize = 1 << 10 // 1 KiB
	// MaxChunkSize is the largest allowed DefaultChunkSize (§3).
	MaxChunkSize = 64 << 20 // 64 MiB
)

// FileHeader is the fixed 64-byte record at offset 0 of every APACK archive.
// Its magic and header checksum (over bytes 0..15) must both validate before
// any other field is trusted (§3 invariant).
type FileHeader struct {
	VersionMajor, VersionMinor, VersionPatch uint8
	CompatLevel                             uint8
	Mode                                     ModeFlags
	Checksum                                 ChecksumID
	DefaultChunkSize                         uint32
	EntryCount                               uint64
	TrailerOffset                            uint64
	CreatedAtMillis                          uint64
}

// MaxSupportedCompatLevel is the highest compat level this implementation
// will open (§3: "a reader must refuse files whose compat level exceeds its
// own").
const MaxSupportedCompatLevel = 1

// Bytes serializes the header to exactly FileHeaderSize bytes, including the
// CRC-32 of bytes 0..15 at offset 16 and 20 reserved zero bytes at the tail.
func (h FileHeader) Bytes() []byte {
	w := wire.NewWriter(make([]byte, 0, FileHeaderSize))
	w.Raw(Magic[:])
	w.U8(h.VersionMajor)
	w.U8(h.VersionMinor)
	w.U8(h.VersionPatch)
	w.U8(h.CompatLevel)
	w.U8(uint8(h.Mode))
	w.U8(uint8(h.Checksum))
	w.U8(0) // reserved
	w.U32(h.DefaultChunkSize)

	crc := wire.CRC32(w.Bytes()[:16])
	w.U32(crc)

	w.U64(h.EntryCount)
	w.U64(h.TrailerOffset)
	w.U64(h.CreatedAtMillis)
	w.Raw(make([]byte, 20)) // reserved

	return w.Bytes()
}

// ParseFileHeader parses and validates a FileHeader from exactly
// FileHeaderSize bytes, checking magic, header CRC-32, and compat level as
// required before any other field is used (§3, §7 FormatError/UnsupportedVersionError).
func ParseFileHeader(data []byte) (FileHeader, error) {
	var h FileHeader
	if len(data) != FileHeaderSize {
		return h, errs.NewFormatError("parse file header", errs.ErrBadMagic)
	}

	if string(data[0:5]) != string(Magic[:]) {
		return h, errs.NewFormatError("parse file header", errs.ErrBadMagic)
	}

	gotCRC := wire.CRC32(data[0:16])
	wantCRC := leUint32(data[16:20])
	if gotCRC != wantCRC {
		return h, errs.NewFormatError("parse file header", errs.ErrHeaderChecksum)
	}

	r := wire.NewReader(data)
	_, _ = r.Raw(5) // magic, already checked

	major, _ := r.U8()
	minor, _ := r.U8()
	patch, _ := r.U8()
	compat, _ := r.U8()
	mode, _ := r.U8()
	checksum, _ := r.U8()
	_, _ = r.U8() // reserved
	chunkSize, _ := r.U32()
	_, _ = r.U32() // header checksum, already verified above
	entryCount, _ := r.U64()
	trailerOffset, _ := r.U64()
	createdAt, _ := r.U64()

	h = FileHeader{
		VersionMajor:     major,
		VersionMinor:     minor,
		VersionPatch:     patch,
		CompatLevel:      compat,
		Mode:             ModeFlags(mode),
		Checksum:         ChecksumID(checksum),
		DefaultChunkSize: chunkSize,
		EntryCount:       entryCount,
		TrailerOffset:    trailerOffset,
		CreatedAtMillis:  createdAt,
	}

	if h.CompatLevel > MaxSupportedCompatLevel {
		return h, &errs.UnsupportedVersionError{
			Major: major, Minor: minor, Patch: patch,
			CompatLevel: compat, MaxCompatLevel: MaxSupportedCompatLevel,
		}
	}

	return h, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
