package format

import (
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/wire"
)

// TrailerMagic is the 4-byte magic that opens the Trailer.
var TrailerMagic = [4]byte{'T', 'R', 'L', 'R'}

// TrailerSize is the fixed on-disk size of Trailer (§3): magic + entry
// count + TOC checksum + two running totals.
const TrailerSize = 4 + 8 + 4 + 8 + 8

// Trailer follows the TOC and closes a random-access archive (§3). EntryCount
// repeats the file header's entry count so the TOC's extent can be checked
// independently of the header. TOCChecksum is the CRC-32 of the serialized
// TOC bytes that precede the trailer.
type Trailer struct {
	EntryCount        uint64
	TOCChecksum       uint32
	TotalOriginalSize uint64
	TotalStoredSize   uint64
}

// Bytes serializes the trailer, magic first.
func (t Trailer) Bytes() []byte {
	w := wire.NewWriter(nil)
	w.Raw(TrailerMagic[:])
	w.U64(t.EntryCount)
	w.U32(t.TOCChecksum)
	w.U64(t.TotalOriginalSize)
	w.U64(t.TotalStoredSize)

	return w.Bytes()
}

// ParseTrailer parses a Trailer, validating magic.
func ParseTrailer(data []byte) (Trailer, error) {
	var t Trailer
	if len(data) < 4 || string(data[0:4]) != string(TrailerMagic[:]) {
		return t, errs.NewFormatError("parse trailer", errs.ErrBadMagic)
	}

	r := wire.NewReader(data)
	_, _ = r.Raw(4)

	entryCount, err := r.U64()
	if err != nil {
		return t, errs.NewFormatError("parse trailer", err)
	}
	tocChecksum, err := r.U32()
	if err != nil {
		return t, errs.NewFormatError("parse trailer", err)
	}
	totalOrig, err := r.U64()
	if err != nil {
		return t, errs.NewFormatError("parse trailer", err)
	}
	totalStored, err := r.U64()
	if err != nil {
		return t, errs.NewFormatError("parse trailer", err)
	}

	return Trailer{
		EntryCount:        entryCount,
		TOCChecksum:       tocChecksum,
		TotalOriginalSize: totalOrig,
		TotalStoredSize:   totalStored,
	}, nil
}
