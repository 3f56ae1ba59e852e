package format

import (
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/wire"
)

// EntryMagic is the 4-byte magic that opens an EntryHeader.
var EntryMagic = [4]byte{'E', 'N', 'T', 'R'}

// EntryHeaderVersion is the only entry header layout version this
// implementation writes and reads.
const EntryHeaderVersion = 1

// AttrType tags the value carried by an Attribute.
type AttrType uint8

const (
	AttrString AttrType = 0
	AttrInt64  AttrType = 1
	AttrBytes  AttrType = 2
)

// Attribute is one (key, typed value) pair in an entry's attribute list.
// Exactly one of Str, Int, or Raw is meaningful, selected by Type.
type Attribute struct {
	Key  string
	Type AttrType
	Str  string
	Int  int64
	Raw  []byte
}

// EntryHeader is the per-entry record written immediately before an entry's
// chunk stream. OriginalSize and StoredSize may be zero on disk for
// random-access archives, where the TOC carries the canonical values (§3).
type EntryHeader struct {
	Flags         EntryFlags
	ID            uint64
	OriginalSize  uint64
	StoredSize    uint64
	ChunkCount    uint32
	Compression   CompressionID
	Encryption    EncryptionID
	Name          string
	MIME          string
	Attributes    []Attribute
}

// Bytes serializes the header including its trailing CRC-32, which covers
// every byte written before it.
func (h EntryHeader) Bytes() ([]byte, error) {
	w := wire.NewWriter(nil)
	w.Raw(EntryMagic[:])
	w.U8(EntryHeaderVersion)
	w.U8(uint8(h.Flags))
	w.U64(h.ID)
	w.U64(h.OriginalSize)
	w.U64(h.StoredSize)
	w.U32(h.ChunkCount)
	w.U8(uint8(h.Compression))
	w.U8(uint8(h.Encryption))

	if err := w.String16(h.Name); err != nil {
		return nil, err
	}
	if err := w.String16(h.MIME); err != nil {
		return nil, err
	}

	if len(h.Attributes) > 0xFFFF {
		return nil, errs.ErrLengthOverflow
	}
	w.U16(uint16(len(h.Attributes)))
	for _, a := range h.Attributes {
		if err := w.String16(a.Key); err != nil {
			return nil, err
		}
		w.U8(uint8(a.Type))
		switch a.Type {
		case AttrString:
			if err := w.String16(a.Str); err != nil {
				return nil, err
			}
		case AttrInt64:
			w.I64(a.Int)
		case AttrBytes:
			if err := w.Bytes32(a.Raw); err != nil {
				return nil, err
			}
		default:
			return nil, errs.NewFormatError("serialize entry attribute", errs.ErrBadMagic)
		}
	}

	crc := wire.CRC32(w.Bytes())
	w.U32(crc)

	return w.Bytes(), nil
}

// ParseEntryHeader parses an EntryHeader starting at the beginning of data,
// validating magic and the trailing CRC-32. It returns the number of bytes
// consumed so the caller can locate the following chunk stream.
func ParseEntryHeader(data []byte) (EntryHeader, int, error) {
	var h EntryHeader

	if len(data) < 4 || string(data[0:4]) != string(EntryMagic[:]) {
		return h, 0, errs.NewFormatError("parse entry header", errs.ErrBadMagic)
	}

	r := wire.NewReader(data)
	_, _ = r.Raw(4)

	version, err := r.U8()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	_ = version

	flags, err := r.U8()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	id, err := r.U64()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	origSize, err := r.U64()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	storedSize, err := r.U64()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	chunkCount, err := r.U32()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	compID, err := r.U8()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	encID, err := r.U8()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	name, err := r.String16()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	mime, err := r.String16()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	attrCount, err := r.U16()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}

	attrs := make([]Attribute, 0, attrCount)
	for i := 0; i < int(attrCount); i++ {
		key, err := r.String16()
		if err != nil {
			return h, 0, errs.NewFormatError("parse entry attribute", err)
		}
		typeTag, err := r.U8()
		if err != nil {
			return h, 0, errs.NewFormatError("parse entry attribute", err)
		}

		attr := Attribute{Key: key, Type: AttrType(typeTag)}
		switch attr.Type {
		case AttrString:
			attr.Str, err = r.String16()
		case AttrInt64:
			attr.Int, err = r.I64()
		case AttrBytes:
			var raw []byte
			raw, err = r.Bytes32()
			attr.Raw = append([]byte(nil), raw...)
		default:
			return h, 0, errs.NewFormatError("parse entry attribute", errs.ErrBadMagic)
		}
		if err != nil {
			return h, 0, errs.NewFormatError("parse entry attribute", err)
		}

		attrs = append(attrs, attr)
	}

	crcOffset := r.Offset()
	gotCRC, err := r.U32()
	if err != nil {
		return h, 0, errs.NewFormatError("parse entry header", err)
	}
	wantCRC := wire.CRC32(data[:crcOffset])
	if gotCRC != wantCRC {
		return h, 0, errs.NewFormatError("parse entry header", errs.ErrEntryHeaderChecksum)
	}

	h = EntryHeader{
		Flags:        EntryFlags(flags),
		ID:           id,
		OriginalSize: origSize,
		StoredSize:   storedSize,
		ChunkCount:   chunkCount,
		Compression:  CompressionID(compID),
		Encryption:   EncryptionID(encID),
		Name:         name,
		MIME:         mime,
		Attributes:   attrs,
	}

	return h, r.Offset(), nil
}
