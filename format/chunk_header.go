package format

import "github.com/apack-format/apack/wire"

// ChunkHeaderSize is the fixed on-disk size of ChunkHeader, body excluded (§3).
const ChunkHeaderSize = 24

// ChunkHeader precedes every chunk body. Checksum is computed over the
// chunk's plaintext (before compression and encryption); for 32-bit checksum
// algorithms the upper 32 bits are zero (§3, §4.3).
type ChunkHeader struct {
	Index        uint32
	OriginalSize uint32
	StoredSize   uint32
	Checksum     uint64
	Flags        ChunkFlags
}

// Bytes serializes the header to exactly ChunkHeaderSize bytes.
func (h ChunkHeader) Bytes() []byte {
	w := wire.NewWriter(make([]byte, 0, ChunkHeaderSize))
	w.U32(h.Index)
	w.U32(h.OriginalSize)
	w.U32(h.StoredSize)
	w.U64(h.Checksum)
	w.U32(uint32(h.Flags))

	return w.Bytes()
}

// ParseChunkHeader parses a ChunkHeader from exactly ChunkHeaderSize bytes.
func ParseChunkHeader(data []byte) (ChunkHeader, error) {
	var h ChunkHeader
	r := wire.NewReader(data)

	idx, err := r.U32()
	if err != nil {
		return h, err
	}
	orig, err := r.U32()
	if err != nil {
		return h, err
	}
	stored, err := r.U32()
	if err != nil {
		return h, err
	}
	checksum, err := r.U64()
	if err != nil {
		return h, err
	}
	flags, err := r.U32()
	if err != nil {
		return h, err
	}

	return ChunkHeader{
		Index:        idx,
		OriginalSize: orig,
		StoredSize:   stored,
		Checksum:     checksum,
		Flags:        ChunkFlags(flags),
	}, nil
}
