package format

import "github.com/apack-format/apack/wire"

// TOCEntrySize is the fixed on-disk size of TOCEntry: entry ID (8) + name
// hash (4) + reserved (4) + entry offset (8) + original size (8) + stored
// size (8) (§3).
const TOCEntrySize = 40

// TOCEntry is one fixed-size record in the table of contents, in entry write
// order. NameHash is the XXH3-32 hash of the entry's name (§3); multiple
// entries may share a NameHash, which the reader's name index must tolerate
// (§8 property 8).
type TOCEntry struct {
	EntryID      uint64
	NameHash     uint32
	EntryOffset  uint64
	OriginalSize uint64
	StoredSize   uint64
}

// Bytes serializes the entry to exactly TOCEntrySize bytes, with a 4-byte
// reserved field after NameHash.
func (e TOCEntry) Bytes() []byte {
	w := wire.NewWriter(make([]byte, 0, TOCEntrySize))
	w.U64(e.EntryID)
	w.U32(e.NameHash)
	w.U32(0) // reserved
	w.U64(e.EntryOffset)
	w.U64(e.OriginalSize)
	w.U64(e.StoredSize)

	return w.Bytes()
}

// ParseTOCEntry parses a TOCEntry from exactly TOCEntrySize bytes.
func ParseTOCEntry(data []byte) (TOCEntry, error) {
	var e TOCEntry
	r := wire.NewReader(data)

	id, err := r.U64()
	if err != nil {
		return e, err
	}
	nameHash, err := r.U32()
	if err != nil {
		return e, err
	}
	_, err = r.U32() // reserved
	if err != nil {
		return e, err
	}
	offset, err := r.U64()
	if err != nil {
		return e, err
	}
	origSize, err := r.U64()
	if err != nil {
		return e, err
	}
	storedSize, err := r.U64()
	if err != nil {
		return e, err
	}

	return TOCEntry{
		EntryID:      id,
		NameHash:     nameHash,
		EntryOffset:  offset,
		OriginalSize: origSize,
		StoredSize:   storedSize,
	}, nil
}
