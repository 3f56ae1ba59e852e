package archive

import "github.com/apack-format/apack/format"

// Entry is the listing/introspection view of one archive member: everything
// recoverable from the file header, entry header, and (for random-access
// archives) the TOC, without decoding any chunk (§4.5 step 5, supplemented
// "Listing/introspection without decoding" feature).
type Entry struct {
	ID           uint64
	Name         string
	MIME         string
	Attributes   []format.Attribute
	OriginalSize uint64
	StoredSize   uint64
	ChunkCount   uint32
	Compression  format.CompressionID
	Encryption   format.EncryptionID

	headerOffset int64
	dataOffset   int64
}

// IsCompressed reports whether this entry's chunks are compressed at all
// (an individual chunk may still have stored uncompressed if compression
// expanded it, per §4.3 step 3).
func (e Entry) IsCompressed() bool { return e.Compression != format.CompressionNone }

// IsEncrypted reports whether this entry's chunks are encrypted.
func (e Entry) IsEncrypted() bool { return e.Encryption != format.EncryptionNone }

// EntryInput is the caller-supplied description of one entry to add to a
// Writer (§4.4 "per-entry").
type EntryInput struct {
	// Name is the entry's forward-slash separated UTF-8 path (§3).
	Name string
	// MIME is an optional MIME type string.
	MIME string
	// Attributes is an optional list of typed key/value pairs.
	Attributes []format.Attribute
}

// StringAttr builds a string-typed Attribute.
func StringAttr(key, value string) format.Attribute {
	return format.Attribute{Key: key, Type: format.AttrString, Str: value}
}

// IntAttr builds an int64-typed Attribute.
func IntAttr(key string, value int64) format.Attribute {
	return format.Attribute{Key: key, Type: format.AttrInt64, Int: value}
}

// BytesAttr builds a bytes-typed Attribute.
func BytesAttr(key string, value []byte) format.Attribute {
	return format.Attribute{Key: key, Type: format.AttrBytes, Raw: value}
}
