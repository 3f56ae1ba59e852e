package archive

import (
	"bytes"
	"errors"
	"io"

	"github.com/apack-format/apack/chunk"
	"github.com/apack-format/apack/envelope"
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/internal/options"
	"github.com/apack-format/apack/limits"
	"github.com/apack-format/apack/providers/aead"
	"github.com/apack-format/apack/providers/checksum"
	"github.com/apack-format/apack/providers/compress"
	"github.com/apack-format/apack/wire"
)

// maxRecordProbe bounds how many bytes Open reads speculatively to parse a
// variable-length record (encryption block, entry header) whose on-disk
// size isn't known up front. It's generous enough for any realistic
// attribute list without reading the whole file.
const maxRecordProbe = 1 << 20

// Reader opens an APACK archive, validates its header, and builds an
// in-memory entry index (by ID and by name hash) before any entry can be
// read (§4.5 C6). Every stored offset is bounds-checked against the file
// size before it is ever used to read (§4.5 "Offset validation").
type Reader struct {
	src  io.ReaderAt
	size int64

	header           format.FileHeader
	checksumProvider checksum.Provider
	cek              []byte
	lim              limits.SecurityLimits
	authHeaders      bool

	entries    []Entry
	byID       map[uint64]int
	byNameHash map[uint32][]int

	streamGen uint64
	closed    bool
}

// Open validates the file header, recovers the CEK if the archive is
// encrypted, and builds the entry index (§4.5 "Open phase"). size must be
// the exact byte length of the archive backing src.
func Open(src io.ReaderAt, size int64, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	headerBuf, err := readAt(src, 0, format.FileHeaderSize, size)
	if err != nil {
		return nil, err
	}

	header, err := format.ParseFileHeader(headerBuf)
	if err != nil {
		return nil, err
	}

	checksumProvider, err := checksum.Resolve(header.Checksum)
	if err != nil {
		return nil, errs.NewFormatError("resolve checksum provider", errs.ErrUnknownAlgorithm)
	}

	r := &Reader{
		src:              src,
		size:             size,
		header:           header,
		checksumProvider: checksumProvider,
		lim:              cfg.limits,
		authHeaders:      cfg.authenticateHeaders,
		byID:             make(map[uint64]int),
		byNameHash:       make(map[uint32][]int),
	}

	offset := int64(format.FileHeaderSize)

	if header.Mode.Has(format.ModeEncrypted) {
		next, err := r.openEncryption(offset, cfg)
		if err != nil {
			return nil, err
		}
		offset = next
	}

	var entries []Entry
	if header.Mode.Has(format.ModeRandomAccess) && header.TrailerOffset != 0 {
		entries, err = r.buildFromTOC()
	} else {
		entries, err = r.buildSequential(offset)
	}
	if err != nil {
		return nil, err
	}

	r.entries = entries
	for i, e := range entries {
		r.byID[e.ID] = i
		nameHash := checksum.NameHash32(e.Name)
		r.byNameHash[nameHash] = append(r.byNameHash[nameHash], i)
	}

	return r, nil
}

// openEncryption parses the EncryptionBlock if present at offset and
// recovers the CEK, or falls back to the externally-supplied key path when
// ENCRYPTED is set with no "ENCR" block (§4.6, §9 open question).
func (r *Reader) openEncryption(offset int64, cfg *readerConfig) (int64, error) {
	peek, err := readAt(r.src, offset, 4, r.size)
	hasBlock := err == nil && bytes.Equal(peek, format.EncryptionMagic[:])

	if !hasBlock {
		if cfg.externalKey == nil {
			return 0, errs.NewCryptoError("open archive", errs.ErrMissingKey)
		}

		r.cek = cfg.externalKey
		return offset, nil
	}

	probeLen := maxRecordProbe
	if remaining := r.size - offset; remaining < int64(probeLen) {
		probeLen = int(remaining)
	}

	buf, err := readAt(r.src, offset, probeLen, r.size)
	if err != nil {
		return 0, err
	}

	block, consumed, err := format.ParseEncryptionBlock(buf)
	if err != nil {
		return 0, err
	}

	var cek []byte
	switch {
	case cfg.password != nil:
		cek, err = envelope.Open(cfg.password, block, r.lim)
		if err != nil {
			return 0, err
		}
	case cfg.externalKey != nil:
		cek = cfg.externalKey
	default:
		return 0, errs.NewCryptoError("open archive", errs.ErrMissingKey)
	}

	r.cek = cek

	return offset + int64(consumed), nil
}

// buildFromTOC implements §4.5 step 4's random-access path: seek to the
// trailer offset, parse entryCount TOC entries, then for each one seek to
// its entry offset and parse the entry header, merging the TOC's canonical
// sizes. Every offset is validated before use (§4.5 "Offset validation").
func (r *Reader) buildFromTOC() ([]Entry, error) {
	trailerOffset := int64(r.header.TrailerOffset)
	if trailerOffset < format.FileHeaderSize || trailerOffset >= r.size {
		return nil, errs.NewFormatError("locate toc", errs.ErrOffsetOutOfRange)
	}

	entryCount := r.header.EntryCount
	tocLen := int64(entryCount) * format.TOCEntrySize
	if trailerOffset+tocLen > r.size {
		return nil, errs.NewFormatError("locate toc", errs.ErrOffsetOutOfRange)
	}

	tocBytes, err := readAt(r.src, trailerOffset, int(tocLen), r.size)
	if err != nil {
		return nil, err
	}

	tocEntries := make([]format.TOCEntry, entryCount)
	for i := range tocEntries {
		e, err := format.ParseTOCEntry(tocBytes[i*format.TOCEntrySize : (i+1)*format.TOCEntrySize])
		if err != nil {
			return nil, errs.NewFormatError("parse toc entry", err)
		}
		tocEntries[i] = e
	}

	trailerStart := trailerOffset + tocLen
	if trailerStart+format.TrailerSize > r.size {
		return nil, errs.NewFormatError("locate trailer", errs.ErrOffsetOutOfRange)
	}

	trailerBuf, err := readAt(r.src, trailerStart, format.TrailerSize, r.size)
	if err != nil {
		return nil, err
	}

	trailer, err := format.ParseTrailer(trailerBuf)
	if err != nil {
		return nil, err
	}

	if trailer.TOCChecksum != wire.CRC32(tocBytes) {
		return nil, errs.NewFormatError("validate toc", errs.ErrHeaderChecksum)
	}

	entries := make([]Entry, 0, entryCount)
	for _, tocEntry := range tocEntries {
		entryOffset := int64(tocEntry.EntryOffset)
		if entryOffset < format.FileHeaderSize || entryOffset >= r.size {
			return nil, errs.NewFormatError("validate entry offset", errs.ErrOffsetOutOfRange)
		}
		if entryOffset+int64(tocEntry.StoredSize) > r.size {
			return nil, errs.NewFormatError("validate entry offset", errs.ErrOffsetOutOfRange)
		}

		probeLen := maxRecordProbe
		if remaining := r.size - entryOffset; remaining < int64(probeLen) {
			probeLen = int(remaining)
		}

		buf, err := readAt(r.src, entryOffset, probeLen, r.size)
		if err != nil {
			return nil, err
		}

		eh, consumed, err := format.ParseEntryHeader(buf)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			ID:           eh.ID,
			Name:         eh.Name,
			MIME:         eh.MIME,
			Attributes:   eh.Attributes,
			OriginalSize: tocEntry.OriginalSize,
			StoredSize:   tocEntry.StoredSize,
			ChunkCount:   eh.ChunkCount,
			Compression:  eh.Compression,
			Encryption:   eh.Encryption,
			headerOffset: entryOffset,
			dataOffset:   entryOffset + int64(consumed),
		})
	}

	return entries, nil
}

// buildSequential implements §4.5 step 4's fallback path used when no TOC
// is present: walk entry headers from start, reading each entry's chunk
// stream to the next LAST_CHUNK flag to locate the following entry.
func (r *Reader) buildSequential(offset int64) ([]Entry, error) {
	var entries []Entry

	cur := offset
	for cur < r.size {
		magic, err := readAt(r.src, cur, 4, r.size)
		if err != nil {
			return nil, err
		}

		if bytes.Equal(magic, format.TrailerMagic[:]) {
			break
		}
		if !bytes.Equal(magic, format.EntryMagic[:]) {
			return nil, errs.NewFormatError("walk entries", errs.ErrBadMagic)
		}

		probeLen := maxRecordProbe
		if remaining := r.size - cur; remaining < int64(probeLen) {
			probeLen = int(remaining)
		}

		buf, err := readAt(r.src, cur, probeLen, r.size)
		if err != nil {
			return nil, err
		}

		eh, consumed, err := format.ParseEntryHeader(buf)
		if err != nil {
			return nil, err
		}

		dataOffset := cur + int64(consumed)
		chunkOffset := dataOffset

		var originalSize, storedSize uint64
		var chunkCount uint32

		for {
			if chunkOffset+format.ChunkHeaderSize > r.size {
				return nil, errs.NewFormatError("walk chunks", errs.ErrOffsetOutOfRange)
			}

			chBuf, err := readAt(r.src, chunkOffset, format.ChunkHeaderSize, r.size)
			if err != nil {
				return nil, err
			}

			ch, err := format.ParseChunkHeader(chBuf)
			if err != nil {
				return nil, errs.NewFormatError("walk chunks", err)
			}

			chunkOffset += format.ChunkHeaderSize
			if chunkOffset+int64(ch.StoredSize) > r.size {
				return nil, errs.NewFormatError("walk chunks", errs.ErrOffsetOutOfRange)
			}
			chunkOffset += int64(ch.StoredSize)

			originalSize += uint64(ch.OriginalSize)
			storedSize += uint64(ch.StoredSize)
			chunkCount++

			if ch.Flags.Has(format.ChunkLastChunk) {
				break
			}
		}

		entries = append(entries, Entry{
			ID:           eh.ID,
			Name:         eh.Name,
			MIME:         eh.MIME,
			Attributes:   eh.Attributes,
			OriginalSize: originalSize,
			StoredSize:   storedSize,
			ChunkCount:   chunkCount,
			Compression:  eh.Compression,
			Encryption:   eh.Encryption,
			headerOffset: cur,
			dataOffset:   dataOffset,
		})

		cur = chunkOffset
	}

	return entries, nil
}

// Entries returns every entry's metadata without decoding any chunk
// (supplemented "Listing/introspection without decoding" feature).
func (r *Reader) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// GetByName looks an entry up by exact name, tolerating XXH3-32 hash
// collisions between distinct names by confirming an exact match within the
// hash bucket (§8 property 8).
func (r *Reader) GetByName(name string) (Entry, error) {
	if r.closed {
		return Entry{}, errs.ErrClosed
	}

	for _, idx := range r.byNameHash[checksum.NameHash32(name)] {
		if r.entries[idx].Name == name {
			return r.entries[idx], nil
		}
	}

	return Entry{}, &errs.EntryNotFoundError{Name: name}
}

// GetByID looks an entry up by its unique ID.
func (r *Reader) GetByID(id uint64) (Entry, error) {
	if r.closed {
		return Entry{}, errs.ErrClosed
	}

	idx, ok := r.byID[id]
	if !ok {
		return Entry{}, &errs.EntryNotFoundError{ID: id, ByID: true}
	}

	return r.entries[idx], nil
}

// OpenEntry returns a plaintext byte stream for entry (§4.5 "Streaming
// contract"). Only one stream may be active at a time: opening a new one
// invalidates any stream previously returned by this Reader, matching the
// single shared byte-source resource model of §4.5 and §9.
func (r *Reader) OpenEntry(entry Entry) (*EntryStream, error) {
	if r.closed {
		return nil, errs.ErrClosed
	}

	compProvider, encProvider, err := r.resolveProviders(entry)
	if err != nil {
		return nil, err
	}

	r.streamGen++

	section := io.NewSectionReader(r.src, entry.dataOffset, r.size-entry.dataOffset)

	return &EntryStream{
		reader: r,
		gen:    r.streamGen,
		entry:  entry,
		src:    section,
		pipeline: chunk.Pipeline{
			Checksum:    r.checksumProvider,
			Compression: compProvider,
			Encryption:  encProvider,
			Key:         r.cek,
			Limits:      r.lim,
		},
	}, nil
}

func (r *Reader) resolveProviders(entry Entry) (compress.Provider, aead.Provider, error) {
	var compProvider compress.Provider
	if entry.Compression != format.CompressionNone {
		p, err := compress.Resolve(entry.Compression)
		if err != nil {
			return nil, nil, errs.NewFormatError("resolve compression provider", errs.ErrUnknownAlgorithm)
		}
		compProvider = p
	}

	var encProvider aead.Provider
	if entry.Encryption != format.EncryptionNone {
		p, err := aead.Resolve(entry.Encryption)
		if err != nil {
			return nil, nil, errs.NewFormatError("resolve encryption provider", errs.ErrUnknownAlgorithm)
		}
		encProvider = p
	}

	return compProvider, encProvider, nil
}

// Close releases the underlying byte source (closing it if it implements
// io.Closer). Every subsequent Reader operation fails with errs.ErrClosed.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true
	r.streamGen++

	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// readAt reads min(want, size-offset) bytes starting at offset, rejecting
// any offset outside [0, size) before issuing the read (§4.5 "Offset
// validation": "no read or seek is attempted at that offset").
func readAt(src io.ReaderAt, offset int64, want int, size int64) ([]byte, error) {
	if offset < 0 || offset >= size {
		return nil, errs.NewFormatError("read archive", errs.ErrOffsetOutOfRange)
	}

	avail := size - offset
	n := int64(want)
	if n > avail {
		n = avail
	}
	if n <= 0 {
		return nil, errs.NewFormatError("read archive", errs.ErrOffsetOutOfRange)
	}

	buf := make([]byte, n)
	read, err := src.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.WrapIO("read archive", err)
	}
	if int64(read) < n {
		return nil, errs.NewFormatError("read archive", errs.ErrOffsetOutOfRange)
	}

	return buf, nil
}
