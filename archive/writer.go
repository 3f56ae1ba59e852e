package archive

import (
	"bufio"
	"errors"
	"io"
	"time"

	"github.com/apack-format/apack/chunk"
	"github.com/apack-format/apack/envelope"
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/format"
	"github.com/apack-format/apack/internal/collision"
	"github.com/apack-format/apack/internal/hash"
	"github.com/apack-format/apack/internal/options"
	"github.com/apack-format/apack/internal/pool"
	"github.com/apack-format/apack/limits"
	"github.com/apack-format/apack/providers/aead"
	"github.com/apack-format/apack/providers/checksum"
	"github.com/apack-format/apack/providers/compress"
	"github.com/apack-format/apack/wire"
)

type writerState uint8

const (
	writerOpen writerState = iota
	writerClosed
	writerFailed
)

// Writer orchestrates archive creation (§4.4, C5): file header, optional
// encryption block, entry stream, TOC, trailer, and the file-header fix-up
// performed at Close. It implements the state machine of §4.7: any error
// forces Failed, from which only Close is legal.
type Writer struct {
	sink   io.Writer
	offset int64
	state  writerState
	failed error

	checksum            checksum.Provider
	compression         compress.Provider
	compressionLevel    int
	encryption          aead.Provider
	cek                 []byte
	chunkSize           uint32
	randomAccess        bool
	streamMode          bool
	authenticateHeaders bool
	lim                 limits.SecurityLimits
	mode                format.ModeFlags

	createdAt uint64

	nextEntryID uint64
	tracker     *collision.Tracker
	records     []entryRecord
}

// entryRecord is the writer's bookkeeping for one already-written entry,
// enough to emit its TOCEntry at Close.
type entryRecord struct {
	id           uint64
	nameHash     uint32
	offset       int64
	originalSize uint64
	storedSize   uint64
}

// Create opens a new Writer over sink (§4.4 "Create phase"). sink need only
// implement io.Writer unless random access is enabled (the default), in
// which case Close requires it to also implement io.Seeker so the file
// header can be fixed up with the final entry count and trailer offset.
func Create(sink io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	mode := format.ModeFlags(0)
	if cfg.streamMode {
		mode |= format.ModeStream
	}
	if cfg.randomAccess {
		mode |= format.ModeRandomAccess
	}
	if cfg.compression != nil && cfg.compression.NumericID() != format.CompressionNone {
		mode |= format.ModeCompressed
	}

	w := &Writer{
		sink:                sink,
		state:               writerOpen,
		checksum:            cfg.checksum,
		compression:         cfg.compression,
		compressionLevel:    cfg.compressionLevel,
		chunkSize:           cfg.chunkSize,
		randomAccess:        cfg.randomAccess,
		streamMode:          cfg.streamMode,
		authenticateHeaders: cfg.authenticateHeaders,
		lim:                 cfg.limits,
		mode:                mode,
		tracker:             collision.NewTracker(),
	}

	switch {
	case cfg.password != nil:
		cek, block, err := envelope.Seal(cfg.password, cfg.kdf, cfg.kdfParams, cfg.cipher, cfg.limits)
		zeroBytes(cfg.password)
		if err != nil {
			return nil, err
		}

		w.cek = cek
		w.encryption = cfg.cipher
		w.mode |= format.ModeEncrypted

		blockBytes, err := block.Bytes()
		if err != nil {
			return nil, err
		}

		if err := w.writeHeaderAndBlock(blockBytes); err != nil {
			return nil, err
		}
	case cfg.externalKey != nil:
		w.cek = cfg.externalKey
		w.encryption = cfg.externalCipher
		w.mode |= format.ModeEncrypted

		if err := w.writeHeaderAndBlock(nil); err != nil {
			return nil, err
		}
	default:
		if err := w.writeHeaderAndBlock(nil); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func (w *Writer) writeHeaderAndBlock(encBlock []byte) error {
	w.createdAt = uint64(time.Now().UnixMilli())

	header := format.FileHeader{
		VersionMajor:     1,
		VersionMinor:     0,
		VersionPatch:     0,
		CompatLevel:      1,
		Mode:             w.mode,
		Checksum:         w.checksum.NumericID(),
		DefaultChunkSize: w.chunkSize,
		CreatedAtMillis:  w.createdAt,
	}

	if err := w.write(header.Bytes()); err != nil {
		return err
	}

	if len(encBlock) > 0 {
		if err := w.write(encBlock); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.sink.Write(p)
	w.offset += int64(n)

	if err != nil {
		return errs.WrapIO("write", err)
	}
	if n != len(p) {
		return errs.WrapIO("write", io.ErrShortWrite)
	}

	return nil
}

func (w *Writer) pipeline() chunk.Pipeline {
	return chunk.Pipeline{
		Checksum:         w.checksum,
		Compression:      w.compression,
		CompressionLevel: w.compressionLevel,
		Encryption:       w.encryption,
		Key:              w.cek,
		Limits:           w.lim,
	}
}

func (w *Writer) chunkAAD(entryID uint64, index uint32, originalSize uint32, last bool) []byte {
	return chunkAAD(w.authenticateHeaders, entryID, index, originalSize, last)
}

// AddEntry streams data through the chunk pipeline as one new entry and
// writes it to the archive (§4.4 "Per-entry"; §4.7 "add_entry() goes
// Open→EntryOpen→EntryClosed atomically"). The entry ID is assigned
// monotonically starting at 0.
func (w *Writer) AddEntry(input EntryInput, data io.Reader) (Entry, error) {
	if w.state == writerFailed {
		return Entry{}, errs.ErrFailedState
	}
	if w.state == writerClosed {
		return Entry{}, errs.ErrClosed
	}
	if w.streamMode && len(w.records) >= 1 {
		return Entry{}, errs.ErrStreamModeSingleEntry
	}
	if input.Name == "" {
		return Entry{}, errs.NewFormatError("add entry", errs.ErrInvalidEntryName)
	}

	if err := w.tracker.Track(input.Name, hash.ID(input.Name)); err != nil {
		w.fail(err)
		return Entry{}, err
	}

	entry, err := w.addEntry(input, data)
	if err != nil {
		w.fail(err)
		return Entry{}, err
	}

	return entry, nil
}

func (w *Writer) fail(err error) {
	w.state = writerFailed
	w.failed = err
}

func (w *Writer) addEntry(input EntryInput, data io.Reader) (Entry, error) {
	entryID := w.nextEntryID
	w.nextEntryID++

	compID := format.CompressionNone
	if w.compression != nil {
		compID = w.compression.NumericID()
	}
	encID := format.EncryptionNone
	if w.encryption != nil {
		encID = w.encryption.NumericID()
	}

	flags := format.EntryFlags(0)
	if compID != format.CompressionNone {
		flags |= format.EntryCompressed
	}
	if encID != format.EncryptionNone {
		flags |= format.EntryEncrypted
	}

	header := format.EntryHeader{
		Flags:       flags,
		ID:          entryID,
		Compression: compID,
		Encryption:  encID,
		Name:        input.Name,
		MIME:        input.MIME,
		Attributes:  input.Attributes,
	}

	headerBytes, err := header.Bytes()
	if err != nil {
		return Entry{}, err
	}

	entryOffset := w.offset
	if err := w.write(headerBytes); err != nil {
		return Entry{}, err
	}

	pipeline := w.pipeline()

	originalSize, storedSize, chunkCount, err := w.streamChunks(entryID, pipeline, data)
	if err != nil {
		return Entry{}, err
	}

	nameHash := checksum.NameHash32(input.Name)
	w.records = append(w.records, entryRecord{
		id:           entryID,
		nameHash:     nameHash,
		offset:       entryOffset,
		originalSize: originalSize,
		storedSize:   storedSize,
	})

	return Entry{
		ID:           entryID,
		Name:         input.Name,
		MIME:         input.MIME,
		Attributes:   input.Attributes,
		OriginalSize: originalSize,
		StoredSize:   storedSize,
		ChunkCount:   chunkCount,
		Compression:  compID,
		Encryption:   encID,
	}, nil
}

// streamChunks slices data into chunkSize pieces and writes each one through
// the pipeline, using a bufio.Reader so the last chunk can be detected by
// peeking one byte ahead rather than buffering the whole entry (§4.3
// "Write path per chunk").
func (w *Writer) streamChunks(entryID uint64, pipeline chunk.Pipeline, data io.Reader) (uint64, uint64, uint32, error) {
	bufSize := int(w.chunkSize)
	if bufSize < 1 {
		bufSize = 1
	}

	br := bufio.NewReaderSize(data, bufSize)

	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)
	buf.ExtendOrGrow(bufSize)
	plain := buf.Bytes()

	var originalSize, storedSize uint64
	var index uint32

	for {
		n, err := io.ReadFull(br, plain)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return 0, 0, 0, errs.WrapIO("read entry data", err)
		}

		_, peekErr := br.Peek(1)
		last := errors.Is(peekErr, io.EOF)

		aad := w.chunkAAD(entryID, index, uint32(n), last)

		chunkHeader, body, encErr := pipeline.Encode(index, plain[:n], last, aad)
		if encErr != nil {
			return 0, 0, 0, encErr
		}

		if werr := w.write(chunkHeader.Bytes()); werr != nil {
			return 0, 0, 0, werr
		}
		if werr := w.write(body); werr != nil {
			return 0, 0, 0, werr
		}

		originalSize += uint64(n)
		storedSize += uint64(len(body))
		index++

		if last {
			break
		}
	}

	return originalSize, storedSize, index, nil
}

// Close finishes the archive: TOC + trailer when random access is enabled,
// otherwise just a minimal trailer, followed (random access only) by
// seeking back to rewrite the file header with the final entry count and
// trailer offset (§4.4 "Close phase"). Close is idempotent once it
// succeeds, and is the only legal operation after a Failed state.
func (w *Writer) Close() error {
	if w.state == writerClosed {
		return nil
	}
	if w.state == writerFailed {
		w.state = writerClosed
		if c, ok := w.sink.(io.Closer); ok {
			_ = c.Close()
		}
		return w.failed
	}

	defer func() {
		w.state = writerClosed
		if c, ok := w.sink.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	var tocChecksum uint32
	var tocOffset int64

	if w.randomAccess {
		tocOffset = w.offset
		tocBytes := make([]byte, 0, len(w.records)*format.TOCEntrySize)
		for _, rec := range w.records {
			e := format.TOCEntry{
				EntryID:      rec.id,
				NameHash:     rec.nameHash,
				EntryOffset:  uint64(rec.offset),
				OriginalSize: rec.originalSize,
				StoredSize:   rec.storedSize,
			}
			tocBytes = append(tocBytes, e.Bytes()...)
		}
		tocChecksum = wire.CRC32(tocBytes)

		if err := w.write(tocBytes); err != nil {
			w.fail(err)
			return err
		}
	}

	var totalOriginal, totalStored uint64
	for _, rec := range w.records {
		totalOriginal += rec.originalSize
		totalStored += rec.storedSize
	}

	trailer := format.Trailer{
		EntryCount:        uint64(len(w.records)),
		TOCChecksum:       tocChecksum,
		TotalOriginalSize: totalOriginal,
		TotalStoredSize:   totalStored,
	}
	if err := w.write(trailer.Bytes()); err != nil {
		w.fail(err)
		return err
	}

	if w.randomAccess {
		seeker, ok := w.sink.(io.Seeker)
		if !ok {
			err := errs.ErrSinkNotSeekable
			w.fail(err)
			return err
		}

		header := format.FileHeader{
			VersionMajor:     1,
			VersionMinor:     0,
			VersionPatch:     0,
			CompatLevel:      1,
			Mode:             w.mode,
			Checksum:         w.checksum.NumericID(),
			DefaultChunkSize: w.chunkSize,
			EntryCount:       uint64(len(w.records)),
			TrailerOffset:    uint64(tocOffset),
			CreatedAtMillis:  w.createdAt,
		}

		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			err = errs.WrapIO("seek to file header", err)
			w.fail(err)
			return err
		}

		if err := w.write(header.Bytes()); err != nil {
			w.fail(err)
			return err
		}
	}

	return nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
