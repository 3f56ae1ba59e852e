package archive

import (
	"io"

	"github.com/apack-format/apack/chunk"
	"github.com/apack-format/apack/errs"
	"github.com/apack-format/apack/format"
)

// EntryStream is a plaintext io.Reader over one archive entry, decoding
// chunks lazily as Read is called (§4.5 "Streaming contract"). Opening a new
// stream from the same Reader invalidates any EntryStream obtained earlier,
// since both addresses the same single-active-stream resource (§4.5, §9).
type EntryStream struct {
	reader   *Reader
	gen      uint64
	entry    Entry
	src      *io.SectionReader
	pipeline chunk.Pipeline

	pending []byte // decoded plaintext not yet returned to the caller
	index   uint32
	done    bool
}

// Read implements io.Reader, decoding one chunk at a time: decrypt (if
// encrypted), decompress (unless flagged store), and verify the plaintext
// checksum (§4.3 "Read path per chunk"). A checksum failure surfaces as
// *errs.ChecksumError without invalidating any other entry's stream.
func (s *EntryStream) Read(p []byte) (int, error) {
	if s.reader.closed {
		return 0, errs.ErrClosed
	}
	if s.gen != s.reader.streamGen {
		return 0, errs.ErrStreamActive
	}

	for len(s.pending) == 0 {
		if s.done {
			return 0, io.EOF
		}

		n, err := s.readChunk()
		if err != nil {
			return 0, err
		}

		s.pending = n
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	return n, nil
}

func (s *EntryStream) readChunk() ([]byte, error) {
	headerBuf := make([]byte, format.ChunkHeaderSize)
	if _, err := io.ReadFull(s.src, headerBuf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errs.NewFormatError("read chunk header", errs.ErrOffsetOutOfRange)
		}
		return nil, errs.WrapIO("read chunk header", err)
	}

	header, err := format.ParseChunkHeader(headerBuf)
	if err != nil {
		return nil, errs.NewFormatError("parse chunk header", err)
	}
	if header.Index != s.index {
		return nil, errs.NewFormatError("read chunk header", errs.ErrChunkOutOfOrder)
	}

	body := make([]byte, header.StoredSize)
	if _, err := io.ReadFull(s.src, body); err != nil {
		return nil, errs.WrapIO("read chunk body", err)
	}

	last := header.Flags.Has(format.ChunkLastChunk)
	aad := chunkAAD(s.reader.authHeaders, s.entry.ID, header.Index, header.OriginalSize, last)

	plaintext, err := s.pipeline.Decode(s.entry.ID, header, body, aad)
	if err != nil {
		return nil, err
	}

	s.index++
	if last {
		s.done = true
	}

	return plaintext, nil
}
