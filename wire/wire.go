// Package wire provides the little-endian binary codec shared by every
// APACK record (file header, encryption block, entry header, chunk header,
// TOC entry, trailer).
//
// APACK is always little-endian on the wire (§3 of the format spec), so
// unlike a generic byte-order abstraction this package hard-codes
// encoding/binary.LittleEndian rather than taking a pluggable ByteOrder.
// Reader tracks a running byte count so variable-size records (entry
// headers, whose size isn't stored explicitly) can report how many bytes
// they consumed.
package wire

import (
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"

	"github.com/apack-format/apack/errs"
)

// Writer accumulates bytes into an in-memory buffer using little-endian
// encoding. It never fails on write-to-buffer (append cannot fail); the only
// error it can produce is ErrLengthOverflow from a length-prefixed helper.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with buf as its initial backing array (len 0,
// existing capacity reused).
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

// Bytes returns the accumulated bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// U8 appends a single byte.
func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

// U16 appends a little-endian uint16.
func (w *Writer) U16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

// U32 appends a little-endian uint32.
func (w *Writer) U32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

// U64 appends a little-endian uint64.
func (w *Writer) U64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

// I64 appends a little-endian int64 (bit-identical to its uint64 encoding).
func (w *Writer) I64(v int64) { w.U64(uint64(v)) }

// Raw appends data verbatim with no length prefix.
func (w *Writer) Raw(data []byte) { w.buf = append(w.buf, data...) }

// Bytes16 appends a uint16 length prefix followed by data. Returns
// errs.ErrLengthOverflow if len(data) doesn't fit in a uint16.
func (w *Writer) Bytes16(data []byte) error {
	if len(data) > math.MaxUint16 {
		return errs.ErrLengthOverflow
	}
	w.U16(uint16(len(data)))
	w.Raw(data)

	return nil
}

// Bytes32 appends a uint32 length prefix followed by data. Returns
// errs.ErrLengthOverflow if len(data) doesn't fit in a uint32.
func (w *Writer) Bytes32(data []byte) error {
	if uint64(len(data)) > math.MaxUint32 {
		return errs.ErrLengthOverflow
	}
	w.U32(uint32(len(data)))
	w.Raw(data)

	return nil
}

// String16 appends a uint16 length prefix followed by the UTF-8 bytes of s.
func (w *Writer) String16(s string) error { return w.Bytes16([]byte(s)) }

// CRC32 computes the IEEE CRC-32 of data.
func CRC32(data []byte) uint32 { return crc32.ChecksumIEEE(data) }

// Reader decodes little-endian primitives from a byte slice, tracking a
// monotonic offset so callers can ask how many bytes a variable-size record
// consumed (used by the entry header, whose encoded size isn't stored).
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps buf for sequential little-endian decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return io.ErrUnexpectedEOF
	}

	return nil
}

// U8 reads a single byte.
func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++

	return v, nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2

	return v, nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4

	return v, nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8

	return v, nil
}

// I64 reads a little-endian int64.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// Raw reads exactly n bytes and returns a sub-slice of the reader's backing
// array (not a copy — callers that retain it must clone it themselves).
func (r *Reader) Raw(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.off : r.off+n]
	r.off += n

	return v, nil
}

// Bytes16 reads a uint16-length-prefixed byte string.
func (r *Reader) Bytes16() ([]byte, error) {
	n, err := r.U16()
	if err != nil {
		return nil, err
	}

	return r.Raw(int(n))
}

// Bytes32 reads a uint32-length-prefixed byte string.
func (r *Reader) Bytes32() ([]byte, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}

	return r.Raw(int(n))
}

// String16 reads a uint16-length-prefixed UTF-8 string.
func (r *Reader) String16() (string, error) {
	b, err := r.Bytes16()
	if err != nil {
		return "", err
	}

	return string(b), nil
}
