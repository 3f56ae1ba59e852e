// Package errs defines the APACK error taxonomy: a set of orthogonal error
// kinds rather than a single hierarchy, so callers can distinguish "this
// archive is corrupt" from "this entry doesn't exist" from "wrong password"
// without string-matching.
//
// Sentinel errors are wrapped with context via fmt.Errorf("...: %w", ...)
// so callers can still use errors.Is/errors.As against the sentinels below.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is; the typed errors below
// (FormatError, ChecksumError, CryptoError, ...) wrap them with context.
var (
	// ErrBadMagic indicates a record's magic bytes didn't match what was expected.
	ErrBadMagic = errors.New("apack: bad magic bytes")
	// ErrHeaderChecksum indicates the file header's CRC-32, or the trailer's
	// TOC checksum, did not validate.
	ErrHeaderChecksum = errors.New("apack: file header checksum mismatch")
	// ErrEntryHeaderChecksum indicates an entry header's CRC-32 did not validate.
	ErrEntryHeaderChecksum = errors.New("apack: entry header checksum mismatch")
	// ErrUnknownAlgorithm indicates an algorithm ID in a header has no registered provider.
	ErrUnknownAlgorithm = errors.New("apack: unknown algorithm id")
	// ErrOffsetOutOfRange indicates a stored offset or size falls outside the file bounds.
	ErrOffsetOutOfRange = errors.New("apack: offset out of range")
	// ErrCompatLevel indicates the file's compat level exceeds what this reader supports.
	ErrCompatLevel = errors.New("apack: compat level too high")
	// ErrLengthOverflow indicates a length value would not fit in its wire prefix.
	ErrLengthOverflow = errors.New("apack: length overflow")

	// ErrChecksumMismatch indicates a chunk decoded successfully but its plaintext
	// checksum didn't match the value recorded in the chunk header.
	ErrChecksumMismatch = errors.New("apack: checksum mismatch")

	// ErrAuthenticationFailed indicates an AEAD tag or key-wrap integrity check failed.
	// Per spec §4.6 this is reported without distinguishing wrong password from
	// tampering.
	ErrAuthenticationFailed = errors.New("apack: authentication failed")

	// ErrEntryNotFound indicates a lookup by name or ID found nothing.
	ErrEntryNotFound = errors.New("apack: entry not found")

	// ErrUnsupportedVersion indicates a recognized format whose major version
	// this implementation does not handle.
	ErrUnsupportedVersion = errors.New("apack: unsupported format version")

	// ErrChunkTooLarge indicates a chunk's declared original size exceeds the
	// configured security ceiling.
	ErrChunkTooLarge = errors.New("apack: chunk exceeds maximum size")
	// ErrDecompressionRatio indicates a chunk's declared original size exceeds
	// the configured maximum decompression ratio relative to its stored size.
	ErrDecompressionRatio = errors.New("apack: decompression ratio exceeds limit")
	// ErrWrappedKeyTooLarge indicates a wrapped key field exceeds the configured ceiling.
	ErrWrappedKeyTooLarge = errors.New("apack: wrapped key exceeds maximum length")

	// ErrClosed indicates an operation was attempted on a reader/writer that is
	// already closed.
	ErrClosed = errors.New("apack: archive is closed")
	// ErrFailedState indicates a writer already failed and only Close is legal.
	ErrFailedState = errors.New("apack: writer is in failed state, only Close is legal")
	// ErrStreamActive is returned by Read on an entry stream that a later
	// OpenEntry (or Close) on the same reader has superseded.
	ErrStreamActive = errors.New("apack: previous entry stream invalidated by new open")

	// ErrInvalidEntryName indicates an entry was opened with an empty name.
	ErrInvalidEntryName = errors.New("apack: entry name must not be empty")
	// ErrDuplicateEntryName indicates the same entry name was opened twice in
	// one archive.
	ErrDuplicateEntryName = errors.New("apack: duplicate entry name")

	// ErrSinkNotSeekable indicates a writer configured for random access (TOC
	// emission) was given a sink that doesn't implement io.Seeker, so the
	// file header fix-up at Close can't happen.
	ErrSinkNotSeekable = errors.New("apack: random-access archive requires a seekable sink")

	// ErrMissingKey indicates ENCRYPTED is set but the reader was given
	// neither a password nor an external key to recover the CEK.
	ErrMissingKey = errors.New("apack: encrypted archive requires a password or external key")

	// ErrStreamModeSingleEntry indicates a second entry was attempted on a
	// stream-mode writer, which permits exactly one.
	ErrStreamModeSingleEntry = errors.New("apack: stream mode permits exactly one entry")

	// ErrChunkOutOfOrder indicates a chunk's declared index didn't match its
	// position in the stream, signaling a reordered or inserted chunk.
	ErrChunkOutOfOrder = errors.New("apack: chunk out of order")
)

// ChecksumError reports a plaintext checksum mismatch for a chunk, carrying
// both the expected (header) value and the value actually computed over the
// decoded plaintext, per spec §7.
type ChecksumError struct {
	EntryID  uint64
	Chunk    uint32
	Expected uint64
	Computed uint64
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("apack: entry %d chunk %d: checksum mismatch: expected %#x, computed %#x",
		e.EntryID, e.Chunk, e.Expected, e.Computed)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// FormatError reports a structural problem with the archive that makes it
// unreadable: bad magic, an unknown algorithm ID, an offset outside the file,
// a checksum mismatch on a header, or a compat level that's too high.
type FormatError struct {
	Op  string // what the reader/writer was doing, e.g. "parse file header"
	Err error  // one of the Err* sentinels above
}

func (e *FormatError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("apack: format error: %v", e.Err)
	}

	return fmt.Sprintf("apack: format error during %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NewFormatError wraps err (normally one of the Err* sentinels) as a FormatError
// tagged with the operation that discovered it.
func NewFormatError(op string, err error) *FormatError {
	return &FormatError{Op: op, Err: err}
}

// CryptoError reports an AEAD authentication failure, a key-wrap failure, or
// a rejected KDF parameter set. Deliberately coarse: it never reveals whether
// a wrong password or tampering caused the failure.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("apack: crypto error: %v", e.Err)
	}

	return fmt.Sprintf("apack: crypto error during %s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// NewCryptoError wraps err as a CryptoError tagged with the operation that failed.
// If err is nil it defaults to ErrAuthenticationFailed.
func NewCryptoError(op string, err error) *CryptoError {
	if err == nil {
		err = ErrAuthenticationFailed
	}

	return &CryptoError{Op: op, Err: err}
}

// EntryNotFoundError reports a failed lookup by name or by ID.
type EntryNotFoundError struct {
	Name string // set when the lookup was by name
	ID   uint64 // set when the lookup was by ID
	ByID bool
}

func (e *EntryNotFoundError) Error() string {
	if e.ByID {
		return fmt.Sprintf("apack: entry id %d not found", e.ID)
	}

	return fmt.Sprintf("apack: entry %q not found", e.Name)
}

func (e *EntryNotFoundError) Unwrap() error { return ErrEntryNotFound }

// UnsupportedVersionError reports that a file's major version or compat level
// exceeds what this implementation handles.
type UnsupportedVersionError struct {
	Major, Minor, Patch uint8
	CompatLevel         uint8
	MaxCompatLevel      uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("apack: format version %d.%d.%d (compat level %d) exceeds supported compat level %d",
		e.Major, e.Minor, e.Patch, e.CompatLevel, e.MaxCompatLevel)
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }

// SecurityLimitError reports a configured ceiling being exceeded. It refuses
// to continue even though the underlying data might otherwise be valid.
type SecurityLimitError struct {
	Limit string // name of the exceeded limit, e.g. "max_chunk_original_size"
	Value uint64
	Max   uint64
	Err   error
}

func (e *SecurityLimitError) Error() string {
	return fmt.Sprintf("apack: security limit %s exceeded: %d > %d", e.Limit, e.Value, e.Max)
}

func (e *SecurityLimitError) Unwrap() error { return e.Err }

// IOError wraps a lower-level byte-source/sink failure, surfaced verbatim to
// the caller with minimal added context.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("apack: io error during %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WrapIO wraps a lower-level error as an IOError, or returns nil if err is nil.
func WrapIO(op string, err error) error {
	if err == nil {
		return nil
	}

	return &IOError{Op: op, Err: err}
}
