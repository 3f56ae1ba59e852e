package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/errs"
)

func TestChecksumErrorUnwraps(t *testing.T) {
	err := &errs.ChecksumError{EntryID: 5, Chunk: 0, Expected: 1, Computed: 2}
	require.True(t, errors.Is(err, errs.ErrChecksumMismatch))
	require.Contains(t, err.Error(), "entry 5 chunk 0")
}

func TestFormatErrorUnwraps(t *testing.T) {
	err := errs.NewFormatError("parse file header", errs.ErrBadMagic)
	require.True(t, errors.Is(err, errs.ErrBadMagic))
	require.Contains(t, err.Error(), "parse file header")
}

func TestCryptoErrorDefaultsToAuthFailure(t *testing.T) {
	err := errs.NewCryptoError("unwrap cek", nil)
	require.True(t, errors.Is(err, errs.ErrAuthenticationFailed))
}

func TestEntryNotFoundError(t *testing.T) {
	byName := &errs.EntryNotFoundError{Name: "missing.txt"}
	require.True(t, errors.Is(byName, errs.ErrEntryNotFound))
	require.Contains(t, byName.Error(), "missing.txt")

	byID := &errs.EntryNotFoundError{ID: 42, ByID: true}
	require.Contains(t, byID.Error(), "42")
}

func TestUnsupportedVersionError(t *testing.T) {
	err := &errs.UnsupportedVersionError{Major: 2, CompatLevel: 5, MaxCompatLevel: 1}
	require.True(t, errors.Is(err, errs.ErrUnsupportedVersion))
}

func TestWrapIO(t *testing.T) {
	require.Nil(t, errs.WrapIO("read", nil))

	wrapped := errs.WrapIO("read", errors.New("boom"))
	require.Error(t, wrapped)
	require.Contains(t, wrapped.Error(), "read")
}
