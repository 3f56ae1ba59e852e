package format_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/format"
)

func TestTOCEntryRoundTrip(t *testing.T) {
	e := format.TOCEntry{
		EntryID:      3,
		NameHash:     0xCAFEBABE,
		EntryOffset:  4096,
		OriginalSize: 100,
		StoredSize:   80,
	}
	data := e.Bytes()
	require.Len(t, data, format.TOCEntrySize)

	got, err := format.ParseTOCEntry(data)
	require.NoError(t, err)
	require.Equal(t, e, got)
}
