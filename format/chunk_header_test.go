package format_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/format"
)

func TestChunkHeaderRoundTrip(t *testing.T) {
	h := format.ChunkHeader{
		Index:        0,
		OriginalSize: 14,
		StoredSize:   14,
		Checksum:     0x1234,
		Flags:        format.ChunkLastChunk,
	}
	data := h.Bytes()
	require.Len(t, data, format.ChunkHeaderSize)

	got, err := format.ParseChunkHeader(data)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.True(t, got.Flags.Has(format.ChunkLastChunk))
	require.False(t, got.Flags.Has(format.ChunkUncompressed))
}
