package wire_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/wire"
)

func TestPrimitivesRoundTrip(t *testing.T) {
	w := wire.NewWriter(nil)
	w.U8(0xAB)
	w.U16(0x1234)
	w.U32(0xDEADBEEF)
	w.U64(0x0102030405060708)
	w.I64(-1)

	r := wire.NewReader(w.Bytes())

	u8, err := r.U8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), u8)

	u16, err := r.U16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := r.U64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), u64)

	i64, err := r.I64()
	require.NoError(t, err)
	require.Equal(t, int64(-1), i64)

	require.Equal(t, 0, r.Remaining())
}

func TestLengthPrefixedRoundTrip(t *testing.T) {
	w := wire.NewWriter(nil)
	require.NoError(t, w.Bytes16([]byte("hello")))
	require.NoError(t, w.String16("apack"))
	require.NoError(t, w.Bytes32([]byte(strings.Repeat("x", 300))))

	r := wire.NewReader(w.Bytes())

	b, err := r.Bytes16()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b)

	s, err := r.String16()
	require.NoError(t, err)
	require.Equal(t, "apack", s)

	b2, err := r.Bytes32()
	require.NoError(t, err)
	require.Len(t, b2, 300)
}

func TestReaderShortBufferErrors(t *testing.T) {
	r := wire.NewReader([]byte{0x01})
	_, err := r.U32()
	require.Error(t, err)
}

func TestCRC32Deterministic(t *testing.T) {
	a := wire.CRC32([]byte("hello"))
	b := wire.CRC32([]byte("hello"))
	require.Equal(t, a, b)
	require.NotEqual(t, a, wire.CRC32([]byte("hellp")))
}
