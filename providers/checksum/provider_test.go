package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apack-format/apack/format"
)

func TestRegistryLookups(t *testing.T) {
	for _, name := range []string{"crc32", "xxh3-64", "xxh3-128"} {
		p, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, p.ID())
	}
}

func TestResolveUnknownID(t *testing.T) {
	_, err := Resolve(format.ChecksumID(99))
	assert.Error(t, err)
}

func TestSumIsDeterministic(t *testing.T) {
	data := []byte("a chunk of archived bytes")

	for _, name := range []string{"crc32", "xxh3-64", "xxh3-128"} {
		p, _ := ByName(name)
		a := p.Sum(data)
		b := p.Sum(data)
		assert.Equal(t, a, b, name)
	}
}

func TestSumDetectsCorruption(t *testing.T) {
	data := []byte("a chunk of archived bytes")
	tampered := append([]byte(nil), data...)
	tampered[0] ^= 0xFF

	for _, name := range []string{"crc32", "xxh3-64", "xxh3-128"} {
		p, _ := ByName(name)
		assert.NotEqual(t, p.Sum(data), p.Sum(tampered), name)
	}
}

func TestStreamingMatchesOneShot(t *testing.T) {
	data := []byte("streamed in three pieces for the checksum provider test")

	for _, name := range []string{"crc32", "xxh3-64", "xxh3-128"} {
		p, _ := ByName(name)
		h := p.New()
		_, _ = h.Write(data[:10])
		_, _ = h.Write(data[10:30])
		_, _ = h.Write(data[30:])

		assert.Equal(t, p.Sum(data), h.Sum64(), name)
	}
}

func TestNameHash32IsDeterministic(t *testing.T) {
	assert.Equal(t, NameHash32("entry/one"), NameHash32("entry/one"))
	assert.NotEqual(t, NameHash32("entry/one"), NameHash32("entry/two"))
}
