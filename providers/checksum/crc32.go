package checksum

import (
	"hash"
	"hash/crc32"

	"github.com/apack-format/apack/format"
)

// crc32Provider is the mandatory baseline checksum (every reader must
// support it, §4.2). No pack example ships a CRC-32 dependency; IEEE CRC-32
// is already in the standard library and there's nothing a third-party
// package would add for a single well-known polynomial, so this is the one
// checksum provider built directly on hash/crc32 rather than an imported
// algorithm.
type crc32Provider struct{}

func (crc32Provider) ID() string                   { return "crc32" }
func (crc32Provider) NumericID() format.ChecksumID { return format.ChecksumCRC32 }

func (crc32Provider) New() hash.Hash64 { return crc32Hash64{crc32.NewIEEE()} }

func (crc32Provider) Sum(data []byte) uint64 {
	return uint64(crc32.ChecksumIEEE(data))
}

// crc32Hash64 zero-extends hash.Hash32 into hash.Hash64 so every checksum
// provider can be driven through the same streaming interface.
type crc32Hash64 struct{ hash.Hash32 }

func (h crc32Hash64) Sum64() uint64 { return uint64(h.Hash32.Sum32()) }
