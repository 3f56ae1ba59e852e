package checksum

import (
	"hash"

	"github.com/zeebo/xxh3"

	"github.com/apack-format/apack/format"
)

// xxh3_64Provider is XXH3-64, adapted from the teacher's internal/hash.ID
// (which hashes with classic xxHash64 via cespare/xxhash). APACK's wire
// format names XXH3 rather than classic xxHash64, so this uses
// github.com/zeebo/xxh3 instead; cespare/xxhash stays in the module for the
// in-memory collision bucketing internal/hash already does (see DESIGN.md).
type xxh3_64Provider struct{}

func (xxh3_64Provider) ID() string                   { return "xxh3-64" }
func (xxh3_64Provider) NumericID() format.ChecksumID { return format.ChecksumXXH3_64 }
func (xxh3_64Provider) New() hash.Hash64             { return xxh3.New() }
func (xxh3_64Provider) Sum(data []byte) uint64       { return xxh3.Hash(data) }

// xxh3_128Provider is XXH3-128. The chunk header's checksum field is a
// fixed uint64, so the low 64 bits of the 128-bit digest are stored; this
// sacrifices some of XXH3-128's extra collision margin in exchange for
// reusing the same 24-byte chunk header for every checksum algorithm.
type xxh3_128Provider struct{}

func (xxh3_128Provider) ID() string                   { return "xxh3-128" }
func (xxh3_128Provider) NumericID() format.ChecksumID { return format.ChecksumXXH3_128 }

func (xxh3_128Provider) New() hash.Hash64 { return xxh128Hash64{xxh3.New128()} }

func (xxh3_128Provider) Sum(data []byte) uint64 {
	return xxh3.Hash128(data).Lo
}

type xxh128Hash64 struct{ *xxh3.Hasher128 }

func (h xxh128Hash64) Sum64() uint64 { return h.Hasher128.Sum128().Lo }

// NameHash32 computes the XXH3-32 hash of an entry name used to bucket TOC
// entries for name lookup (§3, §8 property 8). Distinct names can still
// collide on this 32-bit hash; callers must always confirm the candidate's
// exact name rather than trusting the hash alone.
func NameHash32(name string) uint32 {
	return uint32(xxh3.HashString(name))
}
