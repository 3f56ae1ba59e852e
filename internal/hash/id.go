// Package hash computes an in-memory seed hash for bucketing entry names
// while an archive is being written. It is unrelated to the on-disk XXH3
// name hash recorded in the table of contents (providers/checksum); that
// one is part of the wire format, this one never leaves the process.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of an entry name, used as the key into
// internal/collision.Tracker's in-memory map.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
