// Package collision tracks entry names and their in-memory seed hashes
// while an archive writer is open, detecting the case where two distinct
// entry names happen to produce the same in-memory hash bucket. The writer
// doesn't need to do anything special when two names collide - the on-disk
// format always stores full names and the reader resolves lookups by exact
// name within a hash bucket (§8 property 8) - but the tracker lets it assert
// the invariant and reject genuine duplicate names early, before any bytes
// are written.
package collision

import "github.com/apack-format/apack/errs"

// Tracker tracks entry names and detects in-memory hash collisions during
// archive writing. It maintains a hash-to-name mapping plus an ordered list
// of names in write order.
type Tracker struct {
	names        map[uint64]string
	namesList    []string
	hasCollision bool
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:     make(map[uint64]string),
		namesList: make([]string, 0),
	}
}

// Track records an entry name under its seed hash. It returns an error if
// name is empty or if this exact name was already tracked (a duplicate
// entry name within the same archive); a collision between two distinct
// names sharing the same hash sets HasCollision but is not an error, since
// the on-disk format tolerates it.
func (t *Tracker) Track(name string, hash uint64) error {
	if name == "" {
		return errs.NewFormatError("track entry name", errs.ErrInvalidEntryName)
	}

	if existing, ok := t.names[hash]; ok {
		if existing == name {
			return errs.NewFormatError("track entry name", errs.ErrDuplicateEntryName)
		}

		t.hasCollision = true
	}

	t.names[hash] = name
	t.namesList = append(t.namesList, name)

	return nil
}

// HasCollision reports whether two distinct names have shared a hash.
func (t *Tracker) HasCollision() bool { return t.hasCollision }

// Names returns the tracked names in the order they were added.
func (t *Tracker) Names() []string { return t.namesList }

// Count returns the number of tracked names.
func (t *Tracker) Count() int { return len(t.namesList) }

// Reset clears all tracked names and collision state, retaining capacity.
func (t *Tracker) Reset() {
	for k := range t.names {
		delete(t.names, k)
	}
	t.namesList = t.namesList[:0]
	t.hasCollision = false
}
