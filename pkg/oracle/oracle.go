// Package oracle answers "where does this identifier first occur" in O(1)
// using a minimal perfect hash. Sweeps use it to verify linear search results.
package oracle

import (
	"errors"
	"fmt"

	"github.com/relab/bbhash"

	"github.com/eunmann/searchsweep/pkg/search"
)

// ErrMismatch indicates a search result disagreeing with the index.
var ErrMismatch = errors.New("search result disagrees with oracle")

// Index maps every distinct identifier of a sequence to its first position.
type Index struct {
	mph *bbhash.BBHash2
	// ids and first are indexed by MPHF slot (0-based).
	ids   []int64
	first []int
}

// Build indexes seq.
func Build(seq []int64) (*Index, error) {
	firstSeen := make(map[int64]int, len(seq))
	keys := make([]uint64, 0, len(seq))
	for i, id := range seq {
		if _, dup := firstSeen[id]; dup {
			continue
		}
		firstSeen[id] = i
		keys = append(keys, mix(id))
	}

	if len(keys) == 0 {
		return &Index{}, nil
	}

	mph, err := bbhash.New(keys, bbhash.Gamma(2.0))
	if err != nil {
		return nil, fmt.Errorf("build MPHF over %d ids: %w", len(keys), err)
	}

	idx := &Index{
		mph:   mph,
		ids:   make([]int64, len(keys)),
		first: make([]int, len(keys)),
	}
	// BBHash returns 1-indexed values
	for id, pos := range firstSeen {
		slot := mph.Find(mix(id))
		if slot == 0 {
			return nil, fmt.Errorf("MPHF lookup failed for %d", id)
		}
		idx.ids[slot-1] = id
		idx.first[slot-1] = pos
	}
	return idx, nil
}

// Len returns the number of distinct identifiers indexed.
func (x *Index) Len() int {
	return len(x.ids)
}

// Lookup returns the first position of id.
func (x *Index) Lookup(id int64) (int, bool) {
	if x.mph == nil {
		return 0, false
	}
	slot := x.mph.Find(mix(id))
	if slot == 0 || slot > uint64(len(x.ids)) {
		return 0, false
	}
	if x.ids[slot-1] != id {
		return 0, false
	}
	return x.first[slot-1], true
}

// Expect returns the index a correct linear search reports for target.
func (x *Index) Expect(target int64) int {
	if pos, ok := x.Lookup(target); ok {
		return pos
	}
	return search.NotFound
}

// Check returns an error wrapping ErrMismatch if got is not the expected
// index for target.
func (x *Index) Check(target int64, got int) error {
	if want := x.Expect(target); got != want {
		return fmt.Errorf("%w: target %d: got index %d, want %d", ErrMismatch, target, got, want)
	}
	return nil
}

// mix spreads sequential identifiers across the key space (splitmix64 finalizer).
func mix(id int64) uint64 {
	z := uint64(id) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
