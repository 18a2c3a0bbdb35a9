// Package dataset generates the synthetic identifier sequences searched by a sweep.
//
// Identifiers model student ID numbers: a fixed base followed by a running
// index, so a sequence of size n is BaseID, BaseID+1, ..., BaseID+n-1.
package dataset

import (
	"errors"
	"fmt"
	"unsafe"
)

// BaseID is the first identifier of every generated sequence.
const BaseID int64 = 1301210000

// ErrInvalidSize indicates a non-positive sequence size.
var ErrInvalidSize = errors.New("invalid dataset size")

// Generate returns n strictly increasing identifiers starting at BaseID.
func Generate(n int) ([]int64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("generate %d identifiers: %w", n, ErrInvalidSize)
	}

	ids := make([]int64, n)
	for i := range ids {
		ids[i] = BaseID + int64(i)
	}
	return ids, nil
}

// MustGenerate is like Generate but panics on error. Intended for tests.
func MustGenerate(n int) []int64 {
	ids, err := Generate(n)
	if err != nil {
		panic(err)
	}
	return ids
}

// Last returns the identifier Generate(n) ends with.
func Last(n int) int64 {
	return BaseID + int64(n) - 1
}

// Footprint returns the number of bytes a sequence of size n occupies.
func Footprint(n int) uint64 {
	if n <= 0 {
		return 0
	}
	return uint64(n) * uint64(unsafe.Sizeof(int64(0)))
}
