// Package search implements iterative and recursive linear search over identifier sequences.
package search

import (
	"errors"
	"fmt"
)

// NotFound is the index reported when the target is absent.
const NotFound = -1

// DefaultLimit is the recursion depth allowance used when none is configured.
// It matches the largest interactive dataset size plus headroom.
const DefaultLimit = 10000 + LimitHeadroom

// LimitHeadroom is added to the largest size of a sweep to derive its default limit.
const LimitHeadroom = 5000

// ErrRecursionLimitExceeded indicates the recursive search needed more call
// depth than it was allowed.
var ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")

// LimitError describes where a recursive search ran out of depth.
type LimitError struct {
	Limit    int
	Position int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("recursion limit %d exceeded at position %d", e.Limit, e.Position)
}

// Unwrap lets errors.Is match ErrRecursionLimitExceeded.
func (e *LimitError) Unwrap() error {
	return ErrRecursionLimitExceeded
}

// Result is the outcome of one search.
type Result struct {
	// Index is the first position holding the target, or NotFound.
	Index int
	// Comparisons is the number of elements compared with the target.
	Comparisons int
}

// Found reports whether the target was located.
func (r Result) Found() bool {
	return r.Index != NotFound
}

// Iterative scans seq left to right and returns the first match.
func Iterative(seq []int64, target int64) Result {
	for i := 0; i < len(seq); i++ {
		if seq[i] == target {
			return Result{Index: i, Comparisons: i + 1}
		}
	}
	return Result{Index: NotFound, Comparisons: len(seq)}
}

// Recursive is the self-referential form of Iterative. Each examined position
// costs one stack frame, and the terminating call past the end costs one more,
// so a miss over n elements needs depth n+1. A call deeper than limit aborts
// the search with a *LimitError. A non-positive limit means DefaultLimit.
func Recursive(seq []int64, target int64, limit int) (Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	idx, err := recursiveScan(seq, target, 0, 1, limit)
	if err != nil {
		return Result{Index: NotFound}, err
	}
	if idx == NotFound {
		return Result{Index: NotFound, Comparisons: len(seq)}, nil
	}
	return Result{Index: idx, Comparisons: idx + 1}, nil
}

func recursiveScan(seq []int64, target int64, pos, depth, limit int) (int, error) {
	if depth > limit {
		return NotFound, &LimitError{Limit: limit, Position: pos}
	}
	if pos >= len(seq) {
		return NotFound, nil
	}
	if seq[pos] == target {
		return pos, nil
	}
	return recursiveScan(seq, target, pos+1, depth+1, limit)
}

// DepthNeeded returns the call depth Recursive uses to finish a search whose
// answer is idx over a sequence of length n.
func DepthNeeded(n, idx int) int {
	if idx == NotFound {
		return n + 1
	}
	return idx + 1
}
