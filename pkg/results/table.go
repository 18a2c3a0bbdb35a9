// Package results accumulates sweep measurements into an ordered table and
// reduces it to summary statistics.
package results

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFrozen indicates an append to a table that was handed off.
	ErrFrozen = errors.New("result table is frozen")
	// ErrOutOfOrder indicates a sample whose size does not exceed the last one.
	ErrOutOfOrder = errors.New("sample size not increasing")
)

// Sample is one sweep step. The Recursive* pointers are nil exactly when the
// recursive search exceeded its depth limit for this size.
type Sample struct {
	Size   int   `json:"size"`
	Target int64 `json:"target"`

	IterativeIndex       int           `json:"iterative_index"`
	IterativeComparisons int           `json:"iterative_comparisons"`
	IterativeDuration    time.Duration `json:"iterative_duration_ns"`
	IterativePeakBytes   uint64        `json:"iterative_peak_bytes"`

	RecursiveIndex       *int           `json:"recursive_index"`
	RecursiveComparisons *int           `json:"recursive_comparisons"`
	RecursiveDuration    *time.Duration `json:"recursive_duration_ns"`
	RecursivePeakBytes   *uint64        `json:"recursive_peak_bytes"`
}

// HasRecursive reports whether the recursive measurement was recorded.
func (s Sample) HasRecursive() bool {
	return s.RecursiveDuration != nil && s.RecursivePeakBytes != nil
}

// Table is an append-only, size-ordered sequence of samples. It is owned by
// a single sweep until Freeze, after which it is read-only.
type Table struct {
	samples []Sample
	frozen  bool
}

// NewTable returns an empty table with room for n samples.
func NewTable(n int) *Table {
	if n < 0 {
		n = 0
	}
	return &Table{samples: make([]Sample, 0, n)}
}

// FromSamples builds a frozen table from already ordered samples, such as
// rows read back from an export.
func FromSamples(samples []Sample) (*Table, error) {
	t := NewTable(len(samples))
	for _, s := range samples {
		if err := t.Append(s); err != nil {
			return nil, err
		}
	}
	t.Freeze()
	return t, nil
}

// Append adds s after the last sample.
func (t *Table) Append(s Sample) error {
	if t.frozen {
		return ErrFrozen
	}
	if n := len(t.samples); n > 0 && s.Size <= t.samples[n-1].Size {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, s.Size, t.samples[n-1].Size)
	}
	t.samples = append(t.samples, s)
	return nil
}

// Freeze makes the table read-only.
func (t *Table) Freeze() {
	t.frozen = true
}

// Frozen reports whether the table is read-only.
func (t *Table) Frozen() bool {
	return t.frozen
}

// Len returns the number of samples.
func (t *Table) Len() int {
	return len(t.samples)
}

// Rows returns a copy of the samples in insertion order.
func (t *Table) Rows() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Sizes returns the size column.
func (t *Table) Sizes() []int {
	sizes := make([]int, len(t.samples))
	for i, s := range t.samples {
		sizes[i] = s.Size
	}
	return sizes
}
