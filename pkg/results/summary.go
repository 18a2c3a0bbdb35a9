package results

import "time"

// Summary holds reductions over a table. Maxima skip nil recursive samples;
// when no sample has a recursive measurement, the recursive maxima are nil.
type Summary struct {
	SampleCount           int            `json:"sample_count"`
	MaxSize               int            `json:"max_size"`
	RecursiveGaps         int            `json:"recursive_gaps"`
	MaxIterativeDuration  time.Duration  `json:"max_iterative_duration_ns"`
	MaxIterativePeakBytes uint64         `json:"max_iterative_peak_bytes"`
	MaxRecursiveDuration  *time.Duration `json:"max_recursive_duration_ns"`
	MaxRecursivePeakBytes *uint64        `json:"max_recursive_peak_bytes"`
}

// Summary reduces the table. maxSize is the configured sweep maximum, which
// may exceed the last recorded size when it is not a multiple of the step.
func (t *Table) Summary(maxSize int) Summary {
	sum := Summary{
		SampleCount: len(t.samples),
		MaxSize:     maxSize,
	}

	for _, s := range t.samples {
		if s.IterativeDuration > sum.MaxIterativeDuration {
			sum.MaxIterativeDuration = s.IterativeDuration
		}
		if s.IterativePeakBytes > sum.MaxIterativePeakBytes {
			sum.MaxIterativePeakBytes = s.IterativePeakBytes
		}

		if s.RecursiveDuration == nil {
			sum.RecursiveGaps++
		} else if sum.MaxRecursiveDuration == nil || *s.RecursiveDuration > *sum.MaxRecursiveDuration {
			d := *s.RecursiveDuration
			sum.MaxRecursiveDuration = &d
		}

		if s.RecursivePeakBytes != nil &&
			(sum.MaxRecursivePeakBytes == nil || *s.RecursivePeakBytes > *sum.MaxRecursivePeakBytes) {
			b := *s.RecursivePeakBytes
			sum.MaxRecursivePeakBytes = &b
		}
	}

	return sum
}
