package search

// Algorithm names a search variant measured by a sweep.
type Algorithm string

const (
	// AlgorithmIterative is the loop-based scan.
	AlgorithmIterative Algorithm = "iterative"
	// AlgorithmRecursive is the self-referential scan.
	AlgorithmRecursive Algorithm = "recursive"
)

// Func is the common signature of both variants.
type Func func(seq []int64, target int64) (Result, error)

// Algorithms returns both variants keyed by name. The recursive variant is
// bound to limit.
func Algorithms(limit int) map[Algorithm]Func {
	return map[Algorithm]Func{
		AlgorithmIterative: func(seq []int64, target int64) (Result, error) {
			return Iterative(seq, target), nil
		},
		AlgorithmRecursive: func(seq []int64, target int64) (Result, error) {
			return Recursive(seq, target, limit)
		},
	}
}
