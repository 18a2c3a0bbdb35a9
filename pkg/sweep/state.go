package sweep

import "fmt"

// State is the position of a sweep in its per-size protocol.
type State int

const (
	// Idle is the state before the first size is prepared.
	Idle State = iota
	// Preparing reserves budget, generates the dataset, and picks the target.
	Preparing
	// MeasuringIterative times and traces the iterative search.
	MeasuringIterative
	// MeasuringRecursive times and traces the recursive search.
	MeasuringRecursive
	// Recorded means the size's sample was appended to the table.
	Recorded
	// Done means every size was recorded and the table is frozen.
	Done
)

// String returns the snake_case name used in logs.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preparing:
		return "preparing"
	case MeasuringIterative:
		return "measuring_iterative"
	case MeasuringRecursive:
		return "measuring_recursive"
	case Recorded:
		return "recorded"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
