// Package scenario defines the target-selection scenarios of a sweep.
package scenario

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// WorstCaseTarget is an identifier far above anything a sweep generates.
const WorstCaseTarget int64 = 9999999999

var (
	// ErrUnknownScenario indicates a scenario name that could not be parsed.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrEmptySequence indicates target selection over an empty sequence.
	ErrEmptySequence = errors.New("empty sequence")
)

// Scenario selects how the search target is chosen.
type Scenario int

const (
	// Worst searches for an absent identifier, forcing a full scan.
	Worst Scenario = iota
	// Best searches for the first identifier.
	Best
	// Average searches for a uniformly random identifier.
	Average
)

// All lists every scenario in display order.
var All = []Scenario{Worst, Best, Average}

func (s Scenario) String() string {
	switch s {
	case Worst:
		return "worst"
	case Best:
		return "best"
	case Average:
		return "average"
	default:
		return fmt.Sprintf("scenario(%d)", int(s))
	}
}

// Label returns the long display name.
func (s Scenario) Label() string {
	switch s {
	case Worst:
		return "Worst Case (absent ID)"
	case Best:
		return "Best Case (first ID)"
	case Average:
		return "Average Case (random ID)"
	default:
		return s.String()
	}
}

// Valid reports whether s is one of the defined scenarios.
func (s Scenario) Valid() bool {
	return s >= Worst && s <= Average
}

// Parse accepts "worst", "best", "average" in any case, optionally followed
// by " case" or a longer label such as "Worst Case (absent ID)".
func Parse(name string) (Scenario, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexAny(n, " _-("); i >= 0 {
		n = n[:i]
	}
	switch n {
	case "worst":
		return Worst, nil
	case "best":
		return Best, nil
	case "average", "avg":
		return Average, nil
	default:
		return Worst, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scenario) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScenario, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scenario) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Selector picks a target value from a sequence according to a scenario.
type Selector struct {
	scenario Scenario
	rng      *rand.Rand
}

// NewSelector creates a selector. A nil rng uses the process-default source.
func NewSelector(s Scenario, rng *rand.Rand) *Selector {
	return &Selector{scenario: s, rng: rng}
}

// Scenario returns the scenario the selector applies.
func (sel *Selector) Scenario() Scenario {
	return sel.scenario
}

// Select returns the target for seq. It must be called for every sequence;
// targets are never reused across sequences.
func (sel *Selector) Select(seq []int64) (int64, error) {
	if len(seq) == 0 {
		return 0, ErrEmptySequence
	}

	switch sel.scenario {
	case Worst:
		last := seq[len(seq)-1]
		if last >= WorstCaseTarget {
			return last + 1, nil
		}
		return WorstCaseTarget, nil
	case Best:
		return seq[0], nil
	case Average:
		return seq[sel.intn(len(seq))], nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownScenario, int(sel.scenario))
	}
}

func (sel *Selector) intn(n int) int {
	if sel.rng == nil {
		return rand.Intn(n)
	}
	return sel.rng.Intn(n)
}
