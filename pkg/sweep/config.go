package sweep

import (
	"errors"
	"fmt"

	"github.com/eunmann/searchsweep/pkg/scenario"
	"github.com/eunmann/searchsweep/pkg/search"
)

// MaxSizeLimit bounds the largest dataset a sweep may generate.
const MaxSizeLimit = 1_000_000

// ErrInvalidConfig indicates sweep inputs outside their bounds.
var ErrInvalidConfig = errors.New("invalid sweep config")

// Config holds the inputs of one sweep.
type Config struct {
	// MaxSize is the largest dataset size considered.
	MaxSize int
	// Step is the distance between consecutive sizes, and the first size.
	Step int
	// Scenario decides how targets are chosen. Fixed for the whole sweep.
	Scenario scenario.Scenario
	// RecursionLimit caps the recursive search depth. Zero means
	// MaxSize + search.LimitHeadroom.
	RecursionLimit int
	// Verify cross-checks every search result against a perfect-hash index.
	Verify bool
}

// Validate checks the bounds 1 <= Step <= MaxSize <= MaxSizeLimit.
func (c Config) Validate() error {
	switch {
	case c.MaxSize < 1 || c.MaxSize > MaxSizeLimit:
		return fmt.Errorf("%w: max size %d not in [1, %d]", ErrInvalidConfig, c.MaxSize, MaxSizeLimit)
	case c.Step < 1:
		return fmt.Errorf("%w: step %d must be positive", ErrInvalidConfig, c.Step)
	case c.Step > c.MaxSize:
		return fmt.Errorf("%w: step %d exceeds max size %d", ErrInvalidConfig, c.Step, c.MaxSize)
	case !c.Scenario.Valid():
		return fmt.Errorf("%w: %w", ErrInvalidConfig, scenario.ErrUnknownScenario)
	case c.RecursionLimit < 0:
		return fmt.Errorf("%w: recursion limit %d is negative", ErrInvalidConfig, c.RecursionLimit)
	}
	return nil
}

// EffectiveRecursionLimit returns the depth allowance the sweep applies.
func (c Config) EffectiveRecursionLimit() int {
	if c.RecursionLimit > 0 {
		return c.RecursionLimit
	}
	return c.MaxSize + search.LimitHeadroom
}

// Sizes returns step, 2*step, ... up to the largest multiple of step not
// exceeding maxSize. It returns nil for non-positive inputs.
func Sizes(maxSize, step int) []int {
	if maxSize < 1 || step < 1 {
		return nil
	}
	sizes := make([]int, 0, maxSize/step)
	for n := step; n <= maxSize; n += step {
		sizes = append(sizes, n)
	}
	return sizes
}
