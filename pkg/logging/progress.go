package logging

import (
	"sync"
	"time"
)

// etaWindow is how many recent steps feed the per-element cost estimate.
const etaWindow = 10

// ProgressTracker tracks completed sweep steps with ETA calculation.
// A step's cost grows with its input size, so the ETA scales the recent
// cost per element by the elements still to search rather than assuming
// every remaining step costs the same. It is safe for concurrent use.
type ProgressTracker struct {
	phase     string
	sizes     []int
	remaining []int64 // remaining[i] = sum(sizes[i:])
	startTime time.Time

	mu     sync.Mutex
	done   int
	recent []float64 // ns per element
}

// NewProgressTracker creates a tracker for steps over the given input sizes,
// in the order they will run.
func NewProgressTracker(phase string, sizes []int) *ProgressTracker {
	remaining := make([]int64, len(sizes)+1)
	for i := len(sizes) - 1; i >= 0; i-- {
		remaining[i] = remaining[i+1] + int64(max(sizes[i], 1))
	}
	return &ProgressTracker{
		phase:     phase,
		sizes:     sizes,
		remaining: remaining,
		startTime: time.Now(),
		recent:    make([]float64, 0, etaWindow),
	}
}

// RecordCompletion records that the next step completed in d. Calls beyond
// the last step are ignored.
func (pt *ProgressTracker) RecordCompletion(d time.Duration) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.done >= len(pt.sizes) {
		return
	}
	perElem := float64(d) / float64(max(pt.sizes[pt.done], 1))
	if len(pt.recent) == etaWindow {
		pt.recent = pt.recent[1:]
	}
	pt.recent = append(pt.recent, perElem)
	pt.done++
}

// Progress returns completed and total step counts.
func (pt *ProgressTracker) Progress() (completed, total int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return int64(pt.done), int64(len(pt.sizes))
}

// Fraction returns the completed fraction in [0, 1].
func (pt *ProgressTracker) Fraction() float64 {
	done, total := pt.Progress()
	if total == 0 {
		return 1
	}
	return float64(done) / float64(total)
}

// ETA returns the estimated time remaining.
func (pt *ProgressTracker) ETA() time.Duration {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.done == 0 || pt.done >= len(pt.sizes) {
		return 0
	}
	var sum float64
	for _, c := range pt.recent {
		sum += c
	}
	avg := sum / float64(len(pt.recent))
	return time.Duration(avg * float64(pt.remaining[pt.done]))
}

// Elapsed returns time since tracking started.
func (pt *ProgressTracker) Elapsed() time.Duration {
	return time.Since(pt.startTime)
}

// Phase returns the phase name the tracker was created for.
func (pt *ProgressTracker) Phase() string {
	return pt.phase
}
