package memdiag

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// ErrTraceActive indicates a trace was started while another was open.
var ErrTraceActive = errors.New("memory trace already active")

// Tracing is process-wide: a trace disables the garbage collector so that
// stack and heap growth during the traced call is not reclaimed before it is
// read. Only one trace may be open at a time.
var (
	traceMu     sync.Mutex
	traceActive bool
)

// Trace is an open memory trace. It must be closed with Stop.
type Trace struct {
	baseline  Stats
	gcPercent int
	stopOnce  sync.Once
}

// StartTrace collects garbage, records a baseline, and disables the GC until
// Stop is called.
func StartTrace() (*Trace, error) {
	traceMu.Lock()
	defer traceMu.Unlock()

	if traceActive {
		return nil, ErrTraceActive
	}

	// A full GC returns cached stack spans to the heap, so stack growth in the
	// traced call shows up as new StackInuse.
	runtime.GC()
	tr := &Trace{
		baseline:  Read(),
		gcPercent: debug.SetGCPercent(-1),
	}
	traceActive = true
	return tr, nil
}

// Peak returns the bytes the traced call grew by, given stats read at its end.
func (tr *Trace) Peak(end Stats) uint64 {
	var stack uint64
	if end.StackInuse > tr.baseline.StackInuse {
		stack = end.StackInuse - tr.baseline.StackInuse
	}
	var heap uint64
	if end.TotalAlloc > tr.baseline.TotalAlloc {
		heap = end.TotalAlloc - tr.baseline.TotalAlloc
	}
	return stack + heap
}

// Stop restores the GC and closes the trace. It is safe to call more than once.
func (tr *Trace) Stop() {
	tr.stopOnce.Do(func() {
		traceMu.Lock()
		defer traceMu.Unlock()
		debug.SetGCPercent(tr.gcPercent)
		traceActive = false
	})
}

// Tracing reports whether a trace is currently open.
func Tracing() bool {
	traceMu.Lock()
	defer traceMu.Unlock()
	return traceActive
}

// untraced runs fn with the trace lock held, so no trace can open until fn
// returns. It reports false without calling fn if a trace is already open.
func untraced(fn func()) bool {
	traceMu.Lock()
	defer traceMu.Unlock()
	if traceActive {
		return false
	}
	fn()
	return true
}

// Tracer measures the peak memory of a single call.
type Tracer interface {
	Measure(fn func() error) (uint64, error)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(fn func() error) (uint64, error)

// Measure calls f(fn).
func (f TracerFunc) Measure(fn func() error) (uint64, error) {
	return f(fn)
}

// DefaultTracer measures with Measure.
var DefaultTracer Tracer = TracerFunc(Measure)

type traceOutcome struct {
	end   Stats
	err   error
	panic any
}

// Measure runs fn under a trace and returns the peak bytes it used. fn runs
// on a fresh goroutine so that its stack growth is attributed to it alone;
// stats are read on that goroutine before it exits. The trace is closed on
// every path, including when fn fails or panics. A panic in fn is re-raised
// on the caller's goroutine after the trace is closed.
//
// Measure's own state is allocated before the baseline is read, so the peak
// counts only fn's allocations and stack growth.
func Measure(fn func() error) (uint64, error) {
	out := new(traceOutcome)
	done := make(chan struct{})
	run := func() {
		defer func() {
			if r := recover(); r != nil {
				out.panic = r
				out.end = Read()
			}
			close(done)
		}()
		out.err = fn()
		out.end = Read()
	}

	tr, err := StartTrace()
	if err != nil {
		return 0, err
	}
	defer tr.Stop()

	go run()
	<-done

	if out.panic != nil {
		tr.Stop()
		panic(fmt.Sprintf("memdiag: traced call panicked: %v", out.panic))
	}
	return tr.Peak(out.end), out.err
}
