package logging

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/eunmann/searchsweep/pkg/humanfmt"
)

// Event names shared by sweep, export, and publish logs.
const (
	EventStepStarted    = "step_started"
	EventStepCompleted  = "step_completed"
	EventPhaseCompleted = "phase_completed"
	EventFileWritten    = "file_written"
)

type field struct {
	key string
	val any
}

// CompletionEvent builds a completion log line. Fields are emitted in the
// order they were added. When pretty mode is on, byte, count, and duration
// fields get a *_h companion.
type CompletionEvent struct {
	log     zerolog.Logger
	event   string
	phase   string
	elapsed time.Duration
	fields  []field
}

// NewCompletionEvent creates a new completion event builder.
func NewCompletionEvent(log zerolog.Logger, event, phase string, elapsed time.Duration) *CompletionEvent {
	return &CompletionEvent{
		log:     log,
		event:   event,
		phase:   phase,
		elapsed: elapsed,
	}
}

func (ce *CompletionEvent) add(key string, val any) *CompletionEvent {
	ce.fields = append(ce.fields, field{key, val})
	return ce
}

func (ce *CompletionEvent) human(key, val string) {
	if IsPrettyMode() {
		ce.add(key+"_h", val)
	}
}

func (ce *CompletionEvent) Str(key, val string) *CompletionEvent {
	return ce.add(key, val)
}

func (ce *CompletionEvent) Int(key string, val int) *CompletionEvent {
	return ce.add(key, val)
}

func (ce *CompletionEvent) Int64(key string, val int64) *CompletionEvent {
	return ce.add(key, val)
}

func (ce *CompletionEvent) Bool(key string, val bool) *CompletionEvent {
	return ce.add(key, val)
}

// Duration adds key_ns.
func (ce *CompletionEvent) Duration(key string, d time.Duration) *CompletionEvent {
	ce.add(key+"_ns", d.Nanoseconds())
	ce.human(key, humanfmt.Duration(d))
	return ce
}

func (ce *CompletionEvent) Bytes(key string, n int64) *CompletionEvent {
	ce.add(key, n)
	ce.human(key, humanfmt.Bytes(n))
	return ce
}

func (ce *CompletionEvent) BytesUint64(key string, n uint64) *CompletionEvent {
	return ce.Bytes(key, int64(n))
}

func (ce *CompletionEvent) Count(key string, n int64) *CompletionEvent {
	ce.add(key, n)
	ce.human(key, humanfmt.Count(n))
	return ce
}

// Progress adds done, total, progress_pct, and eta_ms when eta is known.
func (ce *CompletionEvent) Progress(done, total int64, eta time.Duration) *CompletionEvent {
	ce.add("done", done).add("total", total)
	if total > 0 {
		ce.add("progress_pct", float64(done)*100/float64(total))
	}
	if eta > 0 {
		ce.add("eta_ms", eta.Milliseconds())
		ce.human("eta", humanfmt.Duration(eta))
	}
	return ce
}

// ProgressFromTracker adds progress fields from a ProgressTracker.
func (ce *CompletionEvent) ProgressFromTracker(pt *ProgressTracker) *CompletionEvent {
	done, total := pt.Progress()
	return ce.Progress(done, total, pt.ETA())
}

// Log emits the event at info level.
func (ce *CompletionEvent) Log(msg string) {
	ce.emit(ce.log.Info(), msg)
}

// LogDebug emits the event at debug level.
func (ce *CompletionEvent) LogDebug(msg string) {
	ce.emit(ce.log.Debug(), msg)
}

func (ce *CompletionEvent) emit(e *zerolog.Event, msg string) {
	if e == nil {
		return
	}
	e = e.Str("event", ce.event).
		Str("phase", ce.phase).
		Int64("duration_ms", ce.elapsed.Milliseconds())
	if IsPrettyMode() {
		e = e.Str("duration_h", humanfmt.Duration(ce.elapsed))
	}
	for _, f := range ce.fields {
		e = e.Interface(f.key, f.val)
	}
	e.Msg(msg)
}

// PhaseComplete starts a phase_completed event.
func PhaseComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, EventPhaseCompleted, phase, elapsed)
}

// StepComplete starts a step_completed event for one sweep size.
func StepComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, EventStepCompleted, phase, elapsed)
}

// FileWritten starts a file_written event.
func FileWritten(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, EventFileWritten, phase, elapsed)
}

// StepStarted logs a step start at debug level. It carries no duration or
// progress_pct.
func StepStarted(log zerolog.Logger, phase string, size int, stepsComplete, stepsTotal int64) {
	log.Debug().
		Str("event", EventStepStarted).
		Str("phase", phase).
		Int("size", size).
		Int64("steps_complete", stepsComplete).
		Int64("steps_total", stepsTotal).
		Msg("step started")
}
