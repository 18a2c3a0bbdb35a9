// Package memdiag measures the memory a single search call uses and, for
// debugging, logs process memory while a sweep runs.
//
// Enable periodic debug logging with SEARCHSWEEP_MEM_DEBUG=1.
// Enable the pprof server with SEARCHSWEEP_MEM_PPROF=1 (listens on :6060) or
// SEARCHSWEEP_MEM_PPROF=<addr>.
package memdiag

import (
	"runtime"
)

// Stats holds the runtime memory figures a sweep cares about.
type Stats struct {
	// HeapAlloc is bytes allocated on heap and still in use.
	HeapAlloc uint64

	// TotalAlloc is cumulative heap bytes allocated, even if freed.
	TotalAlloc uint64

	// StackInuse is bytes in stack spans, which grows with call depth.
	StackInuse uint64

	// Sys is bytes obtained from the OS.
	Sys uint64

	NumGC uint32
}

// Read reads current memory statistics. It stops the world briefly.
func Read() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		HeapAlloc:  m.HeapAlloc,
		TotalAlloc: m.TotalAlloc,
		StackInuse: m.StackInuse,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

// Footprint is live heap plus stack.
func (s Stats) Footprint() uint64 {
	return s.HeapAlloc + s.StackInuse
}
