// Package sysmem detects system RAM.
//
// Sweeps use it to size the default memory budget and to record the host
// a run was measured on, including how much memory was free when it began.
package sysmem

// DefaultMemoryBytes is the fallback total (4 GiB) used when detection fails
// or the platform is unsupported.
const DefaultMemoryBytes uint64 = 4 << 30

// Result holds the result of memory detection.
type Result struct {
	TotalBytes uint64

	// AvailableBytes is free memory at the time of the call, or 0 when the
	// platform does not report it.
	AvailableBytes uint64

	// Reliable is false when TotalBytes is the DefaultMemoryBytes fallback.
	Reliable bool
}

// Total returns the system memory, or DefaultMemoryBytes with
// Reliable=false when detection fails.
func Total() Result {
	total, avail, ok := systemMemory()
	if !ok || total == 0 {
		return Result{TotalBytes: DefaultMemoryBytes}
	}
	return Result{TotalBytes: total, AvailableBytes: min(avail, total), Reliable: true}
}
