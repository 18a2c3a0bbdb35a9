// Package membudget bounds the memory a sweep may hold for its datasets.
//
// Each step reserves the footprint of its identifier sequence before
// generating it and releases it once the step is recorded, so a sweep whose
// largest dataset cannot fit fails up front instead of exhausting the host.
package membudget

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/eunmann/searchsweep/pkg/humanfmt"
	"github.com/eunmann/searchsweep/pkg/sysmem"
)

// DefaultBudgetBytes is the fallback memory budget when system RAM cannot be detected.
const DefaultBudgetBytes uint64 = 2 * humanfmt.GiB

// ErrBudgetExceeded indicates a reservation larger than what is available.
var ErrBudgetExceeded = errors.New("memory budget exceeded")

// ErrInvalidSize indicates a size string ParseHumanSize cannot read.
var ErrInvalidSize = errors.New("invalid size")

// BudgetSource indicates how the memory budget was determined.
type BudgetSource string

const (
	BudgetSourceAuto50Pct BudgetSource = "auto-50pct"
	BudgetSourceDefault   BudgetSource = "default"
	BudgetSourceCLI       BudgetSource = "cli"
	BudgetSourceEnv       BudgetSource = "env"
	BudgetSourceConfig    BudgetSource = "config"
)

// Budget tracks reserved bytes against a fixed total.
//
// Budget is safe for concurrent use.
type Budget struct {
	total  uint64
	source BudgetSource
	inUse  atomic.Uint64
	peak   atomic.Uint64
}

// Config holds configuration for creating a Budget.
type Config struct {
	TotalBytes uint64
	Source     BudgetSource
}

// New creates a new Budget with the given configuration.
func New(cfg Config) *Budget {
	return &Budget{
		total:  cfg.TotalBytes,
		source: cfg.Source,
	}
}

// NewFromSystemRAM creates a Budget set to 50% of system RAM.
// If RAM cannot be detected, uses DefaultBudgetBytes.
func NewFromSystemRAM() *Budget {
	if mem := sysmem.Total(); mem.Reliable {
		return New(Config{TotalBytes: mem.TotalBytes / 2, Source: BudgetSourceAuto50Pct})
	}
	return New(Config{TotalBytes: DefaultBudgetBytes, Source: BudgetSourceDefault})
}

func (b *Budget) Total() uint64 { return b.total }

func (b *Budget) InUse() uint64 { return b.inUse.Load() }

// Peak returns the most bytes held at once.
func (b *Budget) Peak() uint64 { return b.peak.Load() }

func (b *Budget) Source() BudgetSource { return b.source }

// Available returns total minus in-use bytes.
func (b *Budget) Available() uint64 {
	return b.total - min(b.inUse.Load(), b.total)
}

// Fits reports whether n bytes could ever be reserved.
func (b *Budget) Fits(n uint64) bool {
	return n <= b.total
}

// Reservation is held budget. Release returns it; further calls are no-ops.
type Reservation struct {
	budget   *Budget
	bytes    uint64
	released atomic.Bool
}

// Bytes returns the reserved size.
func (r *Reservation) Bytes() uint64 { return r.bytes }

// Release returns the bytes to the budget.
func (r *Reservation) Release() {
	if r == nil || !r.released.CompareAndSwap(false, true) {
		return
	}
	r.budget.inUse.Add(^(r.bytes - 1))
}

// Reserve holds n bytes or returns an error wrapping ErrBudgetExceeded.
func (b *Budget) Reserve(n uint64) (*Reservation, error) {
	for {
		current := b.inUse.Load()
		next := current + n
		if next > b.total || next < current {
			return nil, fmt.Errorf("%w: reserve %s with %s of %s available",
				ErrBudgetExceeded, FormatBytes(n), FormatBytes(b.Available()), FormatBytes(b.total))
		}
		if b.inUse.CompareAndSwap(current, next) {
			b.raisePeak(next)
			return &Reservation{budget: b, bytes: n}, nil
		}
	}
}

func (b *Budget) raisePeak(v uint64) {
	for {
		p := b.peak.Load()
		if v <= p || b.peak.CompareAndSwap(p, v) {
			return
		}
	}
}

// Stats holds current budget statistics.
type Stats struct {
	TotalBytes     uint64
	InUseBytes     uint64
	PeakBytes      uint64
	AvailableBytes uint64
	Source         BudgetSource
	UsagePercent   float64
}

// Stats returns current budget statistics.
func (b *Budget) Stats() Stats {
	s := Stats{
		TotalBytes:     b.total,
		InUseBytes:     b.inUse.Load(),
		PeakBytes:      b.peak.Load(),
		AvailableBytes: b.Available(),
		Source:         b.source,
	}
	if b.total > 0 {
		s.UsagePercent = float64(s.InUseBytes) / float64(b.total) * 100
	}
	return s
}

// sizeUnits maps lower-cased suffixes to multipliers. Single letters are binary.
var sizeUnits = map[string]float64{
	"": 1, "b": 1,
	"kb": 1e3, "k": humanfmt.KiB, "kib": humanfmt.KiB,
	"mb": 1e6, "m": humanfmt.MiB, "mib": humanfmt.MiB,
	"gb": 1e9, "g": humanfmt.GiB, "gib": humanfmt.GiB,
	"tb": 1e12, "t": humanfmt.TiB, "tib": humanfmt.TiB,
}

// ParseHumanSize parses a size such as "4GiB", "512MB", or "1.5 g".
// Suffixes are case-insensitive: B, KB, KiB, MB, MiB, GB, GiB, TB, TiB, and
// the binary shorthands K, M, G, T.
func ParseHumanSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty size string", ErrInvalidSize)
	}

	numEnd := strings.IndexFunc(s, func(c rune) bool { return (c < '0' || c > '9') && c != '.' })
	if numEnd < 0 {
		numEnd = len(s)
	}
	num, err := strconv.ParseFloat(s[:numEnd], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number in %q", ErrInvalidSize, s)
	}

	suffix := strings.ToLower(strings.TrimSpace(s[numEnd:]))
	mult, ok := sizeUnits[suffix]
	if !ok {
		return 0, fmt.Errorf("%w: unknown size suffix %q", ErrInvalidSize, s[numEnd:])
	}

	v := num * mult
	if v >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSize, s)
	}
	return uint64(v), nil
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(b uint64) string {
	return humanfmt.Bytes(int64(min(b, math.MaxInt64)))
}
