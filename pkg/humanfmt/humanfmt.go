// Package humanfmt formats byte counts, durations, and counts for sweep logs
// and result tables.
package humanfmt

import (
	"fmt"
	"strconv"
	"time"
)

// Binary (IEC) units for bytes.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
	TiB = 1024 * GiB
)

type unit struct {
	size   float64
	suffix string
}

// Largest first.
var (
	byteUnits  = []unit{{TiB, " TiB"}, {GiB, " GiB"}, {MiB, " MiB"}, {KiB, " KiB"}}
	countUnits = []unit{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
)

// scale renders n in the largest unit it reaches, with two decimals.
// ok is false when n is below every unit.
func scale(n float64, units []unit) (s string, ok bool) {
	for _, u := range units {
		if n >= u.size {
			return strconv.FormatFloat(n/u.size, 'f', 2, 64) + u.suffix, true
		}
	}
	return "", false
}

// Bytes formats a byte count in IEC units, e.g. "1.50 MiB". Values under
// 1 KiB, and negative values, print as plain bytes.
func Bytes(b int64) string {
	if s, ok := scale(float64(b), byteUnits); ok {
		return s
	}
	return strconv.FormatInt(b, 10) + " B"
}

// Count formats a count with K/M/B suffixes, e.g. "1.20M" steps.
func Count(n int64) string {
	if s, ok := scale(float64(n), countUnits); ok {
		return s
	}
	return strconv.FormatInt(n, 10)
}

// Duration formats d compactly: "1h5m", "1m30s", "1.23s", "45.6ms", "789.0µs", "12ns".
func Duration(d time.Duration) string {
	switch {
	case d < 0:
		return d.String()
	case d >= time.Minute:
		return coarse(d)
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	}
	return fmt.Sprintf("%dns", d.Nanoseconds())
}

// coarse renders durations of a minute or more as two whole units, dropping
// a zero remainder.
func coarse(d time.Duration) string {
	big, small, bigSuffix, smallSuffix := d/time.Minute, (d%time.Minute)/time.Second, "m", "s"
	if d >= time.Hour {
		big, small, bigSuffix, smallSuffix = d/time.Hour, (d%time.Hour)/time.Minute, "h", "m"
	}
	if small == 0 {
		return fmt.Sprintf("%d%s", big, bigSuffix)
	}
	return fmt.Sprintf("%d%s%d%s", big, bigSuffix, small, smallSuffix)
}

// Millis formats a duration as fractional milliseconds, e.g. "0.0123 ms".
// Sweep tables use a fixed unit so columns compare across rows.
func Millis(d time.Duration) string {
	return fmt.Sprintf("%.4f ms", float64(d)/float64(time.Millisecond))
}

// KB formats a byte count as fractional kilobytes, e.g. "1.50 KB".
func KB(b uint64) string {
	return fmt.Sprintf("%.2f KB", float64(b)/KiB)
}
