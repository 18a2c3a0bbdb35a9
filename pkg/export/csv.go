package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/eunmann/searchsweep/pkg/results"
)

var csvHeader = []string{
	"size",
	"target",
	"iterative_index",
	"iterative_comparisons",
	"iterative_duration_ns",
	"iterative_peak_bytes",
	"recursive_index",
	"recursive_comparisons",
	"recursive_duration_ns",
	"recursive_peak_bytes",
}

// WriteCSV writes one row per sample. Null recursive cells are empty.
func WriteCSV(w io.Writer, samples []results.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, s := range samples {
		rec := []string{
			strconv.Itoa(s.Size),
			strconv.FormatInt(s.Target, 10),
			strconv.Itoa(s.IterativeIndex),
			strconv.Itoa(s.IterativeComparisons),
			strconv.FormatInt(int64(s.IterativeDuration), 10),
			strconv.FormatUint(s.IterativePeakBytes, 10),
			optInt(s.RecursiveIndex),
			optInt(s.RecursiveComparisons),
			"",
			"",
		}
		if s.RecursiveDuration != nil {
			rec[8] = strconv.FormatInt(int64(*s.RecursiveDuration), 10)
		}
		if s.RecursivePeakBytes != nil {
			rec[9] = strconv.FormatUint(*s.RecursivePeakBytes, 10)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row for size %d: %w", s.Size, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// WriteJSON writes the run as an indented JSON document. Null recursive
// fields encode as JSON null.
func WriteJSON(w io.Writer, run results.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	return nil
}
