package export

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/eunmann/searchsweep/pkg/fileutil"
	"github.com/eunmann/searchsweep/pkg/results"
)

// ErrEmptyExport indicates a zero-byte file passed as a Parquet export.
var ErrEmptyExport = errors.New("empty export file")

// Metadata keys stored in the Parquet footer.
const (
	metaRunID    = "searchsweep.run_id"
	metaScenario = "searchsweep.scenario"
	metaMaxSize  = "searchsweep.max_size"
	metaStep     = "searchsweep.step"
)

// sampleRow is the Parquet schema of a sample. Recursive columns are
// optional; a null cell is a step whose recursive search hit the depth limit.
type sampleRow struct {
	Size                 int64  `parquet:"size"`
	Target               int64  `parquet:"target"`
	IterativeIndex       int64  `parquet:"iterative_index"`
	IterativeComparisons int64  `parquet:"iterative_comparisons"`
	IterativeDurationNs  int64  `parquet:"iterative_duration_ns"`
	IterativePeakBytes   uint64 `parquet:"iterative_peak_bytes"`

	RecursiveIndex       *int64  `parquet:"recursive_index,optional"`
	RecursiveComparisons *int64  `parquet:"recursive_comparisons,optional"`
	RecursiveDurationNs  *int64  `parquet:"recursive_duration_ns,optional"`
	RecursivePeakBytes   *uint64 `parquet:"recursive_peak_bytes,optional"`
}

func toRow(s results.Sample) sampleRow {
	row := sampleRow{
		Size:                 int64(s.Size),
		Target:               s.Target,
		IterativeIndex:       int64(s.IterativeIndex),
		IterativeComparisons: int64(s.IterativeComparisons),
		IterativeDurationNs:  int64(s.IterativeDuration),
		IterativePeakBytes:   s.IterativePeakBytes,
	}
	if s.RecursiveIndex != nil {
		v := int64(*s.RecursiveIndex)
		row.RecursiveIndex = &v
	}
	if s.RecursiveComparisons != nil {
		v := int64(*s.RecursiveComparisons)
		row.RecursiveComparisons = &v
	}
	if s.RecursiveDuration != nil {
		v := int64(*s.RecursiveDuration)
		row.RecursiveDurationNs = &v
	}
	if s.RecursivePeakBytes != nil {
		v := *s.RecursivePeakBytes
		row.RecursivePeakBytes = &v
	}
	return row
}

func (r sampleRow) sample() results.Sample {
	s := results.Sample{
		Size:                 int(r.Size),
		Target:               r.Target,
		IterativeIndex:       int(r.IterativeIndex),
		IterativeComparisons: int(r.IterativeComparisons),
		IterativeDuration:    time.Duration(r.IterativeDurationNs),
		IterativePeakBytes:   r.IterativePeakBytes,
	}
	if r.RecursiveIndex != nil {
		v := int(*r.RecursiveIndex)
		s.RecursiveIndex = &v
	}
	if r.RecursiveComparisons != nil {
		v := int(*r.RecursiveComparisons)
		s.RecursiveComparisons = &v
	}
	if r.RecursiveDurationNs != nil {
		v := time.Duration(*r.RecursiveDurationNs)
		s.RecursiveDuration = &v
	}
	if r.RecursivePeakBytes != nil {
		v := *r.RecursivePeakBytes
		s.RecursivePeakBytes = &v
	}
	return s
}

// WriteParquet writes the run's samples to path, with the run ID and sweep
// bounds in the file metadata.
func WriteParquet(path string, run results.Run) error {
	rows := make([]sampleRow, len(run.Samples))
	for i, s := range run.Samples {
		rows[i] = toRow(s)
	}

	err := parquet.WriteFile(path, rows,
		parquet.KeyValueMetadata(metaRunID, run.ID),
		parquet.KeyValueMetadata(metaScenario, run.Config.Scenario),
		parquet.KeyValueMetadata(metaMaxSize, strconv.Itoa(run.Config.MaxSize)),
		parquet.KeyValueMetadata(metaStep, strconv.Itoa(run.Config.Step)),
	)
	if err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

// Imported is a table read back from a Parquet export.
type Imported struct {
	RunID    string
	Scenario string
	MaxSize  int
	Step     int
	Table    *results.Table
}

// ReadParquet reads an export written by WriteParquet. The returned table is
// frozen. Missing metadata is tolerated; MaxSize then falls back to the
// largest recorded size.
func ReadParquet(path string) (*Imported, error) {
	if fileutil.Exists(path) && !fileutil.IsNonEmpty(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyExport)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	file, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	rows, err := parquet.Read[sampleRow](f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}

	samples := make([]results.Sample, len(rows))
	for i, r := range rows {
		samples[i] = r.sample()
	}
	table, err := results.FromSamples(samples)
	if err != nil {
		return nil, fmt.Errorf("rebuild table from %s: %w", path, err)
	}

	imp := &Imported{Table: table}
	imp.RunID, _ = file.Lookup(metaRunID)
	imp.Scenario, _ = file.Lookup(metaScenario)
	if v, ok := file.Lookup(metaMaxSize); ok {
		imp.MaxSize, _ = strconv.Atoi(v)
	}
	if v, ok := file.Lookup(metaStep); ok {
		imp.Step, _ = strconv.Atoi(v)
	}
	if imp.MaxSize == 0 && len(samples) > 0 {
		imp.MaxSize = samples[len(samples)-1].Size
	}
	return imp, nil
}
