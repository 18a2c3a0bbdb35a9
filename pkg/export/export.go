// Package export writes sweep runs to Parquet, CSV, or JSON files and reads
// Parquet exports back into a result table.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eunmann/searchsweep/internal/logctx"
	"github.com/eunmann/searchsweep/pkg/fileutil"
	"github.com/eunmann/searchsweep/pkg/logging"
	"github.com/eunmann/searchsweep/pkg/results"
)

// ErrUnknownFormat indicates an export format name that is not supported.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file format.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatParquet, FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath infers the format from a file extension. A trailing .zst
// is skipped, so run.csv.zst is CSV.
func FormatFromPath(path string) (Format, error) {
	if Compressed(path) {
		path = path[:len(path)-len(CompressedSuffix)]
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type used when publishing the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "application/vnd.apache.parquet"
	}
}

// WriteFile writes run to path in the given format through a temporary file
// and returns the size of the written file.
func WriteFile(ctx context.Context, path string, format Format, run results.Run) (int64, error) {
	log := logctx.FromContext(ctx)
	start := time.Now()

	compressed := Compressed(path)

	var write func(tmpPath string) error
	switch format {
	case FormatParquet:
		if compressed {
			return 0, fmt.Errorf("%w: %s", ErrCompressedParquet, path)
		}
		write = func(tmpPath string) error { return WriteParquet(tmpPath, run) }
	case FormatCSV:
		write = func(tmpPath string) error {
			return fileutil.WriteWith(tmpPath, func(f *os.File) error {
				return encodeTo(f, compressed, func(w io.Writer) error { return WriteCSV(w, run.Samples) })
			})
		}
	case FormatJSON:
		write = func(tmpPath string) error {
			return fileutil.WriteWith(tmpPath, func(f *os.File) error {
				return encodeTo(f, compressed, func(w io.Writer) error { return WriteJSON(w, run) })
			})
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := fileutil.WriteTmpThenMove(path, write); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	logging.FileWritten(log, "export", time.Since(start)).
		Str("path", path).
		Str("format", string(format)).
		Bool("compressed", compressed).
		Bytes("size", info.Size()).
		Count("rows", int64(len(run.Samples))).
		Log("export written")

	return info.Size(), nil
}
