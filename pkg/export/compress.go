package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix marks CSV and JSON exports written as a zstd stream,
// e.g. run.csv.zst.
const CompressedSuffix = ".zst"

// ErrCompressedParquet indicates a .zst suffix on a Parquet export. Parquet
// pages are already compressed.
var ErrCompressedParquet = errors.New("parquet exports cannot be zstd-wrapped")

// Compressed reports whether path names a zstd-wrapped export.
func Compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedSuffix)
}

// ContentType returns the MIME type used when publishing the file at path.
func ContentType(path string, f Format) string {
	if Compressed(path) {
		return "application/zstd"
	}
	return f.ContentType()
}

// encodeTo runs write against w, through a zstd encoder when compress is set.
func encodeTo(w io.Writer, compress bool, write func(io.Writer) error) error {
	if !compress {
		return write(w)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	if err := write(enc); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush zstd stream: %w", err)
	}
	return nil
}
