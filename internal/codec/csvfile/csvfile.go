// Package csvfile stores the ledger as a comma-separated file with a
// "date,category,description,amount" header.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"tracker/internal/codec"
	"tracker/internal/core"
)

// File is a CSV-backed codec for one path.
type File struct {
	path string
}

var _ codec.Codec = (*File)(nil)

// New returns the codec for path. Nothing is opened until Export or Import.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Export writes the records to a temporary file next to the target and
// renames it into place, so a failed export never leaves a half-written file.
func (f *File) Export(ctx context.Context, recs []core.Record) error {
	if dir := filepath.Dir(f.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, recs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}

	slog.DebugContext(ctx, "Ledger exported to CSV", "path", f.path, "records", len(recs))
	return nil
}

// Import reads and validates the whole file.
func (f *File) Import(ctx context.Context) ([]core.Record, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	recs, err := Read(fh)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Ledger imported from CSV", "path", f.path, "records", len(recs))
	return recs, nil
}

// Write encodes the header and one row per record.
func Write(w io.Writer, recs []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(codec.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range recs {
		if err := cw.Write(codec.Row(rec)); err != nil {
			return fmt.Errorf("write record %d: %w", rec.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Read decodes and validates a CSV stream. An empty stream is an empty
// ledger; a stream without a valid header is an import failure.
func Read(r io.Reader) ([]core.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []core.Record{}, nil
	}
	if err != nil {
		return nil, &core.Error{Kind: core.KindImportParseFailure, Msg: "read header", Err: err}
	}
	layout, err := codec.ParseHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []codec.RawRow
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &core.Error{Kind: core.KindImportParseFailure, Msg: "malformed csv", Err: err}
		}
		if isBlank(row) {
			continue
		}
		raw := layout.Raw(row)
		raw.Line, _ = cr.FieldPos(0)
		rows = append(rows, raw)
	}
	return codec.CoerceRows(rows)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
