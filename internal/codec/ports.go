// Package codec defines the tabular import/export contract shared by the
// CSV, SQLite and Google Sheets targets.
package codec

import (
	"context"
	"fmt"
	"strings"

	"tracker/internal/core"
)

// Ports for outbound adapters.
type (
	// Exporter writes the whole ledger, in ledger order, replacing whatever
	// the target held before.
	Exporter interface {
		Export(ctx context.Context, recs []core.Record) error
	}

	// Importer reads every row of the target, validated through the schema.
	// A single bad row fails the whole read.
	Importer interface {
		Import(ctx context.Context) ([]core.Record, error)
	}

	Codec interface {
		Exporter
		Importer
	}
)

// Columns of the tabular format, in export order.
const (
	ColDate        = "date"
	ColCategory    = "category"
	ColDescription = "description"
	ColAmount      = "amount"
)

// Header is the header row written on export.
var Header = []string{ColDate, ColCategory, ColDescription, ColAmount}

// Layout maps each column to its position in an imported header row.
type Layout struct {
	date, category, description, amount int
}

// ParseHeader accepts the four columns in any order and rejects missing,
// duplicated or unknown ones.
func ParseHeader(header []string) (Layout, error) {
	idx := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch name {
		case ColDate, ColCategory, ColDescription, ColAmount:
		default:
			return Layout{}, core.Errorf(core.KindImportParseFailure, "unexpected column %q in header", h)
		}
		if _, dup := idx[name]; dup {
			return Layout{}, core.Errorf(core.KindImportParseFailure, "duplicate column %q in header", name)
		}
		idx[name] = i
	}
	var missing []string
	for _, col := range Header {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Layout{}, core.Errorf(core.KindImportParseFailure, "header missing %s", strings.Join(missing, ", "))
	}
	return Layout{
		date:        idx[ColDate],
		category:    idx[ColCategory],
		description: idx[ColDescription],
		amount:      idx[ColAmount],
	}, nil
}

// Raw picks the record fields out of a data row.
func (l Layout) Raw(row []string) RawRow {
	return RawRow{
		Fields: core.RawFields{
			Date:        cell(row, l.date),
			Category:    cell(row, l.category),
			Description: cell(row, l.description),
			Amount:      cell(row, l.amount),
		},
		Width: len(row),
	}
}

// RawRow is one decoded data row and the number of cells it had. Line is
// the 1-based source line when the decoder knows it.
type RawRow struct {
	Fields core.RawFields
	Width  int
	Line   int
}

// Row renders a record in Header order.
func Row(rec core.Record) []string {
	raw := rec.Raw()
	return []string{raw.Date, raw.Category, raw.Description, raw.Amount}
}

// CoerceRows validates every row through the schema. Rows without a Line
// are numbered counting the header as line 1. Nothing is returned unless
// every row passes.
func CoerceRows(rows []RawRow) ([]core.Record, error) {
	out := make([]core.Record, 0, len(rows))
	for i, row := range rows {
		line := row.Line
		if line == 0 {
			line = i + 2
		}
		if row.Width > len(Header) {
			return nil, core.Errorf(core.KindImportParseFailure, "row %d: expected %d fields, got %d", line, len(Header), row.Width)
		}
		rec, err := core.Coerce(row.Fields)
		if err != nil {
			return nil, &core.Error{
				Kind: core.KindImportParseFailure,
				Msg:  fmt.Sprintf("row %d: %v", line, err),
				Err:  err,
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
