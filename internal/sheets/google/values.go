package google

import (
	"fmt"
	"strings"

	"tracker/internal/codec"
	"tracker/internal/core"
)

// encodeValues builds the value matrix: header first, then one row per record.
// Cells are strings so amounts keep their two decimals.
func encodeValues(recs []core.Record) [][]interface{} {
	out := make([][]interface{}, 0, len(recs)+1)
	out = append(out, toCells(codec.Header))
	for _, rec := range recs {
		out = append(out, toCells(codec.Row(rec)))
	}
	return out
}

// decodeValues parses a matrix as returned by Values.Get. Rows are numbered
// as in the sheet, header on row 1. Empty rows are skipped.
func decodeValues(values [][]interface{}) ([]core.Record, error) {
	if len(values) == 0 {
		return []core.Record{}, nil
	}
	layout, err := codec.ParseHeader(toStrings(values[0]))
	if err != nil {
		return nil, err
	}

	rows := make([]codec.RawRow, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		cols := toStrings(values[i])
		if blank(cols) {
			continue
		}
		raw := layout.Raw(cols)
		raw.Line = i + 1
		rows = append(rows, raw)
	}
	return codec.CoerceRows(rows)
}

func toCells(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func blank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}
