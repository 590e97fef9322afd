package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/ledger"
	"tracker/internal/report"
)

func TestBar(t *testing.T) {
	tests := []struct {
		v, limit int64
		want     int
	}{
		{50, 100, 15},
		{100, 100, 30},
		{1, 1000, 0},
		{-5, 100, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		got := bar(decimal.NewFromInt(tt.v), decimal.NewFromInt(tt.limit))
		if len(got) != tt.want {
			t.Errorf("bar(%d, %d) = %q, want %d blocks", tt.v, tt.limit, got, tt.want)
		}
	}
}

func TestRenderDashboardZeroNet(t *testing.T) {
	v := ledger.View{
		{ID: 1, Date: core.NewDate(2024, 1, 1), Category: core.Shopping, Amount: core.Money{Cents: 1000}},
		{ID: 2, Date: core.NewDate(2024, 1, 5), Category: core.Shopping, Amount: core.Money{Cents: -1000}},
	}
	d, err := report.BuildDashboard(v, report.YearPeriod(2024))
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	var buf bytes.Buffer
	if err := renderDashboard(&buf, d); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "(net total is zero)") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestRenderCandidates(t *testing.T) {
	var buf bytes.Buffer
	recs := []core.Record{
		{ID: 4, Date: core.NewDate(2024, 12, 12), Category: core.Food, Description: "a", Amount: core.Money{Cents: 2000}},
		{ID: 9, Date: core.NewDate(2024, 12, 12), Category: core.Transport, Description: "b", Amount: core.Money{Cents: 3000}},
	}
	if err := renderCandidates(&buf, recs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "1)") || !strings.HasPrefix(lines[1], "2)") {
		t.Fatalf("unexpected candidates:\n%s", buf.String())
	}
}

func TestFormatEvent(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	got := formatEvent(&amqp.LedgerEvent{Op: amqp.OpDelete, RecordID: 7, Count: 1, Timestamp: ts})
	if got != "2024-05-01 10:00:00  delete   record #7" {
		t.Fatalf("got %q", got)
	}
	got = formatEvent(&amqp.LedgerEvent{Op: amqp.OpReplace, Count: 12, Timestamp: ts})
	if !strings.HasSuffix(got, "replace  12 records") {
		t.Fatalf("got %q", got)
	}
}
