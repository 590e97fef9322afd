package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"tracker/internal/amqp"
	"tracker/internal/backend"
	"tracker/internal/core"
	"tracker/internal/ledger"
	"tracker/internal/report"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.LedgerEvent
	err    error
	closed bool
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func (p *recordingPublisher) ops() []amqp.Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.Op, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Op
	}
	return out
}

func newService(t *testing.T) (*ExpenseService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewExpenseService(ledger.New(), backend.NewFactory(backend.Config{}, nil), pub, nil)
	return svc, pub
}

func add(t *testing.T, svc *ExpenseService, date, cat, desc, amount string) core.Record {
	t.Helper()
	rec, err := svc.AddExpense(context.Background(), core.RawFields{Date: date, Category: cat, Description: desc, Amount: amount})
	if err != nil {
		t.Fatalf("add %s %s: %v", date, amount, err)
	}
	return rec
}

func TestAddExpense(t *testing.T) {
	svc, pub := newService(t)

	rec := add(t, svc, "2024-12-12", "Food", "  Lunch ", "20.5")
	if rec.ID == 0 || rec.Description != "Lunch" || rec.Amount.Cents != 2050 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if got := pub.ops(); len(got) != 1 || got[0] != amqp.OpAppend {
		t.Fatalf("expected one append event, got %v", got)
	}
	if pub.events[0].RecordID != int64(rec.ID) {
		t.Fatalf("event record id %d, want %d", pub.events[0].RecordID, rec.ID)
	}
}

func TestAddExpenseRejectsAtomically(t *testing.T) {
	svc, pub := newService(t)

	tests := []struct {
		name string
		raw  core.RawFields
		want error
	}{
		{"bad amount", core.RawFields{Date: "2024-01-01", Category: "Food", Amount: "ten"}, core.ErrInvalidAmount},
		{"bad date", core.RawFields{Date: "2024-13-01", Category: "Food", Amount: "1"}, core.ErrInvalidDate},
		{"bad category", core.RawFields{Date: "2024-01-01", Category: "Snacks", Amount: "1"}, core.ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddExpense(context.Background(), tt.raw)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
	if svc.ListAll().Len() != 0 || len(pub.ops()) != 0 {
		t.Fatal("rejected input must not change the ledger or publish")
	}
}

func TestDeleteByDateFlow(t *testing.T) {
	svc, pub := newService(t)
	add(t, svc, "2024-12-12", "Food", "a", "20")
	add(t, svc, "2024-12-12", "Transport", "b", "30")
	add(t, svc, "2024-12-11", "Food", "c", "5")
	ctx := context.Background()

	res, err := svc.DeleteByDate("2024-12-12")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.NeedsSelection() {
		t.Fatal("two matches need a selection")
	}
	if _, err := svc.SelectDelete(ctx, res, "3"); !errors.Is(err, core.ErrInvalidSelection) {
		t.Fatalf("out of range selection: %v", err)
	}
	deleted, err := svc.SelectDelete(ctx, res, "2")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if deleted.Description != "b" || svc.ListAll().Len() != 2 {
		t.Fatalf("wrong record deleted: %+v", deleted)
	}

	res, err = svc.DeleteByDate("2024-12-11")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := svc.ConfirmDelete(ctx, res); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := svc.DeleteByDate("2099-01-01"); !errors.Is(err, core.ErrNoMatch) {
		t.Fatalf("expected no match, got %v", err)
	}
	if _, err := svc.DeleteByDate("12/12/2024"); !errors.Is(err, core.ErrInvalidDateFormat) {
		t.Fatalf("expected invalid date format, got %v", err)
	}

	got := pub.ops()
	want := []amqp.Op{amqp.OpAppend, amqp.OpAppend, amqp.OpAppend, amqp.OpDelete, amqp.OpDelete}
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events %v, want %v", got, want)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, name := range []string{"ledger.csv", "ledger.db"} {
		t.Run(name, func(t *testing.T) {
			svc, _ := newService(t)
			add(t, svc, "2024-12-12", "Food", "Lunch, with friends", "20.50")
			add(t, svc, "2023-01-02", "Housing", "Rent", "700")
			add(t, svc, "2024-03-01", "Shopping", "Refund", "-15")
			before := svc.ListAll()

			target := filepath.Join(t.TempDir(), name)
			ctx := context.Background()
			if err := svc.ExportTo(ctx, target); err != nil {
				t.Fatalf("export: %v", err)
			}

			other, pub := newService(t)
			n, err := other.ImportFrom(ctx, target)
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			after := other.ListAll()
			if n != len(before) || after.Len() != len(before) {
				t.Fatalf("imported %d records, want %d", n, len(before))
			}
			for i := range before {
				if before[i].Raw() != after[i].Raw() {
					t.Fatalf("record %d: %+v vs %+v", i, before[i].Raw(), after[i].Raw())
				}
			}
			if got := pub.ops(); len(got) != 1 || got[0] != amqp.OpReplace || pub.events[0].Count != 3 {
				t.Fatalf("expected one replace event for 3 records, got %+v", pub.events)
			}
		})
	}
}

func TestImportFailureLeavesLedgerIntact(t *testing.T) {
	svc, pub := newService(t)
	add(t, svc, "2024-01-01", "Food", "keep", "1")

	path := filepath.Join(t.TempDir(), "bad.csv")
	body := "date,category,description,amount\n2024-02-01,Food,ok,2\n2024-02-02,Food,bad,abc\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := svc.ImportFrom(context.Background(), path)
	if !errors.Is(err, core.ErrImportParseFailure) {
		t.Fatalf("expected import parse failure, got %v", err)
	}
	v := svc.ListAll()
	if v.Len() != 1 || v[0].Description != "keep" {
		t.Fatalf("ledger changed after failed import: %+v", v)
	}
	if len(pub.ops()) != 1 {
		t.Fatalf("failed import must not publish, got %v", pub.ops())
	}
}

func TestImportMissingSnapshotKeepsLedger(t *testing.T) {
	svc, pub := newService(t)
	add(t, svc, "2024-01-01", "Food", "keep", "10")

	for _, name := range []string{"typo.db", "typo.sqlite", "typo.csv"} {
		path := filepath.Join(t.TempDir(), name)
		n, err := svc.ImportFrom(context.Background(), path)
		if !errors.Is(err, fs.ErrNotExist) || n != 0 {
			t.Fatalf("%s: expected not-exist error, got n=%d err=%v", name, n, err)
		}
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("%s: import created the file, stat err=%v", name, err)
		}
	}
	v := svc.ListAll()
	if v.Len() != 1 || v[0].Description != "keep" {
		t.Fatalf("ledger changed after failed import: %+v", v)
	}
	if len(pub.ops()) != 1 {
		t.Fatalf("failed import must not publish, got %v", pub.ops())
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	svc, _ := newService(t)
	path := filepath.Join(t.TempDir(), "ledger.db")
	n, err := svc.Load(context.Background(), path)
	if err != nil || n != 0 {
		t.Fatalf("missing snapshot should load empty: n=%d err=%v", n, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("load created %s, stat err=%v", path, err)
	}
}

func TestLastSnapshot(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "backup.db")

	if _, ok, err := svc.LastSnapshot(ctx, snapshot); err != nil || ok {
		t.Fatalf("no snapshot yet: ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(snapshot); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("LastSnapshot created %s", snapshot)
	}

	add(t, svc, "2024-01-01", "Food", "a", "1.50")
	add(t, svc, "2024-01-02", "Health", "b", "2")
	if err := svc.ExportTo(ctx, snapshot); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, ok, err := svc.LastSnapshot(ctx, snapshot)
	if err != nil || !ok {
		t.Fatalf("last snapshot: ok=%v err=%v", ok, err)
	}
	if info.Records != 2 || info.Total.Cents != 350 || info.ExportedAt.IsZero() {
		t.Fatalf("unexpected snapshot info %+v", info)
	}

	for _, target := range []string{filepath.Join(dir, "a.csv"), "sheets", ""} {
		if _, ok, err := svc.LastSnapshot(ctx, target); err != nil || ok {
			t.Fatalf("%q has no snapshot history: ok=%v err=%v", target, ok, err)
		}
	}
}

func TestEmptyTargetIsCancel(t *testing.T) {
	svc, pub := newService(t)
	add(t, svc, "2024-01-01", "Food", "keep", "1")
	ctx := context.Background()

	if err := svc.ExportTo(ctx, ""); err != nil {
		t.Fatalf("export cancel: %v", err)
	}
	n, err := svc.ImportFrom(ctx, "  ")
	if err != nil || n != 0 {
		t.Fatalf("import cancel: n=%d err=%v", n, err)
	}
	if svc.ListAll().Len() != 1 || len(pub.ops()) != 1 {
		t.Fatal("cancelled transfer must not change anything")
	}
}

func TestUnsupportedTarget(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.ExportTo(context.Background(), "out.xlsx"); !errors.Is(err, backend.ErrUnsupportedTarget) {
		t.Fatalf("expected unsupported target, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	svc, pub := newService(t)
	n, err := svc.Load(context.Background(), filepath.Join(t.TempDir(), "first-run.csv"))
	if err != nil || n != 0 {
		t.Fatalf("missing ledger file should load empty: n=%d err=%v", n, err)
	}
	if len(pub.ops()) != 0 {
		t.Fatal("startup load must not publish")
	}
}

func TestExportAll(t *testing.T) {
	svc, _ := newService(t)
	add(t, svc, "2024-01-01", "Food", "a", "1")
	add(t, svc, "2024-01-02", "Health", "b", "2")

	dir := t.TempDir()
	targets := []string{filepath.Join(dir, "a.csv"), "", filepath.Join(dir, "b.sqlite"), filepath.Join(dir, "c", "d.csv")}
	if err := svc.ExportAll(context.Background(), targets...); err != nil {
		t.Fatalf("export all: %v", err)
	}

	for _, target := range []string{targets[0], targets[2], targets[3]} {
		other, _ := newService(t)
		n, err := other.ImportFrom(context.Background(), target)
		if err != nil || n != 2 {
			t.Fatalf("%s: n=%d err=%v", target, n, err)
		}
	}

	err := svc.ExportAll(context.Background(), filepath.Join(dir, "ok.csv"), "nope.txt")
	if !errors.Is(err, backend.ErrUnsupportedTarget) {
		t.Fatalf("expected first failure to surface, got %v", err)
	}
}

func TestClear(t *testing.T) {
	svc, pub := newService(t)
	first := add(t, svc, "2024-01-01", "Food", "a", "1")
	add(t, svc, "2024-01-02", "Food", "b", "2")

	svc.Clear(context.Background())
	if svc.ListAll().Len() != 0 {
		t.Fatal("ledger not empty after clear")
	}
	if ev := pub.events[len(pub.events)-1]; ev.Op != amqp.OpClear || ev.Count != 2 {
		t.Fatalf("unexpected clear event %+v", ev)
	}
	if next := add(t, svc, "2024-01-03", "Food", "c", "3"); next.ID <= first.ID+1 {
		t.Fatalf("ids must not be reused after clear, got %d", next.ID)
	}
}

func TestPublishFailureDoesNotFailCommand(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewExpenseService(ledger.New(), backend.NewFactory(backend.Config{}, nil), pub, nil)
	if _, err := svc.AddExpense(context.Background(), core.RawFields{Date: "2024-01-01", Category: "Food", Amount: "1"}); err != nil {
		t.Fatalf("publish failure leaked: %v", err)
	}
	if svc.ListAll().Len() != 1 {
		t.Fatal("record should be stored despite publish failure")
	}
}

func TestNilPublisher(t *testing.T) {
	svc := NewExpenseService(ledger.New(), backend.NewFactory(backend.Config{}, nil), nil, nil)
	if _, err := svc.AddExpense(context.Background(), core.RawFields{Date: "2024-01-01", Category: "Food", Amount: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close without publisher: %v", err)
	}
}

func TestClose(t *testing.T) {
	svc, pub := newService(t)
	if err := svc.Close(); err != nil || !pub.closed {
		t.Fatalf("close: err=%v closed=%v", err, pub.closed)
	}
}

func TestDashboard(t *testing.T) {
	svc, _ := newService(t)
	add(t, svc, "2024-01-10", "Housing", "Rent", "700")
	add(t, svc, "2024-02-10", "Food", "Groceries", "80")
	add(t, svc, "2023-12-31", "Food", "Party", "50")

	d, err := svc.Dashboard(report.YearPeriod(2024))
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Records != 2 || d.KPI.Total.Cents != 78000 || d.KPI.HighestCategory != core.Housing {
		t.Fatalf("unexpected dashboard %+v", d.KPI)
	}
	if len(d.Series) != 12 || len(d.Breakdown) != len(core.Categories) {
		t.Fatalf("series %d breakdown %d", len(d.Series), len(d.Breakdown))
	}

	d, err = svc.Dashboard(report.RangePeriod(core.NewDate(2023, 12, 1), core.NewDate(2024, 1, 31)))
	if err != nil {
		t.Fatalf("range dashboard: %v", err)
	}
	if d.Records != 2 || len(d.Series) != 2 || d.Series[0].Label != "Dec23" {
		t.Fatalf("unexpected range dashboard %+v", d.Series)
	}

	if _, err := svc.Dashboard(report.YearPeriod(1999)); !errors.Is(err, core.ErrEmptyView) {
		t.Fatalf("empty period: %v", err)
	}
	if _, err := svc.Dashboard(report.RangePeriod(core.NewDate(2024, 2, 1), core.NewDate(2024, 1, 1))); !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("inverted range: %v", err)
	}
}

func TestQueries(t *testing.T) {
	svc, _ := newService(t)
	add(t, svc, "2024-01-10", "Housing", "Rent", "700")
	add(t, svc, "2023-02-10", "Food", "Groceries", "80")

	if got := svc.FilterByYear(2023); got.Len() != 1 {
		t.Fatalf("FilterByYear: %d", got.Len())
	}
	v, err := svc.FilterByRange(core.NewDate(2023, 1, 1), core.NewDate(2024, 1, 10))
	if err != nil || v.Len() != 2 {
		t.Fatalf("FilterByRange: %d %v", v.Len(), err)
	}
	if years := svc.Years(); len(years) != 2 {
		t.Fatalf("Years: %v", years)
	}
	avg, err := svc.AverageMonthly(svc.ListAll())
	if err != nil || avg.StringFixed(2) != "390.00" {
		t.Fatalf("AverageMonthly: %s %v", avg, err)
	}
	if _, err := svc.ComputeKPIs(ledger.View{}); !errors.Is(err, core.ErrEmptyView) {
		t.Fatalf("ComputeKPIs on empty view: %v", err)
	}
	shares, err := svc.ComputeCategoryBreakdown(svc.ListAll())
	if err != nil || shares[0].Category != core.Housing {
		t.Fatalf("breakdown: %+v %v", shares, err)
	}
	if s := svc.ComputeMonthlySeries(svc.ListAll(), report.Sparse, 0); len(s) != 2 {
		t.Fatalf("sparse series: %+v", s)
	}
}
