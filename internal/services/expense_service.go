package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"tracker/internal/amqp"
	"tracker/internal/backend"
	"tracker/internal/core"
	"tracker/internal/ledger"
	"tracker/internal/log"
	"tracker/internal/report"
	"tracker/internal/storage"
)

// EventPublisher receives one event per ledger mutation.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// ExpenseService is the command surface over one in-memory ledger. Imports
// and exports go through codecs opened by the backend factory; mutations are
// announced through the optional publisher.
type ExpenseService struct {
	store     *ledger.Store
	resolver  *ledger.Resolver
	codecs    backend.Factory
	publisher EventPublisher
	logger    *log.Logger
}

// NewExpenseService wires a service around store. publisher may be nil.
func NewExpenseService(store *ledger.Store, codecs backend.Factory, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExpenseService{
		store:     store,
		resolver:  ledger.NewResolver(store),
		codecs:    codecs,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

// AddExpense validates raw input and appends it. Nothing is stored if any
// field is rejected.
func (s *ExpenseService) AddExpense(ctx context.Context, raw core.RawFields) (core.Record, error) {
	rec, err := core.Coerce(raw)
	if err != nil {
		return core.Record{}, err
	}
	rec = s.store.Append(rec)

	s.logger.DebugContext(ctx, "Expense added", log.NewFields().
		WithOperation(log.OpAdd).
		WithRecord(int64(rec.ID), rec.Date.String(), string(rec.Category), rec.Amount.Cents).
		ToSlice()...)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpAppend, int64(rec.ID), 1))
	return rec, nil
}

// DeleteByDate resolves a typed date into deletion candidates. Nothing is
// deleted until ConfirmDelete or SelectDelete succeeds.
func (s *ExpenseService) DeleteByDate(date string) (*ledger.Resolution, error) {
	return s.resolver.Resolve(date)
}

// ConfirmDelete deletes the single match of res.
func (s *ExpenseService) ConfirmDelete(ctx context.Context, res *ledger.Resolution) (core.Record, error) {
	rec, err := res.Confirm()
	if err != nil {
		return core.Record{}, err
	}
	s.deleted(ctx, rec)
	return rec, nil
}

// SelectDelete deletes the candidate the user typed, 1-based.
func (s *ExpenseService) SelectDelete(ctx context.Context, res *ledger.Resolution, input string) (core.Record, error) {
	rec, err := res.SelectInput(input)
	if err != nil {
		return core.Record{}, err
	}
	s.deleted(ctx, rec)
	return rec, nil
}

func (s *ExpenseService) deleted(ctx context.Context, rec core.Record) {
	s.logger.DebugContext(ctx, "Expense deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithRecord(int64(rec.ID), rec.Date.String(), string(rec.Category), rec.Amount.Cents).
		ToSlice()...)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpDelete, int64(rec.ID), 1))
}

// ListAll returns every record in ledger order.
func (s *ExpenseService) ListAll() ledger.View {
	return s.store.All()
}

// FilterByYear returns the records dated within year.
func (s *ExpenseService) FilterByYear(year int) ledger.View {
	return s.store.FilterByYear(year)
}

// FilterByRange returns the records dated within [start, end].
func (s *ExpenseService) FilterByRange(start, end core.Date) (ledger.View, error) {
	return s.store.FilterByRange(start, end)
}

// Years lists the years that have at least one record.
func (s *ExpenseService) Years() []int {
	return s.store.All().Years()
}

// ComputeKPIs returns total, monthly average and top category of v.
func (s *ExpenseService) ComputeKPIs(v ledger.View) (report.KPI, error) {
	return report.KPIs(v)
}

// ComputeCategoryBreakdown returns per-category totals and shares of v.
func (s *ExpenseService) ComputeCategoryBreakdown(v ledger.View) ([]report.CategoryShare, error) {
	return report.CategoryBreakdown(v)
}

// ComputeMonthlySeries lays out monthly totals; year is only used by the
// zero-filled mode.
func (s *ExpenseService) ComputeMonthlySeries(v ledger.View, mode report.SeriesMode, year int) []report.MonthTotal {
	return report.MonthlySeries(v, mode, year)
}

// AverageMonthly is exposed on its own for the list footer.
func (s *ExpenseService) AverageMonthly(v ledger.View) (decimal.Decimal, error) {
	return report.AverageMonthly(v)
}

// Dashboard filters the ledger to p and computes every dashboard figure.
func (s *ExpenseService) Dashboard(p report.Period) (report.Dashboard, error) {
	var v ledger.View
	if p.IsRange() {
		var err error
		if v, err = s.store.FilterByRange(p.Start, p.End); err != nil {
			return report.Dashboard{}, err
		}
	} else {
		v = s.store.FilterByYear(p.Year)
	}
	return report.BuildDashboard(v, p)
}

// Clear removes every record.
func (s *ExpenseService) Clear(ctx context.Context) {
	n := s.store.Len()
	s.store.Clear()
	s.logger.InfoContext(ctx, "Ledger cleared", log.FieldOperation, log.OpClear, log.FieldRecords, n)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpClear, 0, n))
}

// ExportTo writes the whole ledger to target. An empty target is a
// cancelled prompt and does nothing.
func (s *ExpenseService) ExportTo(ctx context.Context, target string) error {
	if backend.IsCancel(target) {
		s.logger.DebugContext(ctx, "Export cancelled")
		return nil
	}
	return s.exportView(ctx, target, s.store.All())
}

// ExportAll writes one snapshot of the ledger to every target concurrently.
// Empty targets are skipped. The first failure cancels the rest.
func (s *ExpenseService) ExportAll(ctx context.Context, targets ...string) error {
	snapshot := s.store.All()
	g, ctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		if backend.IsCancel(target) {
			continue
		}
		g.Go(func() error {
			return s.exportView(ctx, target, snapshot)
		})
	}
	return g.Wait()
}

func (s *ExpenseService) exportView(ctx context.Context, target string, v ledger.View) (err error) {
	start := time.Now()
	res, err := s.codecs.Open(ctx, target, backend.ForExport)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := res.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", res.Target, cerr)
		}
	}()

	if err := res.Codec.Export(ctx, v); err != nil {
		return fmt.Errorf("export to %s: %w", res.Target, err)
	}
	s.logger.DebugContext(ctx, "Ledger exported", log.NewFields().
		WithOperation(log.OpExport).
		WithTransfer(res.Target.String(), len(v), time.Since(start).Milliseconds()).
		ToSlice()...)
	return nil
}

// ImportFrom replaces the ledger with the target's content and returns the
// number of records loaded. On any failure the ledger is left untouched.
// An empty target is a cancelled prompt and does nothing.
func (s *ExpenseService) ImportFrom(ctx context.Context, target string) (int, error) {
	if backend.IsCancel(target) {
		s.logger.DebugContext(ctx, "Import cancelled")
		return 0, nil
	}
	n, err := s.load(ctx, target)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "Ledger replaced by import", log.FieldTarget, target, log.FieldRecords, n)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpReplace, 0, n))
	return n, nil
}

// Load reads the working ledger file at startup. A missing file is an empty
// ledger and no event is published.
func (s *ExpenseService) Load(ctx context.Context, path string) (int, error) {
	n, err := s.load(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.InfoContext(ctx, "Ledger file not found, starting empty", log.FieldTarget, path)
		return 0, nil
	}
	return n, err
}

func (s *ExpenseService) load(ctx context.Context, target string) (n int, err error) {
	start := time.Now()
	res, err := s.codecs.Open(ctx, target, backend.ForImport)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := res.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", res.Target, cerr)
		}
	}()

	recs, err := res.Codec.Import(ctx)
	if err != nil {
		return 0, fmt.Errorf("import from %s: %w", res.Target, err)
	}

	loaded := s.store.ReplaceAll(recs)
	s.logger.DebugContext(ctx, "Ledger imported", log.NewFields().
		WithOperation(log.OpImport).
		WithTransfer(res.Target.String(), len(loaded), time.Since(start).Milliseconds()).
		ToSlice()...)
	return len(loaded), nil
}

// LastSnapshot returns the previous export recorded in a SQLite snapshot
// target. ok is false for other target kinds, for a snapshot that does not
// exist yet, and for one that was never exported to.
func (s *ExpenseService) LastSnapshot(ctx context.Context, target string) (info storage.ExportInfo, ok bool, err error) {
	t, err := backend.ParseTarget(target)
	if err != nil || t.Kind != backend.SQLite {
		return storage.ExportInfo{}, false, nil
	}
	res, err := s.codecs.Open(ctx, target, backend.ForImport)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.ExportInfo{}, false, nil
	}
	if err != nil {
		return storage.ExportInfo{}, false, err
	}
	defer res.Cleanup()

	hist, isHist := res.Codec.(exportHistory)
	if !isHist {
		return storage.ExportInfo{}, false, nil
	}
	return hist.LastExport(ctx)
}

type exportHistory interface {
	LastExport(ctx context.Context) (storage.ExportInfo, bool, error)
}

func (s *ExpenseService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP not configured, skipping ledger event", "op", ev.Op)
		return
	}
	// The ledger is already updated; a lost event must not fail the command.
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			"op", ev.Op,
			"record_id", ev.RecordID,
			log.FieldError, err)
	}
}

// Close releases the publisher if it holds a connection.
func (s *ExpenseService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
