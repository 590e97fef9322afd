package report

import (
	"fmt"

	"tracker/internal/core"
	"tracker/internal/ledger"
)

// SeriesMode selects how monthly totals are laid out.
type SeriesMode int

const (
	// ZeroFilled is one entry per month of a fixed calendar year.
	ZeroFilled SeriesMode = iota
	// Sparse only lists months that have records, for free-form ranges.
	Sparse
)

// MonthlySeries dispatches to the zero-filled or sparse series. year is only
// read in ZeroFilled mode.
func MonthlySeries(v ledger.View, mode SeriesMode, year int) []MonthTotal {
	if mode == Sparse {
		return MonthlySeriesSparse(v)
	}
	return MonthlySeriesForYear(v, year)
}

// Period is either a calendar year or an inclusive date range.
type Period struct {
	Year       int
	Start, End core.Date
}

// YearPeriod covers Jan 1 to Dec 31 of year.
func YearPeriod(year int) Period {
	return Period{Year: year}
}

// RangePeriod covers start to end inclusive.
func RangePeriod(start, end core.Date) Period {
	return Period{Start: start, End: end}
}

// IsRange reports whether p was built from explicit dates.
func (p Period) IsRange() bool {
	return !p.Start.IsZero() || !p.End.IsZero()
}

// Mode is the series mode matching the period kind.
func (p Period) Mode() SeriesMode {
	if p.IsRange() {
		return Sparse
	}
	return ZeroFilled
}

func (p Period) String() string {
	if p.IsRange() {
		return fmt.Sprintf("From %s to %s", p.Start, p.End)
	}
	return fmt.Sprintf("From 01.01.%d to 31.12.%d", p.Year, p.Year)
}

// Dashboard is everything the dashboard screen renders for one period.
type Dashboard struct {
	Period    Period
	Records   int
	KPI       KPI
	Breakdown []CategoryShare
	Series    []MonthTotal
}

// BuildDashboard computes the dashboard of an already filtered view.
func BuildDashboard(v ledger.View, p Period) (Dashboard, error) {
	kpi, err := KPIs(v)
	if err != nil {
		return Dashboard{}, err
	}
	// A non-empty view can still sum to zero when refunds cancel spend.
	breakdown, err := CategoryBreakdown(v)
	if err != nil && core.KindOf(err) != core.KindEmptyView {
		return Dashboard{}, err
	}
	return Dashboard{
		Period:    p,
		Records:   len(v),
		KPI:       kpi,
		Breakdown: breakdown,
		Series:    MonthlySeries(v, p.Mode(), p.Year),
	}, nil
}
