// Package report turns a view of the ledger into the numbers a dashboard
// shows: KPIs, per-month series and the per-category breakdown.
//
// Nothing here mutates its input. Sums are exact integer cents; only the
// monthly average and the percentages are decimals.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
	"tracker/internal/ledger"
)

var hundred = decimal.NewFromInt(100)

// MonthTotal is one bar of a monthly chart.
type MonthTotal struct {
	Year  int
	Month time.Month
	Label string
	Total core.Money
}

// CategoryShare is one line of the category breakdown.
type CategoryShare struct {
	Category core.Category
	Total    core.Money
	Percent  decimal.Decimal
}

// KPI groups the three headline metrics of a view.
type KPI struct {
	Total           core.Money
	AverageMonthly  decimal.Decimal
	HighestCategory core.Category
}

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) before(o monthKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.month < o.month
}

// Total sums every amount; an empty view totals zero.
func Total(v ledger.View) core.Money {
	var sum core.Money
	for _, rec := range v {
		sum = sum.Add(rec.Amount)
	}
	return sum
}

// AverageMonthly is the mean of per-month sums over the months that have at
// least one record. Empty months do not dilute it.
func AverageMonthly(v ledger.View) (decimal.Decimal, error) {
	if len(v) == 0 {
		return decimal.Zero, core.Errorf(core.KindEmptyView, "no records to average")
	}
	months := byMonth(v)
	total := Total(v)
	return total.Decimal().Div(decimal.NewFromInt(int64(len(months)))), nil
}

// HighestCategory returns the category with the largest summed amount among
// categories that have records. Ties go to the category declared first in
// core.Categories, so the answer never depends on record order.
func HighestCategory(v ledger.View) (core.Category, error) {
	if len(v) == 0 {
		return "", core.Errorf(core.KindEmptyView, "no records to rank")
	}
	sums, present := byCategory(v)
	best := -1
	for i := range core.Categories {
		if !present[i] {
			continue
		}
		if best == -1 || sums[i] > sums[best] {
			best = i
		}
	}
	return core.Categories[best], nil
}

// MonthlySeriesForYear returns exactly twelve entries, January first, for the
// given year. Records of other years are ignored and empty months are zero.
func MonthlySeriesForYear(v ledger.View, year int) []MonthTotal {
	sums := byMonth(v)
	out := make([]MonthTotal, 12)
	for m := time.January; m <= time.December; m++ {
		out[m-1] = MonthTotal{
			Year:  year,
			Month: m,
			Label: m.String()[:3],
			Total: core.Money{Cents: sums[monthKey{year, m}]},
		}
	}
	return out
}

// MonthlySeriesSparse returns one entry per month that has records, in
// calendar order. Labels look like "Jan24".
func MonthlySeriesSparse(v ledger.View) []MonthTotal {
	sums := byMonth(v)
	keys := make([]monthKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })

	out := make([]MonthTotal, len(keys))
	for i, k := range keys {
		out[i] = MonthTotal{
			Year:  k.year,
			Month: k.month,
			Label: time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan06"),
			Total: core.Money{Cents: sums[k]},
		}
	}
	return out
}

// CategoryBreakdown sums every category of the closed set, including the
// ones without spend, sorted by total descending. Equal totals keep the
// declared category order.
func CategoryBreakdown(v ledger.View) ([]CategoryShare, error) {
	sums, _ := byCategory(v)
	var grand int64
	for _, s := range sums {
		grand += s
	}
	if grand == 0 {
		return nil, core.Errorf(core.KindEmptyView, "grand total is zero, percentages undefined")
	}
	g := decimal.NewFromInt(grand)
	out := make([]CategoryShare, len(core.Categories))
	for i, c := range core.Categories {
		out[i] = CategoryShare{
			Category: c,
			Total:    core.Money{Cents: sums[i]},
			Percent:  decimal.NewFromInt(sums[i]).Mul(hundred).Div(g),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out, nil
}

// KPIs computes the headline metrics of a non-empty view.
func KPIs(v ledger.View) (KPI, error) {
	avg, err := AverageMonthly(v)
	if err != nil {
		return KPI{}, err
	}
	top, err := HighestCategory(v)
	if err != nil {
		return KPI{}, err
	}
	return KPI{Total: Total(v), AverageMonthly: avg, HighestCategory: top}, nil
}

func byMonth(v ledger.View) map[monthKey]int64 {
	sums := make(map[monthKey]int64)
	for _, rec := range v {
		sums[monthKey{rec.Date.Year(), rec.Date.Time.Month()}] += rec.Amount.Cents
	}
	return sums
}

// byCategory returns sums indexed like core.Categories and which indexes
// had at least one record.
func byCategory(v ledger.View) ([]int64, []bool) {
	sums := make([]int64, len(core.Categories))
	present := make([]bool, len(core.Categories))
	for _, rec := range v {
		i := rec.Category.Index()
		if i < 0 {
			continue
		}
		sums[i] += rec.Amount.Cents
		present[i] = true
	}
	return sums, present
}
