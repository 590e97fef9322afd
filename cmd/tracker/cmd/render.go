package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
	"tracker/internal/ledger"
	"tracker/internal/report"
)

const barWidth = 30

func renderRecords(w io.Writer, v ledger.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tDate\tCategory\tDescription\tAmount\t")
	for _, rec := range v {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", rec.ID, rec.Date, rec.Category, rec.Description, rec.Amount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d entries, total %s\n", len(v), report.Total(v))
	return err
}

// renderCandidates numbers the matches from 1 for the selection prompt.
func renderCandidates(w io.Writer, recs []core.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, rec := range recs {
		fmt.Fprintf(tw, "%d)\t%s\t%s\t%s\t%s\n", i+1, rec.Date, rec.Category, rec.Description, rec.Amount)
	}
	return tw.Flush()
}

func renderRecord(w io.Writer, rec core.Record) {
	fmt.Fprintf(w, "#%d  %s  %s  %s  %s\n", rec.ID, rec.Date, rec.Category, rec.Description, rec.Amount)
}

func renderDashboard(w io.Writer, d report.Dashboard) error {
	fmt.Fprintf(w, "%s (%d entries)\n\n", d.Period, d.Records)

	fmt.Fprintf(w, "Total spent:        %s\n", d.KPI.Total)
	fmt.Fprintf(w, "Average per month:  %s\n", d.KPI.AverageMonthly.StringFixed(2))
	fmt.Fprintf(w, "Top category:       %s\n\n", d.KPI.HighestCategory)

	fmt.Fprintln(w, "By category")
	if d.Breakdown == nil {
		fmt.Fprintln(w, "  (net total is zero)")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, share := range d.Breakdown {
		if share.Total.Cents == 0 {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s%%\t%s\n", share.Category, share.Total, share.Percent.StringFixed(1), bar(share.Percent, decimal.NewFromInt(100)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nBy month")
	var peak int64
	for _, m := range d.Series {
		if m.Total.Cents > peak {
			peak = m.Total.Cents
		}
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range d.Series {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", m.Label, m.Total, bar(decimal.NewFromInt(m.Total.Cents), decimal.NewFromInt(peak)))
	}
	return tw.Flush()
}

// bar scales v against limit into at most barWidth blocks. Non-positive
// values draw nothing.
func bar(v, limit decimal.Decimal) string {
	if !v.IsPositive() || !limit.IsPositive() {
		return ""
	}
	n := v.Div(limit).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart()
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("#", int(n))
}
