package cmd

import (
	"github.com/spf13/cobra"

	"tracker/internal/core"
	"tracker/internal/report"
)

// periodFlags is the --year | --from --to selection shared by list and report.
type periodFlags struct {
	year     int
	from, to string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.year, "year", 0, "calendar year")
	cmd.Flags().StringVar(&p.from, "from", "", "range start, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&p.to, "to", "", "range end, YYYY-MM-DD (inclusive)")
	cmd.MarkFlagsMutuallyExclusive("year", "from")
	cmd.MarkFlagsMutuallyExclusive("year", "to")
	cmd.MarkFlagsRequiredTogether("from", "to")
}

func (p *periodFlags) isSet() bool {
	return p.year != 0 || p.from != "" || p.to != ""
}

// period returns the selected period, falling back to defaultYear. An
// inverted range is rejected when the ledger is filtered.
func (p *periodFlags) period(defaultYear int) (report.Period, error) {
	if p.from == "" && p.to == "" {
		year := p.year
		if year == 0 {
			year = defaultYear
		}
		return report.YearPeriod(year), nil
	}
	start, err := core.ParseDate(p.from)
	if err != nil {
		return report.Period{}, err
	}
	end, err := core.ParseDate(p.to)
	if err != nil {
		return report.Period{}, err
	}
	return report.RangePeriod(start, end), nil
}
