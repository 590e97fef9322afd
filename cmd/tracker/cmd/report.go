package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/core"
)

func newReportCmd(a *app) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the dashboard for a year or a date range",
		Long: `Show total spend, the monthly average, the top category, the category
breakdown and a monthly chart. A year shows all twelve months; a date range
shows only months that have expenses. Defaults to the latest year with
expenses, or the current year on an empty ledger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultYear := time.Now().Year()
			if years := a.svc.Years(); len(years) > 0 {
				defaultYear = years[len(years)-1]
			}
			p, err := period.period(defaultYear)
			if err != nil {
				return err
			}

			d, err := a.svc.Dashboard(p)
			if errors.Is(err, core.ErrEmptyView) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no expenses.\n", p)
				return nil
			}
			if err != nil {
				return err
			}
			return renderDashboard(cmd.OutOrStdout(), d)
		},
	}

	period.register(cmd)
	return cmd
}
