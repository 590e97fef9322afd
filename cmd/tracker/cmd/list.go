package cmd

import (
	"github.com/spf13/cobra"

	"tracker/internal/ledger"
)

func newListCmd(a *app) *cobra.Command {
	var (
		period periodFlags
		sortBy string
		desc   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Long: `List expenses in ledger order, or sorted by date, category, description
or amount. Narrow the list with --year or with --from and --to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := ledger.ParseSortField(sortBy)
			if err != nil {
				return err
			}

			v := a.svc.ListAll()
			if period.isSet() {
				p, err := period.period(0)
				if err != nil {
					return err
				}
				if p.IsRange() {
					if v, err = a.svc.FilterByRange(p.Start, p.End); err != nil {
						return err
					}
				} else {
					v = a.svc.FilterByYear(p.Year)
				}
			}
			if sortBy != "" || desc {
				v = v.SortBy(field, desc)
			}
			return renderRecords(cmd.OutOrStdout(), v)
		},
	}

	period.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by date, category, description or amount")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	return cmd
}
