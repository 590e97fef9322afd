package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	var (
		date      string
		selection string
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one expense by date",
		Long: `Delete one expense recorded on --date. A single match is confirmed (or
pass --yes); several matches are listed and one is picked by number (or pass
--select N). Answering anything but yes cancels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			res, err := a.svc.DeleteByDate(date)
			if err != nil {
				return err
			}

			if res.NeedsSelection() {
				candidates := res.Candidates()
				fmt.Fprintf(out, "%d entries on %s:\n", len(candidates), res.Date())
				if err := renderCandidates(out, candidates); err != nil {
					return err
				}
				if selection == "" {
					if selection, err = prompt(cmd, fmt.Sprintf("Select entry to delete (1-%d): ", len(candidates))); err != nil {
						return err
					}
				}
				rec, err := a.svc.SelectDelete(cmd.Context(), res, selection)
				if err != nil {
					return err
				}
				a.mutated = true
				fmt.Fprint(out, "Deleted ")
				renderRecord(out, rec)
				return nil
			}

			rec := res.Candidates()[0]
			if !yes {
				renderRecord(out, rec)
				ok, err := confirm(cmd, "Delete this entry?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Deletion cancelled.")
					return nil
				}
			}
			if rec, err = a.svc.ConfirmDelete(cmd.Context(), res); err != nil {
				return err
			}
			a.mutated = true
			fmt.Fprint(out, "Deleted ")
			renderRecord(out, rec)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date of the expense, YYYY-MM-DD")
	cmd.Flags().StringVar(&selection, "select", "", "number of the entry when several share the date")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete a single match without asking")
	cmd.MarkFlagRequired("date")
	return cmd
}
