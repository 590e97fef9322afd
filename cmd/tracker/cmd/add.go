package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/core"
)

func newAddCmd(a *app) *cobra.Command {
	var raw core.RawFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an expense",
		Long: `Add one expense to the ledger. Amounts use '.' as decimal separator and
are rounded to cents; negative amounts record refunds.

Categories: ` + strings.Join(core.CategoryNames(), ", ") + `

Example:
  tracker add --category Food --amount 12.40 --description "Groceries"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.svc.AddExpense(cmd.Context(), raw)
			if err != nil {
				return err
			}
			a.mutated = true
			fmt.Fprint(cmd.OutOrStdout(), "Added ")
			renderRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}

	cmd.Flags().StringVar(&raw.Date, "date", core.DateOf(time.Now()).String(), "date as YYYY-MM-DD")
	cmd.Flags().StringVar(&raw.Category, "category", "", "expense category")
	cmd.Flags().StringVar(&raw.Description, "description", "", "free text")
	cmd.Flags().StringVar(&raw.Amount, "amount", "", "amount, e.g. 20.50")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "categories",
		Short:       "List the expense categories",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipLedger: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range core.CategoryNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
