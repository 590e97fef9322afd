package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/backend"
	"tracker/internal/storage"
)

const targetHelp = `Targets:
  *.csv                      CSV file
  *.db, *.sqlite, *.sqlite3  SQLite snapshot
  sheets                     Google Sheets, default worksheet (GOOGLE_SHEET_NAME)
  sheets:<SheetName>         Google Sheets, named worksheet
An empty target ("") does nothing.`

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <target>...",
		Short: "Export the whole ledger to one or more targets",
		Long: `Write every expense, in ledger order, to each target. Several targets are
written concurrently from the same snapshot. When a SQLite snapshot is
overwritten, the time and size of the previous export are shown.

` + targetHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ioContext(cmd.Context())
			defer cancel()

			previous := make(map[string]storage.ExportInfo)
			for _, target := range args {
				info, ok, err := a.svc.LastSnapshot(ctx, target)
				if err != nil {
					return err
				}
				if ok {
					previous[target] = info
				}
			}

			var err error
			if len(args) == 1 {
				err = a.svc.ExportTo(ctx, args[0])
			} else {
				err = a.svc.ExportAll(ctx, args...)
			}
			if err != nil {
				return err
			}
			n := a.svc.ListAll().Len()
			for _, target := range args {
				if backend.IsCancel(target) {
					fmt.Fprintln(cmd.OutOrStdout(), "Export cancelled.")
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, target)
				if info, ok := previous[target]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "  replaced snapshot of %s (%d entries, total %s)\n",
						info.ExportedAt.Local().Format(time.DateTime), info.Records, info.Total)
				}
			}
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <target>",
		Short: "Replace the ledger with the content of a target",
		Long: `Read every row of the target and replace the ledger with it. If any row
is invalid nothing is imported and the error names the row.

` + targetHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if backend.IsCancel(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled.")
				return nil
			}
			ctx, cancel := a.ioContext(cmd.Context())
			defer cancel()

			n, err := a.svc.ImportFrom(ctx, args[0])
			if err != nil {
				return err
			}
			a.mutated = true
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s\n", n, args[0])
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.svc.ListAll().Len()
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Remove all %d entries?", n))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Clear cancelled.")
					return nil
				}
			}
			a.svc.Clear(cmd.Context())
			a.mutated = true
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
