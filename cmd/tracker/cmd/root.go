// Package cmd provides the tracker CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"tracker/internal/amqp"
	"tracker/internal/backend"
	"tracker/internal/cli"
	"tracker/internal/config"
	"tracker/internal/ledger"
	"tracker/internal/log"
	"tracker/internal/services"
)

// skipLedger marks commands that run without loading the ledger file.
const skipLedger = "skip-ledger"

// app is the state shared by one invocation's commands.
type app struct {
	envFile    string
	ledgerFile string
	debug      bool

	cfg    *config.Config
	logger *log.Logger
	amqp   *amqp.Client
	svc    *services.ExpenseService

	// mutated is set by commands that change the ledger so it gets saved.
	mutated bool
}

// NewRootCmd builds the command tree with fresh state.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tracker",
		Short: "Track personal expenses in a local ledger",
		Long: `tracker keeps a ledger of expenses (date, category, description, amount)
in a CSV file, and computes totals, monthly series and category breakdowns.

The ledger file is read at start, and written back after any command that
changes it. Export and import also support SQLite files and Google Sheets.

Example:
  tracker add --date 2024-12-12 --category Food --amount 20.50 --description Lunch
  tracker list --year 2024 --sort amount --desc
  tracker report --from 2024-01-01 --to 2024-06-30
  tracker export backup.db sheets:Backup`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.ledgerFile, "file", "", "ledger file (default LEDGER_FILE or ./data/expenses.csv)")
	root.PersistentFlags().StringVar(&a.envFile, "env", "", "env file to load (default .env)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newClearCmd(a),
		newCategoriesCmd(),
		newEventsCmd(a),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	// Env first, so LOG_LEVEL from .env applies.
	envErr := cli.LoadEnvFile(a.envFile)

	level, _ := config.ParseLevel(config.Load().LogLevel)
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = cli.SetupLogger(level)
	if envErr != nil {
		return envErr
	}

	cfg, err := cli.LoadAndValidateConfig(a.logger)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.ledgerFile == "" {
		a.ledgerFile = cfg.LedgerFile
	}

	if cmd.Annotations[skipLedger] != "" {
		return nil
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	a.amqp = cli.ConnectAMQP(a.logger, cfg)
	var pub services.EventPublisher
	if a.amqp != nil {
		pub = a.amqp
	}
	a.svc = services.NewExpenseService(ledger.New(), backend.NewFactory(bcfg, a.logger), pub, a.logger)

	ctx, cancel := a.ioContext(cmd.Context())
	defer cancel()
	if _, err := a.svc.Load(ctx, a.ledgerFile); err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.svc == nil {
		return nil
	}
	defer a.svc.Close()

	if !a.mutated || !a.cfg.AutoSave {
		return nil
	}
	ctx, cancel := a.ioContext(ctx)
	defer cancel()
	if err := a.svc.ExportTo(ctx, a.ledgerFile); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

func (a *app) ioContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, a.cfg.IOTimeout)
}
