// Package backend picks the codec for an import/export target.
package backend

import (
	"context"
	"fmt"

	"tracker/internal/codec"
	"tracker/internal/codec/csvfile"
	"tracker/internal/config"
	"tracker/internal/log"
	gsheet "tracker/internal/sheets/google"
	"tracker/internal/storage"
)

// CleanupFunc releases whatever the codec holds open.
type CleanupFunc func() error

// Result is an opened codec and its cleanup. Cleanup is never nil.
type Result struct {
	Target  Target
	Codec   codec.Codec
	Cleanup CleanupFunc
}

// Mode says which way data flows through an opened codec.
type Mode int

const (
	// ForImport reads an existing target. A missing file is an error
	// wrapping fs.ErrNotExist.
	ForImport Mode = iota
	// ForExport writes the target, creating it if needed.
	ForExport
)

func (m Mode) String() string {
	if m == ForExport {
		return "export"
	}
	return "import"
}

// Factory opens codecs for target strings.
type Factory interface {
	Open(ctx context.Context, target string, mode Mode) (*Result, error)
}

// Config holds what the non-file codecs need.
type Config struct {
	Sheets gsheet.Config
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	return Config{
		Sheets: gsheet.Config{
			SpreadsheetID:      appConfig.GoogleSpreadsheetID,
			SheetName:          appConfig.GoogleSheetName,
			ServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
			ServiceAccountFile: appConfig.GoogleServiceAccountFile,
		},
	}, nil
}

// DefaultFactory opens the CSV, SQLite and Google Sheets codecs.
type DefaultFactory struct {
	config Config
	logger *log.Logger
}

// NewFactory creates a factory. logger may be nil.
func NewFactory(config Config, logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{config: config, logger: logger.WithComponent(log.ComponentBackend)}
}

var _ Factory = (*DefaultFactory)(nil)

// Open parses target and opens its codec in the given mode.
func (f *DefaultFactory) Open(ctx context.Context, target string, mode Mode) (*Result, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case CSV:
		return &Result{Target: t, Codec: csvfile.New(t.Path), Cleanup: noCleanup}, nil
	case SQLite:
		return f.openSQLite(t, mode)
	case Sheets:
		return f.openSheets(ctx, t)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, t.Kind)
	}
}

func (f *DefaultFactory) openSQLite(t Target, mode Mode) (*Result, error) {
	open := storage.Open
	if mode == ForImport {
		// Opening a missing file would create an empty snapshot and import
		// it as an empty ledger.
		open = storage.OpenExisting
	}
	snap, err := open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite snapshot: %w", err)
	}
	f.logger.Debug("Opened SQLite snapshot", "db_path", t.Path, "mode", mode)
	return &Result{Target: t, Codec: snap, Cleanup: snap.Close}, nil
}

func (f *DefaultFactory) openSheets(ctx context.Context, t Target) (*Result, error) {
	cli, err := gsheet.New(ctx, f.config.Sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	cli = cli.WithSheet(t.Sheet)
	f.logger.Debug("Initialized Google Sheets client", "sheet", cli.Sheet())
	return &Result{Target: t, Codec: cli, Cleanup: noCleanup}, nil
}

func noCleanup() error { return nil }
