// Package google exports and imports the ledger to a Google Sheets worksheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"tracker/internal/codec"
	"tracker/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet, the worksheet and the service account.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var _ codec.Codec = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Expenses"
	}

	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.DebugContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID, "sheet", sheet)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

// credentialsJSON prefers inline JSON over a file path.
func credentialsJSON(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Sheet returns the worksheet this client reads and writes.
func (c *Client) Sheet() string {
	return c.sheet
}

// WithSheet returns a client for another worksheet of the same spreadsheet.
func (c *Client) WithSheet(name string) *Client {
	cp := *c
	if name = strings.TrimSpace(name); name != "" {
		cp.sheet = name
	}
	return &cp
}

func (c *Client) dataRange() string {
	return fmt.Sprintf("'%s'!A:D", strings.ReplaceAll(c.sheet, "'", "''"))
}

// Export clears the worksheet columns and rewrites them with the ledger.
func (c *Client) Export(ctx context.Context, recs []core.Record) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := c.dataRange()

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	vr := &gsheet.ValueRange{Values: encodeValues(recs)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Ledger exported to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheet,
		"records", len(recs))
	return nil
}

// Import reads the worksheet back and validates every row.
func (c *Client) Import(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := c.dataRange()
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	recs, err := decodeValues(resp.Values)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Ledger imported from Google Sheets", "sheet", c.sheet, "records", len(recs))
	return recs, nil
}
