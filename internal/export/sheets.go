// Package export mirrors recorded transactions into an external Google Sheets
// ledger. The export is append-only and best-effort: the sheet is a human
// readable mirror, never a source of truth.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"oomsin/internal/config"
	"oomsin/internal/core"
)

// LedgerWriter appends one transaction row to an external ledger.
type LedgerWriter interface {
	AppendRow(ctx context.Context, t core.Transaction) error
}

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ LedgerWriter = (*SheetsExporter)(nil)

// NewSheetsExporter creates a Sheets client from service account credentials.
// Credentials come inline from GOOGLE_CREDENTIALS_JSON or from the file named
// by GOOGLE_CREDENTIALS_FILE.
func NewSheetsExporter(ctx context.Context, cfg *config.Config) (*SheetsExporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if cfg.GoogleSheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	var credentialsJSON []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// AppendRow appends one ledger row: date, kind, title, category, amount in
// baht, note, id.
func (e *SheetsExporter) AppendRow(ctx context.Context, t core.Transaction) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := []any{
		t.CreatedAt.UTC().Format(time.RFC3339),
		string(t.Kind),
		t.Title,
		t.Category,
		t.Amount.Baht(),
		t.Note,
		t.ID,
	}

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to sheet %s: %w", e.sheetName, err)
	}

	return nil
}
