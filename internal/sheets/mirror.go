// Package sheets mirrors the ledger to a Google Sheets spreadsheet. The
// mirror is a read-only convenience copy for people who live in
// spreadsheets; the kv snapshot stays the source of truth. Every refresh
// replaces the sheet's rows with the current collection, matching the
// whole-snapshot persistence model.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"vendorpay/internal/core"
)

type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv builds a mirror from environment variables.
// Required: SHEETS_SPREADSHEET_ID plus service account credentials in
// SHEETS_SERVICE_ACCOUNT_JSON, SHEETS_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: SHEETS_SHEET_NAME (default
// "Payments").
func NewFromEnv(ctx context.Context) (*Mirror, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("SHEETS_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing SHEETS_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("SHEETS_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Payments"
	}

	credentialsJSON, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Mirror{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func credentialsFromEnv() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("SHEETS_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}

	path := strings.TrimSpace(os.Getenv("SHEETS_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set SHEETS_SERVICE_ACCOUNT_JSON, SHEETS_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// Replace clears the mirror sheet and rewrites header plus one row per
// payment, in ledger order.
func (m *Mirror) Replace(ctx context.Context, payments []core.Payment) error {
	if m.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:G", m.sheetName)
	_, err := m.svc.Spreadsheets.Values.
		Clear(m.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear mirror sheet: %w", err)
	}

	values := make([][]interface{}, 0, len(payments)+1)
	values = append(values, []interface{}{
		"Vendor", "Category", "Payment Type", "Amount", "Date", "Cheque Number", "Bank",
	})
	for _, p := range payments {
		values = append(values, []interface{}{
			p.Vendor,
			string(p.Category),
			string(p.Type),
			p.Amount.Float64(),
			p.Date.String(),
			p.ChequeNumber,
			p.BankName,
		})
	}

	vr := &gsheet.ValueRange{Values: values}
	_, err = m.svc.Spreadsheets.Values.
		Update(m.spreadsheetID, fmt.Sprintf("%s!A1", m.sheetName), vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write mirror rows: %w", err)
	}
	return nil
}
