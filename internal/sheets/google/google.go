// Package google implements the cloud-sync port against the Google
// Sheets API using a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"rentledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ sheets.RowWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Readings").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Readings"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using service account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Upsert writes one billing row. Rows are keyed on columns A:B (room id,
// period); a matching row is rewritten in place, otherwise the row is
// appended after the existing data.
func (c *Client) Upsert(ctx context.Context, row sheets.BillingRow) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	keyRange := fmt.Sprintf("%s!A:B", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, keyRange).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read sheet keys from %s: %w", c.sheetName, err)
	}

	targetRow := 0
	for i, cells := range resp.Values {
		if len(cells) < 2 {
			continue
		}
		id, _ := cells[0].(string)
		period, _ := cells[1].(string)
		if id == row.RoomID && period == string(row.Period) {
			targetRow = i + 1 // sheet rows are 1-based
			break
		}
	}
	if targetRow == 0 {
		targetRow = len(resp.Values) + 1
	}

	status := "Chưa thanh toán"
	if row.Paid {
		status = "Đã thanh toán"
	}
	dataRange := fmt.Sprintf("%s!A%d:L%d", c.sheetName, targetRow, targetRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		row.RoomID, string(row.Period), row.RoomName,
		row.PrevElectricity, row.CurrElectricity, row.ElectricityUsage,
		row.PrevWater, row.CurrWater, row.WaterUsage,
		row.BaseRent.Amount, row.Total.Amount, status,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write row to sheet %s: %w", c.sheetName, err)
	}

	ref := fmt.Sprintf("%s!A%d", c.sheetName, targetRow)
	slog.InfoContext(ctx, "Billing row synced to sheet",
		"room_id", row.RoomID,
		"period", string(row.Period),
		"sheets_ref", ref)
	return ref, nil
}
