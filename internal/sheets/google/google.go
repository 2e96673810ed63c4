package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"hisab/internal/core"
	ports "hisab/internal/sheets"
)

// Client writes monthly statements to a Google Sheets spreadsheet.
// Each month occupies one row of the statement sheet, keyed by its
// YYYY-MM label in column A.
type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	statementSheet string
}

// Ensure interface conformance
var _ ports.StatementWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using Service Account credentials
// from the environment.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_STATEMENT_SHEET (default "Statements")
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheet := strings.TrimSpace(os.Getenv("GOOGLE_STATEMENT_SHEET"))
	if sheet == "" {
		sheet = "Statements"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		statementSheet: sheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials. Uses GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
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

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// WriteStatement upserts the month's row. The sheet layout is
// A=month, B=income, C=expense, D=net, E=bank deposits, F=entry count,
// with amounts written as decimal units.
func (c *Client) WriteStatement(ctx context.Context, view core.MonthView) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	month := view.Month.String()

	// Find an existing row for this month, or the next free row.
	rng := fmt.Sprintf("%s!A:A", c.statementSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read statement index for %s: %w", c.statementSheet, err)
	}

	row := len(resp.Values) + 1
	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		if label, ok := cells[0].(string); ok && strings.TrimSpace(label) == month {
			row = i + 1
			break
		}
	}

	dataRange := fmt.Sprintf("%s!A%d:F%d", c.statementSheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{{
		month,
		view.Summary.Income.Units(),
		view.Summary.Expense.Units(),
		view.Summary.Net().Units(),
		view.Summary.BankDeposits.Units(),
		len(view.Entries),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update statement row in %s: %w", c.statementSheet, err)
	}

	return dataRange, nil
}
