// Package sheets appends monthly revenue totals to a Google Sheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"lexdash/internal/locale"
	applog "lexdash/internal/log"
	"lexdash/internal/summary"
)

// Config names the target sheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
	now           func() time.Time
}

// New authenticates with the service account and returns an Exporter.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Exporter, error) {
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger)
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config, logger *applog.Logger) (*Exporter, error) {
	if svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Receita"
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentExport)
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetName:     sheet,
		logger:        logger.WithComponent(applog.ComponentExport),
		now:           time.Now,
	}, nil
}

// newSheetsService prefers inline JSON credentials over the file.
func newSheetsService(ctx context.Context, cfg Config, logger *applog.Logger) (*gsheet.Service, error) {
	var (
		credentialsJSON []byte
		err             error
	)
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case cfg.ServiceAccountFile != "":
		credentialsJSON, err = os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	if logger != nil {
		logger.DebugContext(ctx, "Creating Google Sheets service",
			"credentials_size", len(credentialsJSON),
			"scope", gsheet.SpreadsheetsScope)
	}
	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// RevenueRows turns month buckets into sheet rows, oldest month first:
// month key, label, amount, formatted amount, user, export time.
func RevenueRows(userID string, buckets []summary.MonthBucket, exportedAt time.Time) [][]any {
	rows := make([][]any, 0, len(buckets))
	stamp := exportedAt.UTC().Format(time.RFC3339)
	for i := len(buckets) - 1; i >= 0; i-- {
		b := buckets[i]
		rows = append(rows, []any{
			b.Key(),
			b.Label,
			b.Total.Decimal().StringFixed(2),
			locale.Money(b.Total.Cents),
			userID,
			stamp,
		})
	}
	return rows
}

// ExportRevenue appends one row per bucket and returns the number of rows
// the API reports as written.
func (e *Exporter) ExportRevenue(ctx context.Context, userID string, buckets []summary.MonthBucket) (int64, error) {
	if len(buckets) == 0 {
		return 0, nil
	}
	rows := RevenueRows(userID, buckets, e.now())
	rng := fmt.Sprintf("%s!A:F", e.sheetName)

	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to %s: %w", rng, err)
	}

	var written int64
	if resp.Updates != nil {
		written = resp.Updates.UpdatedRows
	}
	e.logger.InfoContext(ctx, "Exported revenue",
		applog.FieldOperation, applog.OpExport,
		applog.FieldSpreadsheetID, e.spreadsheetID,
		applog.FieldUserID, userID,
		"sheet", e.sheetName,
		"rows", written)
	return written, nil
}
