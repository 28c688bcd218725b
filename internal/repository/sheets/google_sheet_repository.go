package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/almlcv/sharanga-backend-sub001/internal/config"
	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

const (
	dailyReportTab    = "DailyProduction"
	dailyReportRange  = dailyReportTab + "!A:L"
	exportedDateRange = dailyReportTab + "!A:A"
)

// Dates typed by hand in the sheet render in the spreadsheet locale.
var exportedDateLayouts = []string{"2006-01-02", "2/1/2006", "02/01/2006", "2 Jan 2006"}

// ErrDisabled is returned when the export is built without sheet credentials.
var ErrDisabled = errors.New("google sheets export is not configured")

// GoogleSheetRepository keeps the daily production report tab of a spreadsheet.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return newRepository(service, cfg.SpreadsheetID, logger), nil
}

func newRepository(service *sheetsapi.Service, spreadsheetID string, logger *zap.Logger) *GoogleSheetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger.With(zap.String("spreadsheet_id", spreadsheetID)),
	}
}

// ExportedDates lists the production dates already present in the report tab.
// The header row and cells that are not dates are ignored.
func (r *GoogleSheetRepository) ExportedDates(ctx context.Context) (map[string]bool, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, exportedDateRange).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read exported dates: %w", err)
	}
	return exportedDates(resp.Values), nil
}

// AppendDailyReport writes one row per part of report in a single append and
// returns the number of rows written.
func (r *GoogleSheetRepository) AppendDailyReport(ctx context.Context, report *models.DailyProductionReport) (int, error) {
	rows := dailyReportRows(report)
	if len(rows) == 0 {
		return 0, nil
	}

	payload := &sheetsapi.ValueRange{MajorDimension: "ROWS", Values: rows}
	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, dailyReportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return 0, fmt.Errorf("append daily report %s: %w", report.Date, err)
	}

	r.logger.Debug("daily report appended", zap.String("date", report.Date), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// dailyReportRows lays out the report tab columns A to L.
func dailyReportRows(report *models.DailyProductionReport) [][]interface{} {
	rows := make([][]interface{}, 0, len(report.Parts))
	for _, part := range report.Parts {
		rows = append(rows, []interface{}{
			report.Date,
			part.PartDescription,
			part.PlanQty,
			part.ActualQty,
			part.OKQty,
			part.RejectedQty,
			part.RejectionRatePct,
			part.CurrentStock,
			part.Dispatched,
			part.Balance,
			optionalCell(part.Schedule),
			optionalCell(part.DailyTarget),
		})
	}
	return rows
}

func exportedDates(values [][]interface{}) map[string]bool {
	dates := make(map[string]bool)
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(fmt.Sprint(row[0]))
		for _, layout := range exportedDateLayouts {
			if day, err := time.Parse(layout, cell); err == nil {
				dates[day.Format("2006-01-02")] = true
				break
			}
		}
	}
	return dates
}

func optionalCell(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
