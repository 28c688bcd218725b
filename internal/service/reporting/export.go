package reporting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// DailyReportSink stores exported daily reports.
type DailyReportSink interface {
	ExportedDates(ctx context.Context) (map[string]bool, error)
	AppendDailyReport(ctx context.Context, report *models.DailyProductionReport) (int, error)
}

// ExportDailyReport hands the daily report of date to sink. A date the sink
// already holds is skipped so reruns do not duplicate rows.
func (s *Service) ExportDailyReport(ctx context.Context, sink DailyReportSink, date string) (int, error) {
	report, err := s.DailyProductionReport(ctx, date)
	if err != nil {
		return 0, err
	}

	exported, err := sink.ExportedDates(ctx)
	if err != nil {
		return 0, fmt.Errorf("load exported dates: %w", err)
	}
	if exported[report.Date] {
		s.logger.Info("daily report already exported", zap.String("date", report.Date))
		return 0, nil
	}

	written, err := sink.AppendDailyReport(ctx, report)
	if err != nil {
		return 0, err
	}
	s.logger.Info("daily report exported", zap.String("date", report.Date), zap.Int("rows", written))
	return written, nil
}

// DailySummaryText renders the daily report as a short plain-text message.
func (s *Service) DailySummaryText(ctx context.Context, date string) (string, error) {
	report, err := s.DailyProductionReport(ctx, date)
	if err != nil {
		return "", err
	}
	if report.TotalParts == 0 {
		return fmt.Sprintf("Production %s: no records yet.", report.Date), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Production %s: %d OK, %d rejected, %d dispatched across %d parts.",
		report.Date, report.TotalProduction, report.TotalRejected, report.TotalDispatch, report.TotalParts)
	for _, part := range report.Parts {
		fmt.Fprintf(&b, "\n- %s: ok %d, rej %d (%.2f%%), stock %d",
			part.PartDescription, part.OKQty, part.RejectedQty, part.RejectionRatePct, part.CurrentStock)
	}
	return b.String(), nil
}
