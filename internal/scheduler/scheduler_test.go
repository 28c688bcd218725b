package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/almlcv/sharanga-backend-sub001/internal/config"
	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/reporting"
)

type fakeLedger struct{ dates []string }

func (f *fakeLedger) DailySnapshot(_ context.Context, date, _ string) ([]models.FGStockDocument, error) {
	f.dates = append(f.dates, date)
	return []models.FGStockDocument{{Date: date, VariantName: "Bracket"}}, nil
}

type fakeReports struct {
	exported  []string
	exportErr error
}

func (f *fakeReports) ExportDailyReport(_ context.Context, _ reporting.DailyReportSink, date string) (int, error) {
	f.exported = append(f.exported, date)
	return 1, f.exportErr
}

func (f *fakeReports) DailySummaryText(_ context.Context, date string) (string, error) {
	return "summary " + date, nil
}

type fakePoster struct{ texts []string }

func (f *fakePoster) PostSummary(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

type nopSink struct{}

func (nopSink) ExportedDates(context.Context) (map[string]bool, error) { return nil, nil }
func (nopSink) AppendDailyReport(context.Context, *models.DailyProductionReport) (int, error) {
	return 0, nil
}

func TestJobsUseFactoryDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ledger := &fakeLedger{}
	reports := &fakeReports{exportErr: errors.New("quota exceeded")}
	poster := &fakePoster{}

	s := NewScheduler(config.SchedulerConfig{}, ist, ledger, reports, nopSink{}, poster, nil)
	// 20:00 UTC is already the next day in the factory.
	s.now = func() time.Time { return time.Date(2026, 1, 20, 20, 0, 0, 0, time.UTC) }

	if err := s.ProvisionLedger(context.Background()); err != nil {
		t.Fatalf("ProvisionLedger: %v", err)
	}
	if len(ledger.dates) != 1 || ledger.dates[0] != "2026-01-21" {
		t.Fatalf("expected factory date 2026-01-21, got %v", ledger.dates)
	}

	if err := s.DeliverDailyReport(context.Background()); err != nil {
		t.Fatalf("DeliverDailyReport: %v", err)
	}
	if len(reports.exported) != 1 {
		t.Fatalf("expected one export attempt, got %d", len(reports.exported))
	}
	if len(poster.texts) != 1 || poster.texts[0] != "summary 2026-01-21" {
		t.Fatalf("expected summary posted despite export failure, got %v", poster.texts)
	}
}

func TestDeliverDailyReportWithoutOutputs(t *testing.T) {
	reports := &fakeReports{}
	s := NewScheduler(config.SchedulerConfig{}, nil, &fakeLedger{}, reports, nil, nil, nil)
	if err := s.DeliverDailyReport(context.Background()); err != nil {
		t.Fatalf("DeliverDailyReport: %v", err)
	}
	if len(reports.exported) != 0 {
		t.Fatalf("expected no export without a sheet")
	}
}

func TestStartRejectsBadCron(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{LedgerProvisionCron: "not a cron", ReportCron: "0 20 * * *"}, nil, &fakeLedger{}, &fakeReports{}, nil, nil, nil)
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatalf("expected invalid cron expression to fail")
	}
}
