package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/config"
	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// LedgerProvisioner creates the day's ledger rows for every active variant.
type LedgerProvisioner interface {
	DailySnapshot(ctx context.Context, date, partFilter string) ([]models.FGStockDocument, error)
}

// ReportBuilder renders the daily production report for delivery.
type ReportBuilder interface {
	ExportDailyReport(ctx context.Context, sink reporting.DailyReportSink, date string) (int, error)
	DailySummaryText(ctx context.Context, date string) (string, error)
}

// SummaryPoster delivers a text summary.
type SummaryPoster interface {
	PostSummary(ctx context.Context, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron    *cron.Cron
	cfg     config.SchedulerConfig
	loc     *time.Location
	ledger  LedgerProvisioner
	reports ReportBuilder
	sheet   reporting.DailyReportSink
	poster  SummaryPoster
	now     func() time.Time
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance. sheet and poster are optional.
func NewScheduler(cfg config.SchedulerConfig, loc *time.Location, ledger LedgerProvisioner, reports ReportBuilder, sheet reporting.DailyReportSink, poster SummaryPoster, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	// Standard 5-field cron expressions evaluated in the factory timezone.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:    c,
		cfg:     cfg,
		loc:     loc,
		ledger:  ledger,
		reports: reports,
		sheet:   sheet,
		poster:  poster,
		now:     time.Now,
		logger:  logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("ledger_cron", s.cfg.LedgerProvisionCron),
		zap.String("report_cron", s.cfg.ReportCron))

	if _, err := s.cron.AddFunc(s.cfg.LedgerProvisionCron, s.timed("ledger provisioning", s.ProvisionLedger)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.ReportCron, s.timed("daily report", s.DeliverDailyReport)); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) timed(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		started := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(started)))
	}
}

func (s *Scheduler) today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

// ProvisionLedger makes sure today's ledger rows exist with rolled-over opening stock.
func (s *Scheduler) ProvisionLedger(ctx context.Context) error {
	rows, err := s.ledger.DailySnapshot(ctx, s.today(), "")
	if err != nil {
		return err
	}
	s.logger.Info("ledger provisioned", zap.String("date", s.today()), zap.Int("variants", len(rows)))
	return nil
}

// DeliverDailyReport exports today's report to the sheet and posts the summary.
// Each output is optional and a failure of one does not stop the other.
func (s *Scheduler) DeliverDailyReport(ctx context.Context) error {
	date := s.today()

	if s.sheet != nil {
		written, err := s.reports.ExportDailyReport(ctx, s.sheet, date)
		if err != nil {
			s.logger.Error("daily report export failed", zap.String("date", date), zap.Error(err))
		} else {
			s.logger.Info("daily report export done", zap.String("date", date), zap.Int("rows", written))
		}
	}

	if s.poster == nil {
		return nil
	}
	text, err := s.reports.DailySummaryText(ctx, date)
	if err != nil {
		return err
	}
	if err := s.poster.PostSummary(ctx, text); err != nil {
		return err
	}
	s.logger.Info("daily summary posted", zap.String("date", date))
	return nil
}
