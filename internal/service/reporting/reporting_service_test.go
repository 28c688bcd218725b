package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/testutil"
)

type fixture struct {
	svc        *Service
	production *testutil.HourlyStore
	stock      *testutil.StockStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	production := testutil.NewHourlyStore()
	stock := testutil.NewStockStore()
	plans := testutil.NewPlanStore(
		models.MonthlyProductionPlan{Month: "2026-01", ItemDescription: "Door Trim", Schedule: 5400},
	)
	trim := testutil.TwoSidedPart("Door Trim", "PN-7")
	trim.CustomerName = "Acme Motors"
	parts := testutil.NewPartStore(trim, testutil.SingleSidedPart("Bracket", "PN-9"))
	return fixture{
		svc:        NewService(production, stock, plans, parts, nil),
		production: production,
		stock:      stock,
	}
}

func (f fixture) addDoc(t *testing.T, date, desc, side string, ok, rejected int) {
	t.Helper()
	doc := &models.HourlyProductionDocument{
		Date:            date,
		PartDescription: desc,
		Side:            side,
		Totals: models.DocumentTotals{
			TotalPlanQty:     ok + rejected,
			TotalActualQty:   ok + rejected,
			TotalOKQty:       ok,
			TotalRejectedQty: rejected,
		},
	}
	if err := f.production.InsertDocument(context.Background(), doc); err != nil {
		t.Fatalf("InsertDocument: %v", err)
	}
}

func stockRow(date, variant string, opening, production, dispatched int) models.FGStockDocument {
	desc, side := models.ParseVariantName(variant)
	day, _ := time.Parse(dateLayout, date)
	return models.FGStockDocument{
		Date:            date,
		VariantName:     variant,
		PartDescription: desc,
		Side:            side,
		Year:            day.Year(),
		Month:           int(day.Month()),
		Day:             day.Day(),
		OpeningStock:    opening,
		ProductionAdded: production,
		Dispatched:      dispatched,
	}
}

func TestDailyProductionReportCombinesSides(t *testing.T) {
	f := newFixture(t)
	f.addDoc(t, "2026-01-20", "Door Trim", models.SideLH, 90, 10)
	f.addDoc(t, "2026-01-20", "Door Trim", models.SideRH, 95, 5)
	f.addDoc(t, "2026-01-19", "Door Trim", models.SideLH, 500, 0)
	f.addDoc(t, "2025-12-15", "Door Trim", models.SideLH, 300, 0)
	f.stock.Seed(
		stockRow("2026-01-20", "Door Trim LH", 100, 90, 40),
		stockRow("2026-01-20", "Door Trim RH", 55, 95, 0),
	)

	report, err := f.svc.DailyProductionReport(context.Background(), "2026-01-20")
	if err != nil {
		t.Fatalf("DailyProductionReport: %v", err)
	}
	if report.TotalParts != 1 {
		t.Fatalf("expected one part, got %d", report.TotalParts)
	}
	p := report.Parts[0]
	if p.OKQty != 185 || p.RejectedQty != 15 || p.LHOKQty != 90 || p.RHRejectedQty != 5 {
		t.Fatalf("unexpected production figures: %+v", p)
	}
	if p.CurrentStock != 300 || p.Dispatched != 40 || p.Balance != 260 {
		t.Fatalf("unexpected stock figures: stock=%d dispatched=%d balance=%d", p.CurrentStock, p.Dispatched, p.Balance)
	}
	if p.RejectionRatePct != 7.5 {
		t.Fatalf("expected rejection rate 7.5, got %v", p.RejectionRatePct)
	}
	// 5400 over 27 working days.
	if p.Schedule == nil || *p.Schedule != 5400 || p.DailyTarget == nil || *p.DailyTarget != 200 {
		t.Fatalf("unexpected plan figures: schedule=%v target=%v", p.Schedule, p.DailyTarget)
	}
	if p.ProjectedDays == nil || *p.ProjectedDays != 1.5 {
		t.Fatalf("expected 1.5 projected days, got %v", p.ProjectedDays)
	}
	if p.LastMonthProduction == nil || *p.LastMonthProduction != 300 {
		t.Fatalf("expected last month production 300, got %v", p.LastMonthProduction)
	}
	if report.TotalProduction != 185 || report.TotalDispatch != 40 {
		t.Fatalf("unexpected report totals: %+v", report)
	}
}

func TestDailyProductionReportInvalidDate(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.DailyProductionReport(context.Background(), "yesterday"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMonthlyProductionReport(t *testing.T) {
	f := newFixture(t)
	f.addDoc(t, "2026-01-05", "Door Trim", models.SideLH, 1000, 50)
	f.addDoc(t, "2026-01-05", "Door Trim", models.SideRH, 1000, 0)
	f.addDoc(t, "2026-01-06", "Door Trim", models.SideLH, 700, 0)
	f.addDoc(t, "2026-02-01", "Door Trim", models.SideLH, 9999, 0)
	f.stock.Seed(
		stockRow("2026-01-05", "Door Trim LH", 10, 1000, 270),
		stockRow("2026-01-06", "Door Trim LH", 740, 700, 0),
		stockRow("2026-01-05", "Door Trim RH", 20, 1000, 0),
	)

	report, err := f.svc.MonthlyProductionReport(context.Background(), 2026, 1)
	if err != nil {
		t.Fatalf("MonthlyProductionReport: %v", err)
	}
	if report.TotalParts != 1 || report.TotalProduction != 2700 || report.TotalRejected != 50 {
		t.Fatalf("unexpected report totals: %+v", report)
	}
	p := report.Parts[0]
	if p.DaysProduced != 2 || p.AvgDailyProduction != 1350 {
		t.Fatalf("unexpected daily figures: %+v", p)
	}
	if p.OpeningStock != 30 || p.ClosingStock != 2460 || p.TotalDispatched != 270 {
		t.Fatalf("unexpected stock figures: opening=%d closing=%d dispatched=%d", p.OpeningStock, p.ClosingStock, p.TotalDispatched)
	}
	if p.PlanAchievementPct == nil || *p.PlanAchievementPct != 50 {
		t.Fatalf("expected 50%% achievement, got %v", p.PlanAchievementPct)
	}
	if p.AvgDailyDispatch != 10 || p.WorkingDays != 27 {
		t.Fatalf("unexpected dispatch average: %+v", p)
	}

	if _, err := f.svc.MonthlyProductionReport(context.Background(), 2026, 0); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMonthlyPlanReport(t *testing.T) {
	f := newFixture(t)
	f.addDoc(t, "2026-01-05", "Door Trim", models.SideLH, 100, 0)
	f.addDoc(t, "2026-01-06", "Door Trim", models.SideLH, 120, 0)
	f.addDoc(t, "2026-01-05", "Bracket", "", 40, 0)
	f.stock.Seed(stockRow("2025-12-31", "Door Trim LH", 0, 75, 0))

	report, err := f.svc.MonthlyPlanReport(context.Background(), 2026, 1)
	if err != nil {
		t.Fatalf("MonthlyPlanReport: %v", err)
	}
	if report.MonthName != "JANUARY 2026" || report.DaysInMonth != 31 || report.TotalParts != 2 {
		t.Fatalf("unexpected header: %+v", report)
	}

	// Bracket has no customer so it sorts first.
	bracket, trim := report.Rows[0], report.Rows[1]
	if bracket.PartName != "Bracket" || bracket.MonthPlan != 0 || bracket.ProdPlan != 40 || bracket.BalanceToProduce != -40 {
		t.Fatalf("unexpected bracket row: %+v", bracket)
	}
	if trim.PartName != "Door Trim LH" || trim.Customer != "Acme Motors" || trim.MachineNumber != "120T" {
		t.Fatalf("unexpected trim identity: %+v", trim)
	}
	if trim.MonthPlan != 2700 || trim.ProdPlan != 220 || trim.BalanceToProduce != 2480 || trim.OpeningStock != 75 {
		t.Fatalf("unexpected trim figures: %+v", trim)
	}
	if trim.DailyQuantities[5] != 100 || trim.DailyQuantities[6] != 120 {
		t.Fatalf("unexpected daily quantities: %v", trim.DailyQuantities)
	}
	if report.TotalMonthPlan != 2700 || report.TotalProdPlan != 260 {
		t.Fatalf("unexpected totals: plan=%d prod=%d", report.TotalMonthPlan, report.TotalProdPlan)
	}
}

func TestMonthlyPlanReportEmptyMonth(t *testing.T) {
	f := newFixture(t)
	report, err := f.svc.MonthlyPlanReport(context.Background(), 2026, 2)
	if err != nil {
		t.Fatalf("MonthlyPlanReport: %v", err)
	}
	if len(report.Rows) != 0 || report.DaysInMonth != 28 {
		t.Fatalf("expected empty February report, got %+v", report)
	}
}

type memorySink struct {
	reports []*models.DailyProductionReport
	dates   map[string]bool
	err     error
}

func (m *memorySink) ExportedDates(context.Context) (map[string]bool, error) {
	return m.dates, m.err
}

func (m *memorySink) AppendDailyReport(_ context.Context, report *models.DailyProductionReport) (int, error) {
	m.reports = append(m.reports, report)
	if m.dates == nil {
		m.dates = make(map[string]bool)
	}
	m.dates[report.Date] = true
	return len(report.Parts), nil
}

func TestExportDailyReportSkipsExportedDate(t *testing.T) {
	f := newFixture(t)
	f.addDoc(t, "2026-01-20", "Door Trim", models.SideLH, 90, 10)
	f.addDoc(t, "2026-01-20", "Bracket", "", 40, 0)
	sink := &memorySink{dates: map[string]bool{"2026-01-19": true}}

	written, err := f.svc.ExportDailyReport(context.Background(), sink, "2026-01-20")
	if err != nil {
		t.Fatalf("ExportDailyReport: %v", err)
	}
	if written != 2 || len(sink.reports) != 1 {
		t.Fatalf("expected one report of two parts, got %d rows in %d reports", written, len(sink.reports))
	}
	parts := sink.reports[0].Parts
	if parts[0].PartDescription != "Bracket" || parts[1].Schedule == nil || *parts[1].Schedule != 5400 {
		t.Fatalf("unexpected exported parts: %+v", parts)
	}

	written, err = f.svc.ExportDailyReport(context.Background(), sink, "2026-01-20")
	if err != nil {
		t.Fatalf("second ExportDailyReport: %v", err)
	}
	if written != 0 || len(sink.reports) != 1 {
		t.Fatalf("expected rerun to skip, wrote %d", written)
	}
}

func TestExportDailyReportLookupFailure(t *testing.T) {
	f := newFixture(t)
	sink := &memorySink{err: errors.New("quota exceeded")}

	if _, err := f.svc.ExportDailyReport(context.Background(), sink, "2026-01-20"); err == nil {
		t.Fatal("expected the lookup error")
	}
	if len(sink.reports) != 0 {
		t.Fatal("nothing should be appended when the lookup fails")
	}
}

func TestDailySummaryText(t *testing.T) {
	f := newFixture(t)
	text, err := f.svc.DailySummaryText(context.Background(), "2026-01-20")
	if err != nil {
		t.Fatalf("DailySummaryText: %v", err)
	}
	if text != "Production 2026-01-20: no records yet." {
		t.Fatalf("unexpected empty summary: %q", text)
	}

	f.addDoc(t, "2026-01-20", "Door Trim", models.SideLH, 90, 10)
	text, err = f.svc.DailySummaryText(context.Background(), "2026-01-20")
	if err != nil {
		t.Fatalf("DailySummaryText: %v", err)
	}
	if !strings.Contains(text, "90 OK, 10 rejected") || !strings.Contains(text, "- Door Trim: ok 90, rej 10 (10.00%)") {
		t.Fatalf("unexpected summary: %q", text)
	}
}
