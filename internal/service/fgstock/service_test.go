package fgstock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/testutil"
)

var (
	dispatcher = models.Principal{EmpID: "D01", Name: "Kiran", Role: models.RoleDispatch}
	supervisor = models.Principal{EmpID: "P01", Name: "Lata", Role: models.RoleProduction}
	viewer     = models.Principal{EmpID: "V01", Role: models.RoleViewer}
)

type fixture struct {
	svc        *Service
	stock      *testutil.StockStore
	production *testutil.HourlyStore
	plans      *testutil.PlanStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	stock := testutil.NewStockStore()
	production := testutil.NewHourlyStore()
	plans := testutil.NewPlanStore(models.MonthlyProductionPlan{
		Month:           "2026-01",
		ItemDescription: "Door Trim",
		Schedule:        5000,
	})
	parts := testutil.NewPartStore(
		testutil.TwoSidedPart("Door Trim", "PN-7"),
		testutil.SingleSidedPart("Bracket", "PN-9"),
	)
	svc := NewService(stock, parts, plans, production, nil,
		WithClock(testutil.FixedClock(time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC))))
	return fixture{svc: svc, stock: stock, production: production, plans: plans}
}

func row(date, variant string, opening, production, inspection, dispatched int) models.FGStockDocument {
	desc, side := models.ParseVariantName(variant)
	day, _ := time.Parse("2006-01-02", date)
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
		InspectionQty:   inspection,
		Dispatched:      dispatched,
	}
}

func TestGetOrCreateRollsOverAcrossGap(t *testing.T) {
	f := newFixture(t)
	f.stock.Seed(
		row("2026-01-17", "Door Trim LH", 0, 10, 0, 0),
		row("2026-01-19", "Door Trim LH", 30, 20, 0, 8),
	)

	doc, err := f.svc.GetOrCreate(context.Background(), "2026-01-20", "Door Trim LH")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if doc.OpeningStock != 42 || doc.ClosingStock != 42 {
		t.Fatalf("expected opening 42 rolled from 2026-01-19, got opening=%d closing=%d", doc.OpeningStock, doc.ClosingStock)
	}
	if doc.Side != models.SideLH || doc.PartNumber != "PN-7" {
		t.Fatalf("unexpected identity: %+v", doc)
	}
	// 5000 split across two sides, 27 working days in January 2026.
	if doc.MonthlySchedule == nil || *doc.MonthlySchedule != 2500 {
		t.Fatalf("expected variant schedule 2500, got %v", doc.MonthlySchedule)
	}
	if doc.DailyTarget == nil || *doc.DailyTarget != 92 {
		t.Fatalf("expected daily target 92, got %v", doc.DailyTarget)
	}
}

func TestGetOrCreateFromGapAcrossMonths(t *testing.T) {
	f := newFixture(t)
	f.stock.Seed(row("2025-12-28", "Bracket", 5, 10, 0, 0))

	doc, err := f.svc.GetOrCreate(context.Background(), "2026-01-02", "Bracket")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if doc.OpeningStock != 15 {
		t.Fatalf("expected opening 15, got %d", doc.OpeningStock)
	}
	if doc.MonthlySchedule != nil {
		t.Fatalf("expected no schedule without a plan, got %d", *doc.MonthlySchedule)
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetOrCreate(ctx, "2026-01-20", "Bracket")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := f.svc.GetOrCreate(ctx, "2026-01-20", "Bracket")
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if first.ID != second.ID || f.stock.Len() != 1 {
		t.Fatalf("expected the same row, got %s and %s (%d rows)", first.ID.Hex(), second.ID.Hex(), f.stock.Len())
	}
}

func TestGetOrCreateUnknownPart(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.GetOrCreate(context.Background(), "2026-01-20", "Hinge LH"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.GetOrCreate(context.Background(), "20/01/2026", "Bracket"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConcurrentDispatchNeverOversells(t *testing.T) {
	f := newFixture(t)
	f.stock.Seed(row("2026-01-20", "Bracket", 100, 0, 0, 0))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RecordDispatch(context.Background(), dispatcher, models.DispatchRequest{
				Date: "2026-01-20", VariantName: "Bracket", DispatchedQty: 60,
			})
		}(i)
	}
	wg.Wait()

	succeeded, refused := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrInsufficientStock):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || refused != 1 {
		t.Fatalf("expected one success and one refusal, got %d and %d", succeeded, refused)
	}

	got, err := f.stock.FindStock(context.Background(), "2026-01-20", "Bracket")
	if err != nil {
		t.Fatalf("FindStock: %v", err)
	}
	if got.ClosingStock != 40 || got.Dispatched != 60 || len(got.Transactions) != 1 {
		t.Fatalf("expected closing 40 dispatched 60 with one transaction, got %d/%d/%d", got.ClosingStock, got.Dispatched, len(got.Transactions))
	}
	if got.ClosingStock != got.ExpectedClosing() {
		t.Fatalf("closing stock drifted from its components")
	}
}

func TestRecordDispatchValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.RecordDispatch(ctx, viewer, models.DispatchRequest{Date: "2026-01-20", VariantName: "Bracket", DispatchedQty: 1}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.RecordDispatch(ctx, dispatcher, models.DispatchRequest{Date: "2026-01-20", VariantName: "Bracket", DispatchedQty: 0}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.RecordDispatch(ctx, dispatcher, models.DispatchRequest{Date: "2026-01-20", VariantName: "Bracket", DispatchedQty: 1}); !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock on empty row, got %v", err)
	}
}

func TestRecordInspection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock.Seed(row("2026-01-20", "Door Trim RH", 10, 50, 0, 5))

	_, err := f.svc.RecordInspection(ctx, supervisor, models.InspectionRequest{
		Date: "2026-01-20", VariantName: "Door Trim RH", InspectionQty: 51, Remarks: "visual defects",
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for inspection above production, got %v", err)
	}
	unchanged, _ := f.stock.FindStock(ctx, "2026-01-20", "Door Trim RH")
	if unchanged.InspectionQty != 0 || unchanged.ClosingStock != 55 || len(unchanged.Transactions) != 0 {
		t.Fatalf("expected row unchanged, got %+v", unchanged)
	}

	if _, err := f.svc.RecordInspection(ctx, supervisor, models.InspectionRequest{
		Date: "2026-01-20", VariantName: "Door Trim RH", InspectionQty: 5, Remarks: "bad",
	}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected short remarks refused, got %v", err)
	}
	if _, err := f.svc.RecordInspection(ctx, dispatcher, models.InspectionRequest{
		Date: "2026-01-20", VariantName: "Door Trim RH", InspectionQty: 5, Remarks: "visual defects",
	}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := f.svc.RecordInspection(ctx, supervisor, models.InspectionRequest{
		Date: "2026-01-20", VariantName: "Door Trim RH", InspectionQty: 12, Remarks: "  flash on edge  ",
	})
	if err != nil {
		t.Fatalf("RecordInspection: %v", err)
	}
	if updated.InspectionQty != 12 || updated.ClosingStock != 43 {
		t.Fatalf("expected inspection 12 closing 43, got %d/%d", updated.InspectionQty, updated.ClosingStock)
	}
	tx := updated.Transactions[len(updated.Transactions)-1]
	if tx.TransactionType != models.TxInspection || tx.QuantityChange != -12 || tx.Remarks != "flash on edge" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	// Absolute, not additive.
	updated, err = f.svc.RecordInspection(ctx, supervisor, models.InspectionRequest{
		Date: "2026-01-20", VariantName: "Door Trim RH", InspectionQty: 4, Remarks: "re-check passed",
	})
	if err != nil {
		t.Fatalf("RecordInspection again: %v", err)
	}
	if updated.InspectionQty != 4 || updated.ClosingStock != 51 || updated.Transactions[len(updated.Transactions)-1].QuantityChange != 8 {
		t.Fatalf("expected absolute inspection 4, got %+v", updated)
	}
}

func TestSyncFromProductionSumsAllDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock.Seed(row("2026-01-20", "Door Trim LH", 20, 0, 0, 0))

	for _, ok := range []int{30, 45} {
		doc := &models.HourlyProductionDocument{
			Date: "2026-01-20", PartDescription: "Door Trim", Side: models.SideLH,
			Totals: models.DocumentTotals{TotalOKQty: ok},
		}
		if err := f.production.InsertDocument(ctx, doc); err != nil {
			t.Fatalf("InsertDocument: %v", err)
		}
	}
	// Other side must not leak in.
	if err := f.production.InsertDocument(ctx, &models.HourlyProductionDocument{
		Date: "2026-01-20", PartDescription: "Door Trim", Side: models.SideRH,
		Totals: models.DocumentTotals{TotalOKQty: 999},
	}); err != nil {
		t.Fatalf("InsertDocument: %v", err)
	}

	trigger := models.HourlyProductionDocument{ID: primitive.NewObjectID(), Date: "2026-01-20", PartDescription: "Door Trim", Side: models.SideLH}
	if err := f.svc.SyncFromProduction(ctx, trigger, "E100"); err != nil {
		t.Fatalf("SyncFromProduction: %v", err)
	}
	// Re-sync is absolute.
	if err := f.svc.SyncFromProduction(ctx, trigger, "E100"); err != nil {
		t.Fatalf("SyncFromProduction again: %v", err)
	}

	got, _ := f.stock.FindStock(ctx, "2026-01-20", "Door Trim LH")
	if got.ProductionAdded != 75 || got.ClosingStock != 95 {
		t.Fatalf("expected production 75 closing 95, got %d/%d", got.ProductionAdded, got.ClosingStock)
	}
	if len(got.Transactions) != 2 || got.Transactions[0].QuantityChange != 75 || got.Transactions[1].QuantityChange != 0 {
		t.Fatalf("unexpected transactions: %+v", got.Transactions)
	}
	if got.Transactions[0].ReferenceDocNo != trigger.ID.Hex() || got.LastSyncedAt == nil {
		t.Fatalf("expected sync metadata on row")
	}
}

func TestDailySnapshotProvisionsAllVariants(t *testing.T) {
	f := newFixture(t)
	f.stock.Seed(row("2026-01-19", "Bracket", 0, 7, 0, 0))

	rows, err := f.svc.DailySnapshot(context.Background(), "2026-01-20", "")
	if err != nil {
		t.Fatalf("DailySnapshot: %v", err)
	}
	var names []string
	for _, r := range rows {
		names = append(names, r.VariantName)
	}
	want := []string{"Bracket", "Door Trim LH", "Door Trim RH"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if rows[0].OpeningStock != 7 {
		t.Fatalf("expected Bracket opening 7, got %d", rows[0].OpeningStock)
	}

	filtered, err := f.svc.DailySnapshot(context.Background(), "2026-01-20", "door trim")
	if err != nil || len(filtered) != 2 {
		t.Fatalf("expected two Door Trim rows, got %d (%v)", len(filtered), err)
	}
}

func TestMonthlySummary(t *testing.T) {
	f := newFixture(t)
	f.stock.Seed(
		row("2026-01-05", "Door Trim LH", 10, 100, 5, 50),
		row("2026-01-06", "Door Trim LH", 55, 150, 0, 100),
		row("2026-01-05", "Bracket", 0, 40, 0, 0),
		row("2026-02-01", "Door Trim LH", 105, 999, 0, 0),
	)

	summaries, err := f.svc.MonthlySummary(context.Background(), 2026, 1, "")
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(summaries))
	}
	bracket, trim := summaries[0], summaries[1]
	if bracket.VariantName != "Bracket" || bracket.MonthlySchedule != nil || bracket.AchievementPct != nil {
		t.Fatalf("unexpected bracket summary: %+v", bracket)
	}
	if trim.OpeningStockMonth != 10 || trim.ClosingStockMonth != 105 || trim.TotalProduction != 250 || trim.TotalDispatched != 150 || trim.TotalInspection != 5 {
		t.Fatalf("unexpected trim totals: %+v", trim)
	}
	if trim.AvgDailyProduction != 125 || trim.DaysRecorded != 2 {
		t.Fatalf("unexpected averages: %+v", trim)
	}
	if trim.MonthlySchedule == nil || *trim.MonthlySchedule != 2500 || trim.AchievementPct == nil || *trim.AchievementPct != 10 {
		t.Fatalf("unexpected achievement: schedule=%v pct=%v", trim.MonthlySchedule, trim.AchievementPct)
	}

	if _, err := f.svc.MonthlySummary(context.Background(), 2026, 13, ""); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
