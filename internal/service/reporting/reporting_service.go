package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

const dateLayout = "2006-01-02"

// ProductionReader reads hourly production documents.
type ProductionReader interface {
	FindDocumentsByDate(ctx context.Context, date string) ([]models.HourlyProductionDocument, error)
	FindDocumentsInRange(ctx context.Context, from, to string) ([]models.HourlyProductionDocument, error)
}

// StockReader reads ledger rows.
type StockReader interface {
	FindStocksByDate(ctx context.Context, date string) ([]models.FGStockDocument, error)
	FindStocksByMonth(ctx context.Context, year, month int, partDescription string) ([]models.FGStockDocument, error)
}

// PlanLookup lists the production plans of a month.
type PlanLookup interface {
	List(ctx context.Context, year, month int) ([]models.MonthlyProductionPlan, error)
}

// PartCatalog lists the active part configurations.
type PartCatalog interface {
	ListActiveParts(ctx context.Context) ([]models.PartConfiguration, error)
}

// Service builds read-only production reports.
type Service struct {
	production ProductionReader
	stock      StockReader
	plans      PlanLookup
	parts      PartCatalog
	logger     *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(production ProductionReader, stock StockReader, plans PlanLookup, parts PartCatalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{production: production, stock: stock, plans: plans, parts: parts, logger: logger}
}

type partAccumulator struct {
	summary models.PartProductionSummary
}

// DailyProductionReport combines production, stock and plan figures per part for a date.
func (s *Service) DailyProductionReport(ctx context.Context, date string) (*models.DailyProductionReport, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	date = day.Format(dateLayout)
	year, month := day.Year(), int(day.Month())

	docs, err := s.production.FindDocumentsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load production for %s: %w", date, err)
	}
	stocks, err := s.stock.FindStocksByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load stock for %s: %w", date, err)
	}
	plans := s.planMap(ctx, year, month)

	parts := make(map[string]*partAccumulator)
	get := func(desc string) *partAccumulator {
		acc, ok := parts[desc]
		if !ok {
			acc = &partAccumulator{summary: models.PartProductionSummary{PartDescription: desc}}
			parts[desc] = acc
		}
		return acc
	}

	for _, doc := range docs {
		acc := get(doc.PartDescription)
		acc.summary.PlanQty += doc.Totals.TotalPlanQty
		acc.summary.ActualQty += doc.Totals.TotalActualQty
		acc.summary.OKQty += doc.Totals.TotalOKQty
		acc.summary.RejectedQty += doc.Totals.TotalRejectedQty
		switch doc.Side {
		case models.SideLH:
			acc.summary.LHOKQty += doc.Totals.TotalOKQty
			acc.summary.LHRejectedQty += doc.Totals.TotalRejectedQty
		case models.SideRH:
			acc.summary.RHOKQty += doc.Totals.TotalOKQty
			acc.summary.RHRejectedQty += doc.Totals.TotalRejectedQty
		}
	}
	for _, st := range stocks {
		acc := get(st.PartDescription)
		acc.summary.CurrentStock += st.ClosingStock
		acc.summary.Dispatched += st.Dispatched
	}

	lastMonth := s.lastMonthProduction(ctx, day)
	workingDays := models.WorkingDays(year, month)

	report := &models.DailyProductionReport{Date: date, Parts: make([]models.PartProductionSummary, 0, len(parts))}
	for desc, acc := range parts {
		sum := acc.summary
		sum.Balance = sum.CurrentStock - sum.Dispatched
		sum.RejectionRatePct = rejectionRate(sum.OKQty, sum.RejectedQty)

		if plan, ok := plans[desc]; ok {
			schedule := plan.Schedule
			sum.Schedule = &schedule
			if schedule > 0 && workingDays > 0 {
				target := schedule / workingDays
				sum.DailyTarget = &target
				if target > 0 {
					projected := round2(float64(sum.CurrentStock) / float64(target))
					sum.ProjectedDays = &projected
				}
			}
		}
		if lastMonth != nil {
			prev := lastMonth[desc]
			sum.LastMonthProduction = &prev
		}

		report.Parts = append(report.Parts, sum)
		report.TotalProduction += sum.OKQty
		report.TotalRejected += sum.RejectedQty
		report.TotalDispatch += sum.Dispatched
	}
	sort.Slice(report.Parts, func(i, j int) bool { return report.Parts[i].PartDescription < report.Parts[j].PartDescription })
	report.TotalParts = len(report.Parts)

	s.logger.Debug("daily production report built", zap.String("date", date), zap.Int("parts", report.TotalParts))
	return report, nil
}

// lastMonthProduction sums OK quantity per part over the previous calendar month.
// A lookup failure yields nil so the report still renders.
func (s *Service) lastMonthProduction(ctx context.Context, day time.Time) map[string]int {
	firstOfMonth := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevFirst := firstOfMonth.AddDate(0, -1, 0)

	docs, err := s.production.FindDocumentsInRange(ctx, prevFirst.Format(dateLayout), firstOfMonth.Format(dateLayout))
	if err != nil {
		s.logger.Error("failed to load last month production", zap.Error(err))
		return nil
	}
	out := make(map[string]int)
	for _, doc := range docs {
		out[doc.PartDescription] += doc.Totals.TotalOKQty
	}
	return out
}

type monthAccumulator struct {
	ok, rejected, dispatched int
	days                     map[string]struct{}
	openingByVariant         map[string]models.FGStockDocument
	closingByVariant         map[string]models.FGStockDocument
}

// MonthlyProductionReport aggregates a month of production and stock per part.
func (s *Service) MonthlyProductionReport(ctx context.Context, year, month int) (*models.MonthlyProductionReport, error) {
	if month < 1 || month > 12 {
		return nil, models.Errorf(models.ErrValidation, "month must be between 1 and 12")
	}
	from, to := monthRange(year, month)

	docs, err := s.production.FindDocumentsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load production for %s: %w", models.MonthKey(year, month), err)
	}
	stocks, err := s.stock.FindStocksByMonth(ctx, year, month, "")
	if err != nil {
		return nil, fmt.Errorf("load stock for %s: %w", models.MonthKey(year, month), err)
	}
	plans := s.planMap(ctx, year, month)

	parts := make(map[string]*monthAccumulator)
	get := func(desc string) *monthAccumulator {
		acc, ok := parts[desc]
		if !ok {
			acc = &monthAccumulator{
				days:             make(map[string]struct{}),
				openingByVariant: make(map[string]models.FGStockDocument),
				closingByVariant: make(map[string]models.FGStockDocument),
			}
			parts[desc] = acc
		}
		return acc
	}

	for _, doc := range docs {
		acc := get(doc.PartDescription)
		acc.ok += doc.Totals.TotalOKQty
		acc.rejected += doc.Totals.TotalRejectedQty
		acc.days[doc.Date] = struct{}{}
	}
	for _, st := range stocks {
		acc := get(st.PartDescription)
		acc.dispatched += st.Dispatched
		if first, ok := acc.openingByVariant[st.VariantName]; !ok || st.Date < first.Date {
			acc.openingByVariant[st.VariantName] = st
		}
		if last, ok := acc.closingByVariant[st.VariantName]; !ok || st.Date > last.Date {
			acc.closingByVariant[st.VariantName] = st
		}
	}

	workingDays := models.WorkingDays(year, month)
	report := &models.MonthlyProductionReport{Year: year, Month: month, Parts: make([]models.MonthlyProductionSummary, 0, len(parts))}

	for desc, acc := range parts {
		sum := models.MonthlyProductionSummary{
			PartDescription:  desc,
			Month:            models.MonthKey(year, month),
			TotalProduction:  acc.ok,
			TotalOKQty:       acc.ok,
			TotalRejectedQty: acc.rejected,
			RejectionRatePct: rejectionRate(acc.ok, acc.rejected),
			TotalDispatched:  acc.dispatched,
			WorkingDays:      workingDays,
			DaysProduced:     len(acc.days),
		}
		for _, st := range acc.openingByVariant {
			sum.OpeningStock += st.OpeningStock
		}
		for _, st := range acc.closingByVariant {
			sum.ClosingStock += st.ClosingStock
		}
		if plan, ok := plans[desc]; ok {
			schedule := plan.Schedule
			sum.MonthlySchedule = &schedule
			if schedule > 0 {
				pct := round2(float64(acc.ok) / float64(schedule) * 100)
				sum.PlanAchievementPct = &pct
			}
		}
		if sum.DaysProduced > 0 {
			sum.AvgDailyProduction = round2(float64(acc.ok) / float64(sum.DaysProduced))
		}
		if workingDays > 0 {
			sum.AvgDailyDispatch = round2(float64(acc.dispatched) / float64(workingDays))
		}

		report.Parts = append(report.Parts, sum)
		report.TotalProduction += acc.ok
		report.TotalRejected += acc.rejected
	}
	sort.Slice(report.Parts, func(i, j int) bool { return report.Parts[i].PartDescription < report.Parts[j].PartDescription })
	report.TotalParts = len(report.Parts)
	report.OverallRejectionRatePct = rejectionRate(report.TotalProduction, report.TotalRejected)

	return report, nil
}

type variantMeta struct {
	partDescription string
	side            string
	customer        string
}

// MonthlyPlanReport lays out the plan sheet: one row per produced variant with
// its share of the month plan and day-by-day OK quantities.
func (s *Service) MonthlyPlanReport(ctx context.Context, year, month int) (*models.ProductionPlanReport, error) {
	if month < 1 || month > 12 {
		return nil, models.Errorf(models.ErrValidation, "month must be between 1 and 12")
	}
	from, to := monthRange(year, month)
	report := &models.ProductionPlanReport{
		Month:       models.MonthKey(year, month),
		MonthName:   strings.ToUpper(time.Month(month).String()) + " " + strconv.Itoa(year),
		Rows:        []models.ProductionPlanRow{},
		DaysInMonth: models.DaysInMonth(year, month),
	}

	docs, err := s.production.FindDocumentsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load production for %s: %w", report.Month, err)
	}
	if len(docs) == 0 {
		return report, nil
	}

	partMap := make(map[string]models.PartConfiguration)
	if parts, err := s.parts.ListActiveParts(ctx); err != nil {
		s.logger.Warn("part lookup failed for plan report", zap.Error(err))
	} else {
		for _, p := range parts {
			partMap[p.PartDescription] = p
		}
	}
	plans := s.planMap(ctx, year, month)
	opening := s.previousMonthClosing(ctx, year, month)

	production := make(map[string]map[int]int)
	meta := make(map[string]variantMeta)
	for _, doc := range docs {
		variant := doc.VariantName()
		if _, ok := production[variant]; !ok {
			production[variant] = make(map[int]int)
			meta[variant] = variantMeta{partDescription: doc.PartDescription, side: doc.Side, customer: doc.CustomerName}
		}
		day, err := parseDate(doc.Date)
		if err != nil {
			s.logger.Warn("skip document with invalid date", zap.String("date", doc.Date))
			continue
		}
		production[variant][day.Day()] += doc.Totals.TotalOKQty
	}

	for variant, daily := range production {
		m := meta[variant]
		part, hasPart := partMap[m.partDescription]

		monthPlan := 0
		if plan, ok := plans[m.partDescription]; ok {
			monthPlan = plan.Schedule
			if m.side != "" && hasPart {
				monthPlan = plan.VariantSchedule(part.VariantCount())
			}
		}

		prodPlan := 0
		for _, qty := range daily {
			prodPlan += qty
		}

		row := models.ProductionPlanRow{
			Customer:         m.customer,
			PartName:         variant,
			MonthPlan:        monthPlan,
			OpeningStock:     opening[variant],
			BalanceToProduce: monthPlan - prodPlan,
			ProdPlan:         prodPlan,
			DailyQuantities:  daily,
			PartDescription:  m.partDescription,
			Side:             m.side,
		}
		if hasPart {
			row.MachineNumber = part.Machine
			row.BinCapacity = part.BinCapacity
			row.PartNumber = part.PartNumber
			if row.Customer == "" {
				row.Customer = part.CustomerName
			}
		}

		report.Rows = append(report.Rows, row)
		report.TotalMonthPlan += monthPlan
		report.TotalProdPlan += prodPlan
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].Customer != report.Rows[j].Customer {
			return report.Rows[i].Customer < report.Rows[j].Customer
		}
		return report.Rows[i].PartName < report.Rows[j].PartName
	})
	report.TotalParts = len(report.Rows)
	return report, nil
}

// previousMonthClosing maps variants to their closing stock on the last day of
// the previous month.
func (s *Service) previousMonthClosing(ctx context.Context, year, month int) map[string]int {
	lastDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	out := make(map[string]int)
	stocks, err := s.stock.FindStocksByDate(ctx, lastDay.Format(dateLayout))
	if err != nil {
		s.logger.Warn("previous month stock lookup failed", zap.Error(err))
		return out
	}
	for _, st := range stocks {
		out[models.VariantName(st.PartDescription, st.Side)] = st.ClosingStock
	}
	return out
}

func (s *Service) planMap(ctx context.Context, year, month int) map[string]models.MonthlyProductionPlan {
	out := make(map[string]models.MonthlyProductionPlan)
	if s.plans == nil {
		return out
	}
	plans, err := s.plans.List(ctx, year, month)
	if err != nil {
		s.logger.Warn("plan lookup failed, reporting without schedules", zap.Error(err))
		return out
	}
	for _, p := range plans {
		out[p.ItemDescription] = p
	}
	return out
}

func monthRange(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.Format(dateLayout), first.AddDate(0, 1, 0).Format(dateLayout)
}

func rejectionRate(ok, rejected int) float64 {
	total := ok + rejected
	if total == 0 {
		return 0
	}
	return round2(float64(rejected) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseDate(value interface{}) (time.Time, error) {
	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return time.Time{}, models.Errorf(models.ErrValidation, "empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	day, err := time.Parse(dateLayout, str)
	if err != nil {
		return time.Time{}, models.Errorf(models.ErrValidation, "invalid date format %q, expected YYYY-MM-DD", str)
	}
	return day, nil
}
