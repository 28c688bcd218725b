package fgstock

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

const (
	dateLayout            = "2006-01-02"
	minInspectionRemarks  = 5
	productionSyncRemarks = "Auto-sync from hourly production"
)

// Repository persists ledger rows. The Apply methods are single server-side
// updates that keep closing_stock consistent with the other balances.
type Repository interface {
	FindStock(ctx context.Context, date, variant string) (*models.FGStockDocument, error)
	FindLatestStockBefore(ctx context.Context, variant, date string) (*models.FGStockDocument, error)
	InsertStock(ctx context.Context, doc *models.FGStockDocument) error
	ApplyProductionSync(ctx context.Context, date, variant string, production int, tx models.StockTransaction) (*models.FGStockDocument, error)
	ApplyInspection(ctx context.Context, date, variant string, inspection int, tx models.StockTransaction) (*models.FGStockDocument, error)
	ApplyDispatch(ctx context.Context, date, variant string, qty int, tx models.StockTransaction) (*models.FGStockDocument, error)
	FindStocksByMonth(ctx context.Context, year, month int, partDescription string) ([]models.FGStockDocument, error)
}

// PartCatalog exposes the active part configurations.
type PartCatalog interface {
	FindActivePart(ctx context.Context, partDescription string) (*models.PartConfiguration, error)
	ListActiveParts(ctx context.Context) ([]models.PartConfiguration, error)
}

// PlanLookup lists the production plans of a month.
type PlanLookup interface {
	List(ctx context.Context, year, month int) ([]models.MonthlyProductionPlan, error)
}

// ProductionSource sums committed production for one part side on one date.
type ProductionSource interface {
	SumOKQuantity(ctx context.Context, date, partDescription, side string) (int, error)
}

// Service is the finished goods stock ledger.
type Service struct {
	repo       Repository
	parts      PartCatalog
	plans      PlanLookup
	production ProductionSource
	now        func() time.Time
	logger     *zap.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the ledger.
func NewService(repo Repository, parts PartCatalog, plans PlanLookup, production ProductionSource, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:       repo,
		parts:      parts,
		plans:      plans,
		production: production,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the row for (date, variant), creating it with the opening
// stock rolled over from the nearest earlier row.
func (s *Service) GetOrCreate(ctx context.Context, date, variant string) (*models.FGStockDocument, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	date = day.Format(dateLayout)
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return nil, models.Errorf(models.ErrValidation, "variant_name is required")
	}

	existing, err := s.repo.FindStock(ctx, date, variant)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	partDesc, side := models.ParseVariantName(variant)
	part, err := s.parts.FindActivePart(ctx, partDesc)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.Errorf(models.ErrNotFound, "part configuration not found for %q", partDesc)
		}
		return nil, err
	}

	opening, err := s.rolloverOpening(ctx, day, variant)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := &models.FGStockDocument{
		Date:            date,
		VariantName:     variant,
		PartNumber:      part.PartNumber,
		PartDescription: partDesc,
		Side:            side,
		Year:            day.Year(),
		Month:           int(day.Month()),
		Day:             day.Day(),
		OpeningStock:    opening,
		Transactions:    []models.StockTransaction{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	doc.MonthlySchedule, doc.DailyTarget = s.planFigures(ctx, *part, side, day.Year(), int(day.Month()))
	doc.RecalculateClosingStock()

	if err := s.repo.InsertStock(ctx, doc); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			s.logger.Debug("ledger row created concurrently, re-reading", zap.String("date", date), zap.String("variant", variant))
			return s.repo.FindStock(ctx, date, variant)
		}
		return nil, err
	}

	s.logger.Info("ledger row created",
		zap.String("date", date),
		zap.String("variant", variant),
		zap.Int("opening_stock", opening))
	return doc, nil
}

func (s *Service) rolloverOpening(ctx context.Context, day time.Time, variant string) (int, error) {
	prevDate := day.AddDate(0, 0, -1).Format(dateLayout)
	prev, err := s.repo.FindStock(ctx, prevDate, variant)
	if err == nil {
		return prev.ClosingStock, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return 0, err
	}

	latest, err := s.repo.FindLatestStockBefore(ctx, variant, day.Format(dateLayout))
	if err == nil {
		s.logger.Debug("rolled over across gap",
			zap.String("variant", variant),
			zap.String("from", latest.Date),
			zap.String("to", day.Format(dateLayout)))
		return latest.ClosingStock, nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return 0, nil
	}
	return 0, err
}

// planFigures denormalises the variant schedule and daily target. Plan lookup
// failures leave both unset.
func (s *Service) planFigures(ctx context.Context, part models.PartConfiguration, side string, year, month int) (*int, *int) {
	if s.plans == nil {
		return nil, nil
	}
	plans, err := s.plans.List(ctx, year, month)
	if err != nil {
		s.logger.Warn("plan lookup failed, leaving schedule unset", zap.String("part", part.PartDescription), zap.Error(err))
		return nil, nil
	}
	for _, plan := range plans {
		if plan.ItemDescription != part.PartDescription {
			continue
		}
		schedule := variantSchedule(plan, part, side)
		target := models.DailyTarget(schedule, year, month)
		return &schedule, &target
	}
	return nil, nil
}

func variantSchedule(plan models.MonthlyProductionPlan, part models.PartConfiguration, side string) int {
	if side == "" {
		return plan.Schedule
	}
	return plan.VariantSchedule(part.VariantCount())
}

// SyncFromProduction sets production_added to the total OK quantity of every
// document for the same date, part and side.
func (s *Service) SyncFromProduction(ctx context.Context, doc models.HourlyProductionDocument, userID string) error {
	variant := doc.VariantName()
	stock, err := s.GetOrCreate(ctx, doc.Date, variant)
	if err != nil {
		return err
	}

	total, err := s.production.SumOKQuantity(ctx, doc.Date, doc.PartDescription, doc.Side)
	if err != nil {
		return err
	}

	tx := models.StockTransaction{
		Timestamp:       s.now(),
		TransactionType: models.TxProduction,
		QuantityChange:  total - stock.ProductionAdded,
		UserID:          userID,
		Remarks:         productionSyncRemarks,
		ReferenceDocNo:  doc.ID.Hex(),
	}
	updated, err := s.repo.ApplyProductionSync(ctx, stock.Date, variant, total, tx)
	if err != nil {
		return err
	}

	s.logger.Info("ledger synced from production",
		zap.String("date", updated.Date),
		zap.String("variant", variant),
		zap.Int("production_added", updated.ProductionAdded),
		zap.Int("closing_stock", updated.ClosingStock))
	return nil
}

// RecordInspection sets the absolute inspected quantity of a row.
func (s *Service) RecordInspection(ctx context.Context, principal models.Principal, req models.InspectionRequest) (*models.FGStockDocument, error) {
	if err := principal.RequireAnyRole(models.RoleAdmin, models.RoleProduction); err != nil {
		return nil, err
	}
	if req.InspectionQty < 0 {
		return nil, models.Errorf(models.ErrInvalidQuantity, "inspection quantity cannot be negative")
	}
	remarks := strings.TrimSpace(req.Remarks)
	if len(remarks) < minInspectionRemarks {
		return nil, models.Errorf(models.ErrValidation, "remarks must be at least %d characters", minInspectionRemarks)
	}

	stock, err := s.GetOrCreate(ctx, req.Date, req.VariantName)
	if err != nil {
		return nil, err
	}
	if req.InspectionQty > stock.ProductionAdded {
		return nil, models.Errorf(models.ErrInvalidQuantity,
			"inspection %d cannot exceed production %d", req.InspectionQty, stock.ProductionAdded)
	}
	if stock.OpeningStock+stock.ProductionAdded-req.InspectionQty-stock.Dispatched < 0 {
		return nil, models.Errorf(models.ErrInvalidQuantity, "inspection would result in negative stock")
	}

	tx := models.StockTransaction{
		Timestamp:       s.now(),
		TransactionType: models.TxInspection,
		QuantityChange:  -(req.InspectionQty - stock.InspectionQty),
		UserID:          principal.EmpID,
		Remarks:         remarks,
	}
	updated, err := s.repo.ApplyInspection(ctx, stock.Date, stock.VariantName, req.InspectionQty, tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("inspection recorded",
		zap.String("date", updated.Date),
		zap.String("variant", updated.VariantName),
		zap.Int("inspection_qty", updated.InspectionQty),
		zap.String("user_id", principal.EmpID))
	return updated, nil
}

// RecordDispatch removes qty from a row in one conditional update.
func (s *Service) RecordDispatch(ctx context.Context, principal models.Principal, req models.DispatchRequest) (*models.FGStockDocument, error) {
	if err := principal.RequireAnyRole(models.RoleProduction, models.RoleDispatch, models.RoleAdmin); err != nil {
		return nil, err
	}
	if req.DispatchedQty <= 0 {
		return nil, models.Errorf(models.ErrInvalidQuantity, "dispatch quantity must be positive")
	}

	stock, err := s.GetOrCreate(ctx, req.Date, req.VariantName)
	if err != nil {
		return nil, err
	}

	remarks := strings.TrimSpace(req.Remarks)
	if remarks == "" {
		remarks = "Dispatch"
	}
	tx := models.StockTransaction{
		Timestamp:       s.now(),
		TransactionType: models.TxDispatch,
		QuantityChange:  -req.DispatchedQty,
		UserID:          principal.EmpID,
		Remarks:         remarks,
	}
	updated, err := s.repo.ApplyDispatch(ctx, stock.Date, stock.VariantName, req.DispatchedQty, tx)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			s.logger.Warn("dispatch refused",
				zap.String("date", stock.Date),
				zap.String("variant", stock.VariantName),
				zap.Int("requested", req.DispatchedQty),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("dispatch recorded",
		zap.String("date", updated.Date),
		zap.String("variant", updated.VariantName),
		zap.Int("qty", req.DispatchedQty),
		zap.Int("closing_stock", updated.ClosingStock),
		zap.String("user_id", principal.EmpID))
	return updated, nil
}

// DailySnapshot provisions and returns the row of every active variant.
func (s *Service) DailySnapshot(ctx context.Context, date, partFilter string) ([]models.FGStockDocument, error) {
	parts, err := s.parts.ListActiveParts(ctx)
	if err != nil {
		return nil, err
	}

	partFilter = strings.TrimSpace(partFilter)
	var out []models.FGStockDocument
	for _, part := range parts {
		if partFilter != "" && !strings.EqualFold(part.PartDescription, partFilter) {
			continue
		}
		for _, variant := range part.Variants() {
			stock, err := s.GetOrCreate(ctx, date, variant)
			if err != nil {
				return nil, err
			}
			out = append(out, *stock)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].VariantName < out[j].VariantName })
	return out, nil
}

// MonthlySummary rolls the ledger up per variant. Achievement uses the plan as it
// stands now, not the figures denormalised at creation.
func (s *Service) MonthlySummary(ctx context.Context, year, month int, partFilter string) ([]models.StockMonthlySummary, error) {
	if month < 1 || month > 12 {
		return nil, models.Errorf(models.ErrValidation, "month must be between 1 and 12")
	}

	rows, err := s.repo.FindStocksByMonth(ctx, year, month, strings.TrimSpace(partFilter))
	if err != nil {
		return nil, err
	}

	byVariant := make(map[string][]models.FGStockDocument)
	for _, r := range rows {
		byVariant[r.VariantName] = append(byVariant[r.VariantName], r)
	}

	schedules := s.liveSchedules(ctx, year, month)

	summaries := make([]models.StockMonthlySummary, 0, len(byVariant))
	for variant, list := range byVariant {
		sort.Slice(list, func(i, j int) bool { return list[i].Date < list[j].Date })

		sum := models.StockMonthlySummary{
			VariantName:       variant,
			PartDescription:   list[0].PartDescription,
			Side:              list[0].Side,
			OpeningStockMonth: list[0].OpeningStock,
			ClosingStockMonth: list[len(list)-1].ClosingStock,
			DaysRecorded:      len(list),
		}
		for _, r := range list {
			sum.TotalProduction += r.ProductionAdded
			sum.TotalDispatched += r.Dispatched
			sum.TotalInspection += r.InspectionQty
		}
		sum.AvgDailyProduction = round2(float64(sum.TotalProduction) / float64(len(list)))

		if schedule, ok := schedules[variant]; ok {
			sum.MonthlySchedule = &schedule
			if schedule > 0 {
				pct := round2(float64(sum.TotalProduction) / float64(schedule) * 100)
				sum.AchievementPct = &pct
			}
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].VariantName < summaries[j].VariantName })
	return summaries, nil
}

// liveSchedules maps every known variant to its share of the current plan.
func (s *Service) liveSchedules(ctx context.Context, year, month int) map[string]int {
	out := make(map[string]int)
	if s.plans == nil {
		return out
	}
	plans, err := s.plans.List(ctx, year, month)
	if err != nil {
		s.logger.Warn("plan lookup failed for monthly summary", zap.Error(err))
		return out
	}
	parts, err := s.parts.ListActiveParts(ctx)
	if err != nil {
		s.logger.Warn("part lookup failed for monthly summary", zap.Error(err))
		return out
	}

	byDesc := make(map[string]models.PartConfiguration, len(parts))
	for _, p := range parts {
		byDesc[p.PartDescription] = p
	}
	for _, plan := range plans {
		part, ok := byDesc[plan.ItemDescription]
		if !ok {
			out[plan.ItemDescription] = plan.Schedule
			continue
		}
		for _, variant := range part.Variants() {
			_, side := models.ParseVariantName(variant)
			out[variant] = variantSchedule(plan, part, side)
		}
	}
	return out
}

func parseDate(date string) (time.Time, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, models.Errorf(models.ErrValidation, "invalid date format %q, expected YYYY-MM-DD", date)
	}
	return day, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
