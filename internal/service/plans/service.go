package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/cache"
	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

const minCacheTTL = 24 * time.Hour

// Repository persists monthly production plans.
type Repository interface {
	UpsertPlan(ctx context.Context, plan *models.MonthlyProductionPlan) error
	FindPlansByMonth(ctx context.Context, month string) ([]models.MonthlyProductionPlan, error)
}

// PartCatalog resolves active part configurations.
type PartCatalog interface {
	FindActivePart(ctx context.Context, partDescription string) (*models.PartConfiguration, error)
	ListActiveParts(ctx context.Context) ([]models.PartConfiguration, error)
}

// Service manages monthly production plans behind a read-through cache.
type Service struct {
	repo   Repository
	parts  PartCatalog
	cache  cache.Store
	now    func() time.Time
	logger *zap.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for cache expiry and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the plan service. A nil store disables caching.
func NewService(repo Repository, parts PartCatalog, store cache.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{repo: repo, parts: parts, cache: store, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheKey is the cache key of a month's plan listing.
func CacheKey(year, month int) string {
	return fmt.Sprintf("monthly_plan:%04d:%02d", year, month)
}

// Upsert creates or replaces the plan of a part for a month.
func (s *Service) Upsert(ctx context.Context, principal models.Principal, req models.PlanRequest) (*models.MonthlyProductionPlan, error) {
	if err := principal.RequireAnyRole(models.RoleAdmin, models.RoleProduction); err != nil {
		return nil, err
	}
	if err := validateMonth(req.Year, req.Month); err != nil {
		return nil, err
	}
	if req.Schedule < 0 {
		return nil, models.Errorf(models.ErrValidation, "schedule must not be negative")
	}

	item := strings.TrimSpace(req.ItemDescription)
	part, err := s.parts.FindActivePart(ctx, item)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.Errorf(models.ErrValidation, "no active part configuration for %q", item)
		}
		return nil, err
	}

	plan := &models.MonthlyProductionPlan{
		Month:                  models.MonthKey(req.Year, req.Month),
		ItemDescription:        part.PartDescription,
		PartNumber:             part.PartNumber,
		Schedule:               req.Schedule,
		DispatchQuantityPerDay: req.DispatchQuantityPerDay,
		DayStockToKept:         req.DayStockToKept,
		RespPerson:             req.RespPerson,
		UpdatedAt:              s.now(),
	}
	if err := s.repo.UpsertPlan(ctx, plan); err != nil {
		return nil, err
	}

	s.invalidate(ctx, req.Year, req.Month)
	s.logger.Info("plan upserted",
		zap.String("month", plan.Month),
		zap.String("item", plan.ItemDescription),
		zap.Int("schedule", plan.Schedule),
		zap.String("user_id", principal.EmpID))
	return plan, nil
}

// List returns the plans of a month, served from cache when possible.
func (s *Service) List(ctx context.Context, year, month int) ([]models.MonthlyProductionPlan, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	key := CacheKey(year, month)

	if s.cache != nil {
		raw, found, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("plan cache read failed", zap.String("key", key), zap.Error(err))
		case found:
			var cached []models.MonthlyProductionPlan
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("discarding undecodable plan cache entry", zap.String("key", key))
		}
	}

	plans, err := s.repo.FindPlansByMonth(ctx, models.MonthKey(year, month))
	if err != nil {
		return nil, err
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ItemDescription < plans[j].ItemDescription })

	if s.cache != nil {
		raw, err := json.Marshal(plans)
		if err == nil {
			err = s.cache.Set(ctx, key, raw, s.ttlUntilNextMonth(year, month))
		}
		if err != nil {
			s.logger.Warn("plan cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return plans, nil
}

// VariantDailyPlan spreads one variant's schedule over the working days of a month.
type VariantDailyPlan struct {
	VariantName     string         `json:"variant_name"`
	PartDescription string         `json:"part_description"`
	MonthlySchedule int            `json:"monthly_schedule"`
	VariantSchedule int            `json:"variant_schedule"`
	DailyTargets    map[string]int `json:"daily_targets"`
	TotalPlanned    int            `json:"total_planned"`
}

// DailyPlan derives the per-variant daily targets of a month. The remainder of
// the integer split goes to the earliest working days.
func (s *Service) DailyPlan(ctx context.Context, year, month int) ([]VariantDailyPlan, error) {
	plans, err := s.List(ctx, year, month)
	if err != nil {
		return nil, err
	}
	parts, err := s.parts.ListActiveParts(ctx)
	if err != nil {
		return nil, err
	}
	byDesc := make(map[string]models.PartConfiguration, len(parts))
	for _, p := range parts {
		byDesc[p.PartDescription] = p
	}

	dates := workingDates(year, month)
	var out []VariantDailyPlan
	for _, plan := range plans {
		part, ok := byDesc[plan.ItemDescription]
		if !ok {
			continue
		}
		share := plan.VariantSchedule(part.VariantCount())
		for _, variant := range part.Variants() {
			out = append(out, distribute(variant, plan, share, dates))
		}
	}
	return out, nil
}

func distribute(variant string, plan models.MonthlyProductionPlan, share int, dates []string) VariantDailyPlan {
	vp := VariantDailyPlan{
		VariantName:     variant,
		PartDescription: plan.ItemDescription,
		MonthlySchedule: plan.Schedule,
		VariantSchedule: share,
		DailyTargets:    make(map[string]int, len(dates)),
	}
	if len(dates) == 0 {
		return vp
	}
	perDay := share / len(dates)
	remainder := share - perDay*len(dates)
	for i, d := range dates {
		qty := perDay
		if i < remainder {
			qty++
		}
		vp.DailyTargets[d] = qty
		vp.TotalPlanned += qty
	}
	return vp
}

func workingDates(year, month int) []string {
	var out []string
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Sunday {
			out = append(out, d.Format("2006-01-02"))
		}
	}
	return out
}

func (s *Service) invalidate(ctx context.Context, year, month int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKey(year, month)); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.String("key", CacheKey(year, month)), zap.Error(err))
	}
}

// ttlUntilNextMonth expires the listing at the first instant of the following
// month, or after a day when that instant has already passed.
func (s *Service) ttlUntilNextMonth(year, month int) time.Duration {
	now := s.now()
	next := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	ttl := next.Sub(now)
	if ttl <= 0 {
		return minCacheTTL
	}
	return ttl
}

func validateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return models.Errorf(models.ErrValidation, "month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return models.Errorf(models.ErrValidation, "invalid year %d", year)
	}
	return nil
}
