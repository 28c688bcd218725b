package testutil

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// PlanStore keeps monthly plans in memory. It also satisfies the plan lookup
// interfaces directly, bypassing any cache.
type PlanStore struct {
	mu    sync.Mutex
	plans []models.MonthlyProductionPlan
	// Reads counts FindPlansByMonth calls.
	Reads int
}

// NewPlanStore seeds the store.
func NewPlanStore(plans ...models.MonthlyProductionPlan) *PlanStore {
	return &PlanStore{plans: plans}
}

func (s *PlanStore) UpsertPlan(_ context.Context, plan *models.MonthlyProductionPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.plans {
		if p.Month == plan.Month && p.ItemDescription == plan.ItemDescription {
			plan.ID = p.ID
			s.plans[i] = *plan
			return nil
		}
	}
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	s.plans = append(s.plans, *plan)
	return nil
}

func (s *PlanStore) FindPlansByMonth(_ context.Context, month string) ([]models.MonthlyProductionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	var out []models.MonthlyProductionPlan
	for _, p := range s.plans {
		if p.Month == month {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PlanStore) List(ctx context.Context, year, month int) ([]models.MonthlyProductionPlan, error) {
	return s.FindPlansByMonth(ctx, models.MonthKey(year, month))
}
