package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// PlanRepository stores monthly production plans keyed by (month, item_description).
type PlanRepository struct {
	coll *mongo.Collection
}

// UpsertPlan replaces the plan of an item for a month, creating it if missing.
func (r *PlanRepository) UpsertPlan(ctx context.Context, plan *models.MonthlyProductionPlan) error {
	filter := bson.M{"month": plan.Month, "item_description": plan.ItemDescription}
	update := bson.M{"$set": bson.M{
		"part_number":               plan.PartNumber,
		"schedule":                  plan.Schedule,
		"dispatch_quantity_per_day": plan.DispatchQuantityPerDay,
		"day_stock_to_kept":         plan.DayStockToKept,
		"resp_person":               plan.RespPerson,
		"updated_at":                plan.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.MonthlyProductionPlan
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return models.Internal("upsert plan", err)
	}
	plan.ID = stored.ID
	return nil
}

// FindPlansByMonth lists the plans of a YYYY-MM month.
func (r *PlanRepository) FindPlansByMonth(ctx context.Context, month string) ([]models.MonthlyProductionPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "item_description", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"month": month}, opts)
	if err != nil {
		return nil, models.Internal("find plans", err)
	}
	return decodeAll[models.MonthlyProductionPlan](ctx, cur, "decode plans")
}
