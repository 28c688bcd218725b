package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// ShiftRepository reads the factory shift configuration.
type ShiftRepository struct {
	coll *mongo.Collection
}

// LatestShiftSetting returns the most recently updated setting.
func (r *ShiftRepository) LatestShiftSetting(ctx context.Context) (*models.ShiftSetting, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	var setting models.ShiftSetting
	if err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&setting); err != nil {
		return nil, notFoundOr(err, "find shift setting", "no global shift configuration found")
	}
	return &setting, nil
}
