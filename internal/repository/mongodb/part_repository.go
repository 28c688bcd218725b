package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// PartRepository reads part configurations. Parts are maintained by another
// service; this one only reads them.
type PartRepository struct {
	coll *mongo.Collection
}

func (r *PartRepository) FindActivePart(ctx context.Context, partDescription string) (*models.PartConfiguration, error) {
	var part models.PartConfiguration
	err := r.coll.FindOne(ctx, bson.M{"part_description": partDescription, "is_active": true}).Decode(&part)
	if err != nil {
		return nil, notFoundOr(err, "find part", "part %q not found", partDescription)
	}
	return &part, nil
}

func (r *PartRepository) ListActiveParts(ctx context.Context) ([]models.PartConfiguration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "part_description", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, models.Internal("list parts", err)
	}
	return decodeAll[models.PartConfiguration](ctx, cur, "decode parts")
}
