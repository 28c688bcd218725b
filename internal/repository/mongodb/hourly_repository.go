package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// HourlyRepository stores hourly production documents.
type HourlyRepository struct {
	coll *mongo.Collection
}

func (r *HourlyRepository) InsertDocument(ctx context.Context, doc *models.HourlyProductionDocument) error {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return models.Internal("insert hourly document", err)
	}
	return nil
}

func (r *HourlyRepository) FindDocumentByID(ctx context.Context, id primitive.ObjectID) (*models.HourlyProductionDocument, error) {
	var doc models.HourlyProductionDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "find hourly document", "document %s not found", id.Hex())
	}
	return &doc, nil
}

// ReplaceDocument writes the full document back by id.
func (r *HourlyRepository) ReplaceDocument(ctx context.Context, doc *models.HourlyProductionDocument) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return models.Internal("replace hourly document", err)
	}
	if res.MatchedCount == 0 {
		return models.Errorf(models.ErrNotFound, "document %s not found", doc.ID.Hex())
	}
	return nil
}

func (r *HourlyRepository) FindDocumentsByDate(ctx context.Context, date string) ([]models.HourlyProductionDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"date": date}, opts)
	if err != nil {
		return nil, models.Internal("find hourly documents by date", err)
	}
	return decodeAll[models.HourlyProductionDocument](ctx, cur, "decode hourly documents")
}

func (r *HourlyRepository) FindDocumentsByStatus(ctx context.Context, status models.DocumentStatus) ([]models.HourlyProductionDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"document_status": status}, opts)
	if err != nil {
		return nil, models.Internal("find hourly documents by status", err)
	}
	return decodeAll[models.HourlyProductionDocument](ctx, cur, "decode hourly documents")
}

// FindDocumentsInRange returns documents with from <= date < to.
func (r *HourlyRepository) FindDocumentsInRange(ctx context.Context, from, to string) ([]models.HourlyProductionDocument, error) {
	filter := bson.M{"date": bson.M{"$gte": from, "$lt": to}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.Internal("find hourly documents in range", err)
	}
	return decodeAll[models.HourlyProductionDocument](ctx, cur, "decode hourly documents")
}

// SumOKQuantity totals the OK quantity of every document for a date, part and side.
func (r *HourlyRepository) SumOKQuantity(ctx context.Context, date, partDescription, side string) (int, error) {
	match := bson.M{"date": date, "part_description": partDescription, "side": sideFilter(side)}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totals.total_ok_qty"}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, models.Internal("sum ok quantity", err)
	}
	rows, err := decodeAll[struct {
		Total int `bson:"total"`
	}](ctx, cur, "decode ok quantity")
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// sideFilter matches single-sided documents whether side is blank or absent.
func sideFilter(side string) interface{} {
	if side == "" {
		return bson.M{"$in": bson.A{"", nil}}
	}
	return side
}
