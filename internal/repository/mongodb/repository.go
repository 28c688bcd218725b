package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// Collection names.
const (
	hourlyCollection = "hourly_production_documents"
	stockCollection  = "fg_stock_daily"
	planCollection   = "monthly_production_plan"
	partCollection   = "part_configurations"
	shiftCollection  = "global_shift_settings"
)

// MongoDBRepository owns the client and hands out the per-collection repositories.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (date, variant_name) index backs ledger get-or-create under concurrency.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		hourlyCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}, {Key: "part_description", Value: 1}, {Key: "side", Value: 1}}},
			{Keys: bson.D{{Key: "document_status", Value: 1}, {Key: "date", Value: -1}}},
		},
		stockCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}, {Key: "variant_name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "variant_name", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}, {Key: "part_description", Value: 1}}},
		},
		planCollection: {
			{Keys: bson.D{{Key: "month", Value: 1}, {Key: "item_description", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		partCollection: {
			{Keys: bson.D{{Key: "part_description", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		shiftCollection: {
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
	}

	for name, indexes := range specs {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	r.logger.Info("mongodb indexes ensured", zap.Int("collections", len(specs)))
	return nil
}

// Hourly returns the hourly production document repository.
func (r *MongoDBRepository) Hourly() *HourlyRepository {
	return &HourlyRepository{coll: r.db.Collection(hourlyCollection)}
}

// Stock returns the FG stock ledger repository.
func (r *MongoDBRepository) Stock() *StockRepository {
	return &StockRepository{coll: r.db.Collection(stockCollection)}
}

// Plans returns the monthly plan repository.
func (r *MongoDBRepository) Plans() *PlanRepository {
	return &PlanRepository{coll: r.db.Collection(planCollection)}
}

// Parts returns the part configuration repository.
func (r *MongoDBRepository) Parts() *PartRepository {
	return &PartRepository{coll: r.db.Collection(partCollection)}
}

// Shifts returns the shift setting repository.
func (r *MongoDBRepository) Shifts() *ShiftRepository {
	return &ShiftRepository{coll: r.db.Collection(shiftCollection)}
}

// Ping checks the connection, used by the health endpoint.
func (r *MongoDBRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// notFoundOr maps mongo.ErrNoDocuments to a not found error and wraps the rest.
func notFoundOr(err error, op string, format string, args ...any) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Errorf(models.ErrNotFound, format, args...)
	}
	return models.Internal(op, err)
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, op string) ([]T, error) {
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, models.Internal(op, err)
	}
	return out, nil
}
