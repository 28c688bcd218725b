package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// closingExpr recomputes closing_stock from the other balances of the row.
var closingExpr = bson.M{"$subtract": bson.A{
	bson.M{"$add": bson.A{"$opening_stock", "$production_added"}},
	bson.M{"$add": bson.A{"$inspection_qty", "$dispatched"}},
}}

// StockRepository stores FG stock ledger rows. Every mutation is a single
// conditional update on one row.
type StockRepository struct {
	coll *mongo.Collection
}

func (r *StockRepository) FindStock(ctx context.Context, date, variant string) (*models.FGStockDocument, error) {
	var doc models.FGStockDocument
	if err := r.coll.FindOne(ctx, stockKey(date, variant)).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "find stock", "no stock row for %s on %s", variant, date)
	}
	return &doc, nil
}

// FindLatestStockBefore returns the most recent row of variant strictly before date.
func (r *StockRepository) FindLatestStockBefore(ctx context.Context, variant, date string) (*models.FGStockDocument, error) {
	filter := bson.M{"variant_name": variant, "date": bson.M{"$lt": date}}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var doc models.FGStockDocument
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, notFoundOr(err, "find previous stock", "no stock row for %s before %s", variant, date)
	}
	return &doc, nil
}

// InsertStock returns ErrDuplicate when the (date, variant) row already exists.
func (r *StockRepository) InsertStock(ctx context.Context, doc *models.FGStockDocument) error {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Errorf(models.ErrDuplicate, "stock row for %s on %s exists", doc.VariantName, doc.Date)
		}
		return models.Internal("insert stock", err)
	}
	return nil
}

// ApplyProductionSync sets production_added absolutely and appends tx.
func (r *StockRepository) ApplyProductionSync(ctx context.Context, date, variant string, production int, tx models.StockTransaction) (*models.FGStockDocument, error) {
	doc, err := r.findOneAndUpdate(ctx, stockKey(date, variant), productionSyncUpdate(production, tx))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.Errorf(models.ErrNotFound, "no stock row for %s on %s", variant, date)
	}
	if err != nil {
		return nil, models.Internal("apply production sync", err)
	}
	return doc, nil
}

// ApplyInspection sets inspection_qty absolutely. The filter refuses a quantity
// above production or one that would drive closing stock negative.
func (r *StockRepository) ApplyInspection(ctx context.Context, date, variant string, inspection int, tx models.StockTransaction) (*models.FGStockDocument, error) {
	doc, err := r.findOneAndUpdate(ctx, inspectionFilter(date, variant, inspection), inspectionUpdate(inspection, tx))
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, findErr := r.FindStock(ctx, date, variant); findErr != nil {
			return nil, findErr
		}
		return nil, models.Errorf(models.ErrInvalidQuantity, "inspection %d no longer fits %s on %s", inspection, variant, date)
	}
	if err != nil {
		return nil, models.Internal("apply inspection", err)
	}
	return doc, nil
}

// ApplyDispatch removes qty only while closing_stock covers it.
func (r *StockRepository) ApplyDispatch(ctx context.Context, date, variant string, qty int, tx models.StockTransaction) (*models.FGStockDocument, error) {
	doc, err := r.findOneAndUpdate(ctx, dispatchFilter(date, variant, qty), dispatchUpdate(qty, tx))
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, findErr := r.FindStock(ctx, date, variant)
		if findErr != nil {
			return nil, findErr
		}
		return nil, models.Errorf(models.ErrInsufficientStock, "requested %d, available %d", qty, current.ClosingStock)
	}
	if err != nil {
		return nil, models.Internal("apply dispatch", err)
	}
	return doc, nil
}

// FindStocksByMonth lists the rows of a month, optionally for one part.
func (r *StockRepository) FindStocksByMonth(ctx context.Context, year, month int, partDescription string) ([]models.FGStockDocument, error) {
	filter := bson.M{"year": year, "month": month}
	if partDescription != "" {
		filter["part_description"] = partDescription
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "variant_name", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.Internal("find stocks by month", err)
	}
	return decodeAll[models.FGStockDocument](ctx, cur, "decode stocks")
}

// FindStocksByDate lists every row of a date.
func (r *StockRepository) FindStocksByDate(ctx context.Context, date string) ([]models.FGStockDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "variant_name", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"date": date}, opts)
	if err != nil {
		return nil, models.Internal("find stocks by date", err)
	}
	return decodeAll[models.FGStockDocument](ctx, cur, "decode stocks")
}

func (r *StockRepository) findOneAndUpdate(ctx context.Context, filter, update interface{}) (*models.FGStockDocument, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.FGStockDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// appendTransaction is the pipeline expression that pushes tx onto the audit trail.
func appendTransaction(tx models.StockTransaction) bson.M {
	return bson.M{"$concatArrays": bson.A{
		bson.M{"$ifNull": bson.A{"$transactions", bson.A{}}},
		bson.A{bson.M{"$literal": tx}},
	}}
}

func stockKey(date, variant string) bson.M {
	return bson.M{"date": date, "variant_name": variant}
}

// productionSyncUpdate sets production_added absolutely, then recomputes closing.
func productionSyncUpdate(production int, tx models.StockTransaction) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"production_added": production,
			"last_synced_at":   tx.Timestamp,
			"updated_at":       tx.Timestamp,
			"transactions":     appendTransaction(tx),
		}}},
		{{Key: "$set", Value: bson.M{"closing_stock": closingExpr}}},
	}
}

// inspectionFilter matches the row only when inspection fits production and
// leaves closing stock non-negative.
func inspectionFilter(date, variant string, inspection int) bson.M {
	filter := stockKey(date, variant)
	filter["production_added"] = bson.M{"$gte": inspection}
	filter["$expr"] = bson.M{"$gte": bson.A{
		bson.M{"$subtract": bson.A{
			bson.M{"$add": bson.A{"$opening_stock", "$production_added"}},
			bson.M{"$add": bson.A{inspection, "$dispatched"}},
		}},
		0,
	}}
	return filter
}

func inspectionUpdate(inspection int, tx models.StockTransaction) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"inspection_qty": inspection,
			"updated_at":     tx.Timestamp,
			"transactions":   appendTransaction(tx),
		}}},
		{{Key: "$set", Value: bson.M{"closing_stock": closingExpr}}},
	}
}

// dispatchFilter matches the row only while closing_stock covers qty.
func dispatchFilter(date, variant string, qty int) bson.M {
	filter := stockKey(date, variant)
	filter["closing_stock"] = bson.M{"$gte": qty}
	return filter
}

func dispatchUpdate(qty int, tx models.StockTransaction) bson.M {
	return bson.M{
		"$inc":  bson.M{"dispatched": qty, "closing_stock": -qty},
		"$push": bson.M{"transactions": tx},
		"$set":  bson.M{"updated_at": tx.Timestamp},
	}
}
