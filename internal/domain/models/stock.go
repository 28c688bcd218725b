package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType labels an entry of the stock audit trail.
type TransactionType string

const (
	TxProduction TransactionType = "PRODUCTION"
	TxInspection TransactionType = "INSPECTION"
	TxDispatch   TransactionType = "DISPATCH"
)

// StockTransaction is an append-only audit record on a ledger row.
type StockTransaction struct {
	Timestamp       time.Time       `bson:"timestamp" json:"timestamp"`
	TransactionType TransactionType `bson:"transaction_type" json:"transaction_type"`
	QuantityChange  int             `bson:"quantity_change" json:"quantity_change"`
	UserID          string          `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Remarks         string          `bson:"remarks,omitempty" json:"remarks,omitempty"`
	ReferenceDocNo  string          `bson:"reference_doc_no,omitempty" json:"reference_doc_no,omitempty"`
}

// FGStockDocument is the ledger row for one variant on one day.
//
// closing_stock = opening_stock + production_added - inspection_qty - dispatched
type FGStockDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Date            string             `bson:"date" json:"date"`
	VariantName     string             `bson:"variant_name" json:"variant_name"`
	PartNumber      string             `bson:"part_number" json:"part_number"`
	PartDescription string             `bson:"part_description" json:"part_description"`
	Side            string             `bson:"side,omitempty" json:"side,omitempty"`

	Year  int `bson:"year" json:"year"`
	Month int `bson:"month" json:"month"`
	Day   int `bson:"day" json:"day"`

	OpeningStock    int `bson:"opening_stock" json:"opening_stock"`
	ProductionAdded int `bson:"production_added" json:"production_added"`
	InspectionQty   int `bson:"inspection_qty" json:"inspection_qty"`
	Dispatched      int `bson:"dispatched" json:"dispatched"`
	ClosingStock    int `bson:"closing_stock" json:"closing_stock"`

	MonthlySchedule *int `bson:"monthly_schedule,omitempty" json:"monthly_schedule,omitempty"`
	DailyTarget     *int `bson:"daily_target,omitempty" json:"daily_target,omitempty"`

	Transactions []StockTransaction `bson:"transactions" json:"transactions"`

	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
	LastSyncedAt *time.Time `bson:"last_synced_at,omitempty" json:"last_synced_at,omitempty"`
}

// ExpectedClosing derives the closing balance from the components.
func (s FGStockDocument) ExpectedClosing() int {
	return s.OpeningStock + s.ProductionAdded - s.InspectionQty - s.Dispatched
}

// RecalculateClosingStock rewrites closing_stock from its components.
func (s *FGStockDocument) RecalculateClosingStock() {
	s.ClosingStock = s.ExpectedClosing()
}

// VarianceVsTarget is production minus the daily target, nil without a target.
func (s FGStockDocument) VarianceVsTarget() *int {
	if s.DailyTarget == nil || *s.DailyTarget == 0 {
		return nil
	}
	v := s.ProductionAdded - *s.DailyTarget
	return &v
}
