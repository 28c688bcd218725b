package testutil

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

type stockKey struct {
	date    string
	variant string
}

// StockStore keeps ledger rows in memory. Every Apply method runs under one lock
// so it behaves like a single conditional update.
type StockStore struct {
	mu   sync.Mutex
	rows map[stockKey]models.FGStockDocument
}

// NewStockStore builds an empty ledger.
func NewStockStore() *StockStore {
	return &StockStore{rows: make(map[stockKey]models.FGStockDocument)}
}

// Seed stores rows as-is, deriving closing stock from the balances.
func (s *StockStore) Seed(rows ...models.FGStockDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID.IsZero() {
			r.ID = primitive.NewObjectID()
		}
		r.RecalculateClosingStock()
		s.rows[stockKey{r.Date, r.VariantName}] = copyStock(r)
	}
}

// Len reports the number of rows.
func (s *StockStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *StockStore) FindStock(_ context.Context, date, variant string) (*models.FGStockDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[stockKey{date, variant}]
	if !ok {
		return nil, models.Errorf(models.ErrNotFound, "no stock row for %s on %s", variant, date)
	}
	out := copyStock(row)
	return &out, nil
}

func (s *StockStore) FindLatestStockBefore(_ context.Context, variant, date string) (*models.FGStockDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *models.FGStockDocument
	for k, row := range s.rows {
		if k.variant != variant || k.date >= date {
			continue
		}
		if best == nil || row.Date > best.Date {
			r := row
			best = &r
		}
	}
	if best == nil {
		return nil, models.Errorf(models.ErrNotFound, "no stock row for %s before %s", variant, date)
	}
	out := copyStock(*best)
	return &out, nil
}

func (s *StockStore) InsertStock(_ context.Context, doc *models.FGStockDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stockKey{doc.Date, doc.VariantName}
	if _, ok := s.rows[key]; ok {
		return models.Errorf(models.ErrDuplicate, "stock row for %s on %s exists", doc.VariantName, doc.Date)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	s.rows[key] = copyStock(*doc)
	return nil
}

func (s *StockStore) ApplyProductionSync(_ context.Context, date, variant string, production int, tx models.StockTransaction) (*models.FGStockDocument, error) {
	return s.apply(date, variant, func(row *models.FGStockDocument) error {
		row.ProductionAdded = production
		synced := tx.Timestamp
		row.LastSyncedAt = &synced
		row.UpdatedAt = tx.Timestamp
		row.Transactions = append(row.Transactions, tx)
		row.RecalculateClosingStock()
		return nil
	})
}

func (s *StockStore) ApplyInspection(_ context.Context, date, variant string, inspection int, tx models.StockTransaction) (*models.FGStockDocument, error) {
	return s.apply(date, variant, func(row *models.FGStockDocument) error {
		if inspection > row.ProductionAdded || row.OpeningStock+row.ProductionAdded-inspection-row.Dispatched < 0 {
			return models.Errorf(models.ErrInvalidQuantity, "inspection no longer fits the row")
		}
		row.InspectionQty = inspection
		row.UpdatedAt = tx.Timestamp
		row.Transactions = append(row.Transactions, tx)
		row.RecalculateClosingStock()
		return nil
	})
}

func (s *StockStore) ApplyDispatch(_ context.Context, date, variant string, qty int, tx models.StockTransaction) (*models.FGStockDocument, error) {
	return s.apply(date, variant, func(row *models.FGStockDocument) error {
		if row.ClosingStock < qty {
			return models.Errorf(models.ErrInsufficientStock, "requested %d, available %d", qty, row.ClosingStock)
		}
		row.Dispatched += qty
		row.ClosingStock -= qty
		row.UpdatedAt = tx.Timestamp
		row.Transactions = append(row.Transactions, tx)
		return nil
	})
}

func (s *StockStore) FindStocksByMonth(_ context.Context, year, month int, partDescription string) ([]models.FGStockDocument, error) {
	return s.filter(func(r models.FGStockDocument) bool {
		return r.Year == year && r.Month == month && (partDescription == "" || r.PartDescription == partDescription)
	}), nil
}

func (s *StockStore) FindStocksByDate(_ context.Context, date string) ([]models.FGStockDocument, error) {
	return s.filter(func(r models.FGStockDocument) bool { return r.Date == date }), nil
}

func (s *StockStore) apply(date, variant string, mutate func(*models.FGStockDocument) error) (*models.FGStockDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stockKey{date, variant}
	row, ok := s.rows[key]
	if !ok {
		return nil, models.Errorf(models.ErrNotFound, "no stock row for %s on %s", variant, date)
	}
	row = copyStock(row)
	if err := mutate(&row); err != nil {
		return nil, err
	}
	s.rows[key] = row
	out := copyStock(row)
	return &out, nil
}

func (s *StockStore) filter(keep func(models.FGStockDocument) bool) []models.FGStockDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FGStockDocument
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, copyStock(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].VariantName < out[j].VariantName
	})
	return out
}

func copyStock(r models.FGStockDocument) models.FGStockDocument {
	r.Transactions = append([]models.StockTransaction(nil), r.Transactions...)
	return r
}
