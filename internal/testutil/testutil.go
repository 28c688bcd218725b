// Package testutil provides in-memory stand-ins for the MongoDB repositories and
// small fixtures shared by service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

// FixedClock returns a clock frozen at t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// HourlyStore keeps hourly production documents in memory.
type HourlyStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.HourlyProductionDocument
	// FailReplace makes ReplaceDocument fail when set.
	FailReplace error
}

// NewHourlyStore builds an empty store.
func NewHourlyStore() *HourlyStore {
	return &HourlyStore{docs: make(map[primitive.ObjectID]models.HourlyProductionDocument)}
}

func (s *HourlyStore) InsertDocument(_ context.Context, doc *models.HourlyProductionDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}

func (s *HourlyStore) FindDocumentByID(_ context.Context, id primitive.ObjectID) (*models.HourlyProductionDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, models.Errorf(models.ErrNotFound, "document %s not found", id.Hex())
	}
	out := doc.Clone()
	return &out, nil
}

func (s *HourlyStore) ReplaceDocument(_ context.Context, doc *models.HourlyProductionDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReplace != nil {
		return s.FailReplace
	}
	if _, ok := s.docs[doc.ID]; !ok {
		return models.Errorf(models.ErrNotFound, "document %s not found", doc.ID.Hex())
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}

func (s *HourlyStore) FindDocumentsByDate(_ context.Context, date string) ([]models.HourlyProductionDocument, error) {
	return s.filter(func(d models.HourlyProductionDocument) bool { return d.Date == date }), nil
}

func (s *HourlyStore) FindDocumentsByStatus(_ context.Context, status models.DocumentStatus) ([]models.HourlyProductionDocument, error) {
	out := s.filter(func(d models.HourlyProductionDocument) bool { return d.DocumentStatus == status })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *HourlyStore) FindDocumentsInRange(_ context.Context, from, to string) ([]models.HourlyProductionDocument, error) {
	return s.filter(func(d models.HourlyProductionDocument) bool { return d.Date >= from && d.Date < to }), nil
}

func (s *HourlyStore) SumOKQuantity(_ context.Context, date, partDescription, side string) (int, error) {
	total := 0
	for _, d := range s.filter(func(d models.HourlyProductionDocument) bool {
		return d.Date == date && d.PartDescription == partDescription && d.Side == side
	}) {
		total += d.Totals.TotalOKQty
	}
	return total, nil
}

// Len reports how many documents are stored.
func (s *HourlyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *HourlyStore) filter(keep func(models.HourlyProductionDocument) bool) []models.HourlyProductionDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.HourlyProductionDocument
	for _, d := range s.docs {
		if keep(d) {
			out = append(out, d.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

// PartStore serves part configurations.
type PartStore struct {
	mu    sync.Mutex
	parts []models.PartConfiguration
}

// NewPartStore seeds the catalog.
func NewPartStore(parts ...models.PartConfiguration) *PartStore {
	return &PartStore{parts: parts}
}

func (s *PartStore) FindActivePart(_ context.Context, partDescription string) (*models.PartConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.parts {
		if p.PartDescription == partDescription && p.IsActive {
			out := p
			return &out, nil
		}
	}
	return nil, models.Errorf(models.ErrNotFound, "part %q not found", partDescription)
}

func (s *PartStore) ListActiveParts(_ context.Context) ([]models.PartConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PartConfiguration
	for _, p := range s.parts {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

// ShiftStore serves a single shift setting.
type ShiftStore struct {
	Setting *models.ShiftSetting
}

func (s ShiftStore) LatestShiftSetting(context.Context) (*models.ShiftSetting, error) {
	if s.Setting == nil {
		return nil, models.Errorf(models.ErrNotFound, "no shift setting")
	}
	out := *s.Setting
	return &out, nil
}

// DayShifts is a two-shift calendar: A 08:00 and B 20:00, both 8h plus 4h overtime.
func DayShifts() *models.ShiftSetting {
	return &models.ShiftSetting{
		ID:          primitive.NewObjectID(),
		SettingName: "default",
		Shifts: []models.ShiftItem{
			{Name: "A", StartTime: "08:00", RegularHours: 8, OvertimeHours: 4},
			{Name: "B", StartTime: "20:00", RegularHours: 8, OvertimeHours: 4},
		},
	}
}

// TwoSidedPart builds an active part configured with LH and RH variants.
func TwoSidedPart(desc, number string) models.PartConfiguration {
	return models.PartConfiguration{
		PartDescription: desc,
		PartNumber:      number,
		Machine:         "120T",
		BinCapacity:     IntPtr(100),
		Variations:      []string{desc + " RH", desc + " LH"},
		IsActive:        true,
	}
}

// SingleSidedPart builds an active part without side variants.
func SingleSidedPart(desc, number string) models.PartConfiguration {
	return models.PartConfiguration{
		PartDescription: desc,
		PartNumber:      number,
		Variations:      []string{},
		IsActive:        true,
	}
}
