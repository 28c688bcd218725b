package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PartConfiguration is the master record of a moulded part.
type PartConfiguration struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PartDescription string             `bson:"part_description" json:"part_description"`
	PartNumber      string             `bson:"part_number" json:"part_number"`
	Machine         string             `bson:"machine,omitempty" json:"machine,omitempty"`
	CustomerName    string             `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	CycleTime       *float64           `bson:"cycle_time,omitempty" json:"cycle_time,omitempty"`
	PartWeight      *float64           `bson:"part_weight,omitempty" json:"part_weight,omitempty"`
	RunnerWeight    *float64           `bson:"runner_weight,omitempty" json:"runner_weight,omitempty"`
	Cavity          *int               `bson:"cavity,omitempty" json:"cavity,omitempty"`
	BinCapacity     *int               `bson:"bin_capacity,omitempty" json:"bin_capacity,omitempty"`
	Variations      []string           `bson:"variations" json:"variations"`
	IsActive        bool               `bson:"is_active" json:"is_active"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// Variants lists the ledger keys of the part: its configured side variants, or
// the bare description for single-sided parts.
func (p PartConfiguration) Variants() []string {
	if len(p.Variations) == 0 {
		return []string{p.PartDescription}
	}
	return append([]string(nil), p.Variations...)
}

// VariantCount is the divisor used to share a part schedule between its sides.
func (p PartConfiguration) VariantCount() int {
	if len(p.Variations) == 0 {
		return 1
	}
	return len(p.Variations)
}
