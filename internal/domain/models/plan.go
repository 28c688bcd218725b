package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MonthlyProductionPlan is the monthly schedule of one part.
type MonthlyProductionPlan struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Month                  string             `bson:"month" json:"month"`
	ItemDescription        string             `bson:"item_description" json:"item_description"`
	PartNumber             string             `bson:"part_number,omitempty" json:"part_number,omitempty"`
	Schedule               int                `bson:"schedule" json:"schedule"`
	DispatchQuantityPerDay *float64           `bson:"dispatch_quantity_per_day,omitempty" json:"dispatch_quantity_per_day,omitempty"`
	DayStockToKept         *int               `bson:"day_stock_to_kept,omitempty" json:"day_stock_to_kept,omitempty"`
	RespPerson             string             `bson:"resp_person,omitempty" json:"resp_person,omitempty"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updated_at"`
}

// VariantSchedule shares the part schedule between variantCount sides.
func (p MonthlyProductionPlan) VariantSchedule(variantCount int) int {
	if variantCount <= 1 {
		return p.Schedule
	}
	return p.Schedule / variantCount
}

// WorkingDays counts the days of a month excluding Sundays.
func WorkingDays(year, month int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := 0
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Sunday {
			days++
		}
	}
	return days
}

// DaysInMonth returns the number of calendar days in the month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DailyTarget spreads a schedule across the working days of the month.
func DailyTarget(schedule, year, month int) int {
	days := WorkingDays(year, month)
	if days == 0 {
		return 0
	}
	return schedule / days
}
