package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShiftItem is one named shift of the factory calendar.
type ShiftItem struct {
	Name          string  `bson:"name" json:"name"`
	StartTime     string  `bson:"start_time" json:"start_time"`
	RegularHours  float64 `bson:"regular_hours" json:"regular_hours"`
	OvertimeHours float64 `bson:"overtime_hours" json:"overtime_hours"`
}

// Duration is the paid length of the shift including overtime.
func (s ShiftItem) Duration() time.Duration {
	return time.Duration((s.RegularHours + s.OvertimeHours) * float64(time.Hour))
}

// ShiftSetting is the factory-wide shift configuration. The most recently updated
// setting is the active one.
type ShiftSetting struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SettingName string             `bson:"setting_name" json:"setting_name"`
	Shifts      []ShiftItem        `bson:"shifts" json:"shifts"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
