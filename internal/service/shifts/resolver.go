package shifts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Source loads the active factory shift configuration.
type Source interface {
	LatestShiftSetting(ctx context.Context) (*models.ShiftSetting, error)
}

// Info describes the shift a production timestamp falls into.
type Info struct {
	Name      string
	SettingID string
	Start     time.Time
	End       time.Time
}

// Resolver turns production dates and time slots into shift-aware instants.
type Resolver struct {
	source Source
	loc    *time.Location
	logger *zap.Logger
}

// NewResolver builds a resolver working in the factory timezone.
func NewResolver(source Source, loc *time.Location, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{source: source, loc: loc, logger: logger}
}

// Location is the factory timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Calendar loads the active shift setting once so several lookups share it.
func (r *Resolver) Calendar(ctx context.Context) (*Calendar, error) {
	setting, err := r.source.LatestShiftSetting(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shift setting: %w", err)
	}
	if setting == nil {
		return nil, models.Errorf(models.ErrNotFound, "no global shift configuration found")
	}
	if len(setting.Shifts) == 0 {
		return nil, models.Errorf(models.ErrInternal, "shift configuration %q contains no shifts", setting.SettingName)
	}
	return &Calendar{setting: *setting, loc: r.loc, logger: r.logger}, nil
}

// LastShiftEnd is a convenience wrapper around Calendar.LastShiftEnd.
func (r *Resolver) LastShiftEnd(ctx context.Context, date string) (time.Time, error) {
	cal, err := r.Calendar(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return cal.LastShiftEnd(date)
}

// Calendar is a loaded shift configuration bound to the factory timezone.
type Calendar struct {
	setting models.ShiftSetting
	loc     *time.Location
	logger  *zap.Logger
}

// NewCalendar wraps an already loaded setting.
func NewCalendar(setting models.ShiftSetting, loc *time.Location, logger *zap.Logger) *Calendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{setting: setting, loc: loc, logger: logger}
}

// LastShiftEnd returns the latest start+regular+overtime across the shifts that
// start on the production date. Night shifts push the boundary past midnight.
func (c *Calendar) LastShiftEnd(date string) (time.Time, error) {
	day, err := ParseDate(date, c.loc)
	if err != nil {
		return time.Time{}, err
	}

	var latest time.Time
	for _, shift := range c.setting.Shifts {
		start, ok := c.shiftStart(day, shift)
		if !ok {
			continue
		}
		if shift.Duration() <= 0 {
			continue
		}
		end := start.Add(shift.Duration())
		if end.After(latest) {
			latest = end
		}
	}

	if latest.IsZero() {
		return time.Time{}, models.Errorf(models.ErrInternal, "could not determine shift timing from configuration %q", c.setting.SettingName)
	}
	return latest, nil
}

// ActiveShift finds the shift containing ts, checking shifts that began on the
// same day and on the day before.
func (c *Calendar) ActiveShift(ts time.Time) (Info, error) {
	local := ts.In(c.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
	days := []time.Time{today, today.AddDate(0, 0, -1)}

	for _, shift := range c.setting.Shifts {
		for _, day := range days {
			start, ok := c.shiftStart(day, shift)
			if !ok {
				continue
			}
			end := start.Add(shift.Duration())
			if !local.Before(start) && local.Before(end) {
				return Info{
					Name:      shift.Name,
					SettingID: c.setting.ID.Hex(),
					Start:     start,
					End:       end,
				}, nil
			}
		}
	}

	return Info{}, models.Errorf(models.ErrValidation, "timestamp %s does not fall within any defined shift", local.Format(time.RFC3339))
}

// ProductionTimestamp is the start of timeSlot on the production date.
func (c *Calendar) ProductionTimestamp(date, timeSlot string) (time.Time, error) {
	return ProductionTimestamp(date, timeSlot, c.loc)
}

func (c *Calendar) shiftStart(day time.Time, shift models.ShiftItem) (time.Time, bool) {
	clock, err := time.Parse(clockLayout, strings.TrimSpace(shift.StartTime))
	if err != nil {
		c.logger.Warn("skip shift with invalid start time", zap.String("shift", shift.Name), zap.String("start_time", shift.StartTime))
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, c.loc), true
}

// ParseDate reads a YYYY-MM-DD production date as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, models.Errorf(models.ErrValidation, "invalid date format %q, expected YYYY-MM-DD", date)
	}
	return day, nil
}

// ParseTimeSlot splits an HH:MM-HH:MM slot into its two clocks, each
// re-formatted as zero-padded HH:MM. A slot may cross midnight but must not
// be empty.
func ParseTimeSlot(slot string) (string, string, error) {
	parts := strings.Split(slot, "-")
	if len(parts) != 2 {
		return "", "", models.Errorf(models.ErrValidation, "invalid time slot format, expected HH:MM-HH:MM, got %q", slot)
	}
	start, err := time.Parse(clockLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return "", "", models.Errorf(models.ErrValidation, "invalid time slot format, expected HH:MM-HH:MM, got %q", slot)
	}
	end, err := time.Parse(clockLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", models.Errorf(models.ErrValidation, "invalid time slot format, expected HH:MM-HH:MM, got %q", slot)
	}
	if start.Equal(end) {
		return "", "", models.Errorf(models.ErrValidation, "time slot %q starts and ends at the same time", slot)
	}
	return start.Format(clockLayout), end.Format(clockLayout), nil
}

// CanonicalTimeSlot returns slot in its stored HH:MM-HH:MM spelling.
func CanonicalTimeSlot(slot string) (string, error) {
	start, end, err := ParseTimeSlot(slot)
	if err != nil {
		return "", err
	}
	return start + "-" + end, nil
}

// ProductionTimestamp combines a production date with the start of a slot.
func ProductionTimestamp(date, timeSlot string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	start, _, err := ParseTimeSlot(timeSlot)
	if err != nil {
		return time.Time{}, err
	}
	clock, _ := time.Parse(clockLayout, start)
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}
