package hourly

import (
	"time"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
)

const (
	gracePeriod    = 24 * time.Hour
	maxDocumentAge = 7 * 24 * time.Hour
)

// GateDecision is the outcome of the status gate for a production date.
type GateDecision struct {
	Status       models.DocumentStatus
	ShiftEnd     time.Time
	Age          time.Duration
	GraceEndsAt  time.Time
	MaxAgeEndsAt time.Time
}

// DetermineStatus applies the age rules relative to the shift boundary of the
// production date. day is the production date at midnight in the factory timezone.
func DetermineStatus(day, shiftEnd, now time.Time) (GateDecision, error) {
	local := now.In(day.Location())
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, day.Location())
	if day.After(today) {
		return GateDecision{}, models.Errorf(models.ErrValidation, "cannot create document for future date %s", day.Format("2006-01-02"))
	}

	decision := GateDecision{
		ShiftEnd:     shiftEnd,
		Age:          now.Sub(shiftEnd),
		GraceEndsAt:  shiftEnd.Add(gracePeriod),
		MaxAgeEndsAt: shiftEnd.Add(maxDocumentAge),
	}

	switch {
	case decision.Age <= gracePeriod:
		decision.Status = models.DocumentOpen
	case decision.Age <= maxDocumentAge:
		decision.Status = models.DocumentPendingApproval
	default:
		return decision, models.Errorf(models.ErrTooOld,
			"document is %.1f days past its last shift (maximum allowed: %d days)",
			decision.Age.Hours()/24, int(maxDocumentAge.Hours()/24))
	}
	return decision, nil
}

// CheckAcceptsEntries refuses submission unless the document is OPEN or APPROVED.
func CheckAcceptsEntries(status models.DocumentStatus) error {
	switch status {
	case models.DocumentOpen, models.DocumentApproved:
		return nil
	case models.DocumentPendingApproval:
		return models.Errorf(models.ErrStatusGateClosed, "document requires admin approval before data entry")
	case models.DocumentBlocked:
		return models.Errorf(models.ErrStatusGateClosed, "document is blocked and cannot accept entries")
	default:
		return models.Errorf(models.ErrStatusGateClosed, "cannot submit entries in status %s", status)
	}
}
