package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vacation is a date interval during which non-must-do chores do not
// generate.
type Vacation struct {
	EntityMeta

	WorkspaceRefID uuid.UUID `json:"workspace_ref_id"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// NewVacation creates a vacation.
func NewVacation(workspaceRefID uuid.UUID, name string, startDate, endDate time.Time, now time.Time) (*Vacation, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewInputValidationError("vacation name must not be empty")
	}
	if startDate.After(endDate) {
		return nil, NewInputValidationError("vacation start date %s is after end date %s",
			startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}
	return &Vacation{
		EntityMeta:     NewEntityMeta(now),
		WorkspaceRefID: workspaceRefID,
		Name:           name,
		StartDate:      startDate,
		EndDate:        endDate,
	}, nil
}

// Covers reports whether the vacation fully contains the [firstDay,
// endDay] window.
func (v *Vacation) Covers(firstDay, endDay time.Time) bool {
	return !v.StartDate.After(firstDay) && !v.EndDate.Before(endDay)
}

// Update applies change-to actions to the vacation fields.
func (v *Vacation) Update(name UpdateAction[string], startDate, endDate UpdateAction[time.Time], now time.Time) error {
	newName := name.Apply(v.Name)
	if strings.TrimSpace(newName) == "" {
		return NewInputValidationError("vacation name must not be empty")
	}
	newStart := startDate.Apply(v.StartDate)
	newEnd := endDate.Apply(v.EndDate)
	if newStart.After(newEnd) {
		return NewInputValidationError("vacation start date %s is after end date %s",
			newStart.Format("2006-01-02"), newEnd.Format("2006-01-02"))
	}
	v.Name = newName
	v.StartDate = newStart
	v.EndDate = newEnd
	v.MarkModified(now)
	return nil
}
