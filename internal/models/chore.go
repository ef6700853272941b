package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Chore is a recurring source with an active interval. Unlike habits,
// chores respect vacations unless marked must-do.
type Chore struct {
	EntityMeta

	WorkspaceRefID uuid.UUID              `json:"workspace_ref_id"`
	ProjectRefID   uuid.UUID              `json:"project_ref_id"`
	Name           string                 `json:"name"`
	GenParams      RecurringTaskGenParams `json:"gen_params"`
	Suspended      bool                   `json:"suspended"`
	MustDo         bool                   `json:"must_do"`
	StartAtDate    *time.Time             `json:"start_at_date,omitempty"`
	EndAtDate      *time.Time             `json:"end_at_date,omitempty"`
}

// NewChore creates a chore after validating its parameters.
func NewChore(workspaceRefID, projectRefID uuid.UUID, name string, genParams RecurringTaskGenParams, mustDo bool, startAtDate, endAtDate *time.Time, now time.Time) (*Chore, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewInputValidationError("chore name must not be empty")
	}
	if err := genParams.Validate(); err != nil {
		return nil, err
	}
	if startAtDate != nil && endAtDate != nil && startAtDate.After(*endAtDate) {
		return nil, NewInputValidationError("chore start date %s is after end date %s",
			startAtDate.Format("2006-01-02"), endAtDate.Format("2006-01-02"))
	}
	return &Chore{
		EntityMeta:     NewEntityMeta(now),
		WorkspaceRefID: workspaceRefID,
		ProjectRefID:   projectRefID,
		Name:           name,
		GenParams:      genParams,
		MustDo:         mustDo,
		StartAtDate:    startAtDate,
		EndAtDate:      endAtDate,
	}, nil
}

// IsInActiveInterval reports whether the [firstDay, endDay] schedule
// window overlaps the chore's active interval.
func (c *Chore) IsInActiveInterval(firstDay, endDay time.Time) bool {
	if c.StartAtDate != nil && endDay.Before(*c.StartAtDate) {
		return false
	}
	if c.EndAtDate != nil && firstDay.After(*c.EndAtDate) {
		return false
	}
	return true
}

// Update applies change-to actions to the user-editable fields.
func (c *Chore) Update(name UpdateAction[string], genParams UpdateAction[RecurringTaskGenParams], mustDo UpdateAction[bool], startAtDate, endAtDate UpdateAction[*time.Time], now time.Time) error {
	newName := name.Apply(c.Name)
	if strings.TrimSpace(newName) == "" {
		return NewInputValidationError("chore name must not be empty")
	}
	newParams := genParams.Apply(c.GenParams)
	if err := newParams.Validate(); err != nil {
		return err
	}
	newStart := startAtDate.Apply(c.StartAtDate)
	newEnd := endAtDate.Apply(c.EndAtDate)
	if newStart != nil && newEnd != nil && newStart.After(*newEnd) {
		return NewInputValidationError("chore start date %s is after end date %s",
			newStart.Format("2006-01-02"), newEnd.Format("2006-01-02"))
	}
	c.Name = newName
	c.GenParams = newParams
	c.MustDo = mustDo.Apply(c.MustDo)
	c.StartAtDate = newStart
	c.EndAtDate = newEnd
	c.MarkModified(now)
	return nil
}

// Suspend stops generation for the chore.
func (c *Chore) Suspend(now time.Time) {
	if c.Suspended {
		return
	}
	c.Suspended = true
	c.MarkModified(now)
}

// Unsuspend resumes generation for the chore.
func (c *Chore) Unsuspend(now time.Time) {
	if !c.Suspended {
		return
	}
	c.Suspended = false
	c.MarkModified(now)
}
