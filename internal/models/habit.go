package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Habit is a recurring source generating one inbox task per timeline
// bucket, or N tasks when RepeatsInPeriodCount is set.
type Habit struct {
	EntityMeta

	WorkspaceRefID       uuid.UUID              `json:"workspace_ref_id"`
	ProjectRefID         uuid.UUID              `json:"project_ref_id"`
	Name                 string                 `json:"name"`
	GenParams            RecurringTaskGenParams `json:"gen_params"`
	Suspended            bool                   `json:"suspended"`
	RepeatsInPeriodCount *int                   `json:"repeats_in_period_count,omitempty"`
}

// NewHabit creates a habit after validating its parameters.
func NewHabit(workspaceRefID, projectRefID uuid.UUID, name string, genParams RecurringTaskGenParams, repeats *int, now time.Time) (*Habit, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewInputValidationError("habit name must not be empty")
	}
	if err := genParams.Validate(); err != nil {
		return nil, err
	}
	if repeats != nil && *repeats < 1 {
		return nil, NewInputValidationError("repeats in period count must be at least 1, got %d", *repeats)
	}
	return &Habit{
		EntityMeta:           NewEntityMeta(now),
		WorkspaceRefID:       workspaceRefID,
		ProjectRefID:         projectRefID,
		Name:                 name,
		GenParams:            genParams,
		RepeatsInPeriodCount: repeats,
	}, nil
}

// EffectiveRepeats returns how many tasks each bucket yields.
func (h *Habit) EffectiveRepeats() int {
	if h.RepeatsInPeriodCount == nil {
		return 1
	}
	return *h.RepeatsInPeriodCount
}

// Update applies change-to actions to the user-editable fields.
func (h *Habit) Update(name UpdateAction[string], genParams UpdateAction[RecurringTaskGenParams], repeats UpdateAction[*int], now time.Time) error {
	newName := name.Apply(h.Name)
	if strings.TrimSpace(newName) == "" {
		return NewInputValidationError("habit name must not be empty")
	}
	newParams := genParams.Apply(h.GenParams)
	if err := newParams.Validate(); err != nil {
		return err
	}
	newRepeats := repeats.Apply(h.RepeatsInPeriodCount)
	if newRepeats != nil && *newRepeats < 1 {
		return NewInputValidationError("repeats in period count must be at least 1, got %d", *newRepeats)
	}
	h.Name = newName
	h.GenParams = newParams
	h.RepeatsInPeriodCount = newRepeats
	h.MarkModified(now)
	return nil
}

// Suspend stops generation for the habit.
func (h *Habit) Suspend(now time.Time) {
	if h.Suspended {
		return
	}
	h.Suspended = true
	h.MarkModified(now)
}

// Unsuspend resumes generation for the habit.
func (h *Habit) Unsuspend(now time.Time) {
	if !h.Suspended {
		return
	}
	h.Suspended = false
	h.MarkModified(now)
}
