package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BigPlan is a long-running objective living in a project. Its lifecycle
// mirrors inbox tasks minus the recurring state.
type BigPlan struct {
	EntityMeta

	WorkspaceRefID uuid.UUID     `json:"workspace_ref_id"`
	ProjectRefID   uuid.UUID     `json:"project_ref_id"`
	Name           string        `json:"name"`
	Status         BigPlanStatus `json:"status"`

	ActionableDate *time.Time `json:"actionable_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`

	AcceptedTime  *time.Time `json:"accepted_time,omitempty"`
	WorkingTime   *time.Time `json:"working_time,omitempty"`
	CompletedTime *time.Time `json:"completed_time,omitempty"`
}

// NewBigPlan creates a big plan.
func NewBigPlan(workspaceRefID, projectRefID uuid.UUID, name string, actionableDate, dueDate *time.Time, now time.Time) (*BigPlan, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewInputValidationError("big plan name must not be empty")
	}
	if err := validateActionableVsDueDates(actionableDate, dueDate); err != nil {
		return nil, err
	}
	return &BigPlan{
		EntityMeta:     NewEntityMeta(now),
		WorkspaceRefID: workspaceRefID,
		ProjectRefID:   projectRefID,
		Name:           name,
		Status:         BigPlanStatusAccepted,
		ActionableDate: actionableDate,
		DueDate:        dueDate,
		AcceptedTime:   timePtr(now),
	}, nil
}

// UpdateStatus moves the plan through its lifecycle with the same
// stamping rules as inbox tasks.
func (b *BigPlan) UpdateStatus(status BigPlanStatus, now time.Time) error {
	if !status.Valid() {
		return NewInputValidationError("invalid big plan status %q", status)
	}
	if status == b.Status {
		return nil
	}

	if status.IsAccepted() && !b.Status.IsAccepted() {
		b.AcceptedTime = timePtr(now)
	}
	if !status.IsAccepted() && b.Status.IsAccepted() && !status.IsWorking() && !status.IsCompleted() {
		b.AcceptedTime = nil
	}
	if status.IsWorking() && !b.Status.IsWorking() {
		b.WorkingTime = timePtr(now)
	}
	if !status.IsWorking() && b.Status.IsWorking() && !status.IsCompleted() {
		b.WorkingTime = nil
	}
	if status.IsCompleted() && !b.Status.IsCompleted() {
		b.CompletedTime = timePtr(now)
	}
	if !status.IsCompleted() && b.Status.IsCompleted() {
		b.CompletedTime = nil
	}

	b.Status = status
	b.MarkModified(now)
	return nil
}

// UpdateSchedule changes the actionable and due dates.
func (b *BigPlan) UpdateSchedule(actionableDate UpdateAction[*time.Time], dueDate UpdateAction[*time.Time], now time.Time) error {
	newActionable := actionableDate.Apply(b.ActionableDate)
	newDue := dueDate.Apply(b.DueDate)
	if err := validateActionableVsDueDates(newActionable, newDue); err != nil {
		return err
	}
	b.ActionableDate = newActionable
	b.DueDate = newDue
	b.MarkModified(now)
	return nil
}
