package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InboxTask is the central leaf work item a user acts on. Generated
// tasks keep a link to their source entity and the timeline bucket that
// produced them so generation stays idempotent.
type InboxTask struct {
	EntityMeta

	WorkspaceRefID uuid.UUID       `json:"workspace_ref_id"`
	ProjectRefID   uuid.UUID       `json:"project_ref_id"`
	Source         InboxTaskSource `json:"source"`

	BigPlanRefID   *uuid.UUID `json:"big_plan_ref_id,omitempty"`
	HabitRefID     *uuid.UUID `json:"habit_ref_id,omitempty"`
	ChoreRefID     *uuid.UUID `json:"chore_ref_id,omitempty"`
	MetricRefID    *uuid.UUID `json:"metric_ref_id,omitempty"`
	PersonRefID    *uuid.UUID `json:"person_ref_id,omitempty"`
	SlackTaskRefID *uuid.UUID `json:"slack_task_ref_id,omitempty"`
	EmailTaskRefID *uuid.UUID `json:"email_task_ref_id,omitempty"`

	Name       string          `json:"name"`
	Notes      string          `json:"notes,omitempty"`
	Eisen      Eisen           `json:"eisen"`
	Difficulty *Difficulty     `json:"difficulty,omitempty"`
	Status     InboxTaskStatus `json:"status"`

	ActionableDate *time.Time `json:"actionable_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`

	AcceptedTime  *time.Time `json:"accepted_time,omitempty"`
	WorkingTime   *time.Time `json:"working_time,omitempty"`
	CompletedTime *time.Time `json:"completed_time,omitempty"`

	RecurringTimeline    *string    `json:"recurring_timeline,omitempty"`
	RecurringRepeatIndex *int       `json:"recurring_repeat_index,omitempty"`
	RecurringGenRightNow *time.Time `json:"recurring_gen_right_now,omitempty"`
}

// NewInboxTask creates a user-sourced inbox task.
func NewInboxTask(workspaceRefID, projectRefID uuid.UUID, name string, eisen Eisen, difficulty *Difficulty, actionableDate, dueDate *time.Time, now time.Time) (*InboxTask, error) {
	if err := validateInboxTaskName(name); err != nil {
		return nil, err
	}
	if err := validateActionableVsDueDates(actionableDate, dueDate); err != nil {
		return nil, err
	}
	if eisen == "" {
		eisen = EisenRegular
	}
	return &InboxTask{
		EntityMeta:     NewEntityMeta(now),
		WorkspaceRefID: workspaceRefID,
		ProjectRefID:   projectRefID,
		Source:         InboxTaskSourceUser,
		Name:           name,
		Eisen:          eisen,
		Difficulty:     difficulty,
		Status:         InboxTaskStatusAccepted,
		ActionableDate: actionableDate,
		DueDate:        dueDate,
		AcceptedTime:   timePtr(now),
	}, nil
}

// NewInboxTaskForBigPlan creates a task under a big plan, inheriting the
// plan's actionable and due dates.
func NewInboxTaskForBigPlan(workspaceRefID uuid.UUID, plan *BigPlan, name string, eisen Eisen, difficulty *Difficulty, now time.Time) (*InboxTask, error) {
	if err := validateInboxTaskName(name); err != nil {
		return nil, err
	}
	if eisen == "" {
		eisen = EisenRegular
	}
	return &InboxTask{
		EntityMeta:     NewEntityMeta(now),
		WorkspaceRefID: workspaceRefID,
		ProjectRefID:   plan.ProjectRefID,
		Source:         InboxTaskSourceBigPlan,
		BigPlanRefID:   &plan.RefID,
		Name:           name,
		Eisen:          eisen,
		Difficulty:     difficulty,
		Status:         InboxTaskStatusAccepted,
		ActionableDate: plan.ActionableDate,
		DueDate:        plan.DueDate,
		AcceptedTime:   timePtr(now),
	}, nil
}

// GeneratedTaskSeed carries everything the generation engine knows about
// a recurring task instance at upsert time.
type GeneratedTaskSeed struct {
	WorkspaceRefID uuid.UUID
	ProjectRefID   uuid.UUID
	Source         InboxTaskSource
	SourceRefID    uuid.UUID
	Name           string
	Eisen          Eisen
	Difficulty     *Difficulty
	ActionableDate *time.Time
	DueDate        *time.Time
	Timeline       string
	RepeatIndex    *int
	GenRightNow    time.Time
}

// NewGeneratedInboxTask creates an inbox task owned by the generation
// engine for one timeline bucket of a recurring or push source.
func NewGeneratedInboxTask(seed GeneratedTaskSeed, now time.Time) *InboxTask {
	task := &InboxTask{
		EntityMeta:           NewEntityMeta(now),
		WorkspaceRefID:       seed.WorkspaceRefID,
		ProjectRefID:         seed.ProjectRefID,
		Source:               seed.Source,
		Name:                 seed.Name,
		Eisen:                seed.Eisen,
		Difficulty:           seed.Difficulty,
		Status:               InboxTaskStatusRecurring,
		ActionableDate:       seed.ActionableDate,
		DueDate:              seed.DueDate,
		AcceptedTime:         timePtr(now),
		RecurringRepeatIndex: seed.RepeatIndex,
		RecurringGenRightNow: timePtr(seed.GenRightNow),
	}
	if seed.Timeline != "" {
		task.RecurringTimeline = &seed.Timeline
	}
	task.linkSource(seed.Source, seed.SourceRefID)
	if seed.Source == InboxTaskSourceSlackTask || seed.Source == InboxTaskSourceEmailTask {
		task.Status = InboxTaskStatusAccepted
	}
	return task
}

func (t *InboxTask) linkSource(source InboxTaskSource, refID uuid.UUID) {
	id := refID
	switch source {
	case InboxTaskSourceHabit:
		t.HabitRefID = &id
	case InboxTaskSourceChore:
		t.ChoreRefID = &id
	case InboxTaskSourceMetric:
		t.MetricRefID = &id
	case InboxTaskSourcePersonCatchUp, InboxTaskSourcePersonBirthday:
		t.PersonRefID = &id
	case InboxTaskSourceSlackTask:
		t.SlackTaskRefID = &id
	case InboxTaskSourceEmailTask:
		t.EmailTaskRefID = &id
	case InboxTaskSourceBigPlan:
		t.BigPlanRefID = &id
	}
}

// SourceRefID returns the ref_id of the linked source entity, if any.
func (t *InboxTask) SourceRefID() *uuid.UUID {
	switch t.Source {
	case InboxTaskSourceBigPlan:
		return t.BigPlanRefID
	case InboxTaskSourceHabit:
		return t.HabitRefID
	case InboxTaskSourceChore:
		return t.ChoreRefID
	case InboxTaskSourceMetric:
		return t.MetricRefID
	case InboxTaskSourcePersonCatchUp, InboxTaskSourcePersonBirthday:
		return t.PersonRefID
	case InboxTaskSourceSlackTask:
		return t.SlackTaskRefID
	case InboxTaskSourceEmailTask:
		return t.EmailTaskRefID
	default:
		return nil
	}
}

// EnsureEditable rejects user changes to fields the generation engine
// owns. Status and schedule dates stay user-editable on generated tasks.
func (t *InboxTask) EnsureEditable(field string) error {
	if !t.Source.IsGenerated() {
		return nil
	}
	switch field {
	case "status", "actionable_date", "due_date", "notes":
		return nil
	default:
		return &CannotModifyGeneratedTaskError{Field: field}
	}
}

// UpdateStatus moves the task through its lifecycle, stamping the
// accepted/working/completed times on first entry into each region and
// clearing them on the way out.
func (t *InboxTask) UpdateStatus(status InboxTaskStatus, now time.Time) error {
	if !status.Valid() {
		return NewInputValidationError("invalid inbox task status %q", status)
	}
	if status == t.Status {
		return nil
	}

	if status.IsAccepted() && !t.Status.IsAccepted() {
		t.AcceptedTime = timePtr(now)
	}
	if !status.IsAccepted() && t.Status.IsAccepted() && !status.IsWorking() && !status.IsCompleted() {
		t.AcceptedTime = nil
	}

	if status.IsWorking() && !t.Status.IsWorking() {
		t.WorkingTime = timePtr(now)
	}
	if !status.IsWorking() && t.Status.IsWorking() && !status.IsCompleted() {
		t.WorkingTime = nil
	}

	if status.IsCompleted() && !t.Status.IsCompleted() {
		t.CompletedTime = timePtr(now)
	}
	if !status.IsCompleted() && t.Status.IsCompleted() {
		t.CompletedTime = nil
	}

	t.Status = status
	t.MarkModified(now)
	return nil
}

// UpdateSchedule changes the actionable and due dates, preserving the
// actionable <= due invariant.
func (t *InboxTask) UpdateSchedule(actionableDate UpdateAction[*time.Time], dueDate UpdateAction[*time.Time], now time.Time) error {
	newActionable := actionableDate.Apply(t.ActionableDate)
	newDue := dueDate.Apply(t.DueDate)
	if err := validateActionableVsDueDates(newActionable, newDue); err != nil {
		return err
	}
	t.ActionableDate = newActionable
	t.DueDate = newDue
	t.MarkModified(now)
	return nil
}

// RegenFromSeed refreshes the engine-owned fields from the current
// schedule of the source. Used when a source changed after the task was
// generated.
func (t *InboxTask) RegenFromSeed(seed GeneratedTaskSeed, now time.Time) {
	t.Name = seed.Name
	t.ProjectRefID = seed.ProjectRefID
	t.Eisen = seed.Eisen
	t.Difficulty = seed.Difficulty
	t.ActionableDate = seed.ActionableDate
	t.DueDate = seed.DueDate
	t.RecurringGenRightNow = timePtr(seed.GenRightNow)
	t.MarkModified(now)
}

// Rename changes the task name; rejected for generated tasks.
func (t *InboxTask) Rename(name string, now time.Time) error {
	if err := t.EnsureEditable("name"); err != nil {
		return err
	}
	if err := validateInboxTaskName(name); err != nil {
		return err
	}
	t.Name = name
	t.MarkModified(now)
	return nil
}

func validateInboxTaskName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewInputValidationError("inbox task name must not be empty")
	}
	return nil
}

func validateActionableVsDueDates(actionable, due *time.Time) error {
	if actionable != nil && due != nil && actionable.After(*due) {
		return NewInputValidationError("actionable date %s is after due date %s",
			actionable.Format("2006-01-02"), due.Format("2006-01-02"))
	}
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }
