package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeGenerate is a job for running the generation engine over a workspace
	JobTypeGenerate JobType = "generate"
	// JobTypePushSlack is a job carrying an inbound Slack bridge message
	JobTypePushSlack JobType = "push_slack"
	// JobTypePushEmail is a job carrying an inbound email bridge message
	JobTypePushEmail JobType = "push_email"
)

// GenPayload narrows a generation job to particular targets or sources.
// Empty fields mean "everything".
type GenPayload struct {
	Targets               []models.SyncTarget `json:"targets,omitempty"`
	FilterHabitRefIDs     []uuid.UUID         `json:"filter_habit_ref_ids,omitempty"`
	FilterChoreRefIDs     []uuid.UUID         `json:"filter_chore_ref_ids,omitempty"`
	FilterMetricRefIDs    []uuid.UUID         `json:"filter_metric_ref_ids,omitempty"`
	FilterPersonRefIDs    []uuid.UUID         `json:"filter_person_ref_ids,omitempty"`
	FilterSlackTaskRefIDs []uuid.UUID         `json:"filter_slack_task_ref_ids,omitempty"`
	FilterEmailTaskRefIDs []uuid.UUID         `json:"filter_email_task_ref_ids,omitempty"`
	GenEvenIfNotModified  bool                `json:"gen_even_if_not_modified,omitempty"`
	Source                models.EventSource  `json:"source"`
}

// SlackPushPayload is an inbound Slack bridge message awaiting materialization.
type SlackPushPayload struct {
	User                string `json:"user"`
	Channel             string `json:"channel,omitempty"`
	Message             string `json:"message"`
	GenerationExtraInfo string `json:"generation_extra_info,omitempty"`
}

// EmailPushPayload is an inbound email bridge message awaiting materialization.
type EmailPushPayload struct {
	FromAddress         string `json:"from_address"`
	FromName            string `json:"from_name"`
	ToAddress           string `json:"to_address"`
	Subject             string `json:"subject"`
	Body                string `json:"body"`
	GenerationExtraInfo string `json:"generation_extra_info,omitempty"`
}

// Job represents a job in the queue
type Job struct {
	ID             uuid.UUID         `json:"id"`
	Type           JobType           `json:"type"`
	WorkspaceRefID uuid.UUID         `json:"workspace_ref_id"`
	Gen            *GenPayload       `json:"gen,omitempty"`
	Slack          *SlackPushPayload `json:"slack,omitempty"`
	Email          *EmailPushPayload `json:"email,omitempty"`
	NotBefore      *time.Time        `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter       *time.Time        `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	CreatedAt      time.Time         `json:"created_at"`
	RetryCount     int               `json:"retry_count"`
	MaxRetries     int               `json:"max_retries"`
}

// NewGenJob creates a generation job for a workspace.
func NewGenJob(workspaceRefID uuid.UUID, payload GenPayload) *Job {
	return &Job{
		ID:             uuid.New(),
		Type:           JobTypeGenerate,
		WorkspaceRefID: workspaceRefID,
		Gen:            &payload,
		CreatedAt:      time.Now(),
		RetryCount:     0,
		MaxRetries:     3,
	}
}

// NewSlackPushJob creates a job for an inbound Slack bridge message.
func NewSlackPushJob(workspaceRefID uuid.UUID, payload SlackPushPayload) *Job {
	return &Job{
		ID:             uuid.New(),
		Type:           JobTypePushSlack,
		WorkspaceRefID: workspaceRefID,
		Slack:          &payload,
		CreatedAt:      time.Now(),
		RetryCount:     0,
		MaxRetries:     3,
	}
}

// NewEmailPushJob creates a job for an inbound email bridge message.
func NewEmailPushJob(workspaceRefID uuid.UUID, payload EmailPushPayload) *Job {
	return &Job{
		ID:             uuid.New(),
		Type:           JobTypePushEmail,
		WorkspaceRefID: workspaceRefID,
		Email:          &payload,
		CreatedAt:      time.Now(),
		RetryCount:     0,
		MaxRetries:     3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	// Check NotBefore
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	// Check NotAfter
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
