package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SlackTask is a one-shot push source from a Slack message. It yields
// exactly one inbox task; later generations update that task in place.
type SlackTask struct {
	EntityMeta

	WorkspaceRefID      uuid.UUID `json:"workspace_ref_id"`
	User                string    `json:"user"`
	Channel             *string   `json:"channel,omitempty"`
	Message             string    `json:"message"`
	GenerationExtraInfo string    `json:"generation_extra_info,omitempty"`
	HasGeneratedTask    bool      `json:"has_generated_task"`
}

// NewSlackTask creates a push task from a Slack message.
func NewSlackTask(workspaceRefID uuid.UUID, user string, channel *string, message, generationExtraInfo string, now time.Time) (*SlackTask, error) {
	if strings.TrimSpace(user) == "" {
		return nil, NewInputValidationError("slack task user must not be empty")
	}
	return &SlackTask{
		EntityMeta:          NewEntityMeta(now),
		WorkspaceRefID:      workspaceRefID,
		User:                user,
		Channel:             channel,
		Message:             message,
		GenerationExtraInfo: generationExtraInfo,
	}, nil
}

// DefaultTaskName is the generated task name when the extra info does
// not override it.
func (s *SlackTask) DefaultTaskName() string {
	if s.Channel != nil && *s.Channel != "" {
		return fmt.Sprintf("Respond to %s on %s", s.User, *s.Channel)
	}
	return fmt.Sprintf("Respond to %s's DM", s.User)
}

// MarkGenerated records that the linked inbox task exists.
func (s *SlackTask) MarkGenerated(now time.Time) {
	if s.HasGeneratedTask {
		return
	}
	s.HasGeneratedTask = true
	s.MarkModified(now)
}

// Update applies change-to actions to the user-editable fields.
func (s *SlackTask) Update(message UpdateAction[string], generationExtraInfo UpdateAction[string], now time.Time) {
	s.Message = message.Apply(s.Message)
	s.GenerationExtraInfo = generationExtraInfo.Apply(s.GenerationExtraInfo)
	s.MarkModified(now)
}

// EmailTask is a one-shot push source from an inbound email.
type EmailTask struct {
	EntityMeta

	WorkspaceRefID      uuid.UUID `json:"workspace_ref_id"`
	FromAddress         string    `json:"from_address"`
	FromName            string    `json:"from_name"`
	ToAddress           string    `json:"to_address"`
	Subject             string    `json:"subject"`
	Body                string    `json:"body"`
	GenerationExtraInfo string    `json:"generation_extra_info,omitempty"`
	HasGeneratedTask    bool      `json:"has_generated_task"`
}

// NewEmailTask creates a push task from an email.
func NewEmailTask(workspaceRefID uuid.UUID, fromAddress, fromName, toAddress, subject, body, generationExtraInfo string, now time.Time) (*EmailTask, error) {
	if strings.TrimSpace(fromAddress) == "" {
		return nil, NewInputValidationError("email task from address must not be empty")
	}
	return &EmailTask{
		EntityMeta:          NewEntityMeta(now),
		WorkspaceRefID:      workspaceRefID,
		FromAddress:         fromAddress,
		FromName:            fromName,
		ToAddress:           toAddress,
		Subject:             subject,
		Body:                body,
		GenerationExtraInfo: generationExtraInfo,
	}, nil
}

// DefaultTaskName is the generated task name when the extra info does
// not override it.
func (e *EmailTask) DefaultTaskName() string {
	return fmt.Sprintf("Respond to %s <%s>'s message sent to %s", e.FromName, e.FromAddress, e.ToAddress)
}

// MarkGenerated records that the linked inbox task exists.
func (e *EmailTask) MarkGenerated(now time.Time) {
	if e.HasGeneratedTask {
		return
	}
	e.HasGeneratedTask = true
	e.MarkModified(now)
}

// Update applies change-to actions to the user-editable fields.
func (e *EmailTask) Update(subject UpdateAction[string], body UpdateAction[string], generationExtraInfo UpdateAction[string], now time.Time) {
	e.Subject = subject.Apply(e.Subject)
	e.Body = body.Apply(e.Body)
	e.GenerationExtraInfo = generationExtraInfo.Apply(e.GenerationExtraInfo)
	e.MarkModified(now)
}
