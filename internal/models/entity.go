package models

import (
	"time"

	"github.com/google/uuid"
)

// EventSource tags which surface caused a state transition.
type EventSource string

const (
	EventSourceCLI   EventSource = "cli"
	EventSourceWeb   EventSource = "web"
	EventSourceSlack EventSource = "slack"
	EventSourceEmail EventSource = "email"
	EventSourceCron  EventSource = "cron"
)

// EntityMeta carries the bookkeeping every entity shares: a stable
// ref_id, a monotonically increasing version, logical-delete state and
// creation/modification timestamps.
type EntityMeta struct {
	RefID            uuid.UUID  `json:"ref_id"`
	Version          int        `json:"version"`
	Archived         bool       `json:"archived"`
	CreatedTime      time.Time  `json:"created_time"`
	LastModifiedTime time.Time  `json:"last_modified_time"`
	ArchivedTime     *time.Time `json:"archived_time,omitempty"`
}

// NewEntityMeta initializes metadata for a freshly created entity.
func NewEntityMeta(now time.Time) EntityMeta {
	return EntityMeta{
		RefID:            uuid.New(),
		Version:          1,
		CreatedTime:      now,
		LastModifiedTime: now,
	}
}

// MarkModified bumps the version and modification time.
func (m *EntityMeta) MarkModified(now time.Time) {
	m.Version++
	m.LastModifiedTime = now
}

// MarkArchived logically deletes the entity.
func (m *EntityMeta) MarkArchived(now time.Time) {
	m.Archived = true
	m.ArchivedTime = &now
	m.MarkModified(now)
}

// EntityEvent is one row of the append-only audit log.
type EntityEvent struct {
	EntityKind string      `json:"entity_kind"`
	EntityID   uuid.UUID   `json:"entity_id"`
	EventName  string      `json:"event_name"`
	Source     EventSource `json:"source"`
	Version    int         `json:"version"`
	Timestamp  time.Time   `json:"timestamp"`
}
