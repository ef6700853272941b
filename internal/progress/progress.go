// Package progress defines the reporter interface the engines use to
// narrate their work, plus a zap-backed implementation for the worker
// and a recording one for tests and API epilogues.
package progress

import "github.com/google/uuid"

// MarkStatus is the outcome of a local or remote change.
type MarkStatus string

const (
	MarkStatusNone     MarkStatus = "none"
	MarkStatusOK       MarkStatus = "ok"
	MarkStatusFailed   MarkStatus = "failed"
	MarkStatusProgress MarkStatus = "progress"
)

// Action is what an entity reporter is narrating.
type Action string

const (
	ActionCreating  Action = "creating"
	ActionUpdating  Action = "updating"
	ActionArchiving Action = "archiving"
	ActionRemoving  Action = "removing"
	ActionWorkingOn Action = "working-on"
)

// Reporter receives section and per-entity progress from the engines.
type Reporter interface {
	Section(title string)
	StartCreatingEntity(kind, displayName string) EntityReporter
	StartUpdatingEntity(kind, displayName string) EntityReporter
	StartArchivingEntity(kind, displayName string) EntityReporter
	StartRemovingEntity(kind, displayName string) EntityReporter
	StartWorkingOnEntity(kind, displayName string) EntityReporter
}

// EntityReporter narrates the progress of one entity. Mark methods
// chain so engines can annotate in one expression.
type EntityReporter interface {
	MarkKnownEntityID(id uuid.UUID) EntityReporter
	MarkKnownName(name string) EntityReporter
	MarkLocalChange() EntityReporter
	MarkRemoteChange(status MarkStatus) EntityReporter
	MarkOtherProgress(label string, status MarkStatus) EntityReporter
	MarkNotNeeded() EntityReporter
	EntityID() (uuid.UUID, bool)
}
