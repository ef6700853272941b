package progress

import (
	"sync"

	"github.com/google/uuid"
)

// Recording collects everything reported for the epilogue (and for
// tests). Counts cover only entities whose local change reached
// storage; not-needed entities are tallied separately.
type Recording struct {
	mu sync.Mutex

	sections []string
	entries  []*RecordedEntity
}

// RecordedEntity is one entity's recorded progress.
type RecordedEntity struct {
	Action      Action
	Kind        string
	DisplayName string
	ID          *uuid.UUID
	LocalChange MarkStatus
	RemoteChange MarkStatus
	OtherProgress []OtherProgress
	NotNeeded   bool

	recording *Recording
}

// OtherProgress is one auxiliary progress note.
type OtherProgress struct {
	Label  string
	Status MarkStatus
}

// NewRecording creates an empty recording reporter.
func NewRecording() *Recording {
	return &Recording{}
}

// Section records a section title.
func (r *Recording) Section(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append(r.sections, title)
}

func (r *Recording) start(action Action, kind, displayName string) EntityReporter {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := &RecordedEntity{
		Action:       action,
		Kind:         kind,
		DisplayName:  displayName,
		LocalChange:  MarkStatusNone,
		RemoteChange: MarkStatusNone,
		recording:    r,
	}
	r.entries = append(r.entries, entry)
	return entry
}

// StartCreatingEntity starts recording a creation.
func (r *Recording) StartCreatingEntity(kind, displayName string) EntityReporter {
	return r.start(ActionCreating, kind, displayName)
}

// StartUpdatingEntity starts recording an update.
func (r *Recording) StartUpdatingEntity(kind, displayName string) EntityReporter {
	return r.start(ActionUpdating, kind, displayName)
}

// StartArchivingEntity starts recording an archival.
func (r *Recording) StartArchivingEntity(kind, displayName string) EntityReporter {
	return r.start(ActionArchiving, kind, displayName)
}

// StartRemovingEntity starts recording a removal.
func (r *Recording) StartRemovingEntity(kind, displayName string) EntityReporter {
	return r.start(ActionRemoving, kind, displayName)
}

// StartWorkingOnEntity starts recording generic work.
func (r *Recording) StartWorkingOnEntity(kind, displayName string) EntityReporter {
	return r.start(ActionWorkingOn, kind, displayName)
}

// Sections returns the recorded section titles.
func (r *Recording) Sections() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sections))
	copy(out, r.sections)
	return out
}

// Entries returns every recorded entity.
func (r *Recording) Entries() []*RecordedEntity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*RecordedEntity, len(r.entries))
	copy(out, r.entries)
	return out
}

// Counts tallies committed local changes per action.
func (r *Recording) Counts() map[Action]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[Action]int)
	for _, e := range r.entries {
		if e.LocalChange == MarkStatusOK {
			counts[e.Action]++
		}
	}
	return counts
}

func (e *RecordedEntity) MarkKnownEntityID(id uuid.UUID) EntityReporter {
	e.recording.mu.Lock()
	defer e.recording.mu.Unlock()
	e.ID = &id
	return e
}

func (e *RecordedEntity) MarkKnownName(name string) EntityReporter {
	e.recording.mu.Lock()
	defer e.recording.mu.Unlock()
	e.DisplayName = name
	return e
}

func (e *RecordedEntity) MarkLocalChange() EntityReporter {
	e.recording.mu.Lock()
	defer e.recording.mu.Unlock()
	e.LocalChange = MarkStatusOK
	return e
}

func (e *RecordedEntity) MarkRemoteChange(status MarkStatus) EntityReporter {
	e.recording.mu.Lock()
	defer e.recording.mu.Unlock()
	e.RemoteChange = status
	return e
}

func (e *RecordedEntity) MarkOtherProgress(label string, status MarkStatus) EntityReporter {
	e.recording.mu.Lock()
	defer e.recording.mu.Unlock()
	e.OtherProgress = append(e.OtherProgress, OtherProgress{Label: label, Status: status})
	return e
}

func (e *RecordedEntity) MarkNotNeeded() EntityReporter {
	e.recording.mu.Lock()
	defer e.recording.mu.Unlock()
	e.NotNeeded = true
	return e
}

func (e *RecordedEntity) EntityID() (uuid.UUID, bool) {
	e.recording.mu.Lock()
	defer e.recording.mu.Unlock()
	if e.ID == nil {
		return uuid.UUID{}, false
	}
	return *e.ID, true
}
