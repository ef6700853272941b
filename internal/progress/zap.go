package progress

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ZapReporter narrates progress into a structured logger. Used by the
// worker so cron gen runs leave a trace.
type ZapReporter struct {
	log *zap.Logger
}

// NewZapReporter creates a zap-backed reporter.
func NewZapReporter(log *zap.Logger) *ZapReporter {
	return &ZapReporter{log: log}
}

func (z *ZapReporter) Section(title string) {
	z.log.Info("section", zap.String("title", title))
}

func (z *ZapReporter) start(action Action, kind, displayName string) EntityReporter {
	return &zapEntityReporter{
		log:    z.log,
		action: action,
		kind:   kind,
		name:   displayName,
	}
}

func (z *ZapReporter) StartCreatingEntity(kind, displayName string) EntityReporter {
	return z.start(ActionCreating, kind, displayName)
}

func (z *ZapReporter) StartUpdatingEntity(kind, displayName string) EntityReporter {
	return z.start(ActionUpdating, kind, displayName)
}

func (z *ZapReporter) StartArchivingEntity(kind, displayName string) EntityReporter {
	return z.start(ActionArchiving, kind, displayName)
}

func (z *ZapReporter) StartRemovingEntity(kind, displayName string) EntityReporter {
	return z.start(ActionRemoving, kind, displayName)
}

func (z *ZapReporter) StartWorkingOnEntity(kind, displayName string) EntityReporter {
	return z.start(ActionWorkingOn, kind, displayName)
}

type zapEntityReporter struct {
	log    *zap.Logger
	action Action
	kind   string
	name   string
	id     *uuid.UUID
}

func (e *zapEntityReporter) fields() []zap.Field {
	fields := []zap.Field{
		zap.String("action", string(e.action)),
		zap.String("kind", e.kind),
		zap.String("name", e.name),
	}
	if e.id != nil {
		fields = append(fields, zap.String("entity_id", e.id.String()))
	}
	return fields
}

func (e *zapEntityReporter) MarkKnownEntityID(id uuid.UUID) EntityReporter {
	e.id = &id
	return e
}

func (e *zapEntityReporter) MarkKnownName(name string) EntityReporter {
	e.name = name
	return e
}

func (e *zapEntityReporter) MarkLocalChange() EntityReporter {
	e.log.Info("local_change", e.fields()...)
	return e
}

func (e *zapEntityReporter) MarkRemoteChange(status MarkStatus) EntityReporter {
	e.log.Info("remote_change", append(e.fields(), zap.String("status", string(status)))...)
	return e
}

func (e *zapEntityReporter) MarkOtherProgress(label string, status MarkStatus) EntityReporter {
	e.log.Info("other_progress", append(e.fields(),
		zap.String("label", label),
		zap.String("status", string(status)))...)
	return e
}

func (e *zapEntityReporter) MarkNotNeeded() EntityReporter {
	e.log.Debug("not_needed", e.fields()...)
	return e
}

func (e *zapEntityReporter) EntityID() (uuid.UUID, bool) {
	if e.id == nil {
		return uuid.UUID{}, false
	}
	return *e.id, true
}
