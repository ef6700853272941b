package handlers

import (
	"context"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

// recordEvent appends one audit row for an API-driven change. Handlers
// call it inside the same unit of work as the change itself.
func recordEvent(ctx context.Context, uow storage.UnitOfWork, kind string, meta models.EntityMeta, eventName string) error {
	return uow.EntityEvents().Append(ctx, &models.EntityEvent{
		EntityKind: kind,
		EntityID:   meta.RefID,
		EventName:  eventName,
		Source:     models.EventSourceWeb,
		Version:    meta.Version,
		Timestamp:  meta.LastModifiedTime,
	})
}
