package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avancea/ritmo/internal/models"
)

type eventRepo struct {
	tx *sql.Tx
}

func (r *eventRepo) Append(ctx context.Context, event *models.EntityEvent) error {
	query := `
		INSERT INTO entity_events (entity_kind, entity_id, event_name, source, version, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.tx.ExecContext(ctx, query,
		event.EntityKind, event.EntityID, event.EventName,
		string(event.Source), event.Version, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append entity event: %w", err)
	}
	return nil
}
