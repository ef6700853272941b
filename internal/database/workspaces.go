package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
)

type workspaceRepo struct {
	tx *sql.Tx
}

func (r *workspaceRepo) Create(ctx context.Context, workspace *models.Workspace) error {
	flags, err := json.Marshal(workspace.FeatureFlags)
	if err != nil {
		return fmt.Errorf("failed to marshal feature flags: %w", err)
	}

	query := `
		INSERT INTO workspaces (` + metaColumns + `, name, timezone, default_project_ref_id, feature_flags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.tx.ExecContext(ctx, query,
		workspace.RefID, workspace.Version, workspace.Archived,
		workspace.CreatedTime, workspace.LastModifiedTime, nullTime(workspace.ArchivedTime),
		workspace.Name, workspace.Timezone, workspace.DefaultProjectRefID, flags,
	)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

func (r *workspaceRepo) Load(ctx context.Context, refID uuid.UUID) (*models.Workspace, error) {
	query := `
		SELECT ` + metaColumns + `, name, timezone, default_project_ref_id, feature_flags
		FROM workspaces
		WHERE ref_id = $1
	`
	return r.scanOne(r.tx.QueryRowContext(ctx, query, refID))
}

func (r *workspaceRepo) LoadDefault(ctx context.Context) (*models.Workspace, error) {
	query := `
		SELECT ` + metaColumns + `, name, timezone, default_project_ref_id, feature_flags
		FROM workspaces
		ORDER BY created_time
		LIMIT 1
	`
	return r.scanOne(r.tx.QueryRowContext(ctx, query))
}

func (r *workspaceRepo) Save(ctx context.Context, workspace *models.Workspace) error {
	flags, err := json.Marshal(workspace.FeatureFlags)
	if err != nil {
		return fmt.Errorf("failed to marshal feature flags: %w", err)
	}

	query := `
		UPDATE workspaces
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    name = $6, timezone = $7, default_project_ref_id = $8, feature_flags = $9
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		workspace.RefID, workspace.Version, workspace.Archived,
		workspace.LastModifiedTime, nullTime(workspace.ArchivedTime),
		workspace.Name, workspace.Timezone, workspace.DefaultProjectRefID, flags,
	)
	if err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return ensureRowAffected(result, "workspace")
}

func (r *workspaceRepo) scanOne(row *sql.Row) (*models.Workspace, error) {
	workspace := &models.Workspace{}
	var archivedTime sql.NullTime
	var flags []byte

	targets := metaScanTargets(&workspace.EntityMeta, &archivedTime)
	targets = append(targets, &workspace.Name, &workspace.Timezone, &workspace.DefaultProjectRefID, &flags)
	if err := row.Scan(targets...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("workspace: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	applyArchivedTime(&workspace.EntityMeta, archivedTime)

	if err := json.Unmarshal(flags, &workspace.FeatureFlags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature flags: %w", err)
	}
	return workspace, nil
}

// ensureRowAffected maps zero-row updates and deletes to not-found.
func ensureRowAffected(result sql.Result, kind string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", kind, models.ErrNotFound)
	}
	return nil
}
