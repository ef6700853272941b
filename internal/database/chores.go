package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

const choreColumns = metaColumns + ", workspace_ref_id, project_ref_id, name, period, gen_params, suspended, must_do, start_at_date, end_at_date"

type choreRepo struct {
	tx *sql.Tx
}

func (r *choreRepo) Create(ctx context.Context, chore *models.Chore) error {
	params, err := json.Marshal(chore.GenParams)
	if err != nil {
		return fmt.Errorf("failed to marshal gen params: %w", err)
	}

	query := `
		INSERT INTO chores (` + choreColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.tx.ExecContext(ctx, query,
		chore.RefID, chore.Version, chore.Archived,
		chore.CreatedTime, chore.LastModifiedTime, nullTime(chore.ArchivedTime),
		chore.WorkspaceRefID, chore.ProjectRefID, chore.Name,
		string(chore.GenParams.Period), params, chore.Suspended, chore.MustDo,
		nullTime(chore.StartAtDate), nullTime(chore.EndAtDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create chore: %w", err)
	}
	return nil
}

func (r *choreRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Chore, error) {
	query := `SELECT ` + choreColumns + ` FROM chores WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chore: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load chore: %w", err)
		}
		return nil, fmt.Errorf("chore: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *choreRepo) Save(ctx context.Context, chore *models.Chore) error {
	params, err := json.Marshal(chore.GenParams)
	if err != nil {
		return fmt.Errorf("failed to marshal gen params: %w", err)
	}

	query := `
		UPDATE chores
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    name = $6, period = $7, gen_params = $8, suspended = $9, must_do = $10,
		    start_at_date = $11, end_at_date = $12
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		chore.RefID, chore.Version, chore.Archived, chore.LastModifiedTime, nullTime(chore.ArchivedTime),
		chore.Name, string(chore.GenParams.Period), params, chore.Suspended, chore.MustDo,
		nullTime(chore.StartAtDate), nullTime(chore.EndAtDate),
	)
	if err != nil {
		return fmt.Errorf("failed to save chore: %w", err)
	}
	return ensureRowAffected(result, "chore")
}

func (r *choreRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Chore, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)
	f.addRefIDs("project_ref_id", filter.FilterProjectRefIDs)
	addPeriodFilter(f, filter.FilterPeriods)

	query := `SELECT ` + choreColumns + ` FROM chores WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chores: %w", err)
	}
	defer rows.Close()

	var chores []*models.Chore
	for rows.Next() {
		chore, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		chores = append(chores, chore)
	}
	return chores, rows.Err()
}

func (r *choreRepo) scan(rows *sql.Rows) (*models.Chore, error) {
	chore := &models.Chore{}
	var archivedTime sql.NullTime
	var period string
	var params []byte
	var startAt, endAt sql.NullTime

	targets := metaScanTargets(&chore.EntityMeta, &archivedTime)
	targets = append(targets, &chore.WorkspaceRefID, &chore.ProjectRefID, &chore.Name,
		&period, &params, &chore.Suspended, &chore.MustDo, &startAt, &endAt)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan chore: %w", err)
	}
	applyArchivedTime(&chore.EntityMeta, archivedTime)

	if err := json.Unmarshal(params, &chore.GenParams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gen params: %w", err)
	}
	chore.StartAtDate = timeFromNull(startAt)
	chore.EndAtDate = timeFromNull(endAt)
	return chore, nil
}
