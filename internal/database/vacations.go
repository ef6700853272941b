package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

const vacationColumns = metaColumns + ", workspace_ref_id, name, start_date, end_date"

type vacationRepo struct {
	tx *sql.Tx
}

func (r *vacationRepo) Create(ctx context.Context, vacation *models.Vacation) error {
	query := `
		INSERT INTO vacations (` + vacationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.tx.ExecContext(ctx, query,
		vacation.RefID, vacation.Version, vacation.Archived,
		vacation.CreatedTime, vacation.LastModifiedTime, nullTime(vacation.ArchivedTime),
		vacation.WorkspaceRefID, vacation.Name, vacation.StartDate, vacation.EndDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create vacation: %w", err)
	}
	return nil
}

func (r *vacationRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Vacation, error) {
	query := `SELECT ` + vacationColumns + ` FROM vacations WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vacation: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load vacation: %w", err)
		}
		return nil, fmt.Errorf("vacation: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *vacationRepo) Save(ctx context.Context, vacation *models.Vacation) error {
	query := `
		UPDATE vacations
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    name = $6, start_date = $7, end_date = $8
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		vacation.RefID, vacation.Version, vacation.Archived, vacation.LastModifiedTime, nullTime(vacation.ArchivedTime),
		vacation.Name, vacation.StartDate, vacation.EndDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save vacation: %w", err)
	}
	return ensureRowAffected(result, "vacation")
}

func (r *vacationRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Vacation, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)

	query := `SELECT ` + vacationColumns + ` FROM vacations WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY start_date`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vacations: %w", err)
	}
	defer rows.Close()

	var vacations []*models.Vacation
	for rows.Next() {
		vacation, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		vacations = append(vacations, vacation)
	}
	return vacations, rows.Err()
}

func (r *vacationRepo) scan(rows *sql.Rows) (*models.Vacation, error) {
	vacation := &models.Vacation{}
	var archivedTime sql.NullTime

	targets := metaScanTargets(&vacation.EntityMeta, &archivedTime)
	targets = append(targets, &vacation.WorkspaceRefID, &vacation.Name, &vacation.StartDate, &vacation.EndDate)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan vacation: %w", err)
	}
	applyArchivedTime(&vacation.EntityMeta, archivedTime)
	return vacation, nil
}
