package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

const projectColumns = metaColumns + ", workspace_ref_id, key, name"

type projectRepo struct {
	tx *sql.Tx
}

func (r *projectRepo) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.tx.ExecContext(ctx, query,
		project.RefID, project.Version, project.Archived,
		project.CreatedTime, project.LastModifiedTime, nullTime(project.ArchivedTime),
		project.WorkspaceRefID, project.Key, project.Name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("project with key %q already exists", project.Key)
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *projectRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}
	return r.scanOne(r.tx.QueryRowContext(ctx, query, refID))
}

func (r *projectRepo) LoadByKey(ctx context.Context, workspaceRefID uuid.UUID, key string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE workspace_ref_id = $1 AND key = $2 AND NOT archived`
	return r.scanOne(r.tx.QueryRowContext(ctx, query, workspaceRefID, key))
}

func (r *projectRepo) Save(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5, key = $6, name = $7
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		project.RefID, project.Version, project.Archived,
		project.LastModifiedTime, nullTime(project.ArchivedTime),
		project.Key, project.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return ensureRowAffected(result, "project")
}

func (r *projectRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Project, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)

	query := `SELECT ` + projectColumns + ` FROM projects WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *projectRepo) scanOne(row *sql.Row) (*models.Project, error) {
	project := &models.Project{}
	var archivedTime sql.NullTime
	targets := metaScanTargets(&project.EntityMeta, &archivedTime)
	targets = append(targets, &project.WorkspaceRefID, &project.Key, &project.Name)
	if err := row.Scan(targets...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	applyArchivedTime(&project.EntityMeta, archivedTime)
	return project, nil
}

func (r *projectRepo) scan(rows *sql.Rows) (*models.Project, error) {
	project := &models.Project{}
	var archivedTime sql.NullTime
	targets := metaScanTargets(&project.EntityMeta, &archivedTime)
	targets = append(targets, &project.WorkspaceRefID, &project.Key, &project.Name)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	applyArchivedTime(&project.EntityMeta, archivedTime)
	return project, nil
}
