package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

const bigPlanColumns = metaColumns + `, workspace_ref_id, project_ref_id, name, status,
	actionable_date, due_date, accepted_time, working_time, completed_time`

type bigPlanRepo struct {
	tx *sql.Tx
}

func (r *bigPlanRepo) Create(ctx context.Context, plan *models.BigPlan) error {
	query := `
		INSERT INTO big_plans (` + bigPlanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.tx.ExecContext(ctx, query,
		plan.RefID, plan.Version, plan.Archived,
		plan.CreatedTime, plan.LastModifiedTime, nullTime(plan.ArchivedTime),
		plan.WorkspaceRefID, plan.ProjectRefID, plan.Name, string(plan.Status),
		nullTime(plan.ActionableDate), nullTime(plan.DueDate),
		nullTime(plan.AcceptedTime), nullTime(plan.WorkingTime), nullTime(plan.CompletedTime),
	)
	if err != nil {
		return fmt.Errorf("failed to create big plan: %w", err)
	}
	return nil
}

func (r *bigPlanRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.BigPlan, error) {
	query := `SELECT ` + bigPlanColumns + ` FROM big_plans WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load big plan: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load big plan: %w", err)
		}
		return nil, fmt.Errorf("big plan: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *bigPlanRepo) Save(ctx context.Context, plan *models.BigPlan) error {
	query := `
		UPDATE big_plans
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    project_ref_id = $6, name = $7, status = $8,
		    actionable_date = $9, due_date = $10, accepted_time = $11, working_time = $12, completed_time = $13
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		plan.RefID, plan.Version, plan.Archived, plan.LastModifiedTime, nullTime(plan.ArchivedTime),
		plan.ProjectRefID, plan.Name, string(plan.Status),
		nullTime(plan.ActionableDate), nullTime(plan.DueDate),
		nullTime(plan.AcceptedTime), nullTime(plan.WorkingTime), nullTime(plan.CompletedTime),
	)
	if err != nil {
		return fmt.Errorf("failed to save big plan: %w", err)
	}
	return ensureRowAffected(result, "big plan")
}

func (r *bigPlanRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.BigPlan, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)
	f.addRefIDs("project_ref_id", filter.FilterProjectRefIDs)

	query := `SELECT ` + bigPlanColumns + ` FROM big_plans WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query big plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.BigPlan
	for rows.Next() {
		plan, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (r *bigPlanRepo) scan(rows *sql.Rows) (*models.BigPlan, error) {
	plan := &models.BigPlan{}
	var archivedTime sql.NullTime
	var actionableDate, dueDate, acceptedTime, workingTime, completedTime sql.NullTime

	targets := metaScanTargets(&plan.EntityMeta, &archivedTime)
	targets = append(targets, &plan.WorkspaceRefID, &plan.ProjectRefID, &plan.Name, &plan.Status,
		&actionableDate, &dueDate, &acceptedTime, &workingTime, &completedTime)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan big plan: %w", err)
	}
	applyArchivedTime(&plan.EntityMeta, archivedTime)

	plan.ActionableDate = timeFromNull(actionableDate)
	plan.DueDate = timeFromNull(dueDate)
	plan.AcceptedTime = timeFromNull(acceptedTime)
	plan.WorkingTime = timeFromNull(workingTime)
	plan.CompletedTime = timeFromNull(completedTime)
	return plan, nil
}
