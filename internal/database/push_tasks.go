package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

const slackTaskColumns = metaColumns + ", workspace_ref_id, slack_user, channel, message, generation_extra_info, has_generated_task"

type slackTaskRepo struct {
	tx *sql.Tx
}

func (r *slackTaskRepo) Create(ctx context.Context, task *models.SlackTask) error {
	query := `
		INSERT INTO slack_tasks (` + slackTaskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.tx.ExecContext(ctx, query,
		task.RefID, task.Version, task.Archived,
		task.CreatedTime, task.LastModifiedTime, nullTime(task.ArchivedTime),
		task.WorkspaceRefID, task.User, nullString(task.Channel),
		task.Message, task.GenerationExtraInfo, task.HasGeneratedTask,
	)
	if err != nil {
		return fmt.Errorf("failed to create slack task: %w", err)
	}
	return nil
}

func (r *slackTaskRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.SlackTask, error) {
	query := `SELECT ` + slackTaskColumns + ` FROM slack_tasks WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slack task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load slack task: %w", err)
		}
		return nil, fmt.Errorf("slack task: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *slackTaskRepo) Save(ctx context.Context, task *models.SlackTask) error {
	query := `
		UPDATE slack_tasks
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    message = $6, generation_extra_info = $7, has_generated_task = $8
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		task.RefID, task.Version, task.Archived, task.LastModifiedTime, nullTime(task.ArchivedTime),
		task.Message, task.GenerationExtraInfo, task.HasGeneratedTask,
	)
	if err != nil {
		return fmt.Errorf("failed to save slack task: %w", err)
	}
	return ensureRowAffected(result, "slack task")
}

func (r *slackTaskRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.SlackTask, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)

	query := `SELECT ` + slackTaskColumns + ` FROM slack_tasks WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slack tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.SlackTask
	for rows.Next() {
		task, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *slackTaskRepo) scan(rows *sql.Rows) (*models.SlackTask, error) {
	task := &models.SlackTask{}
	var archivedTime sql.NullTime
	var channel sql.NullString

	targets := metaScanTargets(&task.EntityMeta, &archivedTime)
	targets = append(targets, &task.WorkspaceRefID, &task.User, &channel,
		&task.Message, &task.GenerationExtraInfo, &task.HasGeneratedTask)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan slack task: %w", err)
	}
	applyArchivedTime(&task.EntityMeta, archivedTime)

	task.Channel = stringFromNull(channel)
	return task, nil
}

const emailTaskColumns = metaColumns + ", workspace_ref_id, from_address, from_name, to_address, subject, body, generation_extra_info, has_generated_task"

type emailTaskRepo struct {
	tx *sql.Tx
}

func (r *emailTaskRepo) Create(ctx context.Context, task *models.EmailTask) error {
	query := `
		INSERT INTO email_tasks (` + emailTaskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.tx.ExecContext(ctx, query,
		task.RefID, task.Version, task.Archived,
		task.CreatedTime, task.LastModifiedTime, nullTime(task.ArchivedTime),
		task.WorkspaceRefID, task.FromAddress, task.FromName, task.ToAddress,
		task.Subject, task.Body, task.GenerationExtraInfo, task.HasGeneratedTask,
	)
	if err != nil {
		return fmt.Errorf("failed to create email task: %w", err)
	}
	return nil
}

func (r *emailTaskRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.EmailTask, error) {
	query := `SELECT ` + emailTaskColumns + ` FROM email_tasks WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load email task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load email task: %w", err)
		}
		return nil, fmt.Errorf("email task: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *emailTaskRepo) Save(ctx context.Context, task *models.EmailTask) error {
	query := `
		UPDATE email_tasks
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    subject = $6, body = $7, generation_extra_info = $8, has_generated_task = $9
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		task.RefID, task.Version, task.Archived, task.LastModifiedTime, nullTime(task.ArchivedTime),
		task.Subject, task.Body, task.GenerationExtraInfo, task.HasGeneratedTask,
	)
	if err != nil {
		return fmt.Errorf("failed to save email task: %w", err)
	}
	return ensureRowAffected(result, "email task")
}

func (r *emailTaskRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.EmailTask, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)

	query := `SELECT ` + emailTaskColumns + ` FROM email_tasks WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query email tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.EmailTask
	for rows.Next() {
		task, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *emailTaskRepo) scan(rows *sql.Rows) (*models.EmailTask, error) {
	task := &models.EmailTask{}
	var archivedTime sql.NullTime

	targets := metaScanTargets(&task.EntityMeta, &archivedTime)
	targets = append(targets, &task.WorkspaceRefID, &task.FromAddress, &task.FromName, &task.ToAddress,
		&task.Subject, &task.Body, &task.GenerationExtraInfo, &task.HasGeneratedTask)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan email task: %w", err)
	}
	applyArchivedTime(&task.EntityMeta, archivedTime)
	return task, nil
}
