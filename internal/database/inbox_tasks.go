package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

const inboxTaskColumns = metaColumns + `, workspace_ref_id, project_ref_id, source,
	big_plan_ref_id, habit_ref_id, chore_ref_id, metric_ref_id, person_ref_id, slack_task_ref_id, email_task_ref_id,
	name, notes, eisen, difficulty, status,
	actionable_date, due_date, accepted_time, working_time, completed_time,
	recurring_timeline, recurring_repeat_index, recurring_gen_right_now`

type inboxTaskRepo struct {
	tx *sql.Tx
}

func (r *inboxTaskRepo) Create(ctx context.Context, task *models.InboxTask) error {
	query := `
		INSERT INTO inbox_tasks (` + inboxTaskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`
	_, err := r.tx.ExecContext(ctx, query, r.writeArgs(task)...)
	if err != nil {
		return fmt.Errorf("failed to create inbox task: %w", err)
	}
	return nil
}

func (r *inboxTaskRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.InboxTask, error) {
	query := `SELECT ` + inboxTaskColumns + ` FROM inbox_tasks WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load inbox task: %w", err)
		}
		return nil, fmt.Errorf("inbox task: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

// Save updates the mutable fields; created_time and source links are
// immutable after creation.
func (r *inboxTaskRepo) Save(ctx context.Context, task *models.InboxTask) error {
	query := `
		UPDATE inbox_tasks
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    project_ref_id = $6, name = $7, notes = $8, eisen = $9, difficulty = $10, status = $11,
		    actionable_date = $12, due_date = $13, accepted_time = $14, working_time = $15, completed_time = $16,
		    recurring_timeline = $17, recurring_repeat_index = $18, recurring_gen_right_now = $19
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		task.RefID, task.Version, task.Archived, task.LastModifiedTime, nullTime(task.ArchivedTime),
		task.ProjectRefID, task.Name, task.Notes, string(task.Eisen), difficultyToNull(task.Difficulty), string(task.Status),
		nullTime(task.ActionableDate), nullTime(task.DueDate),
		nullTime(task.AcceptedTime), nullTime(task.WorkingTime), nullTime(task.CompletedTime),
		nullString(task.RecurringTimeline), nullInt(task.RecurringRepeatIndex), nullTime(task.RecurringGenRightNow),
	)
	if err != nil {
		return fmt.Errorf("failed to save inbox task: %w", err)
	}
	return ensureRowAffected(result, "inbox task")
}

func (r *inboxTaskRepo) Remove(ctx context.Context, refID uuid.UUID) error {
	result, err := r.tx.ExecContext(ctx, `DELETE FROM inbox_tasks WHERE ref_id = $1`, refID)
	if err != nil {
		return fmt.Errorf("failed to remove inbox task: %w", err)
	}
	return ensureRowAffected(result, "inbox task")
}

func (r *inboxTaskRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.InboxTaskFilter) ([]*models.InboxTask, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)
	f.addRefIDs("project_ref_id", filter.FilterProjectRefIDs)
	f.addRefIDs("big_plan_ref_id", filter.FilterBigPlanRefIDs)
	f.addRefIDs("habit_ref_id", filter.FilterHabitRefIDs)
	f.addRefIDs("chore_ref_id", filter.FilterChoreRefIDs)
	f.addRefIDs("metric_ref_id", filter.FilterMetricRefIDs)
	f.addRefIDs("person_ref_id", filter.FilterPersonRefIDs)
	f.addRefIDs("slack_task_ref_id", filter.FilterSlackTaskRefIDs)
	f.addRefIDs("email_task_ref_id", filter.FilterEmailTaskRefIDs)
	if len(filter.FilterSources) > 0 {
		sources := make([]string, len(filter.FilterSources))
		for i, source := range filter.FilterSources {
			sources[i] = string(source)
		}
		f.add("source = ANY($%d)", pq.Array(sources))
	}

	query := `SELECT ` + inboxTaskColumns + ` FROM inbox_tasks WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inbox tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.InboxTask
	for rows.Next() {
		task, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *inboxTaskRepo) writeArgs(task *models.InboxTask) []any {
	return []any{
		task.RefID, task.Version, task.Archived,
		task.CreatedTime, task.LastModifiedTime, nullTime(task.ArchivedTime),
		task.WorkspaceRefID, task.ProjectRefID, string(task.Source),
		nullUUID(task.BigPlanRefID), nullUUID(task.HabitRefID), nullUUID(task.ChoreRefID),
		nullUUID(task.MetricRefID), nullUUID(task.PersonRefID), nullUUID(task.SlackTaskRefID), nullUUID(task.EmailTaskRefID),
		task.Name, task.Notes, string(task.Eisen), difficultyToNull(task.Difficulty), string(task.Status),
		nullTime(task.ActionableDate), nullTime(task.DueDate),
		nullTime(task.AcceptedTime), nullTime(task.WorkingTime), nullTime(task.CompletedTime),
		nullString(task.RecurringTimeline), nullInt(task.RecurringRepeatIndex), nullTime(task.RecurringGenRightNow),
	}
}

func (r *inboxTaskRepo) scan(rows *sql.Rows) (*models.InboxTask, error) {
	task := &models.InboxTask{}
	var archivedTime sql.NullTime
	var bigPlanID, habitID, choreID, metricID, personID, slackTaskID, emailTaskID sql.NullString
	var difficulty, recurringTimeline sql.NullString
	var actionableDate, dueDate, acceptedTime, workingTime, completedTime, genRightNow sql.NullTime
	var repeatIndex sql.NullInt64

	targets := metaScanTargets(&task.EntityMeta, &archivedTime)
	targets = append(targets,
		&task.WorkspaceRefID, &task.ProjectRefID, &task.Source,
		&bigPlanID, &habitID, &choreID, &metricID, &personID, &slackTaskID, &emailTaskID,
		&task.Name, &task.Notes, &task.Eisen, &difficulty, &task.Status,
		&actionableDate, &dueDate, &acceptedTime, &workingTime, &completedTime,
		&recurringTimeline, &repeatIndex, &genRightNow,
	)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan inbox task: %w", err)
	}
	applyArchivedTime(&task.EntityMeta, archivedTime)

	var err error
	if task.BigPlanRefID, err = uuidFromNull(bigPlanID); err != nil {
		return nil, err
	}
	if task.HabitRefID, err = uuidFromNull(habitID); err != nil {
		return nil, err
	}
	if task.ChoreRefID, err = uuidFromNull(choreID); err != nil {
		return nil, err
	}
	if task.MetricRefID, err = uuidFromNull(metricID); err != nil {
		return nil, err
	}
	if task.PersonRefID, err = uuidFromNull(personID); err != nil {
		return nil, err
	}
	if task.SlackTaskRefID, err = uuidFromNull(slackTaskID); err != nil {
		return nil, err
	}
	if task.EmailTaskRefID, err = uuidFromNull(emailTaskID); err != nil {
		return nil, err
	}

	if difficulty.Valid {
		d := models.Difficulty(difficulty.String)
		task.Difficulty = &d
	}
	task.ActionableDate = timeFromNull(actionableDate)
	task.DueDate = timeFromNull(dueDate)
	task.AcceptedTime = timeFromNull(acceptedTime)
	task.WorkingTime = timeFromNull(workingTime)
	task.CompletedTime = timeFromNull(completedTime)
	task.RecurringTimeline = stringFromNull(recurringTimeline)
	task.RecurringRepeatIndex = intFromNull(repeatIndex)
	task.RecurringGenRightNow = timeFromNull(genRightNow)
	return task, nil
}

func difficultyToNull(d *models.Difficulty) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*d), Valid: true}
}
