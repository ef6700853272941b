package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/timeline"
)

const habitColumns = metaColumns + ", workspace_ref_id, project_ref_id, name, period, gen_params, suspended, repeats_in_period_count"

type habitRepo struct {
	tx *sql.Tx
}

func (r *habitRepo) Create(ctx context.Context, habit *models.Habit) error {
	params, err := json.Marshal(habit.GenParams)
	if err != nil {
		return fmt.Errorf("failed to marshal gen params: %w", err)
	}

	query := `
		INSERT INTO habits (` + habitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.tx.ExecContext(ctx, query,
		habit.RefID, habit.Version, habit.Archived,
		habit.CreatedTime, habit.LastModifiedTime, nullTime(habit.ArchivedTime),
		habit.WorkspaceRefID, habit.ProjectRefID, habit.Name,
		string(habit.GenParams.Period), params, habit.Suspended, nullInt(habit.RepeatsInPeriodCount),
	)
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

func (r *habitRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habit: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load habit: %w", err)
		}
		return nil, fmt.Errorf("habit: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *habitRepo) Save(ctx context.Context, habit *models.Habit) error {
	params, err := json.Marshal(habit.GenParams)
	if err != nil {
		return fmt.Errorf("failed to marshal gen params: %w", err)
	}

	query := `
		UPDATE habits
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    name = $6, period = $7, gen_params = $8, suspended = $9, repeats_in_period_count = $10
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		habit.RefID, habit.Version, habit.Archived, habit.LastModifiedTime, nullTime(habit.ArchivedTime),
		habit.Name, string(habit.GenParams.Period), params, habit.Suspended, nullInt(habit.RepeatsInPeriodCount),
	)
	if err != nil {
		return fmt.Errorf("failed to save habit: %w", err)
	}
	return ensureRowAffected(result, "habit")
}

func (r *habitRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Habit, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)
	f.addRefIDs("project_ref_id", filter.FilterProjectRefIDs)
	addPeriodFilter(f, filter.FilterPeriods)

	query := `SELECT ` + habitColumns + ` FROM habits WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		habit, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (r *habitRepo) scan(rows *sql.Rows) (*models.Habit, error) {
	habit := &models.Habit{}
	var archivedTime sql.NullTime
	var period string
	var params []byte
	var repeats sql.NullInt64

	targets := metaScanTargets(&habit.EntityMeta, &archivedTime)
	targets = append(targets, &habit.WorkspaceRefID, &habit.ProjectRefID, &habit.Name,
		&period, &params, &habit.Suspended, &repeats)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan habit: %w", err)
	}
	applyArchivedTime(&habit.EntityMeta, archivedTime)

	if err := json.Unmarshal(params, &habit.GenParams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gen params: %w", err)
	}
	habit.RepeatsInPeriodCount = intFromNull(repeats)
	return habit, nil
}

func addPeriodFilter(f *queryFilter, periods []timeline.Period) {
	if len(periods) == 0 {
		return
	}
	strs := make([]string, len(periods))
	for i, p := range periods {
		strs[i] = string(p)
	}
	f.add("period = ANY($%d)", pq.Array(strs))
}
