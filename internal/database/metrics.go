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

const metricColumns = metaColumns + ", workspace_ref_id, key, name, unit, collection_project_ref_id, collection_params"

type metricRepo struct {
	tx *sql.Tx
}

func (r *metricRepo) Create(ctx context.Context, metric *models.Metric) error {
	params, err := marshalOptionalParams(metric.CollectionParams)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO metrics (` + metricColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.tx.ExecContext(ctx, query,
		metric.RefID, metric.Version, metric.Archived,
		metric.CreatedTime, metric.LastModifiedTime, nullTime(metric.ArchivedTime),
		metric.WorkspaceRefID, metric.Key, metric.Name,
		nullString(metric.Unit), nullUUID(metric.CollectionProjectRefID), params,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("metric with key %q already exists", metric.Key)
		}
		return fmt.Errorf("failed to create metric: %w", err)
	}
	return nil
}

func (r *metricRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Metric, error) {
	query := `SELECT ` + metricColumns + ` FROM metrics WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}
	return r.loadOne(ctx, query, refID)
}

func (r *metricRepo) LoadByKey(ctx context.Context, workspaceRefID uuid.UUID, key string) (*models.Metric, error) {
	query := `SELECT ` + metricColumns + ` FROM metrics WHERE workspace_ref_id = $1 AND key = $2 AND NOT archived`
	return r.loadOne(ctx, query, workspaceRefID, key)
}

func (r *metricRepo) loadOne(ctx context.Context, query string, args ...any) (*models.Metric, error) {
	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load metric: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load metric: %w", err)
		}
		return nil, fmt.Errorf("metric: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *metricRepo) Save(ctx context.Context, metric *models.Metric) error {
	params, err := marshalOptionalParams(metric.CollectionParams)
	if err != nil {
		return err
	}

	query := `
		UPDATE metrics
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    name = $6, unit = $7, collection_project_ref_id = $8, collection_params = $9
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		metric.RefID, metric.Version, metric.Archived, metric.LastModifiedTime, nullTime(metric.ArchivedTime),
		metric.Name, nullString(metric.Unit), nullUUID(metric.CollectionProjectRefID), params,
	)
	if err != nil {
		return fmt.Errorf("failed to save metric: %w", err)
	}
	return ensureRowAffected(result, "metric")
}

func (r *metricRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Metric, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)

	query := `SELECT ` + metricColumns + ` FROM metrics WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []*models.Metric
	for rows.Next() {
		metric, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}
	return metrics, rows.Err()
}

func (r *metricRepo) scan(rows *sql.Rows) (*models.Metric, error) {
	metric := &models.Metric{}
	var archivedTime sql.NullTime
	var unit sql.NullString
	var collectionProjectID sql.NullString
	var params []byte

	targets := metaScanTargets(&metric.EntityMeta, &archivedTime)
	targets = append(targets, &metric.WorkspaceRefID, &metric.Key, &metric.Name,
		&unit, &collectionProjectID, &params)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan metric: %w", err)
	}
	applyArchivedTime(&metric.EntityMeta, archivedTime)

	metric.Unit = stringFromNull(unit)
	var err error
	if metric.CollectionProjectRefID, err = uuidFromNull(collectionProjectID); err != nil {
		return nil, err
	}
	if len(params) > 0 {
		metric.CollectionParams = &models.RecurringTaskGenParams{}
		if err := json.Unmarshal(params, metric.CollectionParams); err != nil {
			return nil, fmt.Errorf("failed to unmarshal collection params: %w", err)
		}
	}
	return metric, nil
}

func marshalOptionalParams(params *models.RecurringTaskGenParams) (any, error) {
	if params == nil {
		return nil, nil
	}
	out, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal collection params: %w", err)
	}
	return out, nil
}

const metricEntryColumns = metaColumns + ", metric_ref_id, collection_time, value, notes"

type metricEntryRepo struct {
	tx *sql.Tx
}

func (r *metricEntryRepo) Create(ctx context.Context, entry *models.MetricEntry) error {
	query := `
		INSERT INTO metric_entries (` + metricEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.tx.ExecContext(ctx, query,
		entry.RefID, entry.Version, entry.Archived,
		entry.CreatedTime, entry.LastModifiedTime, nullTime(entry.ArchivedTime),
		entry.MetricRefID, entry.CollectionTime, entry.Value, entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create metric entry: %w", err)
	}
	return nil
}

func (r *metricEntryRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.MetricEntry, error) {
	query := `SELECT ` + metricEntryColumns + ` FROM metric_entries WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load metric entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load metric entry: %w", err)
		}
		return nil, fmt.Errorf("metric entry: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *metricEntryRepo) Save(ctx context.Context, entry *models.MetricEntry) error {
	query := `
		UPDATE metric_entries
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    collection_time = $6, value = $7, notes = $8
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		entry.RefID, entry.Version, entry.Archived, entry.LastModifiedTime, nullTime(entry.ArchivedTime),
		entry.CollectionTime, entry.Value, entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save metric entry: %w", err)
	}
	return ensureRowAffected(result, "metric entry")
}

func (r *metricEntryRepo) LoadByParent(ctx context.Context, metricRefID uuid.UUID, allowArchived bool) ([]*models.MetricEntry, error) {
	query := `SELECT ` + metricEntryColumns + ` FROM metric_entries WHERE metric_ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}
	query += ` ORDER BY collection_time`

	rows, err := r.tx.QueryContext(ctx, query, metricRefID)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.MetricEntry
	for rows.Next() {
		entry, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *metricEntryRepo) scan(rows *sql.Rows) (*models.MetricEntry, error) {
	entry := &models.MetricEntry{}
	var archivedTime sql.NullTime

	targets := metaScanTargets(&entry.EntityMeta, &archivedTime)
	targets = append(targets, &entry.MetricRefID, &entry.CollectionTime, &entry.Value, &entry.Notes)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan metric entry: %w", err)
	}
	applyArchivedTime(&entry.EntityMeta, archivedTime)
	return entry, nil
}
