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

const personColumns = metaColumns + ", workspace_ref_id, name, relationship, catch_up_params, birthday_day, birthday_month"

type personRepo struct {
	tx *sql.Tx
}

func (r *personRepo) Create(ctx context.Context, person *models.Person) error {
	params, err := marshalOptionalParams(person.CatchUpParams)
	if err != nil {
		return err
	}

	var birthdayDay, birthdayMonth sql.NullInt64
	if person.Birthday != nil {
		birthdayDay = sql.NullInt64{Int64: int64(person.Birthday.Day), Valid: true}
		birthdayMonth = sql.NullInt64{Int64: int64(person.Birthday.Month), Valid: true}
	}

	query := `
		INSERT INTO persons (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.tx.ExecContext(ctx, query,
		person.RefID, person.Version, person.Archived,
		person.CreatedTime, person.LastModifiedTime, nullTime(person.ArchivedTime),
		person.WorkspaceRefID, person.Name, string(person.Relationship),
		params, birthdayDay, birthdayMonth,
	)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

func (r *personRepo) Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE ref_id = $1`
	if !allowArchived {
		query += ` AND NOT archived`
	}

	rows, err := r.tx.QueryContext(ctx, query, refID)
	if err != nil {
		return nil, fmt.Errorf("failed to load person: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to load person: %w", err)
		}
		return nil, fmt.Errorf("person: %w", models.ErrNotFound)
	}
	return r.scan(rows)
}

func (r *personRepo) Save(ctx context.Context, person *models.Person) error {
	params, err := marshalOptionalParams(person.CatchUpParams)
	if err != nil {
		return err
	}

	var birthdayDay, birthdayMonth sql.NullInt64
	if person.Birthday != nil {
		birthdayDay = sql.NullInt64{Int64: int64(person.Birthday.Day), Valid: true}
		birthdayMonth = sql.NullInt64{Int64: int64(person.Birthday.Month), Valid: true}
	}

	query := `
		UPDATE persons
		SET version = $2, archived = $3, last_modified_time = $4, archived_time = $5,
		    name = $6, relationship = $7, catch_up_params = $8, birthday_day = $9, birthday_month = $10
		WHERE ref_id = $1
	`
	result, err := r.tx.ExecContext(ctx, query,
		person.RefID, person.Version, person.Archived, person.LastModifiedTime, nullTime(person.ArchivedTime),
		person.Name, string(person.Relationship), params, birthdayDay, birthdayMonth,
	)
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}
	return ensureRowAffected(result, "person")
}

func (r *personRepo) FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Person, error) {
	f := newQueryFilter(workspaceRefID)
	if !filter.AllowArchived {
		f.clauses = append(f.clauses, "NOT archived")
	}
	f.addRefIDs("ref_id", filter.FilterRefIDs)

	query := `SELECT ` + personColumns + ` FROM persons WHERE workspace_ref_id = $1` + f.where() + ` ORDER BY created_time`
	rows, err := r.tx.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []*models.Person
	for rows.Next() {
		person, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}
	return persons, rows.Err()
}

func (r *personRepo) scan(rows *sql.Rows) (*models.Person, error) {
	person := &models.Person{}
	var archivedTime sql.NullTime
	var params []byte
	var birthdayDay, birthdayMonth sql.NullInt64

	targets := metaScanTargets(&person.EntityMeta, &archivedTime)
	targets = append(targets, &person.WorkspaceRefID, &person.Name, &person.Relationship,
		&params, &birthdayDay, &birthdayMonth)
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan person: %w", err)
	}
	applyArchivedTime(&person.EntityMeta, archivedTime)

	if len(params) > 0 {
		person.CatchUpParams = &models.RecurringTaskGenParams{}
		if err := json.Unmarshal(params, person.CatchUpParams); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catch-up params: %w", err)
		}
	}
	if birthdayDay.Valid && birthdayMonth.Valid {
		person.Birthday = &models.PersonBirthday{Day: int(birthdayDay.Int64), Month: int(birthdayMonth.Int64)}
	}
	return person, nil
}
