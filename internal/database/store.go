package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

// Store implements storage.Store on Postgres. Every RunInTx call maps
// onto one database transaction.
type Store struct {
	db *DB
}

// NewStore creates a Postgres-backed store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// RunInTx opens a transaction, runs fn against a unit of work bound to
// it and commits; any error rolls back.
func (s *Store) RunInTx(ctx context.Context, fn func(uow storage.UnitOfWork) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&unitOfWork{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type unitOfWork struct {
	tx *sql.Tx
}

func (u *unitOfWork) Workspaces() storage.WorkspaceRepository      { return &workspaceRepo{tx: u.tx} }
func (u *unitOfWork) Projects() storage.ProjectRepository          { return &projectRepo{tx: u.tx} }
func (u *unitOfWork) InboxTasks() storage.InboxTaskRepository      { return &inboxTaskRepo{tx: u.tx} }
func (u *unitOfWork) BigPlans() storage.BigPlanRepository          { return &bigPlanRepo{tx: u.tx} }
func (u *unitOfWork) Habits() storage.HabitRepository              { return &habitRepo{tx: u.tx} }
func (u *unitOfWork) Chores() storage.ChoreRepository              { return &choreRepo{tx: u.tx} }
func (u *unitOfWork) Metrics() storage.MetricRepository            { return &metricRepo{tx: u.tx} }
func (u *unitOfWork) MetricEntries() storage.MetricEntryRepository { return &metricEntryRepo{tx: u.tx} }
func (u *unitOfWork) Persons() storage.PersonRepository            { return &personRepo{tx: u.tx} }
func (u *unitOfWork) SlackTasks() storage.SlackTaskRepository      { return &slackTaskRepo{tx: u.tx} }
func (u *unitOfWork) EmailTasks() storage.EmailTaskRepository      { return &emailTaskRepo{tx: u.tx} }
func (u *unitOfWork) Vacations() storage.VacationRepository        { return &vacationRepo{tx: u.tx} }
func (u *unitOfWork) EntityEvents() storage.EntityEventRepository  { return &eventRepo{tx: u.tx} }

// metaColumns is the shared metadata column list, in scan order.
const metaColumns = "ref_id, version, archived, created_time, last_modified_time, archived_time"

// metaScanTargets returns scan destinations for the metadata columns.
// archivedTime must be copied into the entity after scanning.
func metaScanTargets(meta *models.EntityMeta, archivedTime *sql.NullTime) []any {
	return []any{&meta.RefID, &meta.Version, &meta.Archived, &meta.CreatedTime, &meta.LastModifiedTime, archivedTime}
}

func applyArchivedTime(meta *models.EntityMeta, archivedTime sql.NullTime) {
	if archivedTime.Valid {
		t := archivedTime.Time
		meta.ArchivedTime = &t
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timeFromNull(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time
	return &out
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func uuidFromNull(s sql.NullString) (*uuid.UUID, error) {
	if !s.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return nil, fmt.Errorf("invalid uuid %q: %w", s.String, err)
	}
	return &id, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringFromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	out := s.String
	return &out
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func intFromNull(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	out := int(i.Int64)
	return &out
}

// isUniqueViolation reports whether the error is a Postgres unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// uuidArray converts ref ids for use with "= ANY($n::uuid[])".
func uuidArray(ids []uuid.UUID) any {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}

// queryFilter accumulates dynamic WHERE clauses in the repositories'
// FindAll queries. Placeholders continue from the base arguments it is
// seeded with.
type queryFilter struct {
	clauses []string
	args    []any
}

func newQueryFilter(baseArgs ...any) *queryFilter {
	return &queryFilter{args: baseArgs}
}

func (f *queryFilter) add(format string, arg any) {
	f.args = append(f.args, arg)
	f.clauses = append(f.clauses, fmt.Sprintf(format, len(f.args)))
}

func (f *queryFilter) addRefIDs(column string, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	f.add(column+" = ANY($%d::uuid[])", uuidArray(ids))
}

func (f *queryFilter) where() string {
	out := ""
	for _, clause := range f.clauses {
		out += " AND " + clause
	}
	return out
}
