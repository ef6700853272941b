// Package storage defines the persistence contract the engines depend
// on: per-entity repositories grouped under a transactional unit of
// work. The Postgres implementation lives in internal/database; an
// in-memory one for tests lives in memstore.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/timeline"
)

// InboxTaskFilter narrows FindAll queries over inbox tasks. Empty
// slices mean "no constraint".
type InboxTaskFilter struct {
	AllowArchived         bool
	FilterRefIDs          []uuid.UUID
	FilterProjectRefIDs   []uuid.UUID
	FilterSources         []models.InboxTaskSource
	FilterBigPlanRefIDs   []uuid.UUID
	FilterHabitRefIDs     []uuid.UUID
	FilterChoreRefIDs     []uuid.UUID
	FilterMetricRefIDs    []uuid.UUID
	FilterPersonRefIDs    []uuid.UUID
	FilterSlackTaskRefIDs []uuid.UUID
	FilterEmailTaskRefIDs []uuid.UUID
}

// EntityFilter narrows FindAll queries over recurring sources and
// projects.
type EntityFilter struct {
	AllowArchived       bool
	FilterRefIDs        []uuid.UUID
	FilterProjectRefIDs []uuid.UUID
	FilterPeriods       []timeline.Period
}

// WorkspaceRepository stores the tenant root.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *models.Workspace) error
	Load(ctx context.Context, refID uuid.UUID) (*models.Workspace, error)
	LoadDefault(ctx context.Context) (*models.Workspace, error)
	Save(ctx context.Context, workspace *models.Workspace) error
}

// ProjectRepository stores projects by workspace.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Project, error)
	LoadByKey(ctx context.Context, workspaceRefID uuid.UUID, key string) (*models.Project, error)
	Save(ctx context.Context, project *models.Project) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.Project, error)
}

// InboxTaskRepository stores inbox tasks.
type InboxTaskRepository interface {
	Create(ctx context.Context, task *models.InboxTask) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.InboxTask, error)
	Save(ctx context.Context, task *models.InboxTask) error
	Remove(ctx context.Context, refID uuid.UUID) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter InboxTaskFilter) ([]*models.InboxTask, error)
}

// BigPlanRepository stores big plans.
type BigPlanRepository interface {
	Create(ctx context.Context, plan *models.BigPlan) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.BigPlan, error)
	Save(ctx context.Context, plan *models.BigPlan) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.BigPlan, error)
}

// HabitRepository stores habits.
type HabitRepository interface {
	Create(ctx context.Context, habit *models.Habit) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Habit, error)
	Save(ctx context.Context, habit *models.Habit) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.Habit, error)
}

// ChoreRepository stores chores.
type ChoreRepository interface {
	Create(ctx context.Context, chore *models.Chore) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Chore, error)
	Save(ctx context.Context, chore *models.Chore) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.Chore, error)
}

// MetricRepository stores metrics.
type MetricRepository interface {
	Create(ctx context.Context, metric *models.Metric) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Metric, error)
	LoadByKey(ctx context.Context, workspaceRefID uuid.UUID, key string) (*models.Metric, error)
	Save(ctx context.Context, metric *models.Metric) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.Metric, error)
}

// MetricEntryRepository stores metric entries by parent metric.
type MetricEntryRepository interface {
	Create(ctx context.Context, entry *models.MetricEntry) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.MetricEntry, error)
	Save(ctx context.Context, entry *models.MetricEntry) error
	LoadByParent(ctx context.Context, metricRefID uuid.UUID, allowArchived bool) ([]*models.MetricEntry, error)
}

// PersonRepository stores persons.
type PersonRepository interface {
	Create(ctx context.Context, person *models.Person) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Person, error)
	Save(ctx context.Context, person *models.Person) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.Person, error)
}

// SlackTaskRepository stores slack push tasks.
type SlackTaskRepository interface {
	Create(ctx context.Context, task *models.SlackTask) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.SlackTask, error)
	Save(ctx context.Context, task *models.SlackTask) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.SlackTask, error)
}

// EmailTaskRepository stores email push tasks.
type EmailTaskRepository interface {
	Create(ctx context.Context, task *models.EmailTask) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.EmailTask, error)
	Save(ctx context.Context, task *models.EmailTask) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.EmailTask, error)
}

// VacationRepository stores vacations.
type VacationRepository interface {
	Create(ctx context.Context, vacation *models.Vacation) error
	Load(ctx context.Context, refID uuid.UUID, allowArchived bool) (*models.Vacation, error)
	Save(ctx context.Context, vacation *models.Vacation) error
	FindAll(ctx context.Context, workspaceRefID uuid.UUID, filter EntityFilter) ([]*models.Vacation, error)
}

// EntityEventRepository stores the append-only audit log.
type EntityEventRepository interface {
	Append(ctx context.Context, event *models.EntityEvent) error
}

// UnitOfWork exposes every repository inside one transaction boundary.
type UnitOfWork interface {
	Workspaces() WorkspaceRepository
	Projects() ProjectRepository
	InboxTasks() InboxTaskRepository
	BigPlans() BigPlanRepository
	Habits() HabitRepository
	Chores() ChoreRepository
	Metrics() MetricRepository
	MetricEntries() MetricEntryRepository
	Persons() PersonRepository
	SlackTasks() SlackTaskRepository
	EmailTasks() EmailTaskRepository
	Vacations() VacationRepository
	EntityEvents() EntityEventRepository
}

// Store opens unit-of-work scopes. The function's error rolls the
// transaction back; nil commits it.
type Store interface {
	RunInTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}
