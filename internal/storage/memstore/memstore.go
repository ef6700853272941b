// Package memstore is an in-memory storage.Store used by engine and
// handler tests. It honors the archived-visibility rules but does not
// attempt transactional rollback; each RunInTx applies writes directly.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/timeline"
)

// Store is an in-memory storage.Store.
type Store struct {
	mu sync.Mutex

	workspaces    map[uuid.UUID]*models.Workspace
	projects      map[uuid.UUID]*models.Project
	inboxTasks    map[uuid.UUID]*models.InboxTask
	bigPlans      map[uuid.UUID]*models.BigPlan
	habits        map[uuid.UUID]*models.Habit
	chores        map[uuid.UUID]*models.Chore
	metrics       map[uuid.UUID]*models.Metric
	metricEntries map[uuid.UUID]*models.MetricEntry
	persons       map[uuid.UUID]*models.Person
	slackTasks    map[uuid.UUID]*models.SlackTask
	emailTasks    map[uuid.UUID]*models.EmailTask
	vacations     map[uuid.UUID]*models.Vacation
	events        []*models.EntityEvent
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		workspaces:    make(map[uuid.UUID]*models.Workspace),
		projects:      make(map[uuid.UUID]*models.Project),
		inboxTasks:    make(map[uuid.UUID]*models.InboxTask),
		bigPlans:      make(map[uuid.UUID]*models.BigPlan),
		habits:        make(map[uuid.UUID]*models.Habit),
		chores:        make(map[uuid.UUID]*models.Chore),
		metrics:       make(map[uuid.UUID]*models.Metric),
		metricEntries: make(map[uuid.UUID]*models.MetricEntry),
		persons:       make(map[uuid.UUID]*models.Person),
		slackTasks:    make(map[uuid.UUID]*models.SlackTask),
		emailTasks:    make(map[uuid.UUID]*models.EmailTask),
		vacations:     make(map[uuid.UUID]*models.Vacation),
	}
}

// RunInTx runs fn under the store lock. Writes are applied directly;
// there is no rollback on error.
func (s *Store) RunInTx(ctx context.Context, fn func(uow storage.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&unitOfWork{store: s})
}

// Events returns a snapshot of the audit log.
func (s *Store) Events() []*models.EntityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.EntityEvent, len(s.events))
	copy(out, s.events)
	return out
}

type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Workspaces() storage.WorkspaceRepository     { return &workspaceRepo{u.store} }
func (u *unitOfWork) Projects() storage.ProjectRepository         { return &projectRepo{u.store} }
func (u *unitOfWork) InboxTasks() storage.InboxTaskRepository     { return &inboxTaskRepo{u.store} }
func (u *unitOfWork) BigPlans() storage.BigPlanRepository         { return &bigPlanRepo{u.store} }
func (u *unitOfWork) Habits() storage.HabitRepository             { return &habitRepo{u.store} }
func (u *unitOfWork) Chores() storage.ChoreRepository             { return &choreRepo{u.store} }
func (u *unitOfWork) Metrics() storage.MetricRepository           { return &metricRepo{u.store} }
func (u *unitOfWork) MetricEntries() storage.MetricEntryRepository { return &metricEntryRepo{u.store} }
func (u *unitOfWork) Persons() storage.PersonRepository           { return &personRepo{u.store} }
func (u *unitOfWork) SlackTasks() storage.SlackTaskRepository     { return &slackTaskRepo{u.store} }
func (u *unitOfWork) EmailTasks() storage.EmailTaskRepository     { return &emailTaskRepo{u.store} }
func (u *unitOfWork) Vacations() storage.VacationRepository       { return &vacationRepo{u.store} }
func (u *unitOfWork) EntityEvents() storage.EntityEventRepository { return &eventRepo{u.store} }

func idInSet(id uuid.UUID, set []uuid.UUID) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == id {
			return true
		}
	}
	return false
}

func idPtrInSet(id *uuid.UUID, set []uuid.UUID) bool {
	if len(set) == 0 {
		return true
	}
	if id == nil {
		return false
	}
	return idInSet(*id, set)
}

func periodInSet(p timeline.Period, set []timeline.Period) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}
	return false
}

type workspaceRepo struct{ store *Store }

func (r *workspaceRepo) Create(_ context.Context, workspace *models.Workspace) error {
	copied := *workspace
	r.store.workspaces[workspace.RefID] = &copied
	return nil
}

func (r *workspaceRepo) Load(_ context.Context, refID uuid.UUID) (*models.Workspace, error) {
	w, ok := r.store.workspaces[refID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *workspaceRepo) LoadDefault(_ context.Context) (*models.Workspace, error) {
	for _, w := range r.store.workspaces {
		copied := *w
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (r *workspaceRepo) Save(_ context.Context, workspace *models.Workspace) error {
	if _, ok := r.store.workspaces[workspace.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *workspace
	r.store.workspaces[workspace.RefID] = &copied
	return nil
}

type projectRepo struct{ store *Store }

func (r *projectRepo) Create(_ context.Context, project *models.Project) error {
	for _, existing := range r.store.projects {
		if existing.WorkspaceRefID == project.WorkspaceRefID && existing.Key == project.Key && !existing.Archived {
			return models.NewConflictError("project with key %q already exists", project.Key)
		}
	}
	copied := *project
	r.store.projects[project.RefID] = &copied
	return nil
}

func (r *projectRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.Project, error) {
	p, ok := r.store.projects[refID]
	if !ok || (p.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *projectRepo) LoadByKey(_ context.Context, workspaceRefID uuid.UUID, key string) (*models.Project, error) {
	for _, p := range r.store.projects {
		if p.WorkspaceRefID == workspaceRefID && p.Key == key && !p.Archived {
			copied := *p
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *projectRepo) Save(_ context.Context, project *models.Project) error {
	if _, ok := r.store.projects[project.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *project
	r.store.projects[project.RefID] = &copied
	return nil
}

func (r *projectRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range r.store.projects {
		if p.WorkspaceRefID != workspaceRefID {
			continue
		}
		if p.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(p.RefID, filter.FilterRefIDs) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

type inboxTaskRepo struct{ store *Store }

func (r *inboxTaskRepo) Create(_ context.Context, task *models.InboxTask) error {
	copied := *task
	r.store.inboxTasks[task.RefID] = &copied
	return nil
}

func (r *inboxTaskRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.InboxTask, error) {
	t, ok := r.store.inboxTasks[refID]
	if !ok || (t.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *inboxTaskRepo) Save(_ context.Context, task *models.InboxTask) error {
	if _, ok := r.store.inboxTasks[task.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *task
	r.store.inboxTasks[task.RefID] = &copied
	return nil
}

func (r *inboxTaskRepo) Remove(_ context.Context, refID uuid.UUID) error {
	if _, ok := r.store.inboxTasks[refID]; !ok {
		return models.ErrNotFound
	}
	delete(r.store.inboxTasks, refID)
	return nil
}

func (r *inboxTaskRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.InboxTaskFilter) ([]*models.InboxTask, error) {
	var out []*models.InboxTask
	for _, t := range r.store.inboxTasks {
		if t.WorkspaceRefID != workspaceRefID {
			continue
		}
		if t.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(t.RefID, filter.FilterRefIDs) {
			continue
		}
		if !idInSet(t.ProjectRefID, filter.FilterProjectRefIDs) {
			continue
		}
		if len(filter.FilterSources) > 0 {
			match := false
			for _, src := range filter.FilterSources {
				if t.Source == src {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if !idPtrInSet(t.BigPlanRefID, filter.FilterBigPlanRefIDs) {
			continue
		}
		if !idPtrInSet(t.HabitRefID, filter.FilterHabitRefIDs) {
			continue
		}
		if !idPtrInSet(t.ChoreRefID, filter.FilterChoreRefIDs) {
			continue
		}
		if !idPtrInSet(t.MetricRefID, filter.FilterMetricRefIDs) {
			continue
		}
		if !idPtrInSet(t.PersonRefID, filter.FilterPersonRefIDs) {
			continue
		}
		if !idPtrInSet(t.SlackTaskRefID, filter.FilterSlackTaskRefIDs) {
			continue
		}
		if !idPtrInSet(t.EmailTaskRefID, filter.FilterEmailTaskRefIDs) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

type bigPlanRepo struct{ store *Store }

func (r *bigPlanRepo) Create(_ context.Context, plan *models.BigPlan) error {
	copied := *plan
	r.store.bigPlans[plan.RefID] = &copied
	return nil
}

func (r *bigPlanRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.BigPlan, error) {
	p, ok := r.store.bigPlans[refID]
	if !ok || (p.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *bigPlanRepo) Save(_ context.Context, plan *models.BigPlan) error {
	if _, ok := r.store.bigPlans[plan.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *plan
	r.store.bigPlans[plan.RefID] = &copied
	return nil
}

func (r *bigPlanRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.BigPlan, error) {
	var out []*models.BigPlan
	for _, p := range r.store.bigPlans {
		if p.WorkspaceRefID != workspaceRefID {
			continue
		}
		if p.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(p.RefID, filter.FilterRefIDs) {
			continue
		}
		if !idInSet(p.ProjectRefID, filter.FilterProjectRefIDs) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

type habitRepo struct{ store *Store }

func (r *habitRepo) Create(_ context.Context, habit *models.Habit) error {
	copied := *habit
	r.store.habits[habit.RefID] = &copied
	return nil
}

func (r *habitRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.Habit, error) {
	h, ok := r.store.habits[refID]
	if !ok || (h.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *h
	return &copied, nil
}

func (r *habitRepo) Save(_ context.Context, habit *models.Habit) error {
	if _, ok := r.store.habits[habit.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *habit
	r.store.habits[habit.RefID] = &copied
	return nil
}

func (r *habitRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Habit, error) {
	var out []*models.Habit
	for _, h := range r.store.habits {
		if h.WorkspaceRefID != workspaceRefID {
			continue
		}
		if h.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(h.RefID, filter.FilterRefIDs) {
			continue
		}
		if !idInSet(h.ProjectRefID, filter.FilterProjectRefIDs) {
			continue
		}
		if !periodInSet(h.GenParams.Period, filter.FilterPeriods) {
			continue
		}
		copied := *h
		out = append(out, &copied)
	}
	return out, nil
}

type choreRepo struct{ store *Store }

func (r *choreRepo) Create(_ context.Context, chore *models.Chore) error {
	copied := *chore
	r.store.chores[chore.RefID] = &copied
	return nil
}

func (r *choreRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.Chore, error) {
	c, ok := r.store.chores[refID]
	if !ok || (c.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *choreRepo) Save(_ context.Context, chore *models.Chore) error {
	if _, ok := r.store.chores[chore.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *chore
	r.store.chores[chore.RefID] = &copied
	return nil
}

func (r *choreRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Chore, error) {
	var out []*models.Chore
	for _, c := range r.store.chores {
		if c.WorkspaceRefID != workspaceRefID {
			continue
		}
		if c.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(c.RefID, filter.FilterRefIDs) {
			continue
		}
		if !idInSet(c.ProjectRefID, filter.FilterProjectRefIDs) {
			continue
		}
		if !periodInSet(c.GenParams.Period, filter.FilterPeriods) {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

type metricRepo struct{ store *Store }

func (r *metricRepo) Create(_ context.Context, metric *models.Metric) error {
	for _, existing := range r.store.metrics {
		if existing.WorkspaceRefID == metric.WorkspaceRefID && existing.Key == metric.Key && !existing.Archived {
			return models.NewConflictError("metric with key %q already exists", metric.Key)
		}
	}
	copied := *metric
	r.store.metrics[metric.RefID] = &copied
	return nil
}

func (r *metricRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.Metric, error) {
	m, ok := r.store.metrics[refID]
	if !ok || (m.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *metricRepo) LoadByKey(_ context.Context, workspaceRefID uuid.UUID, key string) (*models.Metric, error) {
	for _, m := range r.store.metrics {
		if m.WorkspaceRefID == workspaceRefID && m.Key == key && !m.Archived {
			copied := *m
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *metricRepo) Save(_ context.Context, metric *models.Metric) error {
	if _, ok := r.store.metrics[metric.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *metric
	r.store.metrics[metric.RefID] = &copied
	return nil
}

func (r *metricRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Metric, error) {
	var out []*models.Metric
	for _, m := range r.store.metrics {
		if m.WorkspaceRefID != workspaceRefID {
			continue
		}
		if m.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(m.RefID, filter.FilterRefIDs) {
			continue
		}
		if len(filter.FilterPeriods) > 0 {
			if m.CollectionParams == nil || !periodInSet(m.CollectionParams.Period, filter.FilterPeriods) {
				continue
			}
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

type metricEntryRepo struct{ store *Store }

func (r *metricEntryRepo) Create(_ context.Context, entry *models.MetricEntry) error {
	copied := *entry
	r.store.metricEntries[entry.RefID] = &copied
	return nil
}

func (r *metricEntryRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.MetricEntry, error) {
	e, ok := r.store.metricEntries[refID]
	if !ok || (e.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *metricEntryRepo) Save(_ context.Context, entry *models.MetricEntry) error {
	if _, ok := r.store.metricEntries[entry.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *entry
	r.store.metricEntries[entry.RefID] = &copied
	return nil
}

func (r *metricEntryRepo) LoadByParent(_ context.Context, metricRefID uuid.UUID, allowArchived bool) ([]*models.MetricEntry, error) {
	var out []*models.MetricEntry
	for _, e := range r.store.metricEntries {
		if e.MetricRefID != metricRefID {
			continue
		}
		if e.Archived && !allowArchived {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

type personRepo struct{ store *Store }

func (r *personRepo) Create(_ context.Context, person *models.Person) error {
	copied := *person
	r.store.persons[person.RefID] = &copied
	return nil
}

func (r *personRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.Person, error) {
	p, ok := r.store.persons[refID]
	if !ok || (p.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *personRepo) Save(_ context.Context, person *models.Person) error {
	if _, ok := r.store.persons[person.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *person
	r.store.persons[person.RefID] = &copied
	return nil
}

func (r *personRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Person, error) {
	var out []*models.Person
	for _, p := range r.store.persons {
		if p.WorkspaceRefID != workspaceRefID {
			continue
		}
		if p.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(p.RefID, filter.FilterRefIDs) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

type slackTaskRepo struct{ store *Store }

func (r *slackTaskRepo) Create(_ context.Context, task *models.SlackTask) error {
	copied := *task
	r.store.slackTasks[task.RefID] = &copied
	return nil
}

func (r *slackTaskRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.SlackTask, error) {
	t, ok := r.store.slackTasks[refID]
	if !ok || (t.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *slackTaskRepo) Save(_ context.Context, task *models.SlackTask) error {
	if _, ok := r.store.slackTasks[task.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *task
	r.store.slackTasks[task.RefID] = &copied
	return nil
}

func (r *slackTaskRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.SlackTask, error) {
	var out []*models.SlackTask
	for _, t := range r.store.slackTasks {
		if t.WorkspaceRefID != workspaceRefID {
			continue
		}
		if t.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(t.RefID, filter.FilterRefIDs) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

type emailTaskRepo struct{ store *Store }

func (r *emailTaskRepo) Create(_ context.Context, task *models.EmailTask) error {
	copied := *task
	r.store.emailTasks[task.RefID] = &copied
	return nil
}

func (r *emailTaskRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.EmailTask, error) {
	t, ok := r.store.emailTasks[refID]
	if !ok || (t.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *emailTaskRepo) Save(_ context.Context, task *models.EmailTask) error {
	if _, ok := r.store.emailTasks[task.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *task
	r.store.emailTasks[task.RefID] = &copied
	return nil
}

func (r *emailTaskRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.EmailTask, error) {
	var out []*models.EmailTask
	for _, t := range r.store.emailTasks {
		if t.WorkspaceRefID != workspaceRefID {
			continue
		}
		if t.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(t.RefID, filter.FilterRefIDs) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

type vacationRepo struct{ store *Store }

func (r *vacationRepo) Create(_ context.Context, vacation *models.Vacation) error {
	copied := *vacation
	r.store.vacations[vacation.RefID] = &copied
	return nil
}

func (r *vacationRepo) Load(_ context.Context, refID uuid.UUID, allowArchived bool) (*models.Vacation, error) {
	v, ok := r.store.vacations[refID]
	if !ok || (v.Archived && !allowArchived) {
		return nil, models.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *vacationRepo) Save(_ context.Context, vacation *models.Vacation) error {
	if _, ok := r.store.vacations[vacation.RefID]; !ok {
		return models.ErrNotFound
	}
	copied := *vacation
	r.store.vacations[vacation.RefID] = &copied
	return nil
}

func (r *vacationRepo) FindAll(_ context.Context, workspaceRefID uuid.UUID, filter storage.EntityFilter) ([]*models.Vacation, error) {
	var out []*models.Vacation
	for _, v := range r.store.vacations {
		if v.WorkspaceRefID != workspaceRefID {
			continue
		}
		if v.Archived && !filter.AllowArchived {
			continue
		}
		if !idInSet(v.RefID, filter.FilterRefIDs) {
			continue
		}
		copied := *v
		out = append(out, &copied)
	}
	return out, nil
}

type eventRepo struct{ store *Store }

func (r *eventRepo) Append(_ context.Context, event *models.EntityEvent) error {
	copied := *event
	r.store.events = append(r.store.events, &copied)
	return nil
}
