// Package gen implements the generation engine: for a reference date it
// materializes the correct set of inbox tasks from every recurring and
// push source, keyed by timeline bucket so reruns converge instead of
// duplicating.
package gen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/genextra"
	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/progress"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/timeline"
)

// Args are the typed inputs of one generation run.
type Args struct {
	WorkspaceRefID        uuid.UUID
	RightNow              *time.Time
	Targets               []models.SyncTarget
	FilterProjectRefIDs   []uuid.UUID
	FilterHabitRefIDs     []uuid.UUID
	FilterChoreRefIDs     []uuid.UUID
	FilterMetricRefIDs    []uuid.UUID
	FilterPersonRefIDs    []uuid.UUID
	FilterSlackTaskRefIDs []uuid.UUID
	FilterEmailTaskRefIDs []uuid.UUID
	FilterPeriods         []timeline.Period
	GenEvenIfNotModified  bool
	Source                models.EventSource
}

// Engine drives generation. One unit of work per source kind keeps
// partial failures from leaving mixed state inside a kind.
type Engine struct {
	store    storage.Store
	reporter progress.Reporter
	log      *zap.Logger
}

// New creates a generation engine.
func New(store storage.Store, reporter progress.Reporter, log *zap.Logger) *Engine {
	return &Engine{store: store, reporter: reporter, log: log}
}

// Run executes one generation pass for the workspace.
func (e *Engine) Run(ctx context.Context, args Args) error {
	targets := args.Targets
	if len(targets) == 0 {
		targets = models.AllSyncTargets
	}
	for _, target := range targets {
		if !target.Valid() {
			return models.NewInputValidationError("invalid generation target %q", target)
		}
	}
	for _, period := range args.FilterPeriods {
		if !period.Valid() {
			return models.NewInputValidationError("invalid period filter %q", period)
		}
	}
	if args.Source == "" {
		args.Source = models.EventSourceCLI
	}

	var workspace *models.Workspace
	err := e.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		workspace, err = uow.Workspaces().Load(ctx, args.WorkspaceRefID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load workspace: %w", err)
	}
	for _, target := range targets {
		feature := models.FeatureForSyncTarget(target)
		if !workspace.IsFeatureAvailable(feature) {
			return &models.FeatureUnavailableError{Feature: string(feature)}
		}
	}

	loc, err := workspace.Location()
	if err != nil {
		return err
	}
	rightNow := time.Now().In(loc)
	if args.RightNow != nil {
		rightNow = args.RightNow.In(loc)
	}

	run := &genRun{
		engine:    e,
		args:      args,
		workspace: workspace,
		loc:       loc,
		rightNow:  rightNow,
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch target {
		case models.SyncTargetHabits:
			err = run.generateHabits(ctx)
		case models.SyncTargetChores:
			err = run.generateChores(ctx)
		case models.SyncTargetMetrics:
			err = run.generateMetrics(ctx)
		case models.SyncTargetPersons:
			err = run.generatePersons(ctx)
		case models.SyncTargetSlackTasks:
			err = run.generateSlackTasks(ctx)
		case models.SyncTargetEmailTasks:
			err = run.generateEmailTasks(ctx)
		}
		if err != nil {
			return fmt.Errorf("generation for %s failed: %w", target, err)
		}
	}
	return nil
}

type genRun struct {
	engine    *Engine
	args      Args
	workspace *models.Workspace
	loc       *time.Location
	rightNow  time.Time
}

// taskKey identifies one upsert slot: a source entity, a timeline
// bucket and (for habits with repeats) a repeat index. A repeat index
// of -1 means "no repeats".
type taskKey struct {
	sourceRefID uuid.UUID
	source      models.InboxTaskSource
	timeline    string
	repeatIndex int
}

func keyOf(task *models.InboxTask) (taskKey, bool) {
	sourceRefID := task.SourceRefID()
	if sourceRefID == nil || task.RecurringTimeline == nil {
		return taskKey{}, false
	}
	idx := -1
	if task.RecurringRepeatIndex != nil {
		idx = *task.RecurringRepeatIndex
	}
	return taskKey{
		sourceRefID: *sourceRefID,
		source:      task.Source,
		timeline:    *task.RecurringTimeline,
		repeatIndex: idx,
	}, true
}

func indexTasks(tasks []*models.InboxTask) map[taskKey]*models.InboxTask {
	index := make(map[taskKey]*models.InboxTask, len(tasks))
	for _, task := range tasks {
		if key, ok := keyOf(task); ok {
			index[key] = task
		}
	}
	return index
}

func ensureAllFound[T any](kind string, wanted []uuid.UUID, loaded []T, refID func(T) uuid.UUID) error {
	if len(wanted) == 0 {
		return nil
	}
	present := make(map[uuid.UUID]bool, len(loaded))
	for _, entity := range loaded {
		present[refID(entity)] = true
	}
	for _, id := range wanted {
		if !present[id] {
			return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
		}
	}
	return nil
}

// upsert converges one task slot: create when absent, refresh when the
// source moved past the task, otherwise leave alone.
func (r *genRun) upsert(ctx context.Context, uow storage.UnitOfWork, index map[taskKey]*models.InboxTask, seed models.GeneratedTaskSeed, sourceLastModified time.Time) error {
	idx := -1
	if seed.RepeatIndex != nil {
		idx = *seed.RepeatIndex
	}
	key := taskKey{sourceRefID: seed.SourceRefID, source: seed.Source, timeline: seed.Timeline, repeatIndex: idx}
	existing := index[key]

	if existing == nil {
		task := models.NewGeneratedInboxTask(seed, r.rightNow)
		reporter := r.engine.reporter.StartCreatingEntity("inbox-task", seed.Name)
		if err := uow.InboxTasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create inbox task: %w", err)
		}
		if err := r.recordEvent(ctx, uow, "inbox-task", task.RefID, "created", task.Version); err != nil {
			return err
		}
		reporter.MarkKnownEntityID(task.RefID).MarkLocalChange()
		index[key] = task
		return nil
	}

	if !r.args.GenEvenIfNotModified && !existing.LastModifiedTime.Before(sourceLastModified) {
		r.engine.reporter.StartUpdatingEntity("inbox-task", existing.Name).
			MarkKnownEntityID(existing.RefID).MarkNotNeeded()
		return nil
	}

	existing.RegenFromSeed(seed, r.rightNow)
	reporter := r.engine.reporter.StartUpdatingEntity("inbox-task", existing.Name).
		MarkKnownEntityID(existing.RefID)
	if err := uow.InboxTasks().Save(ctx, existing); err != nil {
		return fmt.Errorf("failed to save inbox task: %w", err)
	}
	if err := r.recordEvent(ctx, uow, "inbox-task", existing.RefID, "updated", existing.Version); err != nil {
		return err
	}
	reporter.MarkLocalChange()
	return nil
}

func (r *genRun) recordEvent(ctx context.Context, uow storage.UnitOfWork, kind string, refID uuid.UUID, name string, version int) error {
	event := &models.EntityEvent{
		EntityKind: kind,
		EntityID:   refID,
		EventName:  name,
		Source:     r.args.Source,
		Version:    version,
		Timestamp:  r.rightNow,
	}
	if err := uow.EntityEvents().Append(ctx, event); err != nil {
		return fmt.Errorf("failed to record %s event: %w", name, err)
	}
	return nil
}

func (r *genRun) generateHabits(ctx context.Context) error {
	r.engine.reporter.Section("Generating habit tasks")
	return r.engine.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		habits, err := uow.Habits().FindAll(ctx, r.workspace.RefID, storage.EntityFilter{
			FilterRefIDs:        r.args.FilterHabitRefIDs,
			FilterProjectRefIDs: r.args.FilterProjectRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load habits: %w", err)
		}
		if err := ensureAllFound("habit", r.args.FilterHabitRefIDs, habits, func(h *models.Habit) uuid.UUID { return h.RefID }); err != nil {
			return err
		}

		tasks, err := uow.InboxTasks().FindAll(ctx, r.workspace.RefID, storage.InboxTaskFilter{
			AllowArchived:     true,
			FilterSources:     []models.InboxTaskSource{models.InboxTaskSourceHabit},
			FilterHabitRefIDs: r.args.FilterHabitRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load habit inbox tasks: %w", err)
		}
		index := indexTasks(tasks)

		for _, habit := range habits {
			if habit.Suspended {
				continue
			}
			if !r.periodAllowed(habit.GenParams.Period) {
				continue
			}
			schedule, err := timeline.NewSchedule(habit.GenParams.ScheduleOptions(habit.Name, r.rightNow, r.loc))
			if err != nil {
				return fmt.Errorf("habit %s has invalid schedule parameters: %w", habit.RefID, err)
			}
			if schedule.ShouldSkip() {
				continue
			}

			repeats := habit.EffectiveRepeats()
			for k := 0; k < repeats; k++ {
				name := schedule.FullName
				var repeatIndex *int
				if habit.RepeatsInPeriodCount != nil {
					idx := k
					repeatIndex = &idx
					name = fmt.Sprintf("%s [%d]", schedule.FullName, k+1)
				}
				seed := models.GeneratedTaskSeed{
					WorkspaceRefID: r.workspace.RefID,
					ProjectRefID:   habit.ProjectRefID,
					Source:         models.InboxTaskSourceHabit,
					SourceRefID:    habit.RefID,
					Name:           name,
					Eisen:          habit.GenParams.Eisen,
					Difficulty:     habit.GenParams.Difficulty,
					ActionableDate: &schedule.ActionableDate,
					DueDate:        &schedule.DueTime,
					Timeline:       schedule.Timeline,
					RepeatIndex:    repeatIndex,
					GenRightNow:    r.rightNow,
				}
				if err := r.upsert(ctx, uow, index, seed, habit.LastModifiedTime); err != nil {
					return err
				}
			}

			if err := r.removeSurplusRepeats(ctx, uow, index, habit, schedule.Timeline, repeats); err != nil {
				return err
			}
		}
		return nil
	})
}

// removeSurplusRepeats drops tasks in the bucket whose repeat index no
// longer exists, including the no-repeat slot after repeats were turned
// on.
func (r *genRun) removeSurplusRepeats(ctx context.Context, uow storage.UnitOfWork, index map[taskKey]*models.InboxTask, habit *models.Habit, bucketTimeline string, repeats int) error {
	for key, task := range index {
		if key.sourceRefID != habit.RefID || key.timeline != bucketTimeline {
			continue
		}
		wanted := key.repeatIndex == -1 && habit.RepeatsInPeriodCount == nil ||
			key.repeatIndex >= 0 && habit.RepeatsInPeriodCount != nil && key.repeatIndex < repeats
		if wanted {
			continue
		}
		reporter := r.engine.reporter.StartRemovingEntity("inbox-task", task.Name).
			MarkKnownEntityID(task.RefID)
		if err := uow.InboxTasks().Remove(ctx, task.RefID); err != nil {
			return fmt.Errorf("failed to remove surplus inbox task: %w", err)
		}
		if err := r.recordEvent(ctx, uow, "inbox-task", task.RefID, "removed", task.Version); err != nil {
			return err
		}
		reporter.MarkLocalChange()
		delete(index, key)
	}
	return nil
}

func (r *genRun) generateChores(ctx context.Context) error {
	r.engine.reporter.Section("Generating chore tasks")
	return r.engine.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		chores, err := uow.Chores().FindAll(ctx, r.workspace.RefID, storage.EntityFilter{
			FilterRefIDs:        r.args.FilterChoreRefIDs,
			FilterProjectRefIDs: r.args.FilterProjectRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load chores: %w", err)
		}
		if err := ensureAllFound("chore", r.args.FilterChoreRefIDs, chores, func(c *models.Chore) uuid.UUID { return c.RefID }); err != nil {
			return err
		}

		vacations, err := uow.Vacations().FindAll(ctx, r.workspace.RefID, storage.EntityFilter{})
		if err != nil {
			return fmt.Errorf("failed to load vacations: %w", err)
		}

		tasks, err := uow.InboxTasks().FindAll(ctx, r.workspace.RefID, storage.InboxTaskFilter{
			AllowArchived:     true,
			FilterSources:     []models.InboxTaskSource{models.InboxTaskSourceChore},
			FilterChoreRefIDs: r.args.FilterChoreRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load chore inbox tasks: %w", err)
		}
		index := indexTasks(tasks)

		for _, chore := range chores {
			if chore.Suspended {
				continue
			}
			if !r.periodAllowed(chore.GenParams.Period) {
				continue
			}
			schedule, err := timeline.NewSchedule(chore.GenParams.ScheduleOptions(chore.Name, r.rightNow, r.loc))
			if err != nil {
				return fmt.Errorf("chore %s has invalid schedule parameters: %w", chore.RefID, err)
			}
			if schedule.ShouldSkip() {
				continue
			}
			if !chore.IsInActiveInterval(schedule.FirstDay, schedule.EndDay) {
				continue
			}
			if !chore.MustDo && anyVacationCovers(vacations, schedule.FirstDay, schedule.EndDay) {
				continue
			}

			seed := models.GeneratedTaskSeed{
				WorkspaceRefID: r.workspace.RefID,
				ProjectRefID:   chore.ProjectRefID,
				Source:         models.InboxTaskSourceChore,
				SourceRefID:    chore.RefID,
				Name:           schedule.FullName,
				Eisen:          chore.GenParams.Eisen,
				Difficulty:     chore.GenParams.Difficulty,
				ActionableDate: &schedule.ActionableDate,
				DueDate:        &schedule.DueTime,
				Timeline:       schedule.Timeline,
				GenRightNow:    r.rightNow,
			}
			if err := r.upsert(ctx, uow, index, seed, chore.LastModifiedTime); err != nil {
				return err
			}
		}
		return nil
	})
}

func anyVacationCovers(vacations []*models.Vacation, firstDay, endDay time.Time) bool {
	for _, vacation := range vacations {
		if vacation.Covers(firstDay, endDay) {
			return true
		}
	}
	return false
}

func (r *genRun) generateMetrics(ctx context.Context) error {
	r.engine.reporter.Section("Generating metric collection tasks")
	return r.engine.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		metrics, err := uow.Metrics().FindAll(ctx, r.workspace.RefID, storage.EntityFilter{
			FilterRefIDs: r.args.FilterMetricRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load metrics: %w", err)
		}
		if err := ensureAllFound("metric", r.args.FilterMetricRefIDs, metrics, func(m *models.Metric) uuid.UUID { return m.RefID }); err != nil {
			return err
		}

		tasks, err := uow.InboxTasks().FindAll(ctx, r.workspace.RefID, storage.InboxTaskFilter{
			AllowArchived:      true,
			FilterSources:      []models.InboxTaskSource{models.InboxTaskSourceMetric},
			FilterMetricRefIDs: r.args.FilterMetricRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load metric inbox tasks: %w", err)
		}
		index := indexTasks(tasks)

		for _, metric := range metrics {
			if metric.CollectionParams == nil {
				continue
			}
			if !r.periodAllowed(metric.CollectionParams.Period) {
				continue
			}
			schedule, err := timeline.NewSchedule(metric.CollectionParams.ScheduleOptions(metric.CollectionTaskName(), r.rightNow, r.loc))
			if err != nil {
				return fmt.Errorf("metric %s has invalid collection parameters: %w", metric.RefID, err)
			}
			if schedule.ShouldSkip() {
				continue
			}

			projectRefID := r.workspace.DefaultProjectRefID
			if metric.CollectionProjectRefID != nil {
				projectRefID = *metric.CollectionProjectRefID
			}
			seed := models.GeneratedTaskSeed{
				WorkspaceRefID: r.workspace.RefID,
				ProjectRefID:   projectRefID,
				Source:         models.InboxTaskSourceMetric,
				SourceRefID:    metric.RefID,
				Name:           schedule.FullName,
				Eisen:          metric.CollectionParams.Eisen,
				Difficulty:     metric.CollectionParams.Difficulty,
				ActionableDate: &schedule.ActionableDate,
				DueDate:        &schedule.DueTime,
				Timeline:       schedule.Timeline,
				GenRightNow:    r.rightNow,
			}
			if err := r.upsert(ctx, uow, index, seed, metric.LastModifiedTime); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *genRun) generatePersons(ctx context.Context) error {
	r.engine.reporter.Section("Generating person catch-up and birthday tasks")
	return r.engine.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		persons, err := uow.Persons().FindAll(ctx, r.workspace.RefID, storage.EntityFilter{
			FilterRefIDs: r.args.FilterPersonRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load persons: %w", err)
		}
		if err := ensureAllFound("person", r.args.FilterPersonRefIDs, persons, func(p *models.Person) uuid.UUID { return p.RefID }); err != nil {
			return err
		}

		tasks, err := uow.InboxTasks().FindAll(ctx, r.workspace.RefID, storage.InboxTaskFilter{
			AllowArchived: true,
			FilterSources: []models.InboxTaskSource{
				models.InboxTaskSourcePersonCatchUp,
				models.InboxTaskSourcePersonBirthday,
			},
			FilterPersonRefIDs: r.args.FilterPersonRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load person inbox tasks: %w", err)
		}
		index := indexTasks(tasks)

		for _, person := range persons {
			if person.CatchUpParams != nil && r.periodAllowed(person.CatchUpParams.Period) {
				schedule, err := timeline.NewSchedule(person.CatchUpParams.ScheduleOptions(person.CatchUpTaskName(), r.rightNow, r.loc))
				if err != nil {
					return fmt.Errorf("person %s has invalid catch-up parameters: %w", person.RefID, err)
				}
				if !schedule.ShouldSkip() {
					seed := models.GeneratedTaskSeed{
						WorkspaceRefID: r.workspace.RefID,
						ProjectRefID:   r.workspace.DefaultProjectRefID,
						Source:         models.InboxTaskSourcePersonCatchUp,
						SourceRefID:    person.RefID,
						Name:           schedule.FullName,
						Eisen:          person.CatchUpParams.Eisen,
						Difficulty:     person.CatchUpParams.Difficulty,
						ActionableDate: &schedule.ActionableDate,
						DueDate:        &schedule.DueTime,
						Timeline:       schedule.Timeline,
						GenRightNow:    r.rightNow,
					}
					if err := r.upsert(ctx, uow, index, seed, person.LastModifiedTime); err != nil {
						return err
					}
				}
			}

			if person.Birthday != nil && r.periodAllowed(timeline.PeriodYearly) {
				if err := r.upsertBirthday(ctx, uow, index, person); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *genRun) upsertBirthday(ctx context.Context, uow storage.UnitOfWork, index map[taskKey]*models.InboxTask, person *models.Person) error {
	schedule, err := timeline.NewSchedule(timeline.ScheduleOptions{
		Period:     timeline.PeriodYearly,
		Name:       person.BirthdayTaskName(),
		RightNow:   r.rightNow,
		Location:   r.loc,
		DueAtDay:   &person.Birthday.Day,
		DueAtMonth: &person.Birthday.Month,
	})
	if err != nil {
		return fmt.Errorf("person %s has an invalid birthday: %w", person.RefID, err)
	}

	due := schedule.DueTime
	actionable := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, r.loc).
		AddDate(0, 0, -person.Relationship.BirthdayPreparationDays())

	seed := models.GeneratedTaskSeed{
		WorkspaceRefID: r.workspace.RefID,
		ProjectRefID:   r.workspace.DefaultProjectRefID,
		Source:         models.InboxTaskSourcePersonBirthday,
		SourceRefID:    person.RefID,
		Name:           schedule.FullName,
		Eisen:          models.EisenImportant,
		ActionableDate: &actionable,
		DueDate:        &due,
		Timeline:       schedule.Timeline,
		GenRightNow:    r.rightNow,
	}
	return r.upsert(ctx, uow, index, seed, person.LastModifiedTime)
}

func (r *genRun) generateSlackTasks(ctx context.Context) error {
	r.engine.reporter.Section("Generating tasks from Slack messages")
	return r.engine.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		slackTasks, err := uow.SlackTasks().FindAll(ctx, r.workspace.RefID, storage.EntityFilter{
			FilterRefIDs: r.args.FilterSlackTaskRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load slack tasks: %w", err)
		}
		if err := ensureAllFound("slack task", r.args.FilterSlackTaskRefIDs, slackTasks, func(t *models.SlackTask) uuid.UUID { return t.RefID }); err != nil {
			return err
		}

		tasks, err := uow.InboxTasks().FindAll(ctx, r.workspace.RefID, storage.InboxTaskFilter{
			AllowArchived:         true,
			FilterSources:         []models.InboxTaskSource{models.InboxTaskSourceSlackTask},
			FilterSlackTaskRefIDs: r.args.FilterSlackTaskRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load slack inbox tasks: %w", err)
		}
		byPushTask := make(map[uuid.UUID]*models.InboxTask, len(tasks))
		for _, task := range tasks {
			if task.SlackTaskRefID != nil {
				byPushTask[*task.SlackTaskRefID] = task
			}
		}

		for _, slackTask := range slackTasks {
			extra, err := genextra.Parse(slackTask.GenerationExtraInfo)
			if err != nil {
				r.engine.log.Warn("skipping slack task with invalid generation extra info",
					zap.String("slack_task_id", slackTask.RefID.String()),
					zap.Error(err))
				continue
			}
			name := slackTask.DefaultTaskName()
			if extra.Name != nil {
				name = *extra.Name
			}
			if err := r.upsertPushTask(ctx, uow, pushUpsert{
				source:        models.InboxTaskSourceSlackTask,
				sourceRefID:   slackTask.RefID,
				name:          name,
				extra:         extra,
				existing:      byPushTask[slackTask.RefID],
				lastModified:  slackTask.LastModifiedTime,
				markGenerated: func() error {
					slackTask.MarkGenerated(r.rightNow)
					if err := uow.SlackTasks().Save(ctx, slackTask); err != nil {
						return fmt.Errorf("failed to mark slack task as generated: %w", err)
					}
					return r.recordEvent(ctx, uow, "slack-task", slackTask.RefID, "marked-generated", slackTask.Version)
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *genRun) generateEmailTasks(ctx context.Context) error {
	r.engine.reporter.Section("Generating tasks from emails")
	return r.engine.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		emailTasks, err := uow.EmailTasks().FindAll(ctx, r.workspace.RefID, storage.EntityFilter{
			FilterRefIDs: r.args.FilterEmailTaskRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load email tasks: %w", err)
		}
		if err := ensureAllFound("email task", r.args.FilterEmailTaskRefIDs, emailTasks, func(t *models.EmailTask) uuid.UUID { return t.RefID }); err != nil {
			return err
		}

		tasks, err := uow.InboxTasks().FindAll(ctx, r.workspace.RefID, storage.InboxTaskFilter{
			AllowArchived:         true,
			FilterSources:         []models.InboxTaskSource{models.InboxTaskSourceEmailTask},
			FilterEmailTaskRefIDs: r.args.FilterEmailTaskRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load email inbox tasks: %w", err)
		}
		byPushTask := make(map[uuid.UUID]*models.InboxTask, len(tasks))
		for _, task := range tasks {
			if task.EmailTaskRefID != nil {
				byPushTask[*task.EmailTaskRefID] = task
			}
		}

		for _, emailTask := range emailTasks {
			extra, err := genextra.Parse(emailTask.GenerationExtraInfo)
			if err != nil {
				r.engine.log.Warn("skipping email task with invalid generation extra info",
					zap.String("email_task_id", emailTask.RefID.String()),
					zap.Error(err))
				continue
			}
			name := emailTask.DefaultTaskName()
			if extra.Name != nil {
				name = *extra.Name
			}
			if err := r.upsertPushTask(ctx, uow, pushUpsert{
				source:        models.InboxTaskSourceEmailTask,
				sourceRefID:   emailTask.RefID,
				name:          name,
				extra:         extra,
				existing:      byPushTask[emailTask.RefID],
				lastModified:  emailTask.LastModifiedTime,
				markGenerated: func() error {
					emailTask.MarkGenerated(r.rightNow)
					if err := uow.EmailTasks().Save(ctx, emailTask); err != nil {
						return fmt.Errorf("failed to mark email task as generated: %w", err)
					}
					return r.recordEvent(ctx, uow, "email-task", emailTask.RefID, "marked-generated", emailTask.Version)
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

type pushUpsert struct {
	source        models.InboxTaskSource
	sourceRefID   uuid.UUID
	name          string
	extra         *genextra.Info
	existing      *models.InboxTask
	lastModified  time.Time
	markGenerated func() error
}

// upsertPushTask materializes the single inbox task of a push source.
// The first run creates it; later runs update the same task in place.
func (r *genRun) upsertPushTask(ctx context.Context, uow storage.UnitOfWork, up pushUpsert) error {
	eisen := models.EisenRegular
	if up.extra.Eisen != nil {
		eisen = *up.extra.Eisen
	}
	seed := models.GeneratedTaskSeed{
		WorkspaceRefID: r.workspace.RefID,
		ProjectRefID:   r.workspace.DefaultProjectRefID,
		Source:         up.source,
		SourceRefID:    up.sourceRefID,
		Name:           up.name,
		Eisen:          eisen,
		Difficulty:     up.extra.Difficulty,
		ActionableDate: up.extra.ActionableDate,
		DueDate:        up.extra.DueDate,
		GenRightNow:    r.rightNow,
	}

	if up.existing == nil {
		task := models.NewGeneratedInboxTask(seed, r.rightNow)
		if up.extra.Status != nil {
			if err := task.UpdateStatus(*up.extra.Status, r.rightNow); err != nil {
				return err
			}
		}
		reporter := r.engine.reporter.StartCreatingEntity("inbox-task", seed.Name)
		if err := uow.InboxTasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create inbox task: %w", err)
		}
		if err := r.recordEvent(ctx, uow, "inbox-task", task.RefID, "created", task.Version); err != nil {
			return err
		}
		reporter.MarkKnownEntityID(task.RefID).MarkLocalChange()
		return up.markGenerated()
	}

	if !r.args.GenEvenIfNotModified && !up.existing.LastModifiedTime.Before(up.lastModified) {
		r.engine.reporter.StartUpdatingEntity("inbox-task", up.existing.Name).
			MarkKnownEntityID(up.existing.RefID).MarkNotNeeded()
		return nil
	}

	up.existing.RegenFromSeed(seed, r.rightNow)
	reporter := r.engine.reporter.StartUpdatingEntity("inbox-task", up.existing.Name).
		MarkKnownEntityID(up.existing.RefID)
	if err := uow.InboxTasks().Save(ctx, up.existing); err != nil {
		return fmt.Errorf("failed to save inbox task: %w", err)
	}
	if err := r.recordEvent(ctx, uow, "inbox-task", up.existing.RefID, "updated", up.existing.Version); err != nil {
		return err
	}
	reporter.MarkLocalChange()
	return nil
}

func (r *genRun) periodAllowed(period timeline.Period) bool {
	if len(r.args.FilterPeriods) == 0 {
		return true
	}
	for _, p := range r.args.FilterPeriods {
		if p == period {
			return true
		}
	}
	return false
}
