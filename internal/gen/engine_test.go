package gen_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/gen"
	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/progress"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/storage/memstore"
	"github.com/avancea/ritmo/internal/timeline"
)

var genNow = time.Date(2023, 4, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memstore.Store
	engine    *gen.Engine
	recording *progress.Recording
	workspace *models.Workspace
	project   *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	recording := progress.NewRecording()

	project, err := models.NewProject(uuid.New(), "personal", "Personal", genNow)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	workspace, err := models.NewWorkspace("Test Workspace", "UTC", project.RefID, genNow)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	project.WorkspaceRefID = workspace.RefID

	err = store.RunInTx(context.Background(), func(uow storage.UnitOfWork) error {
		if err := uow.Workspaces().Create(context.Background(), workspace); err != nil {
			return err
		}
		return uow.Projects().Create(context.Background(), project)
	})
	if err != nil {
		t.Fatalf("failed to seed workspace: %v", err)
	}

	return &fixture{
		store:     store,
		engine:    gen.New(store, recording, zap.NewNop()),
		recording: recording,
		workspace: workspace,
		project:   project,
	}
}

func (f *fixture) run(t *testing.T, args gen.Args) {
	t.Helper()
	args.WorkspaceRefID = f.workspace.RefID
	if args.RightNow == nil {
		now := genNow
		args.RightNow = &now
	}
	if err := f.engine.Run(context.Background(), args); err != nil {
		t.Fatalf("generation run failed: %v", err)
	}
}

func (f *fixture) seed(t *testing.T, fn func(uow storage.UnitOfWork) error) {
	t.Helper()
	if err := f.store.RunInTx(context.Background(), fn); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
}

func (f *fixture) tasks(t *testing.T, filter storage.InboxTaskFilter) []*models.InboxTask {
	t.Helper()
	filter.AllowArchived = true
	var tasks []*models.InboxTask
	err := f.store.RunInTx(context.Background(), func(uow storage.UnitOfWork) error {
		var err error
		tasks, err = uow.InboxTasks().FindAll(context.Background(), f.workspace.RefID, filter)
		return err
	})
	if err != nil {
		t.Fatalf("failed to list inbox tasks: %v", err)
	}
	return tasks
}

func TestRunDailyHabit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Morning run",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Name != "Morning run Apr 15" {
		t.Errorf("expected name %q, got %q", "Morning run Apr 15", task.Name)
	}
	if task.RecurringTimeline == nil || *task.RecurringTimeline != "2023,Q2,Apr,W15,D105" {
		t.Errorf("expected timeline 2023,Q2,Apr,W15,D105, got %v", task.RecurringTimeline)
	}
	if task.Status != models.InboxTaskStatusRecurring {
		t.Errorf("expected status recurring, got %s", task.Status)
	}
	if task.HabitRefID == nil || *task.HabitRefID != habit.RefID {
		t.Errorf("expected habit link %s, got %v", habit.RefID, task.HabitRefID)
	}
	if task.DueDate == nil || !task.DueDate.Equal(time.Date(2023, 4, 15, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("expected due at end of day, got %v", task.DueDate)
	}
	if task.ActionableDate == nil || !task.ActionableDate.Equal(time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected actionable at start of day, got %v", task.ActionableDate)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Read",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})
	first := f.tasks(t, storage.InboxTaskFilter{})
	if len(first) != 1 {
		t.Fatalf("expected 1 task after first run, got %d", len(first))
	}
	version := first[0].Version

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})
	second := f.tasks(t, storage.InboxTaskFilter{})
	if len(second) != 1 {
		t.Fatalf("expected 1 task after second run, got %d", len(second))
	}
	if second[0].RefID != first[0].RefID {
		t.Errorf("expected the same task to survive reruns, got %s then %s", first[0].RefID, second[0].RefID)
	}
	if second[0].Version != version {
		t.Errorf("expected untouched task to keep version %d, got %d", version, second[0].Version)
	}
}

func TestRunWeeklyHabitOnceInBoundaryWeek(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// 2024-12-30 and 2025-01-01 fall in the same ISO week.
	monday := time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC)
	wednesday := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Weekly review",
		models.RecurringTaskGenParams{Period: "weekly", Eisen: models.EisenRegular}, nil, monday)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}, RightNow: &monday})
	first := f.tasks(t, storage.InboxTaskFilter{})
	if len(first) != 1 {
		t.Fatalf("expected 1 task after first run, got %d", len(first))
	}

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}, RightNow: &wednesday})
	second := f.tasks(t, storage.InboxTaskFilter{})
	if len(second) != 1 {
		t.Fatalf("expected the week's task to be reused across the year boundary, got %d", len(second))
	}
	if second[0].RefID != first[0].RefID {
		t.Errorf("expected the same task to survive reruns, got %s then %s", first[0].RefID, second[0].RefID)
	}
	if second[0].RecurringTimeline == nil || *second[0].RecurringTimeline != "2024,Q4,Dec,W1" {
		t.Errorf("expected timeline 2024,Q4,Dec,W1, got %v", second[0].RecurringTimeline)
	}
}

func TestRunRefreshesStaleTask(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Morning run",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})

	later := genNow.Add(time.Hour)
	if err := habit.Update(models.SetTo("Morning jog"), models.Keep[models.RecurringTaskGenParams](), models.Keep[*int](), later); err != nil {
		t.Fatalf("failed to update habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Save(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}, RightNow: &later})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Name != "Morning jog Apr 15" {
		t.Errorf("expected refreshed name %q, got %q", "Morning jog Apr 15", tasks[0].Name)
	}
}

func TestRunHabitRepeats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	three := 3
	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "H",
		models.RecurringTaskGenParams{Period: "weekly", Eisen: models.EisenRegular}, &three, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	names := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		names[task.Name] = true
	}
	for _, want := range []string{"H Wk15 2023 [1]", "H Wk15 2023 [2]", "H Wk15 2023 [3]"} {
		if !names[want] {
			t.Errorf("missing task %q, have %v", want, names)
		}
	}

	// Rerun converges without duplicating.
	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})
	if got := len(f.tasks(t, storage.InboxTaskFilter{})); got != 3 {
		t.Fatalf("expected 3 tasks after rerun, got %d", got)
	}

	// Shrinking repeats removes the surplus task.
	two := 2
	later := genNow.Add(time.Hour)
	if err := habit.Update(models.Keep[string](), models.Keep[models.RecurringTaskGenParams](), models.SetTo(&two), later); err != nil {
		t.Fatalf("failed to shrink repeats: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Save(context.Background(), habit)
	})
	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}, RightNow: &later})

	tasks = f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after shrink, got %d", len(tasks))
	}
	for _, task := range tasks {
		if strings.HasSuffix(task.Name, "[3]") {
			t.Errorf("surplus task %q should have been removed", task.Name)
		}
	}
}

func TestRunChoreVacationSuppression(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	params := models.RecurringTaskGenParams{Period: "weekly", Eisen: models.EisenRegular}
	chore, err := models.NewChore(f.workspace.RefID, f.project.RefID, "Water plants", params, false, nil, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create chore: %v", err)
	}
	mustDo, err := models.NewChore(f.workspace.RefID, f.project.RefID, "Pay rent", params, true, nil, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create must-do chore: %v", err)
	}
	vacation, err := models.NewVacation(f.workspace.RefID, "Spring break",
		time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC), genNow)
	if err != nil {
		t.Fatalf("failed to create vacation: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		if err := uow.Chores().Create(context.Background(), chore); err != nil {
			return err
		}
		if err := uow.Chores().Create(context.Background(), mustDo); err != nil {
			return err
		}
		return uow.Vacations().Create(context.Background(), vacation)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetChores}})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected only the must-do chore task, got %d tasks", len(tasks))
	}
	if tasks[0].ChoreRefID == nil || *tasks[0].ChoreRefID != mustDo.RefID {
		t.Errorf("expected task for must-do chore %s, got %v", mustDo.RefID, tasks[0].ChoreRefID)
	}
}

func TestRunChoreOutsideActiveInterval(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	end := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	chore, err := models.NewChore(f.workspace.RefID, f.project.RefID, "Shovel snow",
		models.RecurringTaskGenParams{Period: "weekly", Eisen: models.EisenRegular}, false, nil, &end, genNow)
	if err != nil {
		t.Fatalf("failed to create chore: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Chores().Create(context.Background(), chore)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetChores}})

	if tasks := f.tasks(t, storage.InboxTaskFilter{}); len(tasks) != 0 {
		t.Fatalf("expected no tasks for an expired chore, got %d", len(tasks))
	}
}

func TestRunMetricCollection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	metric, err := models.NewMetric(f.workspace.RefID, "weight", "Weight", nil, nil,
		&models.RecurringTaskGenParams{Period: "weekly", Eisen: models.EisenRegular}, genNow)
	if err != nil {
		t.Fatalf("failed to create metric: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Metrics().Create(context.Background(), metric)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetMetrics}})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 collection task, got %d", len(tasks))
	}
	if tasks[0].Name != "Collect value for metric Weight Wk15 2023" {
		t.Errorf("unexpected collection task name %q", tasks[0].Name)
	}
	if tasks[0].ProjectRefID != f.project.RefID {
		t.Errorf("expected the workspace default project, got %s", tasks[0].ProjectRefID)
	}
}

func TestRunPersonBirthday(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	person, err := models.NewPerson(f.workspace.RefID, "Mom", models.PersonRelationshipFamily,
		nil, &models.PersonBirthday{Day: 15, Month: 4}, genNow)
	if err != nil {
		t.Fatalf("failed to create person: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Persons().Create(context.Background(), person)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetPersons}})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 birthday task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Source != models.InboxTaskSourcePersonBirthday {
		t.Fatalf("expected birthday source, got %s", task.Source)
	}
	if task.RecurringTimeline == nil || *task.RecurringTimeline != "2023" {
		t.Errorf("expected yearly timeline 2023, got %v", task.RecurringTimeline)
	}
	wantDue := time.Date(2023, 4, 15, 23, 59, 59, 0, time.UTC)
	if task.DueDate == nil || !task.DueDate.Equal(wantDue) {
		t.Errorf("expected due %v, got %v", wantDue, task.DueDate)
	}
	// Family gets 28 days of preparation.
	wantActionable := time.Date(2023, 3, 18, 0, 0, 0, 0, time.UTC)
	if task.ActionableDate == nil || !task.ActionableDate.Equal(wantActionable) {
		t.Errorf("expected actionable %v, got %v", wantActionable, task.ActionableDate)
	}
}

func TestRunPersonCatchUp(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	person, err := models.NewPerson(f.workspace.RefID, "Alex", models.PersonRelationshipFriend,
		&models.RecurringTaskGenParams{Period: "monthly", Eisen: models.EisenRegular}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create person: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Persons().Create(context.Background(), person)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetPersons}})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 catch-up task, got %d", len(tasks))
	}
	if tasks[0].Name != "Catch up with Alex Apr 2023" {
		t.Errorf("unexpected catch-up task name %q", tasks[0].Name)
	}
	if tasks[0].RecurringTimeline == nil || *tasks[0].RecurringTimeline != "2023,Q2,Apr" {
		t.Errorf("expected monthly timeline, got %v", tasks[0].RecurringTimeline)
	}
}

func TestRunSlackTaskCreatesThenUpdatesInPlace(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	channel := "#general"
	slackTask, err := models.NewSlackTask(f.workspace.RefID, "bob", &channel,
		"can you look at the deploy?", `--name="Look at the deploy" --eisen=urgent`, genNow)
	if err != nil {
		t.Fatalf("failed to create slack task: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.SlackTasks().Create(context.Background(), slackTask)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetSlackTasks}})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	created := tasks[0]
	if created.Name != "Look at the deploy" {
		t.Errorf("expected name from extra info, got %q", created.Name)
	}
	if created.Eisen != models.EisenUrgent {
		t.Errorf("expected urgent eisen, got %s", created.Eisen)
	}
	if created.Status != models.InboxTaskStatusAccepted {
		t.Errorf("expected accepted status for a push task, got %s", created.Status)
	}
	if created.RecurringTimeline != nil {
		t.Errorf("expected no timeline for a push task, got %q", *created.RecurringTimeline)
	}
	if !slackTask.HasGeneratedTask {
		t.Error("expected slack task to be marked as generated")
	}

	// A later change to the extra info flows into the same inbox task.
	later := genNow.Add(time.Hour)
	slackTask.Update(models.Keep[string](), models.SetTo(`--name="Review the deploy"`), later)
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.SlackTasks().Save(context.Background(), slackTask)
	})
	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetSlackTasks}, RightNow: &later})

	tasks = f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected the single task to be updated in place, got %d", len(tasks))
	}
	if tasks[0].RefID != created.RefID {
		t.Errorf("expected same task %s, got %s", created.RefID, tasks[0].RefID)
	}
	if tasks[0].Name != "Review the deploy" {
		t.Errorf("expected updated name, got %q", tasks[0].Name)
	}
}

func TestRunEmailTask(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	emailTask, err := models.NewEmailTask(f.workspace.RefID, "carol@example.com", "Carol",
		"me@example.com", "Quarterly numbers", "see attached", "", genNow)
	if err != nil {
		t.Fatalf("failed to create email task: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.EmailTasks().Create(context.Background(), emailTask)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetEmailTasks}})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	want := "Respond to Carol <carol@example.com>'s message sent to me@example.com"
	if tasks[0].Name != want {
		t.Errorf("expected default name %q, got %q", want, tasks[0].Name)
	}
	if tasks[0].RecurringTimeline != nil {
		t.Errorf("expected no timeline for a push task, got %q", *tasks[0].RecurringTimeline)
	}
	if !emailTask.HasGeneratedTask {
		t.Error("expected email task to be marked as generated")
	}
}

func TestRunSkipsSuspendedSources(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Stretch",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	habit.Suspend(genNow)
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})

	if tasks := f.tasks(t, storage.InboxTaskFilter{}); len(tasks) != 0 {
		t.Fatalf("expected no tasks for a suspended habit, got %d", len(tasks))
	}
}

func TestRunHonorsSkipRule(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// Day 105 is odd, so the "even" rule suppresses the bucket.
	rule := "even"
	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Swim",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular, SkipRule: &rule}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})

	if tasks := f.tasks(t, storage.InboxTaskFilter{}); len(tasks) != 0 {
		t.Fatalf("expected skip rule to suppress generation, got %d tasks", len(tasks))
	}
}

func TestRunPeriodFilter(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	daily, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Daily",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	weekly, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Weekly",
		models.RecurringTaskGenParams{Period: "weekly", Eisen: models.EisenRegular}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		if err := uow.Habits().Create(context.Background(), daily); err != nil {
			return err
		}
		return uow.Habits().Create(context.Background(), weekly)
	})

	f.run(t, gen.Args{
		Targets:       []models.SyncTarget{models.SyncTargetHabits},
		FilterPeriods: []timeline.Period{timeline.PeriodWeekly},
	})

	tasks := f.tasks(t, storage.InboxTaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected only the weekly habit to generate, got %d tasks", len(tasks))
	}
	if tasks[0].HabitRefID == nil || *tasks[0].HabitRefID != weekly.RefID {
		t.Errorf("expected task for weekly habit, got %v", tasks[0].HabitRefID)
	}
}

func TestRunFeatureGate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.workspace.FeatureFlags[models.FeatureHabits] = false
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Workspaces().Save(context.Background(), f.workspace)
	})

	now := genNow
	err := f.engine.Run(context.Background(), gen.Args{
		WorkspaceRefID: f.workspace.RefID,
		RightNow:       &now,
		Targets:        []models.SyncTarget{models.SyncTargetHabits},
	})
	var unavailable *models.FeatureUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected feature unavailable error, got %v", err)
	}
}

func TestRunUnknownFilterRefID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	now := genNow
	err := f.engine.Run(context.Background(), gen.Args{
		WorkspaceRefID:    f.workspace.RefID,
		RightNow:          &now,
		Targets:           []models.SyncTarget{models.SyncTargetHabits},
		FilterHabitRefIDs: []uuid.UUID{uuid.New()},
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not-found error for unknown habit filter, got %v", err)
	}
}

func TestRunRecordsProgressAndEvents(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Journal",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular}, nil, genNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	f.run(t, gen.Args{Targets: []models.SyncTarget{models.SyncTargetHabits}})

	counts := f.recording.Counts()
	if counts[progress.ActionCreating] != 1 {
		t.Errorf("expected 1 recorded creation, got %d", counts[progress.ActionCreating])
	}

	events := f.store.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	if events[0].EventName != "created" || events[0].EntityKind != "inbox-task" {
		t.Errorf("unexpected audit event %+v", events[0])
	}
}
