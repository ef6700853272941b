package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/report"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/storage/memstore"
	"github.com/avancea/ritmo/internal/timeline"
)

// Saturday of ISO week 15, 2023.
var reportNow = time.Date(2023, 4, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memstore.Store
	engine    *report.Engine
	workspace *models.Workspace
	project   *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()

	project, err := models.NewProject(uuid.New(), "personal", "Personal", reportNow)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	workspace, err := models.NewWorkspace("Test Workspace", "UTC", project.RefID, reportNow)
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
		engine:    report.New(store, zap.NewNop()),
		workspace: workspace,
		project:   project,
	}
}

func (f *fixture) seed(t *testing.T, fn func(uow storage.UnitOfWork) error) {
	t.Helper()
	if err := f.store.RunInTx(context.Background(), fn); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
}

func (f *fixture) run(t *testing.T, args report.Args) *report.Result {
	t.Helper()
	args.WorkspaceRefID = f.workspace.RefID
	if args.RightNow == nil {
		now := reportNow
		args.RightNow = &now
	}
	result, err := f.engine.Run(context.Background(), args)
	if err != nil {
		t.Fatalf("report run failed: %v", err)
	}
	return result
}

// habitTask creates a generated habit task created at the given time and
// optionally completed with the given status at the same moment.
func habitTask(t *testing.T, f *fixture, habit *models.Habit, createdAt time.Time, status models.InboxTaskStatus) *models.InboxTask {
	t.Helper()
	tl := timeline.TimelineFor(timeline.PeriodDaily, createdAt, time.UTC)
	task := models.NewGeneratedInboxTask(models.GeneratedTaskSeed{
		WorkspaceRefID: f.workspace.RefID,
		ProjectRefID:   f.project.RefID,
		Source:         models.InboxTaskSourceHabit,
		SourceRefID:    habit.RefID,
		Name:           habit.Name,
		Eisen:          models.EisenRegular,
		Timeline:       tl,
		GenRightNow:    createdAt,
	}, createdAt)
	if status != models.InboxTaskStatusRecurring {
		if err := task.UpdateStatus(status, createdAt); err != nil {
			t.Fatalf("failed to set task status: %v", err)
		}
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.InboxTasks().Create(context.Background(), task)
	})
	return task
}

func TestRunGlobalSummaryBuckets(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	monday := time.Date(2023, 4, 10, 9, 0, 0, 0, time.UTC)

	done, err := models.NewInboxTask(f.workspace.RefID, f.project.RefID, "Ship it", models.EisenRegular, nil, nil, nil, monday)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if err := done.UpdateStatus(models.InboxTaskStatusDone, monday.Add(time.Hour)); err != nil {
		t.Fatalf("failed to complete task: %v", err)
	}
	working, err := models.NewInboxTask(f.workspace.RefID, f.project.RefID, "Draft it", models.EisenRegular, nil, nil, nil, monday)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if err := working.UpdateStatus(models.InboxTaskStatusInProgress, monday.Add(time.Hour)); err != nil {
		t.Fatalf("failed to start task: %v", err)
	}
	accepted, err := models.NewInboxTask(f.workspace.RefID, f.project.RefID, "Plan it", models.EisenRegular, nil, nil, nil, monday)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	// Created before the window: counts in lifecycle buckets only.
	stale, err := models.NewInboxTask(f.workspace.RefID, f.project.RefID, "Old one", models.EisenRegular, nil, nil, nil, monday.AddDate(0, -1, 0))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if err := stale.UpdateStatus(models.InboxTaskStatusNotDone, monday); err != nil {
		t.Fatalf("failed to close task: %v", err)
	}

	f.seed(t, func(uow storage.UnitOfWork) error {
		for _, task := range []*models.InboxTask{done, working, accepted, stale} {
			if err := uow.InboxTasks().Create(context.Background(), task); err != nil {
				return err
			}
		}
		return nil
	})

	result := f.run(t, report.Args{
		Period:     timeline.PeriodWeekly,
		Breakdowns: []report.Breakdown{report.BreakdownGlobal},
	})

	summary := result.GlobalInboxTasksSummary
	if summary == nil {
		t.Fatal("expected a global inbox tasks summary")
	}
	if summary.Created.Total != 3 {
		t.Errorf("expected 3 created in window, got %d", summary.Created.Total)
	}
	if summary.Done.Total != 1 || summary.Working.Total != 1 || summary.Accepted.Total != 1 || summary.NotDone.Total != 1 {
		t.Errorf("unexpected bucket totals: done=%d working=%d accepted=%d not_done=%d",
			summary.Done.Total, summary.Working.Total, summary.Accepted.Total, summary.NotDone.Total)
	}
	if summary.Done.BySource[models.InboxTaskSourceUser] != 1 {
		t.Errorf("expected done bucket keyed by user source, got %v", summary.Done.BySource)
	}
	if result.Timeline != "2023,Q2,Apr,W15" {
		t.Errorf("expected weekly timeline, got %q", result.Timeline)
	}
}

func TestRunStreakPlot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Meditate",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular}, nil, reportNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	statuses := []models.InboxTaskStatus{
		models.InboxTaskStatusDone,
		models.InboxTaskStatusDone,
		models.InboxTaskStatusNotDone,
		models.InboxTaskStatusDone,
		models.InboxTaskStatusDone,
		models.InboxTaskStatusDone,
		models.InboxTaskStatusDone,
	}
	monday := time.Date(2023, 4, 10, 8, 0, 0, 0, time.UTC)
	for i, status := range statuses {
		habitTask(t, f, habit, monday.AddDate(0, 0, i), status)
	}

	result := f.run(t, report.Args{
		Period:     timeline.PeriodWeekly,
		Breakdowns: []report.Breakdown{report.BreakdownHabits},
	})

	if len(result.PerHabitBreakdown) != 1 {
		t.Fatalf("expected 1 habit entry, got %d", len(result.PerHabitBreakdown))
	}
	entry := result.PerHabitBreakdown[0]
	if entry.StreakPlot != "XX.XXXX" {
		t.Errorf("expected streak plot XX.XXXX, got %q", entry.StreakPlot)
	}
	if entry.CurrentStreakSize != 4 {
		t.Errorf("expected current streak 4, got %d", entry.CurrentStreakSize)
	}
	if entry.LongestStreakSize != 4 {
		t.Errorf("expected longest streak 4, got %d", entry.LongestStreakSize)
	}
	if entry.OneStreakSizeHistogram[7] != 1 {
		t.Errorf("expected one-tolerant histogram {7:1}, got %v", entry.OneStreakSizeHistogram)
	}
	if entry.ZeroStreakSizeHistogram[2] != 1 || entry.ZeroStreakSizeHistogram[4] != 1 {
		t.Errorf("expected strict histogram {2:1 4:1}, got %v", entry.ZeroStreakSizeHistogram)
	}
	if entry.AvgDoneTotal != 1.0 {
		t.Errorf("expected avg done 1.0 with tolerance, got %f", entry.AvgDoneTotal)
	}
	if got := entry.AvgDoneLastPeriod[timeline.PeriodWeekly]; got != 1.0 {
		t.Errorf("expected weekly avg done 1.0, got %f", got)
	}
}

func TestRunStreakTrailingOpenTask(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	habit, err := models.NewHabit(f.workspace.RefID, f.project.RefID, "Journal",
		models.RecurringTaskGenParams{Period: "daily", Eisen: models.EisenRegular}, nil, reportNow)
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Habits().Create(context.Background(), habit)
	})

	monday := time.Date(2023, 4, 10, 8, 0, 0, 0, time.UTC)
	habitTask(t, f, habit, monday, models.InboxTaskStatusDone)
	habitTask(t, f, habit, monday.AddDate(0, 0, 1), models.InboxTaskStatusDone)
	// Today's task is still open.
	habitTask(t, f, habit, monday.AddDate(0, 0, 2), models.InboxTaskStatusRecurring)

	result := f.run(t, report.Args{
		Period:     timeline.PeriodWeekly,
		Breakdowns: []report.Breakdown{report.BreakdownHabits},
	})

	entry := result.PerHabitBreakdown[0]
	if entry.StreakPlot != "XX?" {
		t.Errorf("expected streak plot XX?, got %q", entry.StreakPlot)
	}
	if entry.CurrentStreakSize != 2 {
		t.Errorf("expected open task to preserve the streak, got %d", entry.CurrentStreakSize)
	}
}

func TestRunPeriodBreakdown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	task, err := models.NewInboxTask(f.workspace.RefID, f.project.RefID, "One thing", models.EisenRegular, nil, nil, nil,
		time.Date(2023, 4, 12, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.InboxTasks().Create(context.Background(), task)
	})

	result := f.run(t, report.Args{
		Period:     timeline.PeriodMonthly,
		Breakdowns: []report.Breakdown{report.BreakdownPeriods},
	})

	// April 2023 spans ISO weeks 13 through 17.
	if len(result.PerPeriodBreakdown) != 5 {
		t.Fatalf("expected 5 weekly sub-windows for April, got %d", len(result.PerPeriodBreakdown))
	}
	created := 0
	for _, sub := range result.PerPeriodBreakdown {
		created += sub.InboxTasks.Created.Total
		if sub.InboxTasks.Created.Total > 0 && sub.Timeline != "2023,Q2,Apr,W15" {
			t.Errorf("expected the task in week 15, got %q", sub.Timeline)
		}
	}
	if created != 1 {
		t.Errorf("expected the task counted exactly once across sub-windows, got %d", created)
	}
}

func TestRunRejectsDailyPeriodBreakdown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	now := reportNow
	_, err := f.engine.Run(context.Background(), report.Args{
		WorkspaceRefID: f.workspace.RefID,
		RightNow:       &now,
		Period:         timeline.PeriodDaily,
		Breakdowns:     []report.Breakdown{report.BreakdownPeriods},
	})
	if !models.IsInputValidationError(err) {
		t.Fatalf("expected input validation error for daily sub-period breakdown, got %v", err)
	}
}

func TestRunRejectsBreakdownPeriodNotSmaller(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	now := reportNow
	monthly := timeline.PeriodMonthly
	_, err := f.engine.Run(context.Background(), report.Args{
		WorkspaceRefID:  f.workspace.RefID,
		RightNow:        &now,
		Period:          timeline.PeriodMonthly,
		BreakdownPeriod: &monthly,
		Breakdowns:      []report.Breakdown{report.BreakdownPeriods},
	})
	if !models.IsInputValidationError(err) {
		t.Fatalf("expected input validation error for equal breakdown period, got %v", err)
	}
}

func TestRunBigPlanSummaries(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	monday := time.Date(2023, 4, 10, 9, 0, 0, 0, time.UTC)
	shipped, err := models.NewBigPlan(f.workspace.RefID, f.project.RefID, "Launch the blog", nil, nil, monday)
	if err != nil {
		t.Fatalf("failed to create big plan: %v", err)
	}
	if err := shipped.UpdateStatus(models.BigPlanStatusDone, monday.Add(2*time.Hour)); err != nil {
		t.Fatalf("failed to finish big plan: %v", err)
	}
	abandoned, err := models.NewBigPlan(f.workspace.RefID, f.project.RefID, "Learn the banjo", nil, nil, monday)
	if err != nil {
		t.Fatalf("failed to create big plan: %v", err)
	}
	if err := abandoned.UpdateStatus(models.BigPlanStatusNotDone, monday.Add(3*time.Hour)); err != nil {
		t.Fatalf("failed to abandon big plan: %v", err)
	}

	subtask, err := models.NewInboxTaskForBigPlan(f.workspace.RefID, shipped, "Write first post", models.EisenRegular, nil, monday)
	if err != nil {
		t.Fatalf("failed to create big plan task: %v", err)
	}
	if err := subtask.UpdateStatus(models.InboxTaskStatusDone, monday.Add(time.Hour)); err != nil {
		t.Fatalf("failed to complete big plan task: %v", err)
	}

	f.seed(t, func(uow storage.UnitOfWork) error {
		if err := uow.BigPlans().Create(context.Background(), shipped); err != nil {
			return err
		}
		if err := uow.BigPlans().Create(context.Background(), abandoned); err != nil {
			return err
		}
		return uow.InboxTasks().Create(context.Background(), subtask)
	})

	result := f.run(t, report.Args{
		Period:     timeline.PeriodWeekly,
		Breakdowns: []report.Breakdown{report.BreakdownGlobal, report.BreakdownBigPlans},
	})

	global := result.GlobalBigPlansSummary
	if global == nil {
		t.Fatal("expected a global big plans summary")
	}
	if global.Done != 1 || global.NotDone != 1 {
		t.Errorf("expected done=1 not_done=1, got done=%d not_done=%d", global.Done, global.NotDone)
	}
	if len(global.DoneNames) != 1 || global.DoneNames[0] != "Launch the blog" {
		t.Errorf("expected done names [Launch the blog], got %v", global.DoneNames)
	}
	if len(global.NotDoneNames) != 1 || global.NotDoneNames[0] != "Learn the banjo" {
		t.Errorf("expected not-done names [Learn the banjo], got %v", global.NotDoneNames)
	}

	if len(result.PerBigPlanBreakdown) != 2 {
		t.Fatalf("expected 2 big plan entries, got %d", len(result.PerBigPlanBreakdown))
	}
	for _, entry := range result.PerBigPlanBreakdown {
		if entry.RefID == shipped.RefID && entry.Summary.Done.Total != 1 {
			t.Errorf("expected the shipped plan to have 1 done task, got %d", entry.Summary.Done.Total)
		}
	}
}

func TestRunPerProjectBreakdown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	other, err := models.NewProject(f.workspace.RefID, "work", "Work", reportNow)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	monday := time.Date(2023, 4, 10, 9, 0, 0, 0, time.UTC)
	task, err := models.NewInboxTask(f.workspace.RefID, other.RefID, "Fill timesheet", models.EisenRegular, nil, nil, nil, monday)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		if err := uow.Projects().Create(context.Background(), other); err != nil {
			return err
		}
		return uow.InboxTasks().Create(context.Background(), task)
	})

	result := f.run(t, report.Args{
		Period:     timeline.PeriodWeekly,
		Breakdowns: []report.Breakdown{report.BreakdownProjects},
	})

	if len(result.PerProjectBreakdown) != 2 {
		t.Fatalf("expected 2 project entries, got %d", len(result.PerProjectBreakdown))
	}
	for _, entry := range result.PerProjectBreakdown {
		want := 0
		if entry.RefID == other.RefID {
			want = 1
		}
		if entry.InboxTasks.Created.Total != want {
			t.Errorf("project %s: expected %d created, got %d", entry.Name, want, entry.InboxTasks.Created.Total)
		}
	}
}

func TestRunChoreBreakdownHasNoPlot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	chore, err := models.NewChore(f.workspace.RefID, f.project.RefID, "Take out trash",
		models.RecurringTaskGenParams{Period: "weekly", Eisen: models.EisenRegular}, false, nil, nil, reportNow)
	if err != nil {
		t.Fatalf("failed to create chore: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.Chores().Create(context.Background(), chore)
	})

	monday := time.Date(2023, 4, 10, 8, 0, 0, 0, time.UTC)
	task := models.NewGeneratedInboxTask(models.GeneratedTaskSeed{
		WorkspaceRefID: f.workspace.RefID,
		ProjectRefID:   f.project.RefID,
		Source:         models.InboxTaskSourceChore,
		SourceRefID:    chore.RefID,
		Name:           "Take out trash Wk15 2023",
		Eisen:          models.EisenRegular,
		Timeline:       "2023,Q2,Apr,W15",
		GenRightNow:    monday,
	}, monday)
	if err := task.UpdateStatus(models.InboxTaskStatusDone, monday.Add(time.Hour)); err != nil {
		t.Fatalf("failed to complete chore task: %v", err)
	}
	f.seed(t, func(uow storage.UnitOfWork) error {
		return uow.InboxTasks().Create(context.Background(), task)
	})

	result := f.run(t, report.Args{
		Period:     timeline.PeriodWeekly,
		Breakdowns: []report.Breakdown{report.BreakdownChores},
	})

	if len(result.PerChoreBreakdown) != 1 {
		t.Fatalf("expected 1 chore entry, got %d", len(result.PerChoreBreakdown))
	}
	entry := result.PerChoreBreakdown[0]
	if entry.StreakPlot != "" {
		t.Errorf("expected no streak plot for chores, got %q", entry.StreakPlot)
	}
	if entry.Summary.Done.Total != 1 {
		t.Errorf("expected 1 done chore task, got %d", entry.Summary.Done.Total)
	}
}
