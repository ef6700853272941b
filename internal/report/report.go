// Package report implements the read-only reporting engine: it scopes
// a schedule window around a reference date and classifies inbox tasks
// and big plans into lifecycle buckets, with optional breakdowns by
// project, sub-period, habit, chore and big plan.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/timeline"
)

// Breakdown names one optional section of a report.
type Breakdown string

const (
	BreakdownGlobal   Breakdown = "global"
	BreakdownProjects Breakdown = "projects"
	BreakdownPeriods  Breakdown = "periods"
	BreakdownBigPlans Breakdown = "big-plans"
	BreakdownHabits   Breakdown = "habits"
	BreakdownChores   Breakdown = "chores"
)

// AllBreakdowns lists every report section.
var AllBreakdowns = []Breakdown{
	BreakdownGlobal,
	BreakdownProjects,
	BreakdownPeriods,
	BreakdownBigPlans,
	BreakdownHabits,
	BreakdownChores,
}

// Valid reports whether the value is a known breakdown.
func (b Breakdown) Valid() bool {
	for _, known := range AllBreakdowns {
		if b == known {
			return true
		}
	}
	return false
}

// Args are the typed inputs of one report run.
type Args struct {
	WorkspaceRefID      uuid.UUID
	RightNow            *time.Time
	Period              timeline.Period
	BreakdownPeriod     *timeline.Period
	Breakdowns          []Breakdown
	FilterProjectRefIDs []uuid.UUID
	FilterHabitRefIDs   []uuid.UUID
	FilterChoreRefIDs   []uuid.UUID
	FilterBigPlanRefIDs []uuid.UUID
	FilterSources       []models.InboxTaskSource
	ShowArchived        bool
}

// Counter is a bucket count with a per-source split.
type Counter struct {
	Total    int                             `json:"total"`
	BySource map[models.InboxTaskSource]int  `json:"by_source"`
}

func newCounter() Counter {
	return Counter{BySource: make(map[models.InboxTaskSource]int)}
}

func (c *Counter) add(source models.InboxTaskSource) {
	c.Total++
	c.BySource[source]++
}

// InboxTasksSummary is the five-bucket classification of inbox tasks.
type InboxTasksSummary struct {
	Created  Counter `json:"created"`
	Accepted Counter `json:"accepted"`
	Working  Counter `json:"working"`
	NotDone  Counter `json:"not_done"`
	Done     Counter `json:"done"`
}

func newInboxTasksSummary() *InboxTasksSummary {
	return &InboxTasksSummary{
		Created:  newCounter(),
		Accepted: newCounter(),
		Working:  newCounter(),
		NotDone:  newCounter(),
		Done:     newCounter(),
	}
}

// add classifies one task against the window. Created counts
// independently; the lifecycle buckets are mutually exclusive.
func (s *InboxTasksSummary) add(task *models.InboxTask, contains func(time.Time) bool) {
	if contains(task.CreatedTime) {
		s.Created.add(task.Source)
	}
	switch {
	case task.Status == models.InboxTaskStatusDone && task.CompletedTime != nil && contains(*task.CompletedTime):
		s.Done.add(task.Source)
	case task.Status == models.InboxTaskStatusNotDone && task.CompletedTime != nil && contains(*task.CompletedTime):
		s.NotDone.add(task.Source)
	case task.Status.IsWorking() && task.WorkingTime != nil && contains(*task.WorkingTime):
		s.Working.add(task.Source)
	case task.Status.IsAccepted() && task.AcceptedTime != nil && contains(*task.AcceptedTime):
		s.Accepted.add(task.Source)
	}
}

// BigPlansSummary is the five-bucket classification of big plans, with
// the names of finished plans spelled out.
type BigPlansSummary struct {
	Created      int      `json:"created"`
	Accepted     int      `json:"accepted"`
	Working      int      `json:"working"`
	NotDone      int      `json:"not_done"`
	Done         int      `json:"done"`
	NotDoneNames []string `json:"not_done_names"`
	DoneNames    []string `json:"done_names"`
}

func (s *BigPlansSummary) add(plan *models.BigPlan, contains func(time.Time) bool) {
	if contains(plan.CreatedTime) {
		s.Created++
	}
	switch {
	case plan.Status == models.BigPlanStatusDone && plan.CompletedTime != nil && contains(*plan.CompletedTime):
		s.Done++
		s.DoneNames = append(s.DoneNames, plan.Name)
	case plan.Status == models.BigPlanStatusNotDone && plan.CompletedTime != nil && contains(*plan.CompletedTime):
		s.NotDone++
		s.NotDoneNames = append(s.NotDoneNames, plan.Name)
	case plan.Status.IsWorking() && plan.WorkingTime != nil && contains(*plan.WorkingTime):
		s.Working++
	case plan.Status.IsAccepted() && plan.AcceptedTime != nil && contains(*plan.AcceptedTime):
		s.Accepted++
	}
}

// ProjectSummary is the per-project pair of summaries.
type ProjectSummary struct {
	RefID      uuid.UUID          `json:"ref_id"`
	Name       string             `json:"name"`
	InboxTasks *InboxTasksSummary `json:"inbox_tasks"`
	BigPlans   *BigPlansSummary   `json:"big_plans"`
}

// PeriodSummary is the pair of summaries for one sub-period bucket.
type PeriodSummary struct {
	Timeline   string             `json:"timeline"`
	InboxTasks *InboxTasksSummary `json:"inbox_tasks"`
	BigPlans   *BigPlansSummary   `json:"big_plans"`
}

// RecurringTaskSummary is the per-habit (or per-chore) report entry.
type RecurringTaskSummary struct {
	RefID   uuid.UUID          `json:"ref_id"`
	Name    string             `json:"name"`
	Period  timeline.Period    `json:"period"`
	Summary *InboxTasksSummary `json:"summary"`

	RatioDone    float64 `json:"ratio_done"`
	RatioNotDone float64 `json:"ratio_not_done"`

	CurrentStreakSize       int                         `json:"current_streak_size"`
	LongestStreakSize       int                         `json:"longest_streak_size"`
	ZeroStreakSizeHistogram map[int]int                 `json:"zero_streak_size_histogram"`
	OneStreakSizeHistogram  map[int]int                 `json:"one_streak_size_histogram"`
	AvgDoneTotal            float64                     `json:"avg_done_total"`
	AvgDoneLastPeriod       map[timeline.Period]float64 `json:"avg_done_last_period"`
	StreakPlot              string                      `json:"streak_plot,omitempty"`
}

// BigPlanSummary is the per-big-plan report entry.
type BigPlanSummary struct {
	RefID   uuid.UUID            `json:"ref_id"`
	Name    string               `json:"name"`
	Status  models.BigPlanStatus `json:"status"`
	Summary *InboxTasksSummary   `json:"summary"`
}

// Result is a full report.
type Result struct {
	Timeline string          `json:"timeline"`
	Period   timeline.Period `json:"period"`

	GlobalInboxTasksSummary *InboxTasksSummary      `json:"global_inbox_tasks_summary,omitempty"`
	GlobalBigPlansSummary   *BigPlansSummary        `json:"global_big_plans_summary,omitempty"`
	PerProjectBreakdown     []*ProjectSummary       `json:"per_project_breakdown,omitempty"`
	PerPeriodBreakdown      []*PeriodSummary        `json:"per_period_breakdown,omitempty"`
	PerHabitBreakdown       []*RecurringTaskSummary `json:"per_habit_breakdown,omitempty"`
	PerChoreBreakdown       []*RecurringTaskSummary `json:"per_chore_breakdown,omitempty"`
	PerBigPlanBreakdown     []*BigPlanSummary       `json:"per_big_plan_breakdown,omitempty"`
}

// Engine builds reports. It is read-only: a run opens a single unit of
// work and never writes through it.
type Engine struct {
	store storage.Store
	log   *zap.Logger
}

// New creates a reporting engine.
func New(store storage.Store, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Run builds the report for the period bucket containing the reference
// date.
func (e *Engine) Run(ctx context.Context, args Args) (*Result, error) {
	if !args.Period.Valid() {
		return nil, models.NewInputValidationError("invalid report period %q", args.Period)
	}
	breakdowns := args.Breakdowns
	if len(breakdowns) == 0 {
		breakdowns = AllBreakdowns
	}
	for _, breakdown := range breakdowns {
		if !breakdown.Valid() {
			return nil, models.NewInputValidationError("invalid report breakdown %q", breakdown)
		}
	}
	wants := make(map[Breakdown]bool, len(breakdowns))
	for _, breakdown := range breakdowns {
		wants[breakdown] = true
	}

	breakdownPeriod, err := resolveBreakdownPeriod(args.Period, args.BreakdownPeriod, wants[BreakdownPeriods])
	if err != nil {
		return nil, err
	}

	var workspace *models.Workspace
	if err := e.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		workspace, err = uow.Workspaces().Load(ctx, args.WorkspaceRefID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	loc, err := workspace.Location()
	if err != nil {
		return nil, err
	}
	rightNow := time.Now().In(loc)
	if args.RightNow != nil {
		rightNow = args.RightNow.In(loc)
	}

	window, err := timeline.NewSchedule(timeline.ScheduleOptions{
		Period:   args.Period,
		RightNow: rightNow,
		Location: loc,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Timeline: window.Timeline, Period: args.Period}

	return result, e.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		tasks, err := uow.InboxTasks().FindAll(ctx, workspace.RefID, storage.InboxTaskFilter{
			AllowArchived:       args.ShowArchived,
			FilterProjectRefIDs: args.FilterProjectRefIDs,
			FilterSources:       args.FilterSources,
		})
		if err != nil {
			return fmt.Errorf("failed to load inbox tasks: %w", err)
		}
		plans, err := uow.BigPlans().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived:       args.ShowArchived,
			FilterRefIDs:        args.FilterBigPlanRefIDs,
			FilterProjectRefIDs: args.FilterProjectRefIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to load big plans: %w", err)
		}

		if wants[BreakdownGlobal] {
			result.GlobalInboxTasksSummary = summarizeInboxTasks(tasks, window.Contains)
			result.GlobalBigPlansSummary = summarizeBigPlans(plans, window.Contains)
		}

		if wants[BreakdownProjects] {
			projects, err := uow.Projects().FindAll(ctx, workspace.RefID, storage.EntityFilter{
				AllowArchived: args.ShowArchived,
				FilterRefIDs:  args.FilterProjectRefIDs,
			})
			if err != nil {
				return fmt.Errorf("failed to load projects: %w", err)
			}
			result.PerProjectBreakdown = breakdownByProject(projects, tasks, plans, window.Contains)
		}

		if wants[BreakdownPeriods] {
			subWindows, err := subPeriodWindows(window, breakdownPeriod, loc)
			if err != nil {
				return err
			}
			for _, sub := range subWindows {
				result.PerPeriodBreakdown = append(result.PerPeriodBreakdown, &PeriodSummary{
					Timeline:   sub.Timeline,
					InboxTasks: summarizeInboxTasks(tasks, sub.Contains),
					BigPlans:   summarizeBigPlans(plans, sub.Contains),
				})
			}
		}

		if wants[BreakdownHabits] {
			habits, err := uow.Habits().FindAll(ctx, workspace.RefID, storage.EntityFilter{
				AllowArchived:       args.ShowArchived,
				FilterRefIDs:        args.FilterHabitRefIDs,
				FilterProjectRefIDs: args.FilterProjectRefIDs,
			})
			if err != nil {
				return fmt.Errorf("failed to load habits: %w", err)
			}
			for _, habit := range habits {
				entry := summarizeRecurring(habit.RefID, habit.Name, habit.GenParams.Period,
					tasksLinkedTo(tasks, models.InboxTaskSourceHabit, habit.RefID), window, rightNow, loc, true)
				result.PerHabitBreakdown = append(result.PerHabitBreakdown, entry)
			}
		}

		if wants[BreakdownChores] {
			chores, err := uow.Chores().FindAll(ctx, workspace.RefID, storage.EntityFilter{
				AllowArchived:       args.ShowArchived,
				FilterRefIDs:        args.FilterChoreRefIDs,
				FilterProjectRefIDs: args.FilterProjectRefIDs,
			})
			if err != nil {
				return fmt.Errorf("failed to load chores: %w", err)
			}
			for _, chore := range chores {
				entry := summarizeRecurring(chore.RefID, chore.Name, chore.GenParams.Period,
					tasksLinkedTo(tasks, models.InboxTaskSourceChore, chore.RefID), window, rightNow, loc, false)
				result.PerChoreBreakdown = append(result.PerChoreBreakdown, entry)
			}
		}

		if wants[BreakdownBigPlans] {
			for _, plan := range plans {
				planTasks := tasksLinkedTo(tasks, models.InboxTaskSourceBigPlan, plan.RefID)
				result.PerBigPlanBreakdown = append(result.PerBigPlanBreakdown, &BigPlanSummary{
					RefID:   plan.RefID,
					Name:    plan.Name,
					Status:  plan.Status,
					Summary: summarizeInboxTasks(planTasks, window.Contains),
				})
			}
		}

		return nil
	})
}

// resolveBreakdownPeriod defaults to one-smaller-than-period and rejects
// breakdown periods at or above the report period.
func resolveBreakdownPeriod(period timeline.Period, requested *timeline.Period, wanted bool) (timeline.Period, error) {
	if !wanted {
		return "", nil
	}
	if requested != nil {
		if !requested.Valid() {
			return "", models.NewInputValidationError("invalid breakdown period %q", *requested)
		}
		if !requested.Less(period) {
			return "", models.NewInputValidationError("breakdown period %s must be smaller than the report period %s", *requested, period)
		}
		return *requested, nil
	}
	smaller, err := period.OneSmaller()
	if err != nil {
		return "", models.NewInputValidationError("a %s report cannot break down by sub-period", period)
	}
	return smaller, nil
}

// subPeriodWindows enumerates the sub-period buckets covering the report
// window, in chronological order.
func subPeriodWindows(window timeline.Schedule, sub timeline.Period, loc *time.Location) ([]timeline.Schedule, error) {
	var windows []timeline.Schedule
	seen := make(map[string]bool)
	for day := window.FirstDay; !day.After(window.EndDay); day = day.AddDate(0, 0, 1) {
		key := timeline.TimelineFor(sub, day, loc)
		if seen[key] {
			continue
		}
		seen[key] = true
		schedule, err := timeline.NewSchedule(timeline.ScheduleOptions{
			Period:   sub,
			RightNow: day,
			Location: loc,
		})
		if err != nil {
			return nil, err
		}
		windows = append(windows, schedule)
	}
	return windows, nil
}

func summarizeInboxTasks(tasks []*models.InboxTask, contains func(time.Time) bool) *InboxTasksSummary {
	summary := newInboxTasksSummary()
	for _, task := range tasks {
		summary.add(task, contains)
	}
	return summary
}

func summarizeBigPlans(plans []*models.BigPlan, contains func(time.Time) bool) *BigPlansSummary {
	summary := &BigPlansSummary{}
	for _, plan := range plans {
		summary.add(plan, contains)
	}
	return summary
}

func breakdownByProject(projects []*models.Project, tasks []*models.InboxTask, plans []*models.BigPlan, contains func(time.Time) bool) []*ProjectSummary {
	out := make([]*ProjectSummary, 0, len(projects))
	for _, project := range projects {
		entry := &ProjectSummary{
			RefID:      project.RefID,
			Name:       project.Name,
			InboxTasks: newInboxTasksSummary(),
			BigPlans:   &BigPlansSummary{},
		}
		for _, task := range tasks {
			if task.ProjectRefID == project.RefID {
				entry.InboxTasks.add(task, contains)
			}
		}
		for _, plan := range plans {
			if plan.ProjectRefID == project.RefID {
				entry.BigPlans.add(plan, contains)
			}
		}
		out = append(out, entry)
	}
	return out
}

func tasksLinkedTo(tasks []*models.InboxTask, source models.InboxTaskSource, refID uuid.UUID) []*models.InboxTask {
	var out []*models.InboxTask
	for _, task := range tasks {
		if task.Source != source {
			continue
		}
		if linked := task.SourceRefID(); linked != nil && *linked == refID {
			out = append(out, task)
		}
	}
	return out
}

// summarizeRecurring builds the per-habit or per-chore entry. Streak
// analysis covers tasks created inside the report window; the plot is
// emitted only for habits.
func summarizeRecurring(refID uuid.UUID, name string, period timeline.Period, tasks []*models.InboxTask, window timeline.Schedule, rightNow time.Time, loc *time.Location, withPlot bool) *RecurringTaskSummary {
	var inWindow []*models.InboxTask
	for _, task := range tasks {
		if window.Contains(task.CreatedTime) {
			inWindow = append(inWindow, task)
		}
	}

	analysis := analyzeStreaks(inWindow)

	entry := &RecurringTaskSummary{
		RefID:                   refID,
		Name:                    name,
		Period:                  period,
		Summary:                 summarizeInboxTasks(tasks, window.Contains),
		CurrentStreakSize:       analysis.CurrentStreakSize,
		LongestStreakSize:       analysis.LongestStreakSize,
		ZeroStreakSizeHistogram: analysis.ZeroStreakSizeHistogram,
		OneStreakSizeHistogram:  analysis.OneStreakSizeHistogram,
		AvgDoneTotal:            analysis.avgDone(func(time.Time) bool { return true }),
		AvgDoneLastPeriod:       make(map[timeline.Period]float64),
	}
	if withPlot {
		entry.StreakPlot = analysis.StreakPlot
	}

	total := entry.Summary.Done.Total + entry.Summary.NotDone.Total +
		entry.Summary.Working.Total + entry.Summary.Accepted.Total
	if total > 0 {
		entry.RatioDone = float64(entry.Summary.Done.Total) / float64(total)
		entry.RatioNotDone = float64(entry.Summary.NotDone.Total) / float64(total)
	}

	for p := period; p != timeline.PeriodYearly; {
		p = p.OneBigger()
		sub, err := timeline.NewSchedule(timeline.ScheduleOptions{
			Period:   p,
			RightNow: rightNow,
			Location: loc,
		})
		if err != nil {
			break
		}
		entry.AvgDoneLastPeriod[p] = analysis.avgDone(sub.Contains)
	}

	return entry
}
