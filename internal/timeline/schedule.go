package timeline

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleOptions are the inputs for deriving a Schedule.
type ScheduleOptions struct {
	Period              Period
	Name                string
	RightNow            time.Time
	Location            *time.Location
	SkipRule            *string
	ActionableFromDay   *int
	ActionableFromMonth *int
	DueAtTime           *TimeOfDay
	DueAtDay            *int
	DueAtMonth          *int
}

// Schedule is the derived, immutable view of one period bucket of a
// recurring source: the timeline idempotency key, the day window, the
// decorated name and the concrete actionable/due points.
type Schedule struct {
	Period         Period
	Timeline       string
	FirstDay       time.Time
	EndDay         time.Time
	ActionableDate time.Time
	DueTime        time.Time
	FullName       string

	skip bool
}

// NewSchedule derives the schedule for the period bucket containing
// RightNow in the given location.
func NewSchedule(opts ScheduleOptions) (Schedule, error) {
	if !opts.Period.Valid() {
		return Schedule{}, fmt.Errorf("invalid period %q", opts.Period)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	if opts.DueAtDay != nil {
		if err := ValidateDueAtDay(opts.Period, *opts.DueAtDay); err != nil {
			return Schedule{}, err
		}
	}
	if opts.DueAtMonth != nil {
		if err := ValidateDueAtMonth(opts.Period, *opts.DueAtMonth); err != nil {
			return Schedule{}, err
		}
	}
	if opts.ActionableFromDay != nil {
		if err := ValidateDueAtDay(opts.Period, *opts.ActionableFromDay); err != nil {
			return Schedule{}, err
		}
	}
	if opts.ActionableFromMonth != nil {
		if err := ValidateDueAtMonth(opts.Period, *opts.ActionableFromMonth); err != nil {
			return Schedule{}, err
		}
	}
	if err := ValidateActionableVsDue(opts.ActionableFromMonth, opts.ActionableFromDay, opts.DueAtMonth, opts.DueAtDay); err != nil {
		return Schedule{}, err
	}

	local := opts.RightNow.In(loc)
	firstDay, endDay := periodWindow(opts.Period, local)

	s := Schedule{
		Period:   opts.Period,
		Timeline: timelineString(opts.Period, local),
		FirstDay: firstDay,
		EndDay:   endDay,
		FullName: decorateName(opts.Period, opts.Name, local),
	}

	dueDay := resolveDayWithin(opts.Period, firstDay, endDay, opts.DueAtDay, opts.DueAtMonth)
	if opts.DueAtTime != nil {
		s.DueTime = dueDay.Add(time.Duration(opts.DueAtTime.Hour)*time.Hour + time.Duration(opts.DueAtTime.Minute)*time.Minute)
	} else {
		s.DueTime = endOfDay(dueDay)
	}

	if opts.ActionableFromDay != nil || opts.ActionableFromMonth != nil {
		s.ActionableDate = resolveDayWithin(opts.Period, firstDay, endDay, opts.ActionableFromDay, opts.ActionableFromMonth)
	} else {
		s.ActionableDate = firstDay
	}

	if opts.SkipRule != nil {
		idx, label := bucketOf(opts.Period, local)
		s.skip = shouldSkip(*opts.SkipRule, idx, label)
	}

	return s, nil
}

// ShouldSkip reports whether the skip rule suppresses this bucket.
func (s Schedule) ShouldSkip() bool {
	return s.skip
}

// Contains reports whether t falls inside the schedule's day window.
func (s Schedule) Contains(t time.Time) bool {
	return !t.Before(s.FirstDay) && t.Before(s.EndDay.AddDate(0, 0, 1))
}

// PeriodOfTimeline recovers the period from a canonical timeline string
// by its chunk count.
func PeriodOfTimeline(timeline string) (Period, error) {
	switch strings.Count(timeline, ",") + 1 {
	case 1:
		return PeriodYearly, nil
	case 2:
		return PeriodQuarterly, nil
	case 3:
		return PeriodMonthly, nil
	case 4:
		return PeriodWeekly, nil
	case 5:
		return PeriodDaily, nil
	default:
		return "", fmt.Errorf("timeline %q does not match any period", timeline)
	}
}

// TimelineFor returns the canonical timeline of the period bucket
// containing t in the given location.
func TimelineFor(period Period, t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return timelineString(period, t.In(loc))
}

func periodWindow(period Period, local time.Time) (time.Time, time.Time) {
	loc := local.Location()
	year, month, day := local.Date()
	switch period {
	case PeriodDaily:
		d := time.Date(year, month, day, 0, 0, 0, 0, loc)
		return d, d
	case PeriodWeekly:
		monday := mondayOf(local)
		return monday, monday.AddDate(0, 0, 6)
	case PeriodMonthly:
		first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 1, -1)
	case PeriodQuarterly:
		qStart := time.Month((int(month)-1)/3*3 + 1)
		first := time.Date(year, qStart, 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 3, -1)
	default: // yearly
		first := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return first, time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
	}
}

func timelineString(period Period, local time.Time) string {
	anchor := local
	if period == PeriodWeekly {
		// Weekly chunks come from the Monday so every day of the bucket
		// yields the same key, even in weeks that straddle a month or
		// year boundary.
		anchor = mondayOf(local)
	}
	year := fmt.Sprintf("%d", anchor.Year())
	quarter := fmt.Sprintf("Q%d", (int(anchor.Month())-1)/3+1)
	month := anchor.Format("Jan")
	_, isoWeek := anchor.ISOWeek()
	week := fmt.Sprintf("W%d", isoWeek)
	day := fmt.Sprintf("D%d", anchor.YearDay())

	switch period {
	case PeriodDaily:
		return strings.Join([]string{year, quarter, month, week, day}, ",")
	case PeriodWeekly:
		return strings.Join([]string{year, quarter, month, week}, ",")
	case PeriodMonthly:
		return strings.Join([]string{year, quarter, month}, ",")
	case PeriodQuarterly:
		return strings.Join([]string{year, quarter}, ",")
	default:
		return year
	}
}

// mondayOf returns the Monday of the ISO week containing local, at
// midnight in local's location.
func mondayOf(local time.Time) time.Time {
	year, month, day := local.Date()
	d := time.Date(year, month, day, 0, 0, 0, 0, local.Location())
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func decorateName(period Period, name string, local time.Time) string {
	switch period {
	case PeriodDaily:
		return fmt.Sprintf("%s %s", name, local.Format("Jan 02"))
	case PeriodWeekly:
		monday := mondayOf(local)
		_, isoWeek := monday.ISOWeek()
		return fmt.Sprintf("%s Wk%d %d", name, isoWeek, monday.Year())
	case PeriodMonthly:
		return fmt.Sprintf("%s %s", name, local.Format("Jan 2006"))
	case PeriodQuarterly:
		return fmt.Sprintf("%s Q%d %d", name, (int(local.Month())-1)/3+1, local.Year())
	default:
		return fmt.Sprintf("%s %d", name, local.Year())
	}
}

func bucketOf(period Period, local time.Time) (int, string) {
	switch period {
	case PeriodDaily:
		return local.YearDay(), fmt.Sprintf("D%d", local.YearDay())
	case PeriodWeekly:
		_, isoWeek := local.ISOWeek()
		return isoWeek, fmt.Sprintf("W%d", isoWeek)
	case PeriodMonthly:
		return int(local.Month()), local.Format("Jan")
	case PeriodQuarterly:
		q := (int(local.Month())-1)/3 + 1
		return q, fmt.Sprintf("Q%d", q)
	default:
		return local.Year(), fmt.Sprintf("%d", local.Year())
	}
}

// resolveDayWithin shifts from the period window to the day addressed by
// the day/month specifiers. Day specifiers address days within the period
// (or within the addressed month when a month specifier is present) and
// clamp to the last day when the month is shorter.
func resolveDayWithin(period Period, firstDay, endDay time.Time, daySpec, monthSpec *int) time.Time {
	if daySpec == nil && monthSpec == nil {
		return endDay
	}
	loc := firstDay.Location()
	if monthSpec != nil {
		monthFirst := time.Date(firstDay.Year(), firstDay.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, *monthSpec-1, 0)
		monthLast := monthFirst.AddDate(0, 1, -1)
		if daySpec == nil {
			return monthLast
		}
		d := monthFirst.AddDate(0, 0, *daySpec-1)
		if d.After(monthLast) {
			return monthLast
		}
		return d
	}
	if period == PeriodMonthly {
		// Clamp to the actual month length.
		monthLast := endDay
		d := firstDay.AddDate(0, 0, *daySpec-1)
		if d.After(monthLast) {
			return monthLast
		}
		return d
	}
	d := firstDay.AddDate(0, 0, *daySpec-1)
	if d.After(endDay) {
		return endDay
	}
	return d
}

func endOfDay(day time.Time) time.Time {
	return day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}
