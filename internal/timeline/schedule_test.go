package timeline

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", s, err)
	}
	return parsed
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestNewSchedule_TimelineForms(t *testing.T) {
	t.Parallel()

	ref := mustTime(t, "2023-04-15T09:00:00Z")

	tests := []struct {
		name     string
		period   Period
		timeline string
		chunks   int
	}{
		{"daily", PeriodDaily, "2023,Q2,Apr,W15,D105", 5},
		{"weekly", PeriodWeekly, "2023,Q2,Apr,W15", 4},
		{"monthly", PeriodMonthly, "2023,Q2,Apr", 3},
		{"quarterly", PeriodQuarterly, "2023,Q2", 2},
		{"yearly", PeriodYearly, "2023", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewSchedule(ScheduleOptions{Period: tt.period, Name: "T", RightNow: ref, Location: time.UTC})
			if err != nil {
				t.Fatalf("NewSchedule failed: %v", err)
			}
			if s.Timeline != tt.timeline {
				t.Errorf("Expected timeline %q, got %q", tt.timeline, s.Timeline)
			}
			recovered, err := PeriodOfTimeline(s.Timeline)
			if err != nil {
				t.Fatalf("PeriodOfTimeline failed: %v", err)
			}
			if recovered != tt.period {
				t.Errorf("Expected period %s recovered from timeline, got %s", tt.period, recovered)
			}
		})
	}
}

func TestNewSchedule_DailyDueTime(t *testing.T) {
	t.Parallel()

	dueAt, err := ParseTimeOfDay("18:00")
	if err != nil {
		t.Fatalf("ParseTimeOfDay failed: %v", err)
	}
	s, err := NewSchedule(ScheduleOptions{
		Period:    PeriodDaily,
		Name:      "Meditate",
		RightNow:  mustTime(t, "2023-04-15T09:00:00Z"),
		Location:  time.UTC,
		DueAtTime: &dueAt,
	})
	if err != nil {
		t.Fatalf("NewSchedule failed: %v", err)
	}

	wantDue := mustTime(t, "2023-04-15T18:00:00Z")
	if !s.DueTime.Equal(wantDue) {
		t.Errorf("Expected due time %v, got %v", wantDue, s.DueTime)
	}
	wantActionable := mustTime(t, "2023-04-15T00:00:00Z")
	if !s.ActionableDate.Equal(wantActionable) {
		t.Errorf("Expected actionable date %v, got %v", wantActionable, s.ActionableDate)
	}
	if s.FullName != "Meditate Apr 15" {
		t.Errorf("Expected decorated name, got %q", s.FullName)
	}
}

func TestNewSchedule_WindowBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		period   Period
		ref      string
		firstDay string
		endDay   string
	}{
		{"weekly spans monday to sunday", PeriodWeekly, "2023-04-15T09:00:00Z", "2023-04-10T00:00:00Z", "2023-04-16T00:00:00Z"},
		{"monthly spans whole month", PeriodMonthly, "2023-02-14T12:00:00Z", "2023-02-01T00:00:00Z", "2023-02-28T00:00:00Z"},
		{"quarterly spans three months", PeriodQuarterly, "2023-05-20T00:00:00Z", "2023-04-01T00:00:00Z", "2023-06-30T00:00:00Z"},
		{"yearly spans the year", PeriodYearly, "2023-05-20T00:00:00Z", "2023-01-01T00:00:00Z", "2023-12-31T00:00:00Z"},
		{"daily is a single day", PeriodDaily, "2023-04-15T23:59:00Z", "2023-04-15T00:00:00Z", "2023-04-15T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewSchedule(ScheduleOptions{Period: tt.period, Name: "T", RightNow: mustTime(t, tt.ref), Location: time.UTC})
			if err != nil {
				t.Fatalf("NewSchedule failed: %v", err)
			}
			if !s.FirstDay.Equal(mustTime(t, tt.firstDay)) {
				t.Errorf("Expected first day %s, got %v", tt.firstDay, s.FirstDay)
			}
			if !s.EndDay.Equal(mustTime(t, tt.endDay)) {
				t.Errorf("Expected end day %s, got %v", tt.endDay, s.EndDay)
			}
			if !s.Contains(mustTime(t, tt.ref)) {
				t.Errorf("Expected window to contain the reference time")
			}
		})
	}
}

func TestNewSchedule_TimelineStableWithinBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		inBucket    []string
		outOfBucket string
	}{
		{
			name:        "mid-month week",
			inBucket:    []string{"2023-04-10T00:00:00Z", "2023-04-13T12:30:00Z", "2023-04-16T23:59:00Z"},
			outOfBucket: "2023-04-17T00:00:00Z",
		},
		{
			name:        "week straddling a month boundary",
			inBucket:    []string{"2023-07-31T08:00:00Z", "2023-08-02T12:00:00Z", "2023-08-06T23:00:00Z"},
			outOfBucket: "2023-08-07T00:00:00Z",
		},
		{
			name:        "week straddling a year boundary",
			inBucket:    []string{"2024-12-30T10:00:00Z", "2025-01-01T10:00:00Z", "2025-01-05T23:59:00Z"},
			outOfBucket: "2025-01-06T00:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var schedules []Schedule
			for _, ref := range tt.inBucket {
				s, err := NewSchedule(ScheduleOptions{Period: PeriodWeekly, Name: "T", RightNow: mustTime(t, ref), Location: time.UTC})
				if err != nil {
					t.Fatalf("NewSchedule failed: %v", err)
				}
				schedules = append(schedules, s)
			}
			for _, s := range schedules[1:] {
				if s.Timeline != schedules[0].Timeline {
					t.Errorf("Expected identical timeline within bucket, got %q and %q", schedules[0].Timeline, s.Timeline)
				}
				if !s.FirstDay.Equal(schedules[0].FirstDay) {
					t.Errorf("Expected identical window within bucket, got %v and %v", schedules[0].FirstDay, s.FirstDay)
				}
				if s.FullName != schedules[0].FullName {
					t.Errorf("Expected identical full name within bucket, got %q and %q", schedules[0].FullName, s.FullName)
				}
			}

			s, err := NewSchedule(ScheduleOptions{Period: PeriodWeekly, Name: "T", RightNow: mustTime(t, tt.outOfBucket), Location: time.UTC})
			if err != nil {
				t.Fatalf("NewSchedule failed: %v", err)
			}
			if s.Timeline == schedules[0].Timeline {
				t.Errorf("Expected different timeline outside the bucket, got %q twice", s.Timeline)
			}
		})
	}
}

func TestNewSchedule_DueAtDayAndMonth(t *testing.T) {
	t.Parallel()

	t.Run("weekly due at day", func(t *testing.T) {
		t.Parallel()
		s, err := NewSchedule(ScheduleOptions{
			Period:   PeriodWeekly,
			Name:     "T",
			RightNow: mustTime(t, "2023-04-15T09:00:00Z"),
			Location: time.UTC,
			DueAtDay: intPtr(3),
		})
		if err != nil {
			t.Fatalf("NewSchedule failed: %v", err)
		}
		// Wednesday of the week starting Monday Apr 10.
		want := mustTime(t, "2023-04-12T23:59:59Z")
		if !s.DueTime.Equal(want) {
			t.Errorf("Expected due %v, got %v", want, s.DueTime)
		}
	})

	t.Run("monthly due clamps to month length", func(t *testing.T) {
		t.Parallel()
		s, err := NewSchedule(ScheduleOptions{
			Period:   PeriodMonthly,
			Name:     "T",
			RightNow: mustTime(t, "2023-02-10T09:00:00Z"),
			Location: time.UTC,
			DueAtDay: intPtr(31),
		})
		if err != nil {
			t.Fatalf("NewSchedule failed: %v", err)
		}
		want := mustTime(t, "2023-02-28T23:59:59Z")
		if !s.DueTime.Equal(want) {
			t.Errorf("Expected due clamped to %v, got %v", want, s.DueTime)
		}
	})

	t.Run("yearly due at month and day", func(t *testing.T) {
		t.Parallel()
		s, err := NewSchedule(ScheduleOptions{
			Period:     PeriodYearly,
			Name:       "T",
			RightNow:   mustTime(t, "2023-02-10T09:00:00Z"),
			Location:   time.UTC,
			DueAtDay:   intPtr(24),
			DueAtMonth: intPtr(6),
		})
		if err != nil {
			t.Fatalf("NewSchedule failed: %v", err)
		}
		want := mustTime(t, "2023-06-24T23:59:59Z")
		if !s.DueTime.Equal(want) {
			t.Errorf("Expected due %v, got %v", want, s.DueTime)
		}
	})

	t.Run("out of range day is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewSchedule(ScheduleOptions{
			Period:   PeriodWeekly,
			Name:     "T",
			RightNow: mustTime(t, "2023-04-15T09:00:00Z"),
			Location: time.UTC,
			DueAtDay: intPtr(8),
		})
		if err == nil {
			t.Fatalf("Expected error for day 8 in a weekly period")
		}
	})

	t.Run("day specifier rejected for daily", func(t *testing.T) {
		t.Parallel()
		_, err := NewSchedule(ScheduleOptions{
			Period:   PeriodDaily,
			Name:     "T",
			RightNow: mustTime(t, "2023-04-15T09:00:00Z"),
			Location: time.UTC,
			DueAtDay: intPtr(1),
		})
		if err == nil {
			t.Fatalf("Expected error for a day specifier on a daily period")
		}
	})
}

func TestNewSchedule_ActionableFrom(t *testing.T) {
	t.Parallel()

	s, err := NewSchedule(ScheduleOptions{
		Period:            PeriodMonthly,
		Name:              "T",
		RightNow:          mustTime(t, "2023-04-15T09:00:00Z"),
		Location:          time.UTC,
		ActionableFromDay: intPtr(10),
		DueAtDay:          intPtr(25),
	})
	if err != nil {
		t.Fatalf("NewSchedule failed: %v", err)
	}
	if !s.ActionableDate.Equal(mustTime(t, "2023-04-10T00:00:00Z")) {
		t.Errorf("Expected actionable Apr 10, got %v", s.ActionableDate)
	}
	if !s.DueTime.Equal(mustTime(t, "2023-04-25T23:59:59Z")) {
		t.Errorf("Expected due Apr 25, got %v", s.DueTime)
	}
	if s.DueTime.Before(s.ActionableDate) {
		t.Errorf("Expected actionable before due")
	}

	_, err = NewSchedule(ScheduleOptions{
		Period:            PeriodMonthly,
		Name:              "T",
		RightNow:          mustTime(t, "2023-04-15T09:00:00Z"),
		Location:          time.UTC,
		ActionableFromDay: intPtr(25),
		DueAtDay:          intPtr(10),
	})
	if err == nil {
		t.Fatalf("Expected error when actionable is after due")
	}
}

func TestNewSchedule_FullNames(t *testing.T) {
	t.Parallel()

	ref := mustTime(t, "2023-04-15T09:00:00Z")
	tests := []struct {
		period Period
		want   string
	}{
		{PeriodDaily, "Stretch Apr 15"},
		{PeriodWeekly, "Stretch Wk15 2023"},
		{PeriodMonthly, "Stretch Apr 2023"},
		{PeriodQuarterly, "Stretch Q2 2023"},
		{PeriodYearly, "Stretch 2023"},
	}
	for _, tt := range tests {
		s, err := NewSchedule(ScheduleOptions{Period: tt.period, Name: "Stretch", RightNow: ref, Location: time.UTC})
		if err != nil {
			t.Fatalf("NewSchedule failed: %v", err)
		}
		if s.FullName != tt.want {
			t.Errorf("Expected full name %q, got %q", tt.want, s.FullName)
		}
	}
}

func TestNewSchedule_SkipRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		period   Period
		ref      string
		rule     string
		wantSkip bool
	}{
		{"every 2 skips odd weeks", PeriodWeekly, "2023-04-15T09:00:00Z", "every 2", true},  // W15
		{"every 3 keeps multiples", PeriodWeekly, "2023-04-15T09:00:00Z", "every 3", false}, // 15 % 3 == 0
		{"odd skips odd buckets", PeriodWeekly, "2023-04-15T09:00:00Z", "odd", true},
		{"even keeps odd buckets", PeriodWeekly, "2023-04-15T09:00:00Z", "even", false},
		{"label list matches week label", PeriodWeekly, "2023-04-15T09:00:00Z", "W15 W20", true},
		{"label list misses", PeriodWeekly, "2023-04-15T09:00:00Z", "W20 W21", false},
		{"month label", PeriodMonthly, "2023-04-15T09:00:00Z", "apr", true},
		{"unknown rule never skips", PeriodWeekly, "2023-04-15T09:00:00Z", "every", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewSchedule(ScheduleOptions{
				Period:   tt.period,
				Name:     "T",
				RightNow: mustTime(t, tt.ref),
				Location: time.UTC,
				SkipRule: strPtr(tt.rule),
			})
			if err != nil {
				t.Fatalf("NewSchedule failed: %v", err)
			}
			if s.ShouldSkip() != tt.wantSkip {
				t.Errorf("Expected ShouldSkip=%v for rule %q, got %v", tt.wantSkip, tt.rule, s.ShouldSkip())
			}
		})
	}
}

func TestNewSchedule_TimezoneBuckets(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	// 01:00 UTC on Apr 16 is still Apr 15 in New York.
	s, err := NewSchedule(ScheduleOptions{
		Period:   PeriodDaily,
		Name:     "T",
		RightNow: mustTime(t, "2023-04-16T01:00:00Z"),
		Location: loc,
	})
	if err != nil {
		t.Fatalf("NewSchedule failed: %v", err)
	}
	if s.Timeline != "2023,Q2,Apr,W15,D105" {
		t.Errorf("Expected bucket computed in local timezone, got %q", s.Timeline)
	}
}
