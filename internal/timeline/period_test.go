package timeline

import "testing"

func TestPeriod_Order(t *testing.T) {
	t.Parallel()

	for i := 1; i < len(AllPeriods); i++ {
		if !AllPeriods[i-1].Less(AllPeriods[i]) {
			t.Errorf("Expected %s < %s", AllPeriods[i-1], AllPeriods[i])
		}
	}
}

func TestPeriod_OneSmaller(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period  Period
		smaller Period
		wantErr bool
	}{
		{PeriodYearly, PeriodQuarterly, false},
		{PeriodQuarterly, PeriodMonthly, false},
		{PeriodMonthly, PeriodWeekly, false},
		{PeriodWeekly, PeriodDaily, false},
		{PeriodDaily, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			t.Parallel()
			got, err := tt.period.OneSmaller()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s.OneSmaller()", tt.period)
				}
				return
			}
			if err != nil {
				t.Fatalf("OneSmaller failed: %v", err)
			}
			if got != tt.smaller {
				t.Errorf("Expected %s, got %s", tt.smaller, got)
			}
		})
	}
}

func TestPeriod_OneBigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period Period
		bigger Period
	}{
		{PeriodDaily, PeriodWeekly},
		{PeriodWeekly, PeriodMonthly},
		{PeriodMonthly, PeriodQuarterly},
		{PeriodQuarterly, PeriodYearly},
		{PeriodYearly, PeriodYearly},
	}

	for _, tt := range tests {
		if got := tt.period.OneBigger(); got != tt.bigger {
			t.Errorf("Expected %s.OneBigger() = %s, got %s", tt.period, tt.bigger, got)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	if p, err := ParsePeriod(" Weekly "); err != nil || p != PeriodWeekly {
		t.Errorf("Expected weekly, got %v (%v)", p, err)
	}
	if _, err := ParsePeriod("fortnightly"); err == nil {
		t.Errorf("Expected error for unknown period")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"18:00", "18:00", false},
		{"9:5", "09:05", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Expected error for %q", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) failed: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got.String())
		}
	}
}
