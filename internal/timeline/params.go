package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock "HH:MM" due time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid due time %q (expected HH:MM)", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid due time hour %q: %w", parts[0], err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid due time minute %q: %w", parts[1], err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("due time %q out of range", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ValidateDueAtDay checks a due-at-day (or actionable-from-day) specifier
// against the period. The day counts from 1 within the period.
func ValidateDueAtDay(period Period, day int) error {
	max := period.DaysInPeriod()
	if max == 0 {
		return fmt.Errorf("period %s does not admit a day specifier", period)
	}
	if day < 1 || day > max {
		return fmt.Errorf("day specifier %d out of range for period %s (1..%d)", day, period, max)
	}
	return nil
}

// ValidateDueAtMonth checks a due-at-month (or actionable-from-month)
// specifier against the period. Only quarterly and yearly admit months.
func ValidateDueAtMonth(period Period, month int) error {
	max := period.MonthsInPeriod()
	if max == 0 {
		return fmt.Errorf("period %s does not admit a month specifier", period)
	}
	if month < 1 || month > max {
		return fmt.Errorf("month specifier %d out of range for period %s (1..%d)", month, period, max)
	}
	return nil
}

// ValidateActionableVsDue enforces that the actionable point does not fall
// after the due point, comparing (month, day) lexicographically. Nil means
// the specifier is absent and the default (period start or end) applies.
func ValidateActionableVsDue(actionableMonth, actionableDay, dueMonth, dueDay *int) error {
	if actionableDay == nil && actionableMonth == nil {
		return nil
	}
	if dueDay == nil && dueMonth == nil {
		return nil
	}
	am, ad := 1, 1
	if actionableMonth != nil {
		am = *actionableMonth
	}
	if actionableDay != nil {
		ad = *actionableDay
	}
	dm := am
	if dueMonth != nil {
		dm = *dueMonth
	}
	dd := ad
	if dueDay != nil {
		dd = *dueDay
	}
	if am > dm || (am == dm && ad > dd) {
		return fmt.Errorf("actionable specifier (month=%d, day=%d) is after due specifier (month=%d, day=%d)", am, ad, dm, dd)
	}
	return nil
}
