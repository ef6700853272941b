package timeline

import (
	"fmt"
	"strings"
)

// Period represents the cadence of a recurring source.
type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// AllPeriods lists periods in their natural order, smallest first.
var AllPeriods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}

var periodIndex = map[Period]int{
	PeriodDaily:     0,
	PeriodWeekly:    1,
	PeriodMonthly:   2,
	PeriodQuarterly: 3,
	PeriodYearly:    4,
}

// ParsePeriod parses a period from its string form.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid period %q (must be one of daily, weekly, monthly, quarterly, yearly)", s)
	}
	return p, nil
}

// Valid reports whether the period is one of the known values.
func (p Period) Valid() bool {
	_, ok := periodIndex[p]
	return ok
}

// Index returns the position of the period in the natural order, 0 for daily.
func (p Period) Index() int {
	return periodIndex[p]
}

// Less reports whether p is strictly smaller than other.
func (p Period) Less(other Period) bool {
	return periodIndex[p] < periodIndex[other]
}

// OneSmaller returns the next smaller period. Daily has no smaller period.
func (p Period) OneSmaller() (Period, error) {
	idx := periodIndex[p]
	if idx == 0 {
		return "", fmt.Errorf("period %s has no smaller period", p)
	}
	return AllPeriods[idx-1], nil
}

// OneBigger returns the next bigger period. Yearly is fixed at yearly.
func (p Period) OneBigger() Period {
	idx := periodIndex[p]
	if idx == len(AllPeriods)-1 {
		return p
	}
	return AllPeriods[idx+1]
}

func (p Period) String() string {
	return string(p)
}

// DaysInPeriod returns the maximum count of days a due-at-day specifier
// may address for the period. Daily periods admit no day specifier.
func (p Period) DaysInPeriod() int {
	switch p {
	case PeriodWeekly:
		return 7
	case PeriodMonthly:
		return 31
	case PeriodQuarterly:
		return 92
	case PeriodYearly:
		return 366
	default:
		return 0
	}
}

// MonthsInPeriod returns the count of months a due-at-month specifier may
// address for the period. Only quarterly and yearly admit one.
func (p Period) MonthsInPeriod() int {
	switch p {
	case PeriodQuarterly:
		return 3
	case PeriodYearly:
		return 12
	default:
		return 0
	}
}
