package models

import (
	"time"

	"github.com/avancea/ritmo/internal/timeline"
)

// RecurringTaskGenParams bundles everything a recurring source needs to
// describe its generated inbox tasks: cadence, priority, difficulty,
// within-period actionable/due specifiers and the skip rule.
type RecurringTaskGenParams struct {
	Period              timeline.Period     `json:"period"`
	Eisen               Eisen               `json:"eisen"`
	Difficulty          *Difficulty         `json:"difficulty,omitempty"`
	ActionableFromDay   *int                `json:"actionable_from_day,omitempty"`
	ActionableFromMonth *int                `json:"actionable_from_month,omitempty"`
	DueAtTime           *timeline.TimeOfDay `json:"due_at_time,omitempty"`
	DueAtDay            *int                `json:"due_at_day,omitempty"`
	DueAtMonth          *int                `json:"due_at_month,omitempty"`
	SkipRule            *string             `json:"skip_rule,omitempty"`
}

// Validate checks the bundle against its period.
func (p RecurringTaskGenParams) Validate() error {
	if !p.Period.Valid() {
		return NewInputValidationError("invalid period %q", p.Period)
	}
	if !p.Eisen.Valid() {
		return NewInputValidationError("invalid eisenhower priority %q", p.Eisen)
	}
	if p.Difficulty != nil && !p.Difficulty.Valid() {
		return NewInputValidationError("invalid difficulty %q", *p.Difficulty)
	}
	if p.DueAtDay != nil {
		if err := timeline.ValidateDueAtDay(p.Period, *p.DueAtDay); err != nil {
			return NewInputValidationError("%s", err.Error())
		}
	}
	if p.DueAtMonth != nil {
		if err := timeline.ValidateDueAtMonth(p.Period, *p.DueAtMonth); err != nil {
			return NewInputValidationError("%s", err.Error())
		}
	}
	if p.ActionableFromDay != nil {
		if err := timeline.ValidateDueAtDay(p.Period, *p.ActionableFromDay); err != nil {
			return NewInputValidationError("%s", err.Error())
		}
	}
	if p.ActionableFromMonth != nil {
		if err := timeline.ValidateDueAtMonth(p.Period, *p.ActionableFromMonth); err != nil {
			return NewInputValidationError("%s", err.Error())
		}
	}
	if err := timeline.ValidateActionableVsDue(p.ActionableFromMonth, p.ActionableFromDay, p.DueAtMonth, p.DueAtDay); err != nil {
		return NewInputValidationError("%s", err.Error())
	}
	if p.SkipRule != nil && !timeline.KnownSkipRule(*p.SkipRule) {
		return NewInputValidationError("invalid skip rule %q", *p.SkipRule)
	}
	return nil
}

// ScheduleOptions converts the bundle into timeline schedule options for
// the bucket containing rightNow.
func (p RecurringTaskGenParams) ScheduleOptions(name string, rightNow time.Time, loc *time.Location) timeline.ScheduleOptions {
	return timeline.ScheduleOptions{
		Period:              p.Period,
		Name:                name,
		RightNow:            rightNow,
		Location:            loc,
		SkipRule:            p.SkipRule,
		ActionableFromDay:   p.ActionableFromDay,
		ActionableFromMonth: p.ActionableFromMonth,
		DueAtTime:           p.DueAtTime,
		DueAtDay:            p.DueAtDay,
		DueAtMonth:          p.DueAtMonth,
	}
}
