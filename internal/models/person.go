package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PersonRelationship categorizes how the user knows a person.
type PersonRelationship string

const (
	PersonRelationshipFamily       PersonRelationship = "family"
	PersonRelationshipFriend       PersonRelationship = "friend"
	PersonRelationshipAcquaintance PersonRelationship = "acquaintance"
	PersonRelationshipSchoolBuddy  PersonRelationship = "school-buddy"
	PersonRelationshipWorkBuddy    PersonRelationship = "work-buddy"
	PersonRelationshipColleague    PersonRelationship = "colleague"
	PersonRelationshipOther        PersonRelationship = "other"
)

// Valid reports whether the value is a known relationship.
func (r PersonRelationship) Valid() bool {
	switch r {
	case PersonRelationshipFamily, PersonRelationshipFriend, PersonRelationshipAcquaintance,
		PersonRelationshipSchoolBuddy, PersonRelationshipWorkBuddy, PersonRelationshipColleague,
		PersonRelationshipOther:
		return true
	default:
		return false
	}
}

// BirthdayPreparationDays returns how many days before a birthday its
// task becomes actionable. Closer relationships get more lead time.
func (r PersonRelationship) BirthdayPreparationDays() int {
	switch r {
	case PersonRelationshipFamily:
		return 28
	case PersonRelationshipFriend:
		return 14
	default:
		return 7
	}
}

// PersonBirthday is a day-and-month wall-clock birthday.
type PersonBirthday struct {
	Day   int `json:"day"`
	Month int `json:"month"`
}

// Validate checks the birthday is a real calendar day.
func (b PersonBirthday) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return NewInputValidationError("birthday month %d out of range", b.Month)
	}
	// 2000 is a leap year, so Feb 29 birthdays validate.
	daysInMonth := time.Date(2000, time.Month(b.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
	if b.Day < 1 || b.Day > daysInMonth {
		return NewInputValidationError("birthday day %d out of range for month %d", b.Day, b.Month)
	}
	return nil
}

// Person is someone the user keeps in touch with. Catch-up params and a
// birthday each drive their own generated tasks.
type Person struct {
	EntityMeta

	WorkspaceRefID uuid.UUID               `json:"workspace_ref_id"`
	Name           string                  `json:"name"`
	Relationship   PersonRelationship      `json:"relationship"`
	CatchUpParams  *RecurringTaskGenParams `json:"catch_up_params,omitempty"`
	Birthday       *PersonBirthday         `json:"birthday,omitempty"`
}

// NewPerson creates a person after validating the optional catch-up
// params and birthday.
func NewPerson(workspaceRefID uuid.UUID, name string, relationship PersonRelationship, catchUpParams *RecurringTaskGenParams, birthday *PersonBirthday, now time.Time) (*Person, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewInputValidationError("person name must not be empty")
	}
	if !relationship.Valid() {
		return nil, NewInputValidationError("invalid relationship %q", relationship)
	}
	if catchUpParams != nil {
		if err := catchUpParams.Validate(); err != nil {
			return nil, err
		}
	}
	if birthday != nil {
		if err := birthday.Validate(); err != nil {
			return nil, err
		}
	}
	return &Person{
		EntityMeta:     NewEntityMeta(now),
		WorkspaceRefID: workspaceRefID,
		Name:           name,
		Relationship:   relationship,
		CatchUpParams:  catchUpParams,
		Birthday:       birthday,
	}, nil
}

// CatchUpTaskName is the name of the generated catch-up task.
func (p *Person) CatchUpTaskName() string {
	return "Catch up with " + p.Name
}

// BirthdayTaskName is the name of the generated birthday task.
func (p *Person) BirthdayTaskName() string {
	return "Wish happy birthday to " + p.Name
}

// Update applies change-to actions to the user-editable fields.
func (p *Person) Update(name UpdateAction[string], relationship UpdateAction[PersonRelationship], catchUpParams UpdateAction[*RecurringTaskGenParams], birthday UpdateAction[*PersonBirthday], now time.Time) error {
	newName := name.Apply(p.Name)
	if strings.TrimSpace(newName) == "" {
		return NewInputValidationError("person name must not be empty")
	}
	newRelationship := relationship.Apply(p.Relationship)
	if !newRelationship.Valid() {
		return NewInputValidationError("invalid relationship %q", newRelationship)
	}
	newParams := catchUpParams.Apply(p.CatchUpParams)
	if newParams != nil {
		if err := newParams.Validate(); err != nil {
			return err
		}
	}
	newBirthday := birthday.Apply(p.Birthday)
	if newBirthday != nil {
		if err := newBirthday.Validate(); err != nil {
			return err
		}
	}
	p.Name = newName
	p.Relationship = newRelationship
	p.CatchUpParams = newParams
	p.Birthday = newBirthday
	p.MarkModified(now)
	return nil
}
