// Package genextra parses the free-form option string push tasks carry
// to steer how their inbox task is generated.
package genextra

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/avancea/ritmo/internal/models"
)

// Info is the parsed generation extra info of a push task. Every field
// is optional; absent fields fall back to the push task defaults.
type Info struct {
	Name           *string
	Status         *models.InboxTaskStatus
	Eisen          *models.Eisen
	Difficulty     *models.Difficulty
	ActionableDate *time.Time
	DueDate        *time.Time
}

// Parse parses a command-line-like option string such as
//
//	--name="Reply" --eisen=urgent --due-date=2023-05-01
//
// Unknown flags and malformed values yield an input validation error,
// never a crash. An empty string parses to an empty Info.
func Parse(raw string) (*Info, error) {
	raw = strings.TrimSpace(raw)
	info := &Info{}
	if raw == "" {
		return info, nil
	}

	args, err := splitArgs(raw)
	if err != nil {
		return nil, models.NewInputValidationError("invalid generation extra info: %s", err.Error())
	}

	fs := pflag.NewFlagSet("generation-extra-info", pflag.ContinueOnError)
	fs.Usage = func() {}
	name := fs.String("name", "", "")
	status := fs.String("status", "", "")
	eisen := fs.String("eisen", "", "")
	difficulty := fs.String("difficulty", "", "")
	actionableDate := fs.String("actionable-date", "", "")
	dueDate := fs.String("due-date", "", "")

	if err := fs.Parse(args); err != nil {
		return nil, models.NewInputValidationError("invalid generation extra info: %s", err.Error())
	}
	if len(fs.Args()) > 0 {
		return nil, models.NewInputValidationError("unexpected positional arguments in generation extra info: %v", fs.Args())
	}

	if fs.Changed("name") {
		if strings.TrimSpace(*name) == "" {
			return nil, models.NewInputValidationError("generation extra info name must not be empty")
		}
		info.Name = name
	}
	if fs.Changed("status") {
		s := models.InboxTaskStatus(strings.ToLower(*status))
		if !s.Valid() {
			return nil, models.NewInputValidationError("invalid status %q in generation extra info", *status)
		}
		info.Status = &s
	}
	if fs.Changed("eisen") {
		e := models.Eisen(strings.ToLower(*eisen))
		if !e.Valid() {
			return nil, models.NewInputValidationError("invalid eisenhower priority %q in generation extra info", *eisen)
		}
		info.Eisen = &e
	}
	if fs.Changed("difficulty") {
		d := models.Difficulty(strings.ToLower(*difficulty))
		if !d.Valid() {
			return nil, models.NewInputValidationError("invalid difficulty %q in generation extra info", *difficulty)
		}
		info.Difficulty = &d
	}
	if fs.Changed("actionable-date") {
		t, err := parseDate(*actionableDate)
		if err != nil {
			return nil, err
		}
		info.ActionableDate = &t
	}
	if fs.Changed("due-date") {
		t, err := parseDate(*dueDate)
		if err != nil {
			return nil, err
		}
		info.DueDate = &t
	}

	if info.ActionableDate != nil && info.DueDate != nil && info.ActionableDate.After(*info.DueDate) {
		return nil, models.NewInputValidationError("actionable date %s is after due date %s in generation extra info",
			info.ActionableDate.Format("2006-01-02"), info.DueDate.Format("2006-01-02"))
	}

	return info, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.NewInputValidationError("invalid date %q in generation extra info", s)
}

// splitArgs splits a shell-like string into arguments, honoring single
// and double quotes.
func splitArgs(s string) ([]string, error) {
	var args []string
	var current strings.Builder
	var quote rune
	inArg := false

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
