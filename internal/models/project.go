package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var projectKeyRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Project is a named bucket for inbox tasks, habits, chores and big
// plans, addressable by a user-chosen key.
type Project struct {
	EntityMeta

	WorkspaceRefID uuid.UUID `json:"workspace_ref_id"`
	Key            string    `json:"key"`
	Name           string    `json:"name"`
}

// NewProject creates a project after validating its key and name.
func NewProject(workspaceRefID uuid.UUID, key, name string, now time.Time) (*Project, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if !projectKeyRe.MatchString(key) {
		return nil, NewInputValidationError("invalid project key %q (lowercase letters, digits and dashes)", key)
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewInputValidationError("project name must not be empty")
	}
	return &Project{
		EntityMeta:     NewEntityMeta(now),
		WorkspaceRefID: workspaceRefID,
		Key:            key,
		Name:           name,
	}, nil
}

// Rename changes the project display name.
func (p *Project) Rename(name string, now time.Time) error {
	if strings.TrimSpace(name) == "" {
		return NewInputValidationError("project name must not be empty")
	}
	p.Name = name
	p.MarkModified(now)
	return nil
}
