package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Feature is a workspace-level capability switch.
type Feature string

const (
	FeatureHabits     Feature = "habits"
	FeatureChores     Feature = "chores"
	FeatureMetrics    Feature = "metrics"
	FeaturePersons    Feature = "persons"
	FeatureSlackTasks Feature = "slack-tasks"
	FeatureEmailTasks Feature = "email-tasks"
	FeatureBigPlans   Feature = "big-plans"
	FeatureVacations  Feature = "vacations"
)

// AllFeatures lists every feature flag.
var AllFeatures = []Feature{
	FeatureHabits,
	FeatureChores,
	FeatureMetrics,
	FeaturePersons,
	FeatureSlackTasks,
	FeatureEmailTasks,
	FeatureBigPlans,
	FeatureVacations,
}

// FeatureForSyncTarget maps a generation target onto the feature that
// gates it.
func FeatureForSyncTarget(target SyncTarget) Feature {
	switch target {
	case SyncTargetHabits:
		return FeatureHabits
	case SyncTargetChores:
		return FeatureChores
	case SyncTargetMetrics:
		return FeatureMetrics
	case SyncTargetPersons:
		return FeaturePersons
	case SyncTargetSlackTasks:
		return FeatureSlackTasks
	default:
		return FeatureEmailTasks
	}
}

// Workspace is the tenant root owning every collection.
type Workspace struct {
	EntityMeta

	Name                string           `json:"name"`
	Timezone            string           `json:"timezone"`
	DefaultProjectRefID uuid.UUID        `json:"default_project_ref_id"`
	FeatureFlags        map[Feature]bool `json:"feature_flags"`
}

// NewWorkspace creates a workspace with every feature enabled.
func NewWorkspace(name, timezone string, defaultProjectRefID uuid.UUID, now time.Time) (*Workspace, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewInputValidationError("workspace name must not be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, NewInputValidationError("invalid timezone %q", timezone)
	}
	flags := make(map[Feature]bool, len(AllFeatures))
	for _, f := range AllFeatures {
		flags[f] = true
	}
	return &Workspace{
		EntityMeta:          NewEntityMeta(now),
		Name:                name,
		Timezone:            timezone,
		DefaultProjectRefID: defaultProjectRefID,
		FeatureFlags:        flags,
	}, nil
}

// IsFeatureAvailable reports whether the feature is enabled. Unknown
// flags default to enabled so old rows survive new features.
func (w *Workspace) IsFeatureAvailable(feature Feature) bool {
	enabled, ok := w.FeatureFlags[feature]
	if !ok {
		return true
	}
	return enabled
}

// Location resolves the workspace timezone.
func (w *Workspace) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return nil, NewInputValidationError("invalid workspace timezone %q", w.Timezone)
	}
	return loc, nil
}
