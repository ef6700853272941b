package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var metricKeyRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Metric is a value-logging entity. When collection params are present
// the generation engine produces a collection inbox task per bucket.
type Metric struct {
	EntityMeta

	WorkspaceRefID          uuid.UUID               `json:"workspace_ref_id"`
	Key                     string                  `json:"key"`
	Name                    string                  `json:"name"`
	Unit                    *string                 `json:"unit,omitempty"`
	CollectionProjectRefID  *uuid.UUID              `json:"collection_project_ref_id,omitempty"`
	CollectionParams        *RecurringTaskGenParams `json:"collection_params,omitempty"`
}

// NewMetric creates a metric after validating its key and optional
// collection parameters.
func NewMetric(workspaceRefID uuid.UUID, key, name string, unit *string, collectionProjectRefID *uuid.UUID, collectionParams *RecurringTaskGenParams, now time.Time) (*Metric, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if !metricKeyRe.MatchString(key) {
		return nil, NewInputValidationError("invalid metric key %q (lowercase letters, digits and dashes)", key)
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewInputValidationError("metric name must not be empty")
	}
	if collectionParams != nil {
		if err := collectionParams.Validate(); err != nil {
			return nil, err
		}
	}
	return &Metric{
		EntityMeta:             NewEntityMeta(now),
		WorkspaceRefID:         workspaceRefID,
		Key:                    key,
		Name:                   name,
		Unit:                   unit,
		CollectionProjectRefID: collectionProjectRefID,
		CollectionParams:       collectionParams,
	}, nil
}

// CollectionTaskName is the name of the generated collection task.
func (m *Metric) CollectionTaskName() string {
	return "Collect value for metric " + m.Name
}

// Update applies change-to actions to the user-editable fields.
func (m *Metric) Update(name UpdateAction[string], collectionProjectRefID UpdateAction[*uuid.UUID], collectionParams UpdateAction[*RecurringTaskGenParams], now time.Time) error {
	newName := name.Apply(m.Name)
	if strings.TrimSpace(newName) == "" {
		return NewInputValidationError("metric name must not be empty")
	}
	newParams := collectionParams.Apply(m.CollectionParams)
	if newParams != nil {
		if err := newParams.Validate(); err != nil {
			return err
		}
	}
	m.Name = newName
	m.CollectionProjectRefID = collectionProjectRefID.Apply(m.CollectionProjectRefID)
	m.CollectionParams = newParams
	m.MarkModified(now)
	return nil
}

// MetricEntry is one logged value of a metric.
type MetricEntry struct {
	EntityMeta

	MetricRefID    uuid.UUID `json:"metric_ref_id"`
	CollectionTime time.Time `json:"collection_time"`
	Value          float64   `json:"value"`
	Notes          string    `json:"notes,omitempty"`
}

// NewMetricEntry logs a value for a metric.
func NewMetricEntry(metricRefID uuid.UUID, collectionTime time.Time, value float64, notes string, now time.Time) *MetricEntry {
	return &MetricEntry{
		EntityMeta:     NewEntityMeta(now),
		MetricRefID:    metricRefID,
		CollectionTime: collectionTime,
		Value:          value,
		Notes:          notes,
	}
}
