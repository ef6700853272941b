package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/validation"
)

// MetricHandler handles metric and metric entry requests
type MetricHandler struct {
	store storage.Store
}

// NewMetricHandler creates a new metric handler
func NewMetricHandler(store storage.Store) *MetricHandler {
	return &MetricHandler{store: store}
}

// RegisterRoutes registers metric routes on the given router.
// The router should already have the /metrics prefix.
func (h *MetricHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListMetrics).Methods("GET")
	r.HandleFunc("", h.CreateMetric).Methods("POST")
	r.HandleFunc("/{id}", h.GetMetric).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateMetric).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveMetric).Methods("DELETE")
	r.HandleFunc("/{id}/entries", h.ListEntries).Methods("GET")
	r.HandleFunc("/{id}/entries", h.CreateEntry).Methods("POST")
}

// CreateMetricRequest represents a create metric request
type CreateMetricRequest struct {
	Key                    string                         `json:"key" validate:"required,min=1,max=64"`
	Name                   string                         `json:"name" validate:"required,min=1,max=200"`
	Unit                   *string                        `json:"unit,omitempty"`
	CollectionProjectRefID *uuid.UUID                     `json:"collection_project_ref_id,omitempty"`
	CollectionParams       *models.RecurringTaskGenParams `json:"collection_params,omitempty"`
}

// UpdateMetricRequest represents an update metric request
type UpdateMetricRequest struct {
	Name                   *string                        `json:"name,omitempty"`
	CollectionProjectRefID *uuid.UUID                     `json:"collection_project_ref_id,omitempty"`
	CollectionParams       *models.RecurringTaskGenParams `json:"collection_params,omitempty"`
	ClearCollectionParams  bool                           `json:"clear_collection_params,omitempty"`
}

// CreateMetricEntryRequest represents a create metric entry request
type CreateMetricEntryRequest struct {
	CollectionTime *string `json:"collection_time,omitempty"`
	Value          float64 `json:"value"`
	Notes          string  `json:"notes,omitempty"`
}

// ListMetrics lists the workspace's metrics
func (h *MetricHandler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var metrics []*models.Metric
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		metrics, err = uow.Metrics().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived: r.URL.Query().Get("include_archived") == "true",
		})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"metrics": metrics})
}

// CreateMetric creates a new metric
func (h *MetricHandler) CreateMetric(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	if !workspace.IsFeatureAvailable(models.FeatureMetrics) {
		respondModelError(w, &models.FeatureUnavailableError{Feature: string(models.FeatureMetrics)})
		return
	}

	var req CreateMetricRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	metric, err := models.NewMetric(workspace.RefID, req.Key, req.Name, req.Unit,
		req.CollectionProjectRefID, req.CollectionParams, time.Now().UTC())
	if err != nil {
		respondModelError(w, err)
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		if existing, err := uow.Metrics().LoadByKey(ctx, workspace.RefID, metric.Key); err == nil && existing != nil {
			return models.NewConflictError("metric with key %q already exists", metric.Key)
		}
		if err := uow.Metrics().Create(ctx, metric); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "metric", metric.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, metric)
}

// GetMetric fetches one metric
func (h *MetricHandler) GetMetric(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid metric ID")
		return
	}

	var metric *models.Metric
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		metric, err = uow.Metrics().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if metric.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Metric not found")
		return
	}

	respondJSON(w, http.StatusOK, metric)
}

// UpdateMetric applies a partial update to a metric
func (h *MetricHandler) UpdateMetric(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid metric ID")
		return
	}

	var req UpdateMetricRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	name := models.Keep[string]()
	if req.Name != nil {
		name = models.SetTo(*req.Name)
	}
	collectionProject := models.Keep[*uuid.UUID]()
	if req.CollectionProjectRefID != nil {
		collectionProject = models.SetTo(req.CollectionProjectRefID)
	}
	collectionParams := models.Keep[*models.RecurringTaskGenParams]()
	if req.ClearCollectionParams {
		collectionParams = models.SetTo[*models.RecurringTaskGenParams](nil)
	} else if req.CollectionParams != nil {
		collectionParams = models.SetTo(req.CollectionParams)
	}

	var metric *models.Metric
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		metric, err = uow.Metrics().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if metric.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		if err := metric.Update(name, collectionProject, collectionParams, time.Now().UTC()); err != nil {
			return err
		}
		if err := uow.Metrics().Save(ctx, metric); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "metric", metric.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, metric)
}

// ArchiveMetric logically deletes a metric
func (h *MetricHandler) ArchiveMetric(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid metric ID")
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		metric, err := uow.Metrics().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if metric.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		metric.MarkArchived(time.Now().UTC())
		if err := uow.Metrics().Save(ctx, metric); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "metric", metric.EntityMeta, "removed")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}

// ListEntries lists the logged entries of a metric
func (h *MetricHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid metric ID")
		return
	}

	var entries []*models.MetricEntry
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		metric, err := uow.Metrics().Load(ctx, refID, true)
		if err != nil {
			return err
		}
		if metric.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		entries, err = uow.MetricEntries().LoadByParent(ctx, metric.RefID,
			r.URL.Query().Get("include_archived") == "true")
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// CreateEntry logs a value for a metric
func (h *MetricHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid metric ID")
		return
	}

	var req CreateMetricEntryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	now := time.Now().UTC()
	collectionTime := now
	if req.CollectionTime != nil && *req.CollectionTime != "" {
		parsed, err := time.Parse(time.RFC3339, *req.CollectionTime)
		if err != nil {
			parsed, err = parseDate("collection_time", *req.CollectionTime)
			if err != nil {
				respondModelError(w, err)
				return
			}
		}
		collectionTime = parsed
	}

	var entry *models.MetricEntry
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		metric, err := uow.Metrics().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if metric.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		entry = models.NewMetricEntry(metric.RefID, collectionTime, req.Value, validation.SanitizeText(req.Notes), now)
		if err := uow.MetricEntries().Create(ctx, entry); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "metric-entry", entry.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}
