package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/gen"
	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/progress"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/timeline"
)

// GenHandler runs generation synchronously for API callers. Cron and
// push-driven generation go through the worker instead.
type GenHandler struct {
	store storage.Store
	log   *zap.Logger
}

// NewGenHandler creates a new gen handler
func NewGenHandler(store storage.Store, log *zap.Logger) *GenHandler {
	return &GenHandler{store: store, log: log}
}

// RegisterRoutes registers the gen route on the given router.
// The router should already have the /gen prefix.
func (h *GenHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.RunGen).Methods("POST")
}

// GenRequest represents a generation run request
type GenRequest struct {
	Targets               []models.SyncTarget `json:"targets,omitempty"`
	RightNow              *string             `json:"right_now,omitempty"`
	FilterProjectRefIDs   []uuid.UUID         `json:"filter_project_ref_ids,omitempty"`
	FilterHabitRefIDs     []uuid.UUID         `json:"filter_habit_ref_ids,omitempty"`
	FilterChoreRefIDs     []uuid.UUID         `json:"filter_chore_ref_ids,omitempty"`
	FilterMetricRefIDs    []uuid.UUID         `json:"filter_metric_ref_ids,omitempty"`
	FilterPersonRefIDs    []uuid.UUID         `json:"filter_person_ref_ids,omitempty"`
	FilterSlackTaskRefIDs []uuid.UUID         `json:"filter_slack_task_ref_ids,omitempty"`
	FilterEmailTaskRefIDs []uuid.UUID         `json:"filter_email_task_ref_ids,omitempty"`
	FilterPeriods         []timeline.Period   `json:"filter_periods,omitempty"`
	GenEvenIfNotModified  bool                `json:"gen_even_if_not_modified,omitempty"`
}

// GenEntityResult is one touched entity in the gen response
type GenEntityResult struct {
	Action progress.Action `json:"action"`
	Kind   string          `json:"kind"`
	Name   string          `json:"name"`
	RefID  *uuid.UUID      `json:"ref_id,omitempty"`
}

// GenResponse summarizes a generation run
type GenResponse struct {
	Created  int               `json:"created"`
	Updated  int               `json:"updated"`
	Archived int               `json:"archived"`
	Removed  int               `json:"removed"`
	Entities []GenEntityResult `json:"entities"`
}

// RunGen executes one generation pass and reports what changed
func (h *GenHandler) RunGen(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var req GenRequest
	if err := decodeJSONBody(r, &req); err != nil && r.ContentLength > 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	var rightNow *time.Time
	if req.RightNow != nil && *req.RightNow != "" {
		parsed, err := time.Parse(time.RFC3339, *req.RightNow)
		if err != nil {
			parsed, err = parseDate("right_now", *req.RightNow)
			if err != nil {
				respondModelError(w, err)
				return
			}
		}
		rightNow = &parsed
	}

	recording := progress.NewRecording()
	engine := gen.New(h.store, recording, h.log)
	err := engine.Run(ctx, gen.Args{
		WorkspaceRefID:        workspace.RefID,
		RightNow:              rightNow,
		Targets:               req.Targets,
		FilterProjectRefIDs:   req.FilterProjectRefIDs,
		FilterHabitRefIDs:     req.FilterHabitRefIDs,
		FilterChoreRefIDs:     req.FilterChoreRefIDs,
		FilterMetricRefIDs:    req.FilterMetricRefIDs,
		FilterPersonRefIDs:    req.FilterPersonRefIDs,
		FilterSlackTaskRefIDs: req.FilterSlackTaskRefIDs,
		FilterEmailTaskRefIDs: req.FilterEmailTaskRefIDs,
		FilterPeriods:         req.FilterPeriods,
		GenEvenIfNotModified:  req.GenEvenIfNotModified,
		Source:                models.EventSourceWeb,
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	response := GenResponse{Entities: []GenEntityResult{}}
	for _, entry := range recording.Entries() {
		if entry.LocalChange != progress.MarkStatusOK {
			continue
		}
		result := GenEntityResult{
			Action: entry.Action,
			Kind:   entry.Kind,
			Name:   entry.DisplayName,
			RefID:  entry.ID,
		}
		response.Entities = append(response.Entities, result)
		switch entry.Action {
		case progress.ActionCreating:
			response.Created++
		case progress.ActionUpdating:
			response.Updated++
		case progress.ActionArchiving:
			response.Archived++
		case progress.ActionRemoving:
			response.Removed++
		}
	}

	respondJSON(w, http.StatusOK, response)
}
