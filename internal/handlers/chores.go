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

// ChoreHandler handles chore requests
type ChoreHandler struct {
	store storage.Store
}

// NewChoreHandler creates a new chore handler
func NewChoreHandler(store storage.Store) *ChoreHandler {
	return &ChoreHandler{store: store}
}

// RegisterRoutes registers chore routes on the given router.
// The router should already have the /chores prefix.
func (h *ChoreHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListChores).Methods("GET")
	r.HandleFunc("", h.CreateChore).Methods("POST")
	r.HandleFunc("/{id}", h.GetChore).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateChore).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveChore).Methods("DELETE")
	r.HandleFunc("/{id}/suspend", h.SuspendChore).Methods("POST")
	r.HandleFunc("/{id}/unsuspend", h.UnsuspendChore).Methods("POST")
}

// CreateChoreRequest represents a create chore request
type CreateChoreRequest struct {
	Name         string                        `json:"name" validate:"required,min=1,max=500"`
	ProjectRefID *uuid.UUID                    `json:"project_ref_id,omitempty"`
	GenParams    models.RecurringTaskGenParams `json:"gen_params"`
	MustDo       bool                          `json:"must_do,omitempty"`
	StartAtDate  *string                       `json:"start_at_date,omitempty"`
	EndAtDate    *string                       `json:"end_at_date,omitempty"`
}

// UpdateChoreRequest represents an update chore request.
// Date fields set to "" clear the interval bound.
type UpdateChoreRequest struct {
	Name        *string                        `json:"name,omitempty"`
	GenParams   *models.RecurringTaskGenParams `json:"gen_params,omitempty"`
	MustDo      *bool                          `json:"must_do,omitempty"`
	StartAtDate *string                        `json:"start_at_date,omitempty"`
	EndAtDate   *string                        `json:"end_at_date,omitempty"`
}

// ListChores lists the workspace's chores
func (h *ChoreHandler) ListChores(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var chores []*models.Chore
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		chores, err = uow.Chores().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived: r.URL.Query().Get("include_archived") == "true",
		})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"chores": chores})
}

// CreateChore creates a new chore
func (h *ChoreHandler) CreateChore(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	if !workspace.IsFeatureAvailable(models.FeatureChores) {
		respondModelError(w, &models.FeatureUnavailableError{Feature: string(models.FeatureChores)})
		return
	}

	var req CreateChoreRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	startAtDate, err := parseDatePtr("start_at_date", req.StartAtDate)
	if err != nil {
		respondModelError(w, err)
		return
	}
	endAtDate, err := parseDatePtr("end_at_date", req.EndAtDate)
	if err != nil {
		respondModelError(w, err)
		return
	}

	now := time.Now().UTC()
	var chore *models.Chore
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		projectRefID := workspace.DefaultProjectRefID
		if req.ProjectRefID != nil {
			project, err := uow.Projects().Load(ctx, *req.ProjectRefID, false)
			if err != nil {
				return err
			}
			if project.WorkspaceRefID != workspace.RefID {
				return models.ErrNotFound
			}
			projectRefID = project.RefID
		}
		var err error
		chore, err = models.NewChore(workspace.RefID, projectRefID, req.Name, req.GenParams, req.MustDo, startAtDate, endAtDate, now)
		if err != nil {
			return err
		}
		if err := uow.Chores().Create(ctx, chore); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "chore", chore.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, chore)
}

// GetChore fetches one chore
func (h *ChoreHandler) GetChore(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid chore ID")
		return
	}

	var chore *models.Chore
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		chore, err = uow.Chores().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if chore.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Chore not found")
		return
	}

	respondJSON(w, http.StatusOK, chore)
}

// UpdateChore applies a partial update to a chore
func (h *ChoreHandler) UpdateChore(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid chore ID")
		return
	}

	var req UpdateChoreRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	name := models.Keep[string]()
	if req.Name != nil {
		name = models.SetTo(*req.Name)
	}
	genParams := models.Keep[models.RecurringTaskGenParams]()
	if req.GenParams != nil {
		genParams = models.SetTo(*req.GenParams)
	}
	mustDo := models.Keep[bool]()
	if req.MustDo != nil {
		mustDo = models.SetTo(*req.MustDo)
	}
	startAtDate := models.Keep[*time.Time]()
	if req.StartAtDate != nil {
		parsed, err := parseDatePtr("start_at_date", req.StartAtDate)
		if err != nil {
			respondModelError(w, err)
			return
		}
		startAtDate = models.SetTo(parsed)
	}
	endAtDate := models.Keep[*time.Time]()
	if req.EndAtDate != nil {
		parsed, err := parseDatePtr("end_at_date", req.EndAtDate)
		if err != nil {
			respondModelError(w, err)
			return
		}
		endAtDate = models.SetTo(parsed)
	}

	var chore *models.Chore
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		chore, err = uow.Chores().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if chore.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		if err := chore.Update(name, genParams, mustDo, startAtDate, endAtDate, time.Now().UTC()); err != nil {
			return err
		}
		if err := uow.Chores().Save(ctx, chore); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "chore", chore.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chore)
}

// ArchiveChore logically deletes a chore
func (h *ChoreHandler) ArchiveChore(w http.ResponseWriter, r *http.Request) {
	h.mutateChore(w, r, "removed", func(chore *models.Chore, now time.Time) {
		chore.MarkArchived(now)
	})
}

// SuspendChore stops generation for a chore
func (h *ChoreHandler) SuspendChore(w http.ResponseWriter, r *http.Request) {
	h.mutateChore(w, r, "updated", func(chore *models.Chore, now time.Time) {
		chore.Suspend(now)
	})
}

// UnsuspendChore resumes generation for a chore
func (h *ChoreHandler) UnsuspendChore(w http.ResponseWriter, r *http.Request) {
	h.mutateChore(w, r, "updated", func(chore *models.Chore, now time.Time) {
		chore.Unsuspend(now)
	})
}

func (h *ChoreHandler) mutateChore(w http.ResponseWriter, r *http.Request, eventName string, mutate func(*models.Chore, time.Time)) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid chore ID")
		return
	}

	var chore *models.Chore
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		chore, err = uow.Chores().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if chore.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		mutate(chore, time.Now().UTC())
		if err := uow.Chores().Save(ctx, chore); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "chore", chore.EntityMeta, eventName)
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chore)
}
