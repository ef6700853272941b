package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/validation"
)

// BigPlanHandler handles big plan requests
type BigPlanHandler struct {
	store storage.Store
}

// NewBigPlanHandler creates a new big plan handler
func NewBigPlanHandler(store storage.Store) *BigPlanHandler {
	return &BigPlanHandler{store: store}
}

// RegisterRoutes registers big plan routes on the given router.
// The router should already have the /big-plans prefix.
func (h *BigPlanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListBigPlans).Methods("GET")
	r.HandleFunc("", h.CreateBigPlan).Methods("POST")
	r.HandleFunc("/{id}", h.GetBigPlan).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateBigPlan).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveBigPlan).Methods("DELETE")
}

// CreateBigPlanRequest represents a create big plan request
type CreateBigPlanRequest struct {
	Name           string     `json:"name" validate:"required,min=1,max=500"`
	ProjectRefID   *uuid.UUID `json:"project_ref_id,omitempty"`
	ActionableDate *string    `json:"actionable_date,omitempty"`
	DueDate        *string    `json:"due_date,omitempty"`
}

// UpdateBigPlanRequest represents an update big plan request
type UpdateBigPlanRequest struct {
	Name           *string               `json:"name,omitempty"`
	Status         *models.BigPlanStatus `json:"status,omitempty"`
	ActionableDate *string               `json:"actionable_date,omitempty"`
	DueDate        *string               `json:"due_date,omitempty"`
}

// ListBigPlans lists the workspace's big plans
func (h *BigPlanHandler) ListBigPlans(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var plans []*models.BigPlan
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		plans, err = uow.BigPlans().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived: r.URL.Query().Get("include_archived") == "true",
		})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"big_plans": plans})
}

// CreateBigPlan creates a new big plan
func (h *BigPlanHandler) CreateBigPlan(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	if !workspace.IsFeatureAvailable(models.FeatureBigPlans) {
		respondModelError(w, &models.FeatureUnavailableError{Feature: string(models.FeatureBigPlans)})
		return
	}

	var req CreateBigPlanRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	actionableDate, err := parseDatePtr("actionable_date", req.ActionableDate)
	if err != nil {
		respondModelError(w, err)
		return
	}
	dueDate, err := parseDatePtr("due_date", req.DueDate)
	if err != nil {
		respondModelError(w, err)
		return
	}

	now := time.Now().UTC()
	var plan *models.BigPlan
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
		plan, err = models.NewBigPlan(workspace.RefID, projectRefID, req.Name, actionableDate, dueDate, now)
		if err != nil {
			return err
		}
		if err := uow.BigPlans().Create(ctx, plan); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "big-plan", plan.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, plan)
}

// GetBigPlan fetches one big plan
func (h *BigPlanHandler) GetBigPlan(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid big plan ID")
		return
	}

	var plan *models.BigPlan
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		plan, err = uow.BigPlans().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if plan.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Big plan not found")
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// UpdateBigPlan applies a partial update to a big plan
func (h *BigPlanHandler) UpdateBigPlan(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid big plan ID")
		return
	}

	var req UpdateBigPlanRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	now := time.Now().UTC()
	var plan *models.BigPlan
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		plan, err = uow.BigPlans().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if plan.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}

		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return models.NewInputValidationError("big plan name must not be empty")
			}
			plan.Name = *req.Name
			plan.MarkModified(now)
		}
		if req.Status != nil {
			if err := plan.UpdateStatus(*req.Status, now); err != nil {
				return err
			}
		}
		if req.ActionableDate != nil || req.DueDate != nil {
			actionable := models.Keep[*time.Time]()
			if req.ActionableDate != nil {
				parsed, err := parseDatePtr("actionable_date", req.ActionableDate)
				if err != nil {
					return err
				}
				actionable = models.SetTo(parsed)
			}
			due := models.Keep[*time.Time]()
			if req.DueDate != nil {
				parsed, err := parseDatePtr("due_date", req.DueDate)
				if err != nil {
					return err
				}
				due = models.SetTo(parsed)
			}
			if err := plan.UpdateSchedule(actionable, due, now); err != nil {
				return err
			}
		}

		if err := uow.BigPlans().Save(ctx, plan); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "big-plan", plan.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// ArchiveBigPlan logically deletes a big plan
func (h *BigPlanHandler) ArchiveBigPlan(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid big plan ID")
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		plan, err := uow.BigPlans().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if plan.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		plan.MarkArchived(time.Now().UTC())
		if err := uow.BigPlans().Save(ctx, plan); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "big-plan", plan.EntityMeta, "removed")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}
