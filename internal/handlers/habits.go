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

// HabitHandler handles habit requests
type HabitHandler struct {
	store storage.Store
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(store storage.Store) *HabitHandler {
	return &HabitHandler{store: store}
}

// RegisterRoutes registers habit routes on the given router.
// The router should already have the /habits prefix.
func (h *HabitHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListHabits).Methods("GET")
	r.HandleFunc("", h.CreateHabit).Methods("POST")
	r.HandleFunc("/{id}", h.GetHabit).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateHabit).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveHabit).Methods("DELETE")
	r.HandleFunc("/{id}/suspend", h.SuspendHabit).Methods("POST")
	r.HandleFunc("/{id}/unsuspend", h.UnsuspendHabit).Methods("POST")
}

// CreateHabitRequest represents a create habit request
type CreateHabitRequest struct {
	Name                 string                        `json:"name" validate:"required,min=1,max=500"`
	ProjectRefID         *uuid.UUID                    `json:"project_ref_id,omitempty"`
	GenParams            models.RecurringTaskGenParams `json:"gen_params"`
	RepeatsInPeriodCount *int                          `json:"repeats_in_period_count,omitempty"`
}

// UpdateHabitRequest represents an update habit request
type UpdateHabitRequest struct {
	Name                 *string                        `json:"name,omitempty"`
	GenParams            *models.RecurringTaskGenParams `json:"gen_params,omitempty"`
	RepeatsInPeriodCount *int                           `json:"repeats_in_period_count,omitempty"`
	ClearRepeats         bool                           `json:"clear_repeats_in_period_count,omitempty"`
}

// ListHabits lists the workspace's habits
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var habits []*models.Habit
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		habits, err = uow.Habits().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived: r.URL.Query().Get("include_archived") == "true",
		})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"habits": habits})
}

// CreateHabit creates a new habit
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	if !workspace.IsFeatureAvailable(models.FeatureHabits) {
		respondModelError(w, &models.FeatureUnavailableError{Feature: string(models.FeatureHabits)})
		return
	}

	var req CreateHabitRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	now := time.Now().UTC()
	var habit *models.Habit
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
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
		habit, err = models.NewHabit(workspace.RefID, projectRefID, req.Name, req.GenParams, req.RepeatsInPeriodCount, now)
		if err != nil {
			return err
		}
		if err := uow.Habits().Create(ctx, habit); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "habit", habit.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, habit)
}

// GetHabit fetches one habit
func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid habit ID")
		return
	}

	var habit *models.Habit
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		habit, err = uow.Habits().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if habit.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Habit not found")
		return
	}

	respondJSON(w, http.StatusOK, habit)
}

// UpdateHabit applies a partial update to a habit
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid habit ID")
		return
	}

	var req UpdateHabitRequest
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
	repeats := models.Keep[*int]()
	if req.ClearRepeats {
		repeats = models.SetTo[*int](nil)
	} else if req.RepeatsInPeriodCount != nil {
		repeats = models.SetTo(req.RepeatsInPeriodCount)
	}

	var habit *models.Habit
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		habit, err = uow.Habits().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if habit.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		if err := habit.Update(name, genParams, repeats, time.Now().UTC()); err != nil {
			return err
		}
		if err := uow.Habits().Save(ctx, habit); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "habit", habit.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, habit)
}

// ArchiveHabit logically deletes a habit
func (h *HabitHandler) ArchiveHabit(w http.ResponseWriter, r *http.Request) {
	h.mutateHabit(w, r, "removed", func(habit *models.Habit, now time.Time) {
		habit.MarkArchived(now)
	})
}

// SuspendHabit stops generation for a habit
func (h *HabitHandler) SuspendHabit(w http.ResponseWriter, r *http.Request) {
	h.mutateHabit(w, r, "updated", func(habit *models.Habit, now time.Time) {
		habit.Suspend(now)
	})
}

// UnsuspendHabit resumes generation for a habit
func (h *HabitHandler) UnsuspendHabit(w http.ResponseWriter, r *http.Request) {
	h.mutateHabit(w, r, "updated", func(habit *models.Habit, now time.Time) {
		habit.Unsuspend(now)
	})
}

func (h *HabitHandler) mutateHabit(w http.ResponseWriter, r *http.Request, eventName string, mutate func(*models.Habit, time.Time)) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid habit ID")
		return
	}

	var habit *models.Habit
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		habit, err = uow.Habits().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if habit.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		mutate(habit, time.Now().UTC())
		if err := uow.Habits().Save(ctx, habit); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "habit", habit.EntityMeta, eventName)
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, habit)
}
