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

// InboxTaskHandler handles inbox task requests
type InboxTaskHandler struct {
	store storage.Store
}

// NewInboxTaskHandler creates a new inbox task handler
func NewInboxTaskHandler(store storage.Store) *InboxTaskHandler {
	return &InboxTaskHandler{store: store}
}

// RegisterRoutes registers inbox task routes on the given router.
// The router should already have the /inbox-tasks prefix.
func (h *InboxTaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListInboxTasks).Methods("GET")
	r.HandleFunc("", h.CreateInboxTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetInboxTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateInboxTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveInboxTask).Methods("DELETE")
}

// CreateInboxTaskRequest represents a create inbox task request
type CreateInboxTaskRequest struct {
	Name           string             `json:"name" validate:"required,min=1,max=500"`
	ProjectRefID   *uuid.UUID         `json:"project_ref_id,omitempty"`
	BigPlanRefID   *uuid.UUID         `json:"big_plan_ref_id,omitempty"`
	Eisen          models.Eisen       `json:"eisen,omitempty" validate:"omitempty,eisen"`
	Difficulty     *models.Difficulty `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
	ActionableDate *string            `json:"actionable_date,omitempty"`
	DueDate        *string            `json:"due_date,omitempty"`
}

// UpdateInboxTaskRequest represents an update inbox task request.
// Absent fields keep their value; date fields set to "" clear.
type UpdateInboxTaskRequest struct {
	Name           *string                 `json:"name,omitempty"`
	Notes          *string                 `json:"notes,omitempty"`
	Eisen          *models.Eisen           `json:"eisen,omitempty"`
	Difficulty     *models.Difficulty      `json:"difficulty,omitempty"`
	Status         *models.InboxTaskStatus `json:"status,omitempty"`
	ActionableDate *string                 `json:"actionable_date,omitempty"`
	DueDate        *string                 `json:"due_date,omitempty"`
}

// ListInboxTasks lists the workspace's inbox tasks with optional filters
func (h *InboxTaskHandler) ListInboxTasks(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	filter := storage.InboxTaskFilter{
		AllowArchived: r.URL.Query().Get("include_archived") == "true",
	}
	if projectID := r.URL.Query().Get("project_ref_id"); projectID != "" {
		parsed, err := uuid.Parse(projectID)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid project_ref_id")
			return
		}
		filter.FilterProjectRefIDs = []uuid.UUID{parsed}
	}
	for _, source := range r.URL.Query()["source"] {
		if !models.InboxTaskSource(source).Valid() {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid source "+source)
			return
		}
		filter.FilterSources = append(filter.FilterSources, models.InboxTaskSource(source))
	}

	var tasks []*models.InboxTask
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		tasks, err = uow.InboxTasks().FindAll(ctx, workspace.RefID, filter)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"inbox_tasks": tasks})
}

// CreateInboxTask creates a user-sourced inbox task, optionally linked
// to a big plan
func (h *InboxTaskHandler) CreateInboxTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var req CreateInboxTaskRequest
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
	var task *models.InboxTask
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		if req.BigPlanRefID != nil {
			plan, err := uow.BigPlans().Load(ctx, *req.BigPlanRefID, false)
			if err != nil {
				return err
			}
			if plan.WorkspaceRefID != workspace.RefID {
				return models.ErrNotFound
			}
			task, err = models.NewInboxTaskForBigPlan(workspace.RefID, plan, req.Name, req.Eisen, req.Difficulty, now)
			if err != nil {
				return err
			}
		} else {
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
			task, err = models.NewInboxTask(workspace.RefID, projectRefID, req.Name, req.Eisen, req.Difficulty, actionableDate, dueDate, now)
			if err != nil {
				return err
			}
		}
		if err := uow.InboxTasks().Create(ctx, task); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "inbox-task", task.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// GetInboxTask fetches one inbox task
func (h *InboxTaskHandler) GetInboxTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid inbox task ID")
		return
	}

	var task *models.InboxTask
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		task, err = uow.InboxTasks().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if task.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Inbox task not found")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateInboxTask applies a partial update. Generated tasks only accept
// status, schedule dates and notes; everything else is engine-owned.
func (h *InboxTaskHandler) UpdateInboxTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid inbox task ID")
		return
	}

	var req UpdateInboxTaskRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	now := time.Now().UTC()
	var task *models.InboxTask
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		task, err = uow.InboxTasks().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if task.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}

		if req.Name != nil {
			if err := task.Rename(*req.Name, now); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			if err := task.EnsureEditable("notes"); err != nil {
				return err
			}
			task.Notes = validation.SanitizeText(*req.Notes)
			task.MarkModified(now)
		}
		if req.Eisen != nil {
			if err := task.EnsureEditable("eisen"); err != nil {
				return err
			}
			if !req.Eisen.Valid() {
				return models.NewInputValidationError("invalid eisenhower priority %q", *req.Eisen)
			}
			task.Eisen = *req.Eisen
			task.MarkModified(now)
		}
		if req.Difficulty != nil {
			if err := task.EnsureEditable("difficulty"); err != nil {
				return err
			}
			if !req.Difficulty.Valid() {
				return models.NewInputValidationError("invalid difficulty %q", *req.Difficulty)
			}
			task.Difficulty = req.Difficulty
			task.MarkModified(now)
		}
		if req.Status != nil {
			if err := task.UpdateStatus(*req.Status, now); err != nil {
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
			if err := task.UpdateSchedule(actionable, due, now); err != nil {
				return err
			}
		}

		if err := uow.InboxTasks().Save(ctx, task); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "inbox-task", task.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// ArchiveInboxTask logically deletes an inbox task
func (h *InboxTaskHandler) ArchiveInboxTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid inbox task ID")
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		task, err := uow.InboxTasks().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if task.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		task.MarkArchived(time.Now().UTC())
		if err := uow.InboxTasks().Save(ctx, task); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "inbox-task", task.EntityMeta, "removed")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}
