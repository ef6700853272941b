package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
)

// SlackTaskHandler handles slack push task requests. Rows are normally
// materialized by the worker from bridge messages; the API only lists
// and tweaks them.
type SlackTaskHandler struct {
	store storage.Store
}

// NewSlackTaskHandler creates a new slack task handler
func NewSlackTaskHandler(store storage.Store) *SlackTaskHandler {
	return &SlackTaskHandler{store: store}
}

// RegisterRoutes registers slack task routes on the given router.
// The router should already have the /slack-tasks prefix.
func (h *SlackTaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListSlackTasks).Methods("GET")
	r.HandleFunc("/{id}", h.GetSlackTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateSlackTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveSlackTask).Methods("DELETE")
}

// UpdateSlackTaskRequest represents an update slack task request
type UpdateSlackTaskRequest struct {
	Message             *string `json:"message,omitempty"`
	GenerationExtraInfo *string `json:"generation_extra_info,omitempty"`
}

// ListSlackTasks lists the workspace's slack push tasks
func (h *SlackTaskHandler) ListSlackTasks(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var tasks []*models.SlackTask
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		tasks, err = uow.SlackTasks().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived: r.URL.Query().Get("include_archived") == "true",
		})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"slack_tasks": tasks})
}

// GetSlackTask fetches one slack push task
func (h *SlackTaskHandler) GetSlackTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid slack task ID")
		return
	}

	var task *models.SlackTask
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		task, err = uow.SlackTasks().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if task.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Slack task not found")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateSlackTask edits the message or generation extra info
func (h *SlackTaskHandler) UpdateSlackTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid slack task ID")
		return
	}

	var req UpdateSlackTaskRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	message := models.Keep[string]()
	if req.Message != nil {
		message = models.SetTo(*req.Message)
	}
	extraInfo := models.Keep[string]()
	if req.GenerationExtraInfo != nil {
		extraInfo = models.SetTo(*req.GenerationExtraInfo)
	}

	var task *models.SlackTask
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		task, err = uow.SlackTasks().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if task.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		task.Update(message, extraInfo, time.Now().UTC())
		if err := uow.SlackTasks().Save(ctx, task); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "slack-task", task.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// ArchiveSlackTask logically deletes a slack push task
func (h *SlackTaskHandler) ArchiveSlackTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid slack task ID")
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		task, err := uow.SlackTasks().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if task.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		task.MarkArchived(time.Now().UTC())
		if err := uow.SlackTasks().Save(ctx, task); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "slack-task", task.EntityMeta, "removed")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}

// EmailTaskHandler handles email push task requests
type EmailTaskHandler struct {
	store storage.Store
}

// NewEmailTaskHandler creates a new email task handler
func NewEmailTaskHandler(store storage.Store) *EmailTaskHandler {
	return &EmailTaskHandler{store: store}
}

// RegisterRoutes registers email task routes on the given router.
// The router should already have the /email-tasks prefix.
func (h *EmailTaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEmailTasks).Methods("GET")
	r.HandleFunc("/{id}", h.GetEmailTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateEmailTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveEmailTask).Methods("DELETE")
}

// UpdateEmailTaskRequest represents an update email task request
type UpdateEmailTaskRequest struct {
	Subject             *string `json:"subject,omitempty"`
	Body                *string `json:"body,omitempty"`
	GenerationExtraInfo *string `json:"generation_extra_info,omitempty"`
}

// ListEmailTasks lists the workspace's email push tasks
func (h *EmailTaskHandler) ListEmailTasks(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var tasks []*models.EmailTask
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		tasks, err = uow.EmailTasks().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived: r.URL.Query().Get("include_archived") == "true",
		})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"email_tasks": tasks})
}

// GetEmailTask fetches one email push task
func (h *EmailTaskHandler) GetEmailTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid email task ID")
		return
	}

	var task *models.EmailTask
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		task, err = uow.EmailTasks().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if task.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Email task not found")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateEmailTask edits the subject, body or generation extra info
func (h *EmailTaskHandler) UpdateEmailTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid email task ID")
		return
	}

	var req UpdateEmailTaskRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	subject := models.Keep[string]()
	if req.Subject != nil {
		subject = models.SetTo(*req.Subject)
	}
	body := models.Keep[string]()
	if req.Body != nil {
		body = models.SetTo(*req.Body)
	}
	extraInfo := models.Keep[string]()
	if req.GenerationExtraInfo != nil {
		extraInfo = models.SetTo(*req.GenerationExtraInfo)
	}

	var task *models.EmailTask
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		task, err = uow.EmailTasks().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if task.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		task.Update(subject, body, extraInfo, time.Now().UTC())
		if err := uow.EmailTasks().Save(ctx, task); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "email-task", task.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// ArchiveEmailTask logically deletes an email push task
func (h *EmailTaskHandler) ArchiveEmailTask(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid email task ID")
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		task, err := uow.EmailTasks().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if task.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		task.MarkArchived(time.Now().UTC())
		if err := uow.EmailTasks().Save(ctx, task); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "email-task", task.EntityMeta, "removed")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}
