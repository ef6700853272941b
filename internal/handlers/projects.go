package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
)

// ProjectHandler handles project requests
type ProjectHandler struct {
	store storage.Store
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(store storage.Store) *ProjectHandler {
	return &ProjectHandler{store: store}
}

// RegisterRoutes registers project routes on the given router.
// The router should already have the /projects prefix.
func (h *ProjectHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListProjects).Methods("GET")
	r.HandleFunc("", h.CreateProject).Methods("POST")
	r.HandleFunc("/{id}", h.GetProject).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateProject).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveProject).Methods("DELETE")
}

// CreateProjectRequest represents a create project request
type CreateProjectRequest struct {
	Key  string `json:"key" validate:"required,min=1,max=64"`
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// UpdateProjectRequest represents an update project request
type UpdateProjectRequest struct {
	Name *string `json:"name,omitempty"`
}

// ListProjects lists the workspace's projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	allowArchived := r.URL.Query().Get("include_archived") == "true"

	var projects []*models.Project
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		projects, err = uow.Projects().FindAll(ctx, workspace.RefID, storage.EntityFilter{AllowArchived: allowArchived})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// CreateProject creates a new project
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var req CreateProjectRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	project, err := models.NewProject(workspace.RefID, req.Key, req.Name, time.Now().UTC())
	if err != nil {
		respondModelError(w, err)
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		if existing, err := uow.Projects().LoadByKey(ctx, workspace.RefID, project.Key); err == nil && existing != nil {
			return models.NewConflictError("project with key %q already exists", project.Key)
		}
		if err := uow.Projects().Create(ctx, project); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "project", project.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, project)
}

// GetProject fetches one project
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid project ID")
		return
	}

	var project *models.Project
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		project, err = uow.Projects().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if project.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// UpdateProject renames a project
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid project ID")
		return
	}

	var req UpdateProjectRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	var project *models.Project
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		project, err = uow.Projects().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if project.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		if req.Name != nil {
			if err := project.Rename(*req.Name, time.Now().UTC()); err != nil {
				return err
			}
		}
		if err := uow.Projects().Save(ctx, project); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "project", project.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// ArchiveProject logically deletes a project
func (h *ProjectHandler) ArchiveProject(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid project ID")
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		project, err := uow.Projects().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if project.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		if project.RefID == workspace.DefaultProjectRefID {
			return models.NewInputValidationError("cannot archive the default project")
		}
		project.MarkArchived(time.Now().UTC())
		if err := uow.Projects().Save(ctx, project); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "project", project.EntityMeta, "removed")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}
