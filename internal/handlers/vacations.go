package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/validation"
)

// VacationHandler handles vacation requests
type VacationHandler struct {
	store storage.Store
}

// NewVacationHandler creates a new vacation handler
func NewVacationHandler(store storage.Store) *VacationHandler {
	return &VacationHandler{store: store}
}

// RegisterRoutes registers vacation routes on the given router.
// The router should already have the /vacations prefix.
func (h *VacationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListVacations).Methods("GET")
	r.HandleFunc("", h.CreateVacation).Methods("POST")
	r.HandleFunc("/{id}", h.GetVacation).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateVacation).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchiveVacation).Methods("DELETE")
}

// CreateVacationRequest represents a create vacation request
type CreateVacationRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// UpdateVacationRequest represents an update vacation request
type UpdateVacationRequest struct {
	Name      *string `json:"name,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// ListVacations lists the workspace's vacations
func (h *VacationHandler) ListVacations(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var vacations []*models.Vacation
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		vacations, err = uow.Vacations().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived: r.URL.Query().Get("include_archived") == "true",
		})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"vacations": vacations})
}

// CreateVacation creates a new vacation
func (h *VacationHandler) CreateVacation(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	if !workspace.IsFeatureAvailable(models.FeatureVacations) {
		respondModelError(w, &models.FeatureUnavailableError{Feature: string(models.FeatureVacations)})
		return
	}

	var req CreateVacationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondModelError(w, err)
		return
	}
	endDate, err := parseDate("end_date", req.EndDate)
	if err != nil {
		respondModelError(w, err)
		return
	}

	vacation, err := models.NewVacation(workspace.RefID, req.Name, startDate, endDate, time.Now().UTC())
	if err != nil {
		respondModelError(w, err)
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		if err := uow.Vacations().Create(ctx, vacation); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "vacation", vacation.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, vacation)
}

// GetVacation fetches one vacation
func (h *VacationHandler) GetVacation(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid vacation ID")
		return
	}

	var vacation *models.Vacation
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		vacation, err = uow.Vacations().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if vacation.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Vacation not found")
		return
	}

	respondJSON(w, http.StatusOK, vacation)
}

// UpdateVacation applies a partial update to a vacation
func (h *VacationHandler) UpdateVacation(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid vacation ID")
		return
	}

	var req UpdateVacationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	name := models.Keep[string]()
	if req.Name != nil {
		name = models.SetTo(*req.Name)
	}
	startDate := models.Keep[time.Time]()
	if req.StartDate != nil {
		parsed, err := parseDate("start_date", *req.StartDate)
		if err != nil {
			respondModelError(w, err)
			return
		}
		startDate = models.SetTo(parsed)
	}
	endDate := models.Keep[time.Time]()
	if req.EndDate != nil {
		parsed, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			respondModelError(w, err)
			return
		}
		endDate = models.SetTo(parsed)
	}

	var vacation *models.Vacation
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		vacation, err = uow.Vacations().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if vacation.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		if err := vacation.Update(name, startDate, endDate, time.Now().UTC()); err != nil {
			return err
		}
		if err := uow.Vacations().Save(ctx, vacation); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "vacation", vacation.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, vacation)
}

// ArchiveVacation logically deletes a vacation
func (h *VacationHandler) ArchiveVacation(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid vacation ID")
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		vacation, err := uow.Vacations().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if vacation.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		vacation.MarkArchived(time.Now().UTC())
		if err := uow.Vacations().Save(ctx, vacation); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "vacation", vacation.EntityMeta, "removed")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}
