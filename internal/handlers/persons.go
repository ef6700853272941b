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

// PersonHandler handles person requests
type PersonHandler struct {
	store storage.Store
}

// NewPersonHandler creates a new person handler
func NewPersonHandler(store storage.Store) *PersonHandler {
	return &PersonHandler{store: store}
}

// RegisterRoutes registers person routes on the given router.
// The router should already have the /persons prefix.
func (h *PersonHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListPersons).Methods("GET")
	r.HandleFunc("", h.CreatePerson).Methods("POST")
	r.HandleFunc("/{id}", h.GetPerson).Methods("GET")
	r.HandleFunc("/{id}", h.UpdatePerson).Methods("PATCH")
	r.HandleFunc("/{id}", h.ArchivePerson).Methods("DELETE")
}

// CreatePersonRequest represents a create person request
type CreatePersonRequest struct {
	Name          string                         `json:"name" validate:"required,min=1,max=200"`
	Relationship  models.PersonRelationship      `json:"relationship" validate:"required,relationship"`
	CatchUpParams *models.RecurringTaskGenParams `json:"catch_up_params,omitempty"`
	Birthday      *models.PersonBirthday         `json:"birthday,omitempty"`
}

// UpdatePersonRequest represents an update person request
type UpdatePersonRequest struct {
	Name               *string                        `json:"name,omitempty"`
	Relationship       *models.PersonRelationship     `json:"relationship,omitempty"`
	CatchUpParams      *models.RecurringTaskGenParams `json:"catch_up_params,omitempty"`
	ClearCatchUpParams bool                           `json:"clear_catch_up_params,omitempty"`
	Birthday           *models.PersonBirthday         `json:"birthday,omitempty"`
	ClearBirthday      bool                           `json:"clear_birthday,omitempty"`
}

// ListPersons lists the workspace's persons
func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	var persons []*models.Person
	err := h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		persons, err = uow.Persons().FindAll(ctx, workspace.RefID, storage.EntityFilter{
			AllowArchived: r.URL.Query().Get("include_archived") == "true",
		})
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"persons": persons})
}

// CreatePerson creates a new person
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	if !workspace.IsFeatureAvailable(models.FeaturePersons) {
		respondModelError(w, &models.FeatureUnavailableError{Feature: string(models.FeaturePersons)})
		return
	}

	var req CreatePersonRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	person, err := models.NewPerson(workspace.RefID, req.Name, req.Relationship,
		req.CatchUpParams, req.Birthday, time.Now().UTC())
	if err != nil {
		respondModelError(w, err)
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		if err := uow.Persons().Create(ctx, person); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "person", person.EntityMeta, "created")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, person)
}

// GetPerson fetches one person
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid person ID")
		return
	}

	var person *models.Person
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		person, err = uow.Persons().Load(ctx, refID, true)
		return err
	})
	if err != nil {
		respondModelError(w, err)
		return
	}
	if person.WorkspaceRefID != workspace.RefID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Person not found")
		return
	}

	respondJSON(w, http.StatusOK, person)
}

// UpdatePerson applies a partial update to a person
func (h *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid person ID")
		return
	}

	var req UpdatePersonRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	name := models.Keep[string]()
	if req.Name != nil {
		name = models.SetTo(*req.Name)
	}
	relationship := models.Keep[models.PersonRelationship]()
	if req.Relationship != nil {
		relationship = models.SetTo(*req.Relationship)
	}
	catchUpParams := models.Keep[*models.RecurringTaskGenParams]()
	if req.ClearCatchUpParams {
		catchUpParams = models.SetTo[*models.RecurringTaskGenParams](nil)
	} else if req.CatchUpParams != nil {
		catchUpParams = models.SetTo(req.CatchUpParams)
	}
	birthday := models.Keep[*models.PersonBirthday]()
	if req.ClearBirthday {
		birthday = models.SetTo[*models.PersonBirthday](nil)
	} else if req.Birthday != nil {
		birthday = models.SetTo(req.Birthday)
	}

	var person *models.Person
	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		person, err = uow.Persons().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if person.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		if err := person.Update(name, relationship, catchUpParams, birthday, time.Now().UTC()); err != nil {
			return err
		}
		if err := uow.Persons().Save(ctx, person); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "person", person.EntityMeta, "updated")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, person)
}

// ArchivePerson logically deletes a person
func (h *PersonHandler) ArchivePerson(w http.ResponseWriter, r *http.Request) {
	workspace := request.WorkspaceFromContext(r)
	if workspace == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Workspace not found in context")
		return
	}
	ctx := r.Context()

	refID, err := pathRefID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid person ID")
		return
	}

	err = h.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		person, err := uow.Persons().Load(ctx, refID, false)
		if err != nil {
			return err
		}
		if person.WorkspaceRefID != workspace.RefID {
			return models.ErrNotFound
		}
		person.MarkArchived(time.Now().UTC())
		if err := uow.Persons().Save(ctx, person); err != nil {
			return err
		}
		return recordEvent(ctx, uow, "person", person.EntityMeta, "removed")
	})
	if err != nil {
		respondModelError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"archived": true})
}
