package handlers

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

func registerProjects(store storage.Store) func(*mux.Router) {
	return func(r *mux.Router) {
		NewProjectHandler(store).RegisterRoutes(r.PathPrefix("/api/v1/projects").Subrouter())
	}
}

func TestCreateProject(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerProjects(store), workspace, http.MethodPost, "/api/v1/projects",
		map[string]any{"key": "work", "name": "Work"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var project models.Project
	decodeData(t, rec, &project)
	if project.Key != "work" {
		t.Errorf("project key = %q, want work", project.Key)
	}
	if project.Name != "Work" {
		t.Errorf("project name = %q, want Work", project.Name)
	}
}

func TestCreateProject_DuplicateKey(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerProjects(store), workspace, http.MethodPost, "/api/v1/projects",
		map[string]any{"key": "work", "name": "Work"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, registerProjects(store), workspace, http.MethodPost, "/api/v1/projects",
		map[string]any{"key": "work", "name": "Other Work"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateProject_InvalidKey(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerProjects(store), workspace, http.MethodPost, "/api/v1/projects",
		map[string]any{"key": "Not A Key!", "name": "Broken"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestArchiveProject_DefaultProjectRejected(t *testing.T) {
	t.Parallel()

	store, workspace, project := newTestWorkspace(t)

	rec := doRequest(t, registerProjects(store), workspace, http.MethodDelete,
		"/api/v1/projects/"+project.RefID.String(), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRenameProject(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerProjects(store), workspace, http.MethodPost, "/api/v1/projects",
		map[string]any{"key": "side", "name": "Side Projects"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var project models.Project
	decodeData(t, rec, &project)

	rec = doRequest(t, registerProjects(store), workspace, http.MethodPatch,
		"/api/v1/projects/"+project.RefID.String(), map[string]any{"name": "Hobby Projects"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &project)
	if project.Name != "Hobby Projects" {
		t.Errorf("project name = %q, want Hobby Projects", project.Name)
	}
}
