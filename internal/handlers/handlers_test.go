package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/storage/memstore"
)

var handlerNow = time.Date(2023, 4, 15, 10, 0, 0, 0, time.UTC)

// newTestWorkspace seeds a store with one workspace and its default
// project.
func newTestWorkspace(t *testing.T) (*memstore.Store, *models.Workspace, *models.Project) {
	t.Helper()
	store := memstore.New()

	project, err := models.NewProject(uuid.New(), "personal", "Personal", handlerNow)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	workspace, err := models.NewWorkspace("Test Workspace", "UTC", project.RefID, handlerNow)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	project.WorkspaceRefID = workspace.RefID

	err = store.RunInTx(context.Background(), func(uow storage.UnitOfWork) error {
		if err := uow.Workspaces().Create(context.Background(), workspace); err != nil {
			return err
		}
		return uow.Projects().Create(context.Background(), project)
	})
	if err != nil {
		t.Fatalf("failed to seed workspace: %v", err)
	}
	return store, workspace, project
}

// doRequest routes a request through a fresh router with the workspace
// already attached, the way the auth middleware would.
func doRequest(t *testing.T, register func(*mux.Router), workspace *models.Workspace, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	router := mux.NewRouter()
	register(router)

	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(request.WithWorkspace(req.Context(), workspace))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the "data" field of the success envelope into
// dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}
