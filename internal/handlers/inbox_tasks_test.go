package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

func registerInboxTasks(store storage.Store) func(*mux.Router) {
	return func(r *mux.Router) {
		NewInboxTaskHandler(store).RegisterRoutes(r.PathPrefix("/api/v1/inbox-tasks").Subrouter())
	}
}

func TestCreateInboxTask(t *testing.T) {
	t.Parallel()

	store, workspace, project := newTestWorkspace(t)

	rec := doRequest(t, registerInboxTasks(store), workspace, http.MethodPost, "/api/v1/inbox-tasks",
		map[string]any{"name": "Pay rent", "eisen": "urgent", "due_date": "2023-04-30"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var task models.InboxTask
	decodeData(t, rec, &task)
	if task.Name != "Pay rent" {
		t.Errorf("task name = %q, want Pay rent", task.Name)
	}
	if task.ProjectRefID != project.RefID {
		t.Errorf("task project = %s, want default project %s", task.ProjectRefID, project.RefID)
	}
	if task.Source != models.InboxTaskSourceUser {
		t.Errorf("task source = %s, want user", task.Source)
	}
	if task.Status != models.InboxTaskStatusAccepted {
		t.Errorf("task status = %s, want accepted", task.Status)
	}
	if task.Eisen != models.EisenUrgent {
		t.Errorf("task eisen = %s, want urgent", task.Eisen)
	}
	if task.DueDate == nil || task.DueDate.Format("2006-01-02") != "2023-04-30" {
		t.Errorf("task due date = %v, want 2023-04-30", task.DueDate)
	}
}

func TestCreateInboxTask_InvalidDates(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerInboxTasks(store), workspace, http.MethodPost, "/api/v1/inbox-tasks",
		map[string]any{"name": "Backwards", "actionable_date": "2023-05-10", "due_date": "2023-05-01"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateInboxTask_StatusLifecycle(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerInboxTasks(store), workspace, http.MethodPost, "/api/v1/inbox-tasks",
		map[string]any{"name": "Write report"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var task models.InboxTask
	decodeData(t, rec, &task)

	rec = doRequest(t, registerInboxTasks(store), workspace, http.MethodPatch,
		"/api/v1/inbox-tasks/"+task.RefID.String(), map[string]any{"status": "in-progress"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &task)
	if task.Status != models.InboxTaskStatusInProgress {
		t.Errorf("task status = %s, want in-progress", task.Status)
	}
	if task.WorkingTime == nil {
		t.Error("expected working time to be stamped")
	}

	rec = doRequest(t, registerInboxTasks(store), workspace, http.MethodPatch,
		"/api/v1/inbox-tasks/"+task.RefID.String(), map[string]any{"status": "done"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &task)
	if task.CompletedTime == nil {
		t.Error("expected completed time to be stamped")
	}
}

func TestUpdateInboxTask_GeneratedFieldProtection(t *testing.T) {
	t.Parallel()

	store, workspace, project := newTestWorkspace(t)

	generated := models.NewGeneratedInboxTask(models.GeneratedTaskSeed{
		WorkspaceRefID: workspace.RefID,
		ProjectRefID:   project.RefID,
		Source:         models.InboxTaskSourceHabit,
		SourceRefID:    workspace.RefID,
		Name:           "Meditate W2023-W15",
		Eisen:          models.EisenRegular,
		Timeline:       "2023,W15",
		GenRightNow:    handlerNow,
	}, handlerNow)
	err := store.RunInTx(context.Background(), func(uow storage.UnitOfWork) error {
		return uow.InboxTasks().Create(context.Background(), generated)
	})
	if err != nil {
		t.Fatalf("failed to seed generated task: %v", err)
	}

	// Renaming a generated task must be rejected
	rec := doRequest(t, registerInboxTasks(store), workspace, http.MethodPatch,
		"/api/v1/inbox-tasks/"+generated.RefID.String(), map[string]any{"name": "My own name"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", rec.Code, rec.Body.String())
	}

	// Status stays editable on generated tasks
	rec = doRequest(t, registerInboxTasks(store), workspace, http.MethodPatch,
		"/api/v1/inbox-tasks/"+generated.RefID.String(), map[string]any{"status": "done"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetInboxTask_NotFound(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerInboxTasks(store), workspace, http.MethodGet,
		"/api/v1/inbox-tasks/00000000-0000-0000-0000-000000000001", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestArchiveInboxTask(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerInboxTasks(store), workspace, http.MethodPost, "/api/v1/inbox-tasks",
		map[string]any{"name": "Ephemeral"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var task models.InboxTask
	decodeData(t, rec, &task)

	rec = doRequest(t, registerInboxTasks(store), workspace, http.MethodDelete,
		"/api/v1/inbox-tasks/"+task.RefID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Archived tasks disappear from default listings
	rec = doRequest(t, registerInboxTasks(store), workspace, http.MethodGet, "/api/v1/inbox-tasks", nil)
	var listing struct {
		InboxTasks []*models.InboxTask `json:"inbox_tasks"`
	}
	decodeData(t, rec, &listing)
	if len(listing.InboxTasks) != 0 {
		t.Errorf("expected no visible tasks, got %d", len(listing.InboxTasks))
	}
}
