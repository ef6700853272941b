package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

func registerGen(store storage.Store) func(*mux.Router) {
	return func(r *mux.Router) {
		NewGenHandler(store, zap.NewNop()).RegisterRoutes(r.PathPrefix("/api/v1/gen").Subrouter())
		NewHabitHandler(store).RegisterRoutes(r.PathPrefix("/api/v1/habits").Subrouter())
		NewInboxTaskHandler(store).RegisterRoutes(r.PathPrefix("/api/v1/inbox-tasks").Subrouter())
	}
}

func TestRunGen_CreatesHabitTask(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerGen(store), workspace, http.MethodPost, "/api/v1/habits",
		map[string]any{
			"name":       "Meditate",
			"gen_params": map[string]any{"period": "daily", "eisen": "regular"},
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, registerGen(store), workspace, http.MethodPost, "/api/v1/gen",
		map[string]any{"targets": []string{"habits"}, "right_now": "2023-04-15T10:00:00Z"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result GenResponse
	decodeData(t, rec, &result)
	if result.Created != 1 {
		t.Fatalf("expected 1 created task, got %d: %+v", result.Created, result)
	}

	// Rerunning the same day converges instead of duplicating
	rec = doRequest(t, registerGen(store), workspace, http.MethodPost, "/api/v1/gen",
		map[string]any{"targets": []string{"habits"}, "right_now": "2023-04-15T18:00:00Z"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &result)
	if result.Created != 0 {
		t.Errorf("expected idempotent rerun, got %d created", result.Created)
	}

	rec = doRequest(t, registerGen(store), workspace, http.MethodGet, "/api/v1/inbox-tasks", nil)
	var listing struct {
		InboxTasks []*models.InboxTask `json:"inbox_tasks"`
	}
	decodeData(t, rec, &listing)
	if len(listing.InboxTasks) != 1 {
		t.Fatalf("expected 1 generated task, got %d", len(listing.InboxTasks))
	}
	if listing.InboxTasks[0].Source != models.InboxTaskSourceHabit {
		t.Errorf("task source = %s, want habit", listing.InboxTasks[0].Source)
	}
}

func TestRunGen_InvalidTarget(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerGen(store), workspace, http.MethodPost, "/api/v1/gen",
		map[string]any{"targets": []string{"bogus"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunGen_FeatureDisabled(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)
	workspace.FeatureFlags[models.FeatureChores] = false

	// Persist so the engine's own workspace load sees the flag
	err := store.RunInTx(context.Background(), func(uow storage.UnitOfWork) error {
		return uow.Workspaces().Save(context.Background(), workspace)
	})
	if err != nil {
		t.Fatalf("failed to save workspace: %v", err)
	}

	rec := doRequest(t, registerGen(store), workspace, http.MethodPost, "/api/v1/gen",
		map[string]any{"targets": []string{"chores"}})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", rec.Code, rec.Body.String())
	}
}
