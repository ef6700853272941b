package handlers

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/timeline"
)

func registerHabits(store storage.Store) func(*mux.Router) {
	return func(r *mux.Router) {
		NewHabitHandler(store).RegisterRoutes(r.PathPrefix("/api/v1/habits").Subrouter())
	}
}

func TestCreateHabit(t *testing.T) {
	t.Parallel()

	store, workspace, project := newTestWorkspace(t)

	rec := doRequest(t, registerHabits(store), workspace, http.MethodPost, "/api/v1/habits",
		map[string]any{
			"name":                    "Meditate",
			"gen_params":              map[string]any{"period": "daily", "eisen": "regular"},
			"repeats_in_period_count": 2,
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var habit models.Habit
	decodeData(t, rec, &habit)
	if habit.Name != "Meditate" {
		t.Errorf("habit name = %q, want Meditate", habit.Name)
	}
	if habit.ProjectRefID != project.RefID {
		t.Errorf("habit project = %s, want default project", habit.ProjectRefID)
	}
	if habit.GenParams.Period != timeline.PeriodDaily {
		t.Errorf("habit period = %s, want daily", habit.GenParams.Period)
	}
	if habit.EffectiveRepeats() != 2 {
		t.Errorf("habit repeats = %d, want 2", habit.EffectiveRepeats())
	}
}

func TestCreateHabit_InvalidPeriod(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerHabits(store), workspace, http.MethodPost, "/api/v1/habits",
		map[string]any{
			"name":       "Broken",
			"gen_params": map[string]any{"period": "fortnightly", "eisen": "regular"},
		})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateHabit_FeatureDisabled(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)
	workspace.FeatureFlags[models.FeatureHabits] = false

	rec := doRequest(t, registerHabits(store), workspace, http.MethodPost, "/api/v1/habits",
		map[string]any{
			"name":       "Meditate",
			"gen_params": map[string]any{"period": "daily", "eisen": "regular"},
		})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSuspendAndUnsuspendHabit(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerHabits(store), workspace, http.MethodPost, "/api/v1/habits",
		map[string]any{
			"name":       "Read",
			"gen_params": map[string]any{"period": "weekly", "eisen": "important"},
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var habit models.Habit
	decodeData(t, rec, &habit)

	rec = doRequest(t, registerHabits(store), workspace, http.MethodPost,
		"/api/v1/habits/"+habit.RefID.String()+"/suspend", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &habit)
	if !habit.Suspended {
		t.Error("expected habit to be suspended")
	}

	rec = doRequest(t, registerHabits(store), workspace, http.MethodPost,
		"/api/v1/habits/"+habit.RefID.String()+"/unsuspend", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &habit)
	if habit.Suspended {
		t.Error("expected habit to be unsuspended")
	}
}

func TestUpdateHabit_GenParams(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerHabits(store), workspace, http.MethodPost, "/api/v1/habits",
		map[string]any{
			"name":       "Exercise",
			"gen_params": map[string]any{"period": "daily", "eisen": "regular"},
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var habit models.Habit
	decodeData(t, rec, &habit)

	rec = doRequest(t, registerHabits(store), workspace, http.MethodPatch,
		"/api/v1/habits/"+habit.RefID.String(),
		map[string]any{"gen_params": map[string]any{"period": "weekly", "eisen": "important"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &habit)
	if habit.GenParams.Period != timeline.PeriodWeekly {
		t.Errorf("habit period = %s, want weekly", habit.GenParams.Period)
	}
	if habit.GenParams.Eisen != models.EisenImportant {
		t.Errorf("habit eisen = %s, want important", habit.GenParams.Eisen)
	}
}
