package handlers

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/report"
	"github.com/avancea/ritmo/internal/storage"
)

func registerReport(store storage.Store) func(*mux.Router) {
	return func(r *mux.Router) {
		NewReportHandler(store, nil, 0, zap.NewNop()).RegisterRoutes(r.PathPrefix("/api/v1/report").Subrouter())
		NewInboxTaskHandler(store).RegisterRoutes(r.PathPrefix("/api/v1/inbox-tasks").Subrouter())
	}
}

func TestRunReport_GlobalSummary(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerReport(store), workspace, http.MethodPost, "/api/v1/inbox-tasks",
		map[string]any{"name": "Pay rent"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, registerReport(store), workspace, http.MethodPost, "/api/v1/report",
		map[string]any{"period": "monthly", "breakdowns": []string{"global"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result report.Result
	decodeData(t, rec, &result)
	if result.GlobalInboxTasksSummary == nil {
		t.Fatal("expected a global inbox tasks summary")
	}
	if result.GlobalInboxTasksSummary.Created.Total != 1 {
		t.Errorf("created total = %d, want 1", result.GlobalInboxTasksSummary.Created.Total)
	}
	if result.GlobalInboxTasksSummary.Accepted.Total != 1 {
		t.Errorf("accepted total = %d, want 1", result.GlobalInboxTasksSummary.Accepted.Total)
	}
}

func TestRunReport_InvalidPeriod(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerReport(store), workspace, http.MethodPost, "/api/v1/report",
		map[string]any{"period": "fortnightly"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunReport_BreakdownPeriodMustBeSmaller(t *testing.T) {
	t.Parallel()

	store, workspace, _ := newTestWorkspace(t)

	rec := doRequest(t, registerReport(store), workspace, http.MethodPost, "/api/v1/report",
		map[string]any{"period": "weekly", "breakdowns": []string{"periods"}, "breakdown_period": "monthly"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
