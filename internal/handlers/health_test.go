package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthCheck_BasicMode(t *testing.T) {
	t.Parallel()

	// Basic mode reports liveness without touching any dependency
	checker := NewHealthChecker(nil, nil)

	rec := httptest.NewRecorder()
	checker.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("status = %q, want healthy", response.Status)
	}
	if response.Checks != nil {
		t.Errorf("expected no checks in basic mode, got %v", response.Checks)
	}
	if _, err := time.Parse(time.RFC3339, response.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", response.Timestamp, err)
	}
}

func TestHealthCheck_ExtendedMode(t *testing.T) {
	t.Parallel()

	// Extended mode pings the database and broker.
	t.Skip("requires a live Postgres and RabbitMQ; covered by deployment smoke tests")
}
