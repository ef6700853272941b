package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avancea/ritmo/internal/models"
)

func TestRespondJSON_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusCreated, map[string]string{"message": "hello"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q, want application/json", got)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || !success {
		t.Error("expected success to be true")
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body["data"])
	}
	if data["message"] != "hello" {
		t.Errorf("data message = %v, want hello", data["message"])
	}
	timestamp, ok := body["timestamp"].(string)
	if !ok {
		t.Fatal("expected a timestamp")
	}
	if _, err := time.Parse(time.RFC3339, timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", timestamp, err)
	}
}

func TestRespondJSONError_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondJSONError(rec, http.StatusBadRequest, "Bad Request", "Invalid input")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || success {
		t.Error("expected success to be false")
	}
	if body["error"] != "Bad Request" {
		t.Errorf("error = %v, want Bad Request", body["error"])
	}
	if body["message"] != "Invalid input" {
		t.Errorf("message = %v, want Invalid input", body["message"])
	}
}

func TestSanitizeErrorMessage_Truncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 500)
	got := sanitizeErrorMessage(long)
	if len(got) >= len(long) {
		t.Errorf("expected truncation, got %d chars", len(got))
	}
}

func TestRespondModelError_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "validation error",
			err:    models.NewInputValidationError("bad field"),
			status: http.StatusBadRequest,
		},
		{
			name:   "feature unavailable",
			err:    &models.FeatureUnavailableError{Feature: "habits"},
			status: http.StatusForbidden,
		},
		{
			name:   "generated task field",
			err:    &models.CannotModifyGeneratedTaskError{Field: "name"},
			status: http.StatusForbidden,
		},
		{
			name:   "not found",
			err:    models.ErrNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "conflict",
			err:    models.NewConflictError("duplicate key"),
			status: http.StatusConflict,
		},
		{
			name:   "unknown error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			respondModelError(rec, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestParseDatePtr(t *testing.T) {
	t.Parallel()

	if got, err := parseDatePtr("due_date", nil); err != nil || got != nil {
		t.Errorf("nil input: got %v, %v", got, err)
	}

	empty := ""
	if got, err := parseDatePtr("due_date", &empty); err != nil || got != nil {
		t.Errorf("empty input: got %v, %v", got, err)
	}

	value := "2023-04-15"
	got, err := parseDatePtr("due_date", &value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || !got.Equal(time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parsed date = %v, want 2023-04-15", got)
	}

	bad := "15/04/2023"
	if _, err := parseDatePtr("due_date", &bad); err == nil {
		t.Error("expected an error for a malformed date")
	}
}
