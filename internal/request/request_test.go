package request

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
)

func TestClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		wantIP  string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "", "1.2.3.4"},
		{"x-forwarded-for first", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8 "}, "", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "", "9.9.9.9"},
		{"remote addr", nil, "10.0.0.1:12345", "10.0.0.1:12345"},
		{"xff over xri", map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "9.9.9.9"}, "", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			got := ClientIP(r)
			if got != tt.wantIP {
				t.Errorf("ClientIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestWorkspaceFromContext(t *testing.T) {
	t.Parallel()
	ws, err := models.NewWorkspace("Home", "UTC", uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("NewWorkspace() error = %v", err)
	}
	ctx := WithWorkspace(context.Background(), ws)
	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	got := WorkspaceFromContext(r)
	if got != ws {
		t.Errorf("WorkspaceFromContext() = %p, want %p", got, ws)
	}
	if got != nil && got.Name != "Home" {
		t.Errorf("WorkspaceFromContext().Name = %q, want Home", got.Name)
	}
}

func TestWorkspaceFromContext_NoWorkspace(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest("GET", "/", nil)
	got := WorkspaceFromContext(r)
	if got != nil {
		t.Errorf("WorkspaceFromContext() = %+v, want nil", got)
	}
}

func TestWorkspaceFromContext_WrongType(t *testing.T) {
	t.Parallel()
	ctx := context.WithValue(context.Background(), WorkspaceContextKey(), "not a workspace")
	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	got := WorkspaceFromContext(r)
	if got != nil {
		t.Errorf("WorkspaceFromContext() = %+v, want nil when wrong type", got)
	}
}
