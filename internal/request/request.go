package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/avancea/ritmo/internal/models"
)

type contextKey string

const workspaceContextKey contextKey = "workspace"

// WorkspaceContextKey returns the context key used for the workspace. Exposed for tests that inject non-workspace values.
func WorkspaceContextKey() contextKey { return workspaceContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithWorkspace returns a context with the workspace attached.
func WithWorkspace(ctx context.Context, workspace *models.Workspace) context.Context {
	return context.WithValue(ctx, workspaceContextKey, workspace)
}

// WorkspaceFromContext returns the workspace from the request context, or nil if missing or wrong type.
func WorkspaceFromContext(r *http.Request) *models.Workspace {
	w, _ := r.Context().Value(workspaceContextKey).(*models.Workspace)
	return w
}
