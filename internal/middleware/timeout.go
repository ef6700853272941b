package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout applies when no explicit timeout is configured.
const DefaultRequestTimeout = 30 * time.Second

// Timeout bounds each request both ways: the context deadline stops
// downstream work (database queries, engine runs) and TimeoutHandler
// guarantees the client gets a response.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			http.TimeoutHandler(next, timeout, "Request Timeout").
				ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
