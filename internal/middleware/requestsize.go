package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize bounds request bodies when no explicit limit is
// configured.
const DefaultMaxRequestSize int64 = 1 << 20 // 1 MB

// MaxRequestSize rejects oversized request bodies. Declared lengths are
// checked up front; chunked bodies are bounded by MaxBytesReader.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()
			next.ServeHTTP(w, r)
		})
	}
}
