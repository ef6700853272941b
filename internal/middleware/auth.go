package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/request"
	"github.com/avancea/ritmo/internal/storage"
)

// Authenticator validates bearer tokens against a JWKS endpoint and
// resolves the workspace for the request. Single-user deployment: any
// valid token maps onto the one bootstrapped workspace.
type Authenticator struct {
	store    storage.Store
	cache    *jwk.Cache
	jwksURL  string
	issuer   string
	disabled bool
	log      *zap.Logger
}

// NewAuthenticator creates an authenticator. With disabled=true no token
// is required; the workspace is still resolved and attached.
func NewAuthenticator(ctx context.Context, store storage.Store, jwksURL, issuer string, disabled bool, log *zap.Logger) (*Authenticator, error) {
	a := &Authenticator{
		store:    store,
		jwksURL:  jwksURL,
		issuer:   issuer,
		disabled: disabled,
		log:      log,
	}
	if !disabled {
		cache := jwk.NewCache(ctx)
		if err := cache.Register(jwksURL); err != nil {
			return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
		}
		// Prime the cache so misconfiguration fails at startup, not on
		// the first request
		if _, err := cache.Refresh(ctx, jwksURL); err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// Middleware returns the auth middleware.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if !a.disabled {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					respondAuthError(w, http.StatusUnauthorized, "Missing Authorization header", a.log)
					return
				}

				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					respondAuthError(w, http.StatusUnauthorized, "Invalid Authorization header format", a.log)
					return
				}

				keySet, err := a.cache.Get(ctx, a.jwksURL)
				if err != nil {
					a.log.Error("failed_to_load_jwks", zap.Error(err))
					respondAuthError(w, http.StatusInternalServerError, "Failed to load signing keys", a.log)
					return
				}

				parseOpts := []jwt.ParseOption{
					jwt.WithKeySet(keySet),
					jwt.WithValidate(true),
				}
				if a.issuer != "" {
					parseOpts = append(parseOpts, jwt.WithIssuer(a.issuer))
				}
				if _, err := jwt.Parse([]byte(parts[1]), parseOpts...); err != nil {
					a.log.Warn("token_verification_failed",
						zap.Error(err),
						zap.String("ip", request.ClientIP(r)))
					respondAuthError(w, http.StatusUnauthorized, "Invalid or expired token", a.log)
					return
				}
			}

			var workspace *models.Workspace
			err := a.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
				var err error
				workspace, err = uow.Workspaces().LoadDefault(ctx)
				return err
			})
			if err != nil {
				a.log.Error("failed_to_resolve_workspace", zap.Error(err))
				respondAuthError(w, http.StatusInternalServerError, "Workspace not available", a.log)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithWorkspace(ctx, workspace)))
		})
	}
}

func respondAuthError(w http.ResponseWriter, status int, message string, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed_to_encode_error_response", zap.Error(err))
	}
}
