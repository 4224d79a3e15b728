package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"vigil/internal/auth"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
	"vigil/pkg/requestcontext"
)

// PrincipalResolver turns a bearer token into a resolved principal. The auth
// service implements it; tests can stub it.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (auth.Principal, error)
}

// RequireAuth validates the Authorization header, resolves the principal
// against the user store, and stores actor and role in the context. Requests
// without a valid token are rejected before reaching handlers.
func RequireAuth(resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			principal, err := resolver.ResolvePrincipal(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithActor(ctx, principal.Username)
			ctx = requestcontext.WithRole(ctx, string(principal.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin principals. Mount it after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.Role(ctx) != string(auth.RoleAdmin) {
				logger.WarnContext(ctx, "forbidden - admin role required",
					"actor", requestcontext.Actor(ctx),
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
