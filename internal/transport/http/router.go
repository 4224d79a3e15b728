package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil/internal/platform/middleware"
	"vigil/pkg/platform/httputil"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Posts    *PostHandler
	Audit    *AuditHandler
	Resolver middleware.PrincipalResolver
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// NewRouter wires all endpoints. Public routes carry only request metadata;
// protected routes resolve the principal per request; admin routes add the
// role gate on top.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	deps.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Resolver, deps.Logger))

		deps.Auth.RegisterProtected(r)
		deps.Users.Register(r)
		deps.Posts.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Logger))
			deps.Audit.Register(r)
		})
	})

	return r
}
