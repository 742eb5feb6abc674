package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	portal "github.com/target/programme-portal"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/observability/statsd"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Sessions   *SessionScope
	Templates  fs.FS // defaults to the embedded templates
	Programmes []Programme
	Roles      RoleLister
	SystemInfo map[string]string
	CSRF       CSRFConfig
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// NewRouter wires routes and middleware.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Sessions == nil {
		return nil, errors.New("session scope is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if services.Programmes == nil {
		services.Programmes = DefaultProgrammes()
	}

	tfs := services.Templates
	if tfs == nil {
		sub, err := fs.Sub(portal.TemplateFS, "web/templates")
		if err != nil {
			return nil, fmt.Errorf("templates: %w", err)
		}
		tfs = sub
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: tfs, Logger: logger})
	if err != nil {
		return nil, err
	}

	pages := &PageHandlers{
		T:          tr,
		Programmes: services.Programmes,
		Roles:      services.Roles,
		SystemInfo: services.SystemInfo,
		Logger:     logger,
	}
	auth := &AuthHandlers{T: tr, Programmes: services.Programmes}

	gate := func(minimum domainauth.Role, surface string) func(http.Handler) http.Handler {
		return RequireRoleBrowser(GateOptions{
			Minimum: minimum,
			Surface: surface,
			Metrics: services.Metrics,
			Denied:  pages.Denied,
		})
	}
	apiGate := func(minimum domainauth.Role, surface string) func(http.Handler) http.Handler {
		return RequireRole(GateOptions{Minimum: minimum, Surface: surface, Metrics: services.Metrics})
	}

	csrf := services.CSRF
	if csrf.Exempt == nil {
		// the JSON API accepts only non-simple requests; see RequireJSONBody
		csrf.Exempt = isAPIRequest
	}

	mux := http.NewServeMux()
	registerAuthRoutes(mux, auth, apiGate)
	registerPageRoutes(mux, pages, gate)

	// Health checks bypass the session scope.
	root := http.NewServeMux()
	root.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	root.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	root.Handle("/", Chain(mux, BrowserDetection(), CSRFProtection(csrf), services.Sessions.Middleware))

	return Chain(root, Logging(logger), Recover(logger)), nil
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

type gateFunc func(minimum domainauth.Role, surface string) func(http.Handler) http.Handler

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, apiGate gateFunc) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.LoginSubmit)
	mux.HandleFunc("POST /logout", h.Logout)

	mux.HandleFunc("GET /api/session", h.SessionStatus)
	mux.Handle("POST /api/session", RequireJSONBody(http.HandlerFunc(h.SessionCreate)))
	mux.HandleFunc("DELETE /api/session", h.SessionDelete)
	mux.Handle("GET /api/me", apiGate(domainauth.RoleUser, "api_me")(http.HandlerFunc(h.Me)))
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers, gate gateFunc) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /programmes/{slug}", h.Programme)

	mux.Handle("GET /dashboard", gate(domainauth.RoleUser, "dashboard")(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /apply/{slug}", gate(domainauth.RoleUser, "apply")(http.HandlerFunc(h.ApplyForm)))
	mux.Handle("POST /apply/{slug}", gate(domainauth.RoleUser, "apply")(http.HandlerFunc(h.ApplySubmit)))
	mux.Handle("GET /admin", gate(domainauth.RoleAdmin, "admin")(http.HandlerFunc(h.Admin)))
	mux.Handle("GET /admin/system", gate(domainauth.RoleSuperAdmin, "system")(http.HandlerFunc(h.System)))

	mux.HandleFunc("/", h.NotFound)
}
