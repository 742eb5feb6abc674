package httpx

import (
	"net/http"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/observability/metrics"
	"github.com/target/programme-portal/internal/observability/statsd"
	"github.com/target/programme-portal/internal/service"
)

// GateOptions configures RequireRole and RequireRoleBrowser.
type GateOptions struct {
	Minimum domainauth.Role
	Surface string
	Metrics statsd.Sink
	// Denied renders the browser refusal page for an under-privileged caller.
	// When nil a plain 403 is written.
	Denied func(w http.ResponseWriter, r *http.Request, minimum domainauth.Role)
}

func (o GateOptions) evaluate(r *http.Request) domainauth.Decision {
	gate := domainauth.NewGate(o.Minimum)
	d := service.MustAuthContext(r.Context()).Check(gate)
	metrics.EmitGateDecision(o.Metrics, metrics.GateMetric{
		Surface: o.Surface,
		Minimum: gate.Minimum().String(),
		State:   d.State.String(),
		Reason:  string(d.Reason),
	})
	return d
}

// writePending answers a request whose auth context has not finished
// initializing. The body is empty so neither view can flash.
func writePending(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusServiceUnavailable)
}

// RequireRole gates an API handler. Denied callers get a JSON 401 or 403 and
// next is never invoked for them.
func RequireRole(opts GateOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := opts.evaluate(r)
			switch {
			case d.State == domainauth.GatePending:
				writePending(w)
			case d.Admitted():
				next.ServeHTTP(w, r)
			case d.Reason == domainauth.DenyUnauthenticated:
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Message: "authentication required",
				})
			default:
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Message: "insufficient permissions",
				})
			}
		})
	}
}

// RequireRoleBrowser gates a page. Browsers are sent to /login when signed
// out and shown the refusal page when under-privileged; API callers get the
// same JSON errors as RequireRole.
func RequireRoleBrowser(opts GateOptions) func(http.Handler) http.Handler {
	api := RequireRole(opts)
	return func(next http.Handler) http.Handler {
		apiGated := api(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsBrowserRequest(r) {
				apiGated.ServeHTTP(w, r)
				return
			}
			d := opts.evaluate(r)
			switch {
			case d.State == domainauth.GatePending:
				writePending(w)
			case d.Admitted():
				next.ServeHTTP(w, r)
			case d.Reason == domainauth.DenyUnauthenticated:
				http.Redirect(w, r, loginURL(r), http.StatusFound)
			case opts.Denied != nil:
				opts.Denied(w, r, domainauth.NewGate(opts.Minimum).Minimum())
			default:
				http.Error(w, "Forbidden", http.StatusForbidden)
			}
		})
	}
}
