package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/target/programme-portal/internal/data"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/http/validation"
	"github.com/target/programme-portal/internal/service"
)

// RoleLister lists role directory entries for the admin page.
type RoleLister interface {
	List(ctx context.Context, role domainauth.Role) ([]data.RoleAssignment, error)
}

// PageHandlers renders the protected and public surfaces. Pages learn who the
// caller is only through the request's auth context.
type PageHandlers struct {
	T          *TemplateRenderer
	Programmes []Programme
	Roles      RoleLister        // optional
	SystemInfo map[string]string // shown on /admin/system
	Logger     *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *PageHandlers) render(w http.ResponseWriter, status int, page string, data PageData) {
	if err := h.T.Render(w, status, page, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Home lists the programmes.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home", basePage(r, "Programmes", h.Programmes))
}

// Programme shows one programme's landing page.
func (h *PageHandlers) Programme(w http.ResponseWriter, r *http.Request) {
	p, ok := findProgramme(h.Programmes, r.PathValue("slug"))
	if !ok {
		h.NotFound(w, r)
		return
	}
	data := basePage(r, p.Name, h.Programmes)
	data.Programme = p
	h.render(w, http.StatusOK, "programme", data)
}

// Dashboard is the member landing page.
func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "dashboard", basePage(r, "Dashboard", h.Programmes))
}

var passportPattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

var applicationFields = []string{"full_name", "email", "nationality", "passport_number", "statement"}

// ApplyForm shows the application form for a programme.
func (h *PageHandlers) ApplyForm(w http.ResponseWriter, r *http.Request) {
	p, ok := findProgramme(h.Programmes, r.PathValue("slug"))
	if !ok {
		h.NotFound(w, r)
		return
	}
	data := basePage(r, "Apply for "+p.Name, h.Programmes)
	data.CurrentPage = "apply"
	data.Programme = p
	h.render(w, http.StatusOK, "apply", data)
}

// ApplySubmit validates the application and acknowledges it, attributing it
// to the signed-in username.
func (h *PageHandlers) ApplySubmit(w http.ResponseWriter, r *http.Request) {
	p, ok := findProgramme(h.Programmes, r.PathValue("slug"))
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := make(map[string]string, len(applicationFields))
	for _, f := range applicationFields {
		form[f] = strings.TrimSpace(r.PostFormValue(f))
	}
	form["passport_number"] = strings.ToUpper(form["passport_number"])

	fv := validation.New().
		Validate("full_name", form["full_name"], validation.Required("Full name", 120)).
		Validate("email", form["email"], validation.Required("Email", 254), validation.Email("Email")).
		Validate("nationality", form["nationality"], validation.Required("Nationality", 80)).
		Validate("passport_number", form["passport_number"],
			validation.Required("Passport number", 12), validation.Pattern("Passport number", passportPattern)).
		Validate("statement", form["statement"], validation.Optional("Statement", 2000))

	data := basePage(r, "Apply for "+p.Name, h.Programmes)
	data.Programme = p
	if !fv.Valid() {
		data.CurrentPage = "apply"
		data.Form = form
		data.Errors = fv.Errors()
		data.Message = "Please correct the highlighted fields."
		h.render(w, http.StatusUnprocessableEntity, "apply", data)
		return
	}

	id, _ := service.MustAuthContext(r.Context()).Identity()
	ref := strings.ToUpper(p.Slug + "-" + uuid.NewString()[:8])
	h.logger().InfoContext(r.Context(), "application submitted",
		"programme", p.Slug, "reference", ref, "applicant", id.Username)

	data.Title = "Application received"
	data.Data = map[string]any{"reference": ref}
	h.render(w, http.StatusOK, "apply-submitted", data)
}

// Admin is the admin console.
func (h *PageHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	data := basePage(r, "Administration", h.Programmes)
	data.Data = map[string]any{}
	if h.Roles != nil {
		assignments, err := h.Roles.List(r.Context(), "")
		if err != nil {
			h.logger().WarnContext(r.Context(), "list role assignments failed", "error", err)
		} else if len(assignments) > 0 {
			data.Data["assignments"] = assignments
		}
	}
	h.render(w, http.StatusOK, "admin", data)
}

// System shows runtime configuration to superadmins.
func (h *PageHandlers) System(w http.ResponseWriter, r *http.Request) {
	data := basePage(r, "System", h.Programmes)
	data.Data = map[string]any{"system": h.SystemInfo}
	h.render(w, http.StatusOK, "system", data)
}

// Denied renders the access-denied page.
func (h *PageHandlers) Denied(w http.ResponseWriter, r *http.Request, minimum domainauth.Role) {
	data := basePage(r, "Access denied", h.Programmes)
	data.Data = map[string]any{"minimum": minimum.String()}
	h.render(w, http.StatusForbidden, "denied", data)
}

// NotFound renders the 404 page for browsers and a JSON error otherwise.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Message: "not found"})
		return
	}
	data := basePage(r, "Not found", h.Programmes)
	data.Data = map[string]any{"path": r.URL.Path}
	h.render(w, http.StatusNotFound, "notfound", data)
}
