package httpx

import (
	"errors"
	"net/http"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/http/validation"
	"github.com/target/programme-portal/internal/service"
)

const (
	msgInvalidCredentials = "Invalid username or password."
	msgLoginUnavailable   = "Sign-in is temporarily unavailable. Please try again."
)

// AuthHandlers provides the browser and JSON sign-in endpoints.
type AuthHandlers struct {
	T          *TemplateRenderer
	Programmes []Programme
}

// LoginPage renders the sign-in form.
// GET /login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	ac := service.MustAuthContext(r.Context())
	redirectURI := redirectURIFrom(r)
	if ac.IsAuthenticated() {
		http.Redirect(w, r, redirectURI, http.StatusFound)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginView{RedirectURI: redirectURI})
}

// LoginSubmit handles the sign-in form.
// POST /login.
func (h *AuthHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	ac := service.MustAuthContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, loginView{Message: "The form could not be read."})
		return
	}
	view := loginView{
		Username:    r.PostFormValue("username"),
		RedirectURI: redirectURIFrom(r),
	}
	password := r.PostFormValue("password")

	fv := validation.New().
		Validate("username", view.Username, validation.Required("Username", domainauth.MaxUsernameLength)).
		Validate("password", password, validation.Required("Password", 1024))
	if !fv.Valid() {
		view.Errors = fv.Errors()
		h.renderLogin(w, r, http.StatusBadRequest, view)
		return
	}

	if err := ac.Login(r.Context(), view.Username, password); err != nil {
		status, msg := loginFailure(err)
		view.Message = msg
		h.renderLogin(w, r, status, view)
		return
	}
	http.Redirect(w, r, view.RedirectURI, http.StatusSeeOther)
}

type loginView struct {
	Username    string
	RedirectURI string
	Message     string
	Errors      map[string]string
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, v loginView) {
	data := basePage(r, "Sign in", h.Programmes)
	data.RedirectURI = v.RedirectURI
	data.Message = v.Message
	data.Errors = v.Errors
	data.Form = map[string]string{"username": v.Username}
	if err := h.T.Render(w, status, "login", data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// loginFailure maps a Login error to a status code and a user-facing message.
func loginFailure(err error) (int, string) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		return http.StatusUnauthorized, msgInvalidCredentials
	}
	return http.StatusServiceUnavailable, msgLoginUnavailable
}

// Logout signs the caller out.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	service.MustAuthContext(r.Context()).Logout(r.Context())

	redirectURI := redirectURIFrom(r)
	if IsAJAX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": redirectURI,
		})
		return
	}
	http.Redirect(w, r, redirectURI, http.StatusSeeOther)
}

// sessionView is the JSON form of the current session state.
type sessionView struct {
	Authenticated bool                 `json:"authenticated"`
	User          *domainauth.Identity `json:"user,omitempty"`
}

func currentSession(ac *service.AuthContext) sessionView {
	id, ok := ac.Identity()
	if !ok {
		return sessionView{}
	}
	return sessionView{Authenticated: true, User: &id}
}

// SessionStatus returns the current authentication status.
// GET /api/session.
func (h *AuthHandlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, currentSession(service.MustAuthContext(r.Context())))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionCreate signs in with a JSON body.
// POST /api/session.
func (h *AuthHandlers) SessionCreate(w http.ResponseWriter, r *http.Request) {
	ac := service.MustAuthContext(r.Context())
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := ac.Login(r.Context(), req.Username, req.Password); err != nil {
		status, msg := loginFailure(err)
		code := "invalid_credentials"
		if status != http.StatusUnauthorized {
			code = "login_unavailable"
		}
		WriteError(w, ErrorParams{Code: status, ErrCode: code, Message: msg})
		return
	}
	WriteJSON(w, http.StatusOK, currentSession(ac))
}

// SessionDelete signs out. It succeeds whether or not anyone was signed in.
// DELETE /api/session.
func (h *AuthHandlers) SessionDelete(w http.ResponseWriter, r *http.Request) {
	ac := service.MustAuthContext(r.Context())
	ac.Logout(r.Context())
	WriteJSON(w, http.StatusOK, currentSession(ac))
}

// Me returns the admitted identity.
// GET /api/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := service.MustAuthContext(r.Context()).Identity()
	if !ok {
		// The gate admitted the request, so this is unreachable unless misrouted.
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required"})
		return
	}
	WriteJSON(w, http.StatusOK, id)
}
