package httpx

import (
	"net/http"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/service"
)

// PageData is what every page template receives.
type PageData struct {
	Title       string
	CurrentPage string
	Identity    *domainauth.Identity
	Programmes  []Programme
	Programme   *Programme
	RedirectURI string
	Message     string
	Form        map[string]string
	Errors      map[string]string
	Data        map[string]any
	CSRFToken   string
}

// IsAuthenticated reports whether the page is rendered for a signed-in caller.
func (p PageData) IsAuthenticated() bool { return p.Identity != nil }

// HasRole reports whether the caller's role is at least role. Navigation uses
// it to hide links the caller cannot open.
func (p PageData) HasRole(role string) bool {
	if p.Identity == nil {
		return false
	}
	minimum, err := domainauth.ParseRole(role)
	if err != nil {
		return false
	}
	return p.Identity.Role.AtLeast(minimum)
}

// basePage fills the identity from the request's auth context and the
// programme list for navigation.
func basePage(r *http.Request, title string, programmes []Programme) PageData {
	data := PageData{Title: title, Programmes: programmes, CSRFToken: CSRFToken(r)}
	if ac, ok := service.AuthContextFrom(r.Context()); ok {
		if id, signedIn := ac.Identity(); signedIn {
			data.Identity = &id
		}
	}
	return data
}
