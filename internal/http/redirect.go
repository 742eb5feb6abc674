package httpx

import (
	"net/http"
	"net/url"
	"strings"
)

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" || strings.ContainsAny(candidate, "\\\r\n") {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}

// loginURL is the sign-in page that returns the caller to r afterwards.
func loginURL(r *http.Request) string {
	q := url.Values{}
	q.Set("redirect_uri", safeRedirectPath(r.URL.RequestURI()))
	return "/login?" + q.Encode()
}

// redirectURIFrom reads redirect_uri from the form or query.
func redirectURIFrom(r *http.Request) string {
	return safeRedirectPath(r.FormValue("redirect_uri"))
}
