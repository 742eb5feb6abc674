package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCSRFCookieName {
			return c
		}
	}
	return nil
}

func csrfEcho() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(CSRFToken(r)))
	}))
}

func TestCSRFProtection_IssuesToken(t *testing.T) {
	w := httptest.NewRecorder()
	csrfEcho().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	require.Equal(t, http.StatusOK, w.Code)
	c := csrfCookie(w)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, c.Value, w.Body.String(), "handlers see the token they must render")
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.False(t, c.HttpOnly)

	// an existing token is reused, not rotated
	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "kept"})
	w = httptest.NewRecorder()
	csrfEcho().ServeHTTP(w, r)
	assert.Nil(t, csrfCookie(w))
	assert.Equal(t, "kept", w.Body.String())
}

func TestCSRFProtection_UnsafeMethods(t *testing.T) {
	post := func(form url.Values, cookie, header string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if cookie != "" {
			r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: cookie})
		}
		if header != "" {
			r.Header.Set(DefaultCSRFHeaderName, header)
		}
		return r
	}

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"no cookie, no token", post(url.Values{"username": {"a"}}, "", ""), http.StatusForbidden},
		{"token without cookie", post(url.Values{CSRFFieldName: {"t1"}}, "", ""), http.StatusForbidden},
		{"cookie without token", post(url.Values{"username": {"a"}}, "t1", ""), http.StatusForbidden},
		{"mismatched field", post(url.Values{CSRFFieldName: {"t2"}}, "t1", ""), http.StatusForbidden},
		{"mismatched header", post(nil, "t1", "t2"), http.StatusForbidden},
		{"matching field", post(url.Values{CSRFFieldName: {"t1"}}, "t1", ""), http.StatusOK},
		{"matching header", post(nil, "t1", "t1"), http.StatusOK},
		{"query string is not a form field", func() *http.Request {
			r := post(nil, "t1", "")
			r.URL.RawQuery = CSRFFieldName + "=t1"
			return r
		}(), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			csrfEcho().ServeHTTP(w, tt.req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCSRFProtection_AJAXRejectionIsJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/thing", nil)
	r.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	csrfEcho().ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"csrf_failed","message":"CSRF token validation failed"}`, w.Body.String())
}

func TestCSRFProtection_Exempt(t *testing.T) {
	h := CSRFProtection(CSRFConfig{Exempt: isAPIRequest})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Nil(t, csrfCookie(w))
}

func TestRequireJSONBody(t *testing.T) {
	h := RequireJSONBody(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for ct, want := range map[string]int{
		"application/json":                  http.StatusNoContent,
		"application/json; charset=utf-8":   http.StatusNoContent,
		"text/plain":                        http.StatusUnsupportedMediaType,
		"application/x-www-form-urlencoded": http.StatusUnsupportedMediaType,
		"":                                  http.StatusUnsupportedMediaType,
	} {
		r := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(`{}`))
		if ct != "" {
			r.Header.Set("Content-Type", ct)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, want, w.Code, ct)
	}
}
