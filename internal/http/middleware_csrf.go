package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/target/programme-portal/internal/adapters/cookiestore"
)

const (
	// DefaultCSRFCookieName is the cookie holding the double-submit token.
	DefaultCSRFCookieName = "portal_csrf"
	// CSRFFieldName is the hidden form field carrying the token.
	CSRFFieldName = "csrf_token"
	// DefaultCSRFHeaderName is the header scripts use instead of the form field (canonical form).
	DefaultCSRFHeaderName = "X-Csrf-Token"
	// DefaultCSRFTokenLength is the token length in bytes before encoding.
	DefaultCSRFTokenLength = 32

	csrfCookieMaxAge = 12 * time.Hour
)

// CSRFConfig holds configuration for CSRFProtection.
type CSRFConfig struct {
	CookieName   string
	HeaderName   string
	CookieDomain string
	ForceSecure  bool
	TokenLength  int
	// Exempt skips the middleware entirely for matching requests.
	Exempt func(r *http.Request) bool
}

// CSRFProtection guards state-changing requests with the double-submit cookie
// pattern. Every request carries a token (the cookie is set when missing) for
// templates to render into forms. Unsafe methods must echo the cookie's value
// in the form field or the header.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeaderName
	}
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = DefaultCSRFTokenLength
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Exempt != nil && cfg.Exempt(r) {
				next.ServeHTTP(w, r)
				return
			}

			cookieToken := csrfCookieValue(r, cfg.CookieName)
			token := cookieToken
			if token == "" {
				var err error
				if token, err = generateCSRFToken(cfg.TokenLength); err != nil {
					http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					HttpOnly: false, // scripts read it to set the header
					Secure:   cfg.ForceSecure || cookiestore.IsSecureRequest(r),
					SameSite: http.SameSiteStrictMode,
					MaxAge:   int(csrfCookieMaxAge.Seconds()),
				})
			}
			r = withCSRFToken(r, token)

			if requiresCSRFValidation(r.Method) && !validCSRFToken(r, cookieToken, cfg) {
				rejectCSRF(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func csrfCookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// generateCSRFToken fails closed when the random source fails.
func generateCSRFToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// validCSRFToken compares the header, or else the posted form field, with the
// cookie in constant time.
func validCSRFToken(r *http.Request, cookieToken string, cfg CSRFConfig) bool {
	if cookieToken == "" {
		return false
	}
	submitted := r.Header.Get(cfg.HeaderName)
	if submitted == "" && isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			return false
		}
		submitted = r.PostFormValue(CSRFFieldName)
	}
	if submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) == 1
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

func rejectCSRF(w http.ResponseWriter, r *http.Request) {
	if IsAJAX(r) {
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "csrf_failed", Message: "CSRF token validation failed"})
		return
	}
	http.Error(w, "CSRF token validation failed", http.StatusForbidden)
}

type csrfTokenKey struct{}

func withCSRFToken(r *http.Request, token string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token))
}

// CSRFToken returns the token templates must render into state-changing forms.
func CSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenKey{}).(string)
	return token
}

// RequireJSONBody rejects requests whose body is not declared as JSON with 415.
// Cross-site pages cannot send that content type without a CORS preflight.
func RequireJSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnsupportedMediaType,
				ErrCode: "unsupported_media_type",
				Message: "Content-Type must be application/json",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
