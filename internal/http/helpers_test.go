package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/target/programme-portal/internal/adapters/authroles"
	"github.com/target/programme-portal/internal/adapters/devauth"
	"github.com/target/programme-portal/internal/adapters/memstore"
	"github.com/target/programme-portal/internal/adapters/sessioncodec"
	"github.com/target/programme-portal/internal/data/cryptoutil"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCodec(t *testing.T) *sessioncodec.Codec {
	t.Helper()
	sealer, err := cryptoutil.NewAESGCMSealer(cryptoutil.DeriveKey("test-key"), "session")
	require.NoError(t, err)
	return sessioncodec.New(sealer)
}

func newTestRouter(t *testing.T, mutate ...func(*RouterServices)) http.Handler {
	t.Helper()
	scope, err := NewSessionScope(SessionScopeConfig{
		Codec:    testCodec(t),
		Verifier: devauth.NewVerifier(devauth.Config{}),
		Roles:    authroles.DefaultTable(),
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	services := RouterServices{
		Sessions:   scope,
		SystemInfo: map[string]string{"auth_mode": "stub"},
		Logger:     discardLogger(),
	}
	for _, m := range mutate {
		m(&services)
	}
	h, err := NewRouter(services)
	require.NoError(t, err)
	return h
}

// authContextFor builds an auth context over an in-memory store holding id.
func authContextFor(t *testing.T, id *domainauth.Identity, initialize bool) *service.AuthContext {
	t.Helper()
	store := memstore.New(testCodec(t), discardLogger())
	if id != nil {
		require.NoError(t, store.Set(context.Background(), *id))
	}
	provider, err := service.NewIdentityProvider(service.IdentityProviderOptions{
		Verifier: devauth.NewVerifier(devauth.Config{}),
		Roles:    authroles.DefaultTable(),
		Store:    store,
	})
	require.NoError(t, err)
	ac := service.NewAuthContext(service.AuthContextOptions{Provider: provider, Logger: discardLogger()})
	if initialize {
		ac.Initialize(context.Background())
	}
	return ac
}

func browserRequest(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	r.Header.Set("Accept", "text/html,application/xhtml+xml")
	return r
}

const testCSRFToken = "csrf-test-token"

// formRequest posts form the way a page rendered by the portal would,
// echoing the CSRF cookie in the hidden field.
func formRequest(target, form string) *http.Request {
	if form != "" {
		form += "&"
	}
	form += CSRFFieldName + "=" + testCSRFToken
	r := browserRequest(http.MethodPost, target, strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return r
}

func jsonRequest(method, target string, v any) *http.Request {
	var body io.Reader = http.NoBody
	if v != nil {
		b, _ := json.Marshal(v)
		body = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, target, body)
	r.Header.Set("Accept", "application/json")
	r.Header.Set("Content-Type", "application/json")
	return r
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "portal_session" {
			return c
		}
	}
	return nil
}

// signIn logs in through the JSON API and returns the session cookie.
func signIn(t *testing.T, h http.Handler, username string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/session", map[string]string{"username": username, "password": "pw"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := sessionCookie(t, w)
	require.NotNil(t, c)
	require.NotEmpty(t, c.Value)
	return c
}
