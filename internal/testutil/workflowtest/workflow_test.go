package workflowtest

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /accept", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Accept")))
	})
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "tok", Value: "abc", Path: "/"})
	})
	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.PostFormValue("field") + "|" + r.PostFormValue("token")))
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "s", Value: r.PostFormValue("username"), Path: "/"})
		http.Redirect(w, r, r.PostFormValue("redirect_uri"), http.StatusSeeOther)
	})
	mux.HandleFunc("GET /who", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("s")
		if err != nil {
			http.Error(w, "anonymous", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(c.Value))
	})
	return mux
}

func TestBrowser_FollowsRedirectsWithCookies(t *testing.T) {
	b := NewBrowser(t, echoHandler(), BrowserOptions{})
	defer b.Close()

	assert.Equal(t, http.StatusUnauthorized, b.Get("/who").Status)

	page := b.SignIn("alice", "pw", "/who?x=1")
	require.Equal(t, http.StatusOK, page.Status)
	assert.Equal(t, "/who", page.Path)
	assert.Equal(t, url.Values{"x": {"1"}}, page.Query)
	assert.Equal(t, "alice", page.Body)
	require.NotNil(t, b.Cookie("s"))
	assert.Nil(t, b.Cookie("missing"))
}

func TestBrowser_AcceptAndRedirectOptions(t *testing.T) {
	b := NewBrowser(t, echoHandler(), BrowserOptions{Accept: "application/json", NoRedirects: true})
	defer b.Close()

	assert.Equal(t, "application/json", b.Get("/accept").Body)

	page := b.SignIn("alice", "pw", "/who")
	assert.Equal(t, http.StatusSeeOther, page.Status)
	assert.Equal(t, "/login", page.Path)
	assert.Equal(t, "/who", page.Header.Get("Location"))
}

func TestBrowser_EchoesCSRFCookie(t *testing.T) {
	b := NewBrowser(t, echoHandler(), BrowserOptions{CSRFCookie: "tok", CSRFField: "token"})
	defer b.Close()

	assert.Equal(t, "x|", b.PostForm("/echo", url.Values{"field": {"x"}}).Body, "no cookie yet")

	b.Get("/login")
	assert.Equal(t, "x|abc", b.PostForm("/echo", url.Values{"field": {"x"}}).Body)
	assert.Equal(t, "x|mine", b.PostForm("/echo", url.Values{"field": {"x"}, "token": {"mine"}}).Body)
}
