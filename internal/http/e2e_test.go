package httpx

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/programme-portal/internal/testutil/workflowtest"
)

func TestEndToEnd_BrowserSession(t *testing.T) {
	b := workflowtest.NewBrowser(t, newTestRouter(t), workflowtest.BrowserOptions{
		CSRFCookie: DefaultCSRFCookieName,
		CSRFField:  CSRFFieldName,
	})
	defer b.Close()

	// Protected page bounces to the login form.
	page := b.Get("/dashboard")
	assert.Equal(t, "/login", page.Path)
	assert.Equal(t, "/dashboard", page.Query.Get("redirect_uri"))
	assert.Contains(t, page.Body, "Sign in")

	// Sign in as admin and land on the dashboard.
	page = b.SignIn("admin", "x", "/dashboard")
	assert.Equal(t, http.StatusOK, page.Status)
	assert.Equal(t, "/dashboard", page.Path)
	assert.Contains(t, page.Body, "Welcome, admin")
	require.NotNil(t, b.Cookie("portal_session"))

	// The session survives reloads and is enforced per role.
	assert.Equal(t, http.StatusOK, b.Get("/admin").Status)
	page = b.Get("/admin/system")
	assert.Equal(t, http.StatusForbidden, page.Status)
	assert.Contains(t, page.Body, "superadmin")

	// Application is attributed to the signed-in user.
	page = b.PostForm("/apply/mtep", url.Values{
		"full_name":       {"Admin User"},
		"email":           {"admin@example.com"},
		"nationality":     {"MY"},
		"passport_number": {"A12345678"},
	})
	assert.Equal(t, http.StatusOK, page.Status)
	assert.Contains(t, page.Body, `<dd class="applicant">admin</dd>`)

	// Sign out; the next visit is signed out again.
	assert.Equal(t, "/", b.SignOut().Path)
	assert.Nil(t, b.Cookie("portal_session"))
	assert.Equal(t, "/login", b.Get("/dashboard").Path)
}

func TestEndToEnd_FormsWithoutTokenAreRefused(t *testing.T) {
	// behaves like a cross-site page: it can post, but cannot read the token cookie
	b := workflowtest.NewBrowser(t, newTestRouter(t), workflowtest.BrowserOptions{})
	defer b.Close()

	page := b.SignIn("admin", "x", "/dashboard")
	assert.Equal(t, http.StatusForbidden, page.Status)
	assert.Nil(t, b.Cookie("portal_session"))

	page = b.PostForm("/login", url.Values{
		"username":    {"admin"},
		"password":    {"x"},
		CSRFFieldName: {"guessed"},
	})
	assert.Equal(t, http.StatusForbidden, page.Status)
	assert.Nil(t, b.Cookie("portal_session"))
	assert.Equal(t, "/login", b.Get("/dashboard").Path)
}
