// Package workflowtest drives the portal end to end the way a browser would:
// a real HTTP server, a cookie jar, and redirects followed.
package workflowtest

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/target/programme-portal/internal/testutil"
	"golang.org/x/net/publicsuffix"
)

// Browser is a cookie-carrying client bound to one test server.
type Browser struct {
	t      testutil.TestingTB
	ts     *httptest.Server
	client *http.Client
	jar    *cookiejar.Jar
	opts   BrowserOptions
}

// Page is the final response after redirects.
type Page struct {
	Status int
	Path   string
	Query  url.Values
	Body   string
	Header http.Header
}

// BrowserOptions configures NewBrowser.
type BrowserOptions struct {
	// Accept is sent with every request. Defaults to text/html.
	Accept string
	// NoRedirects stops at the first response instead of following Location.
	NoRedirects bool
	// CSRFCookie and CSRFField make PostForm echo the named cookie in the named
	// form field, as a page's hidden input would. Both must be set.
	CSRFCookie string
	CSRFField  string
}

// NewBrowser starts handler on a test server. Call Close when done.
func NewBrowser(t testutil.TestingTB, handler http.Handler, opts BrowserOptions) *Browser {
	t.Helper()
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	if opts.Accept == "" {
		opts.Accept = "text/html"
	}

	b := &Browser{t: t, ts: httptest.NewServer(handler), jar: jar, opts: opts}
	b.client = &http.Client{Jar: jar, Transport: acceptTransport{accept: opts.Accept}}
	if opts.NoRedirects {
		b.client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
	return b
}

// acceptTransport sets Accept on every hop, including followed redirects.
type acceptTransport struct {
	accept string
}

func (a acceptTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", a.accept)
	}
	return http.DefaultTransport.RoundTrip(r)
}

// URL is the server base URL.
func (b *Browser) URL() string { return b.ts.URL }

// Close stops the server.
func (b *Browser) Close() { b.ts.Close() }

// Get requests path.
func (b *Browser) Get(path string) Page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.ts.URL+path, nil)
	if err != nil {
		b.t.Fatalf("build GET %s: %v", path, err)
	}
	return b.do(req)
}

// PostForm submits form to path, adding the CSRF field when configured and
// not already present.
func (b *Browser) PostForm(path string, form url.Values) Page {
	b.t.Helper()
	if b.opts.CSRFCookie != "" && b.opts.CSRFField != "" && form.Get(b.opts.CSRFField) == "" {
		if c := b.Cookie(b.opts.CSRFCookie); c != nil {
			withToken := url.Values{}
			for k, v := range form {
				withToken[k] = v
			}
			withToken.Set(b.opts.CSRFField, c.Value)
			form = withToken
		}
	}
	req, err := http.NewRequest(http.MethodPost, b.ts.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		b.t.Fatalf("build POST %s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// SignIn opens the login page, submits the form and returns the page it lands on.
func (b *Browser) SignIn(username, password, redirectURI string) Page {
	b.t.Helper()
	b.Get("/login?redirect_uri=" + url.QueryEscape(redirectURI))
	return b.PostForm("/login", url.Values{
		"username":     {username},
		"password":     {password},
		"redirect_uri": {redirectURI},
	})
}

// SignOut submits the logout form.
func (b *Browser) SignOut() Page {
	b.t.Helper()
	return b.PostForm("/logout", url.Values{})
}

// Cookie returns the jar's cookie called name for the server, or nil.
func (b *Browser) Cookie(name string) *http.Cookie {
	u, err := url.Parse(b.ts.URL)
	if err != nil {
		b.t.Fatalf("parse server url: %v", err)
	}
	for _, c := range b.jar.Cookies(u) {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (b *Browser) do(req *http.Request) Page {
	b.t.Helper()
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatalf("read body: %v", err)
	}
	return Page{
		Status: resp.StatusCode,
		Path:   resp.Request.URL.Path,
		Query:  resp.Request.URL.Query(),
		Body:   string(body),
		Header: resp.Header,
	}
}
