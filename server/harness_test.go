package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/signature-studio/doctemplate"
	"github.com/jrsteele09/signature-studio/graph"
	"github.com/jrsteele09/signature-studio/identity"
	"github.com/jrsteele09/signature-studio/internal/config"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/internal/metrics"
	"github.com/jrsteele09/signature-studio/mailer"
	"github.com/jrsteele09/signature-studio/server"
	"github.com/jrsteele09/signature-studio/server/authflowrepo"
	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/jrsteele09/signature-studio/signature"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testBaseURL = "https://signatures.example.com"
	testSecret  = "0123456789abcdef0123456789abcdef"
	testEmail   = "jeanne.martin@example.com"
	pngDataURL  = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR4nGNgYGD4DwABBAEAwS2OUAAAAABJRU5ErkJggg=="
)

type fakeProvider struct {
	mu sync.Mutex

	state, nonce, verifier string

	identity    sessions.Identity
	token       *oauth2.Token
	exchangeErr error

	refreshed    *oauth2.Token
	refreshErr   error
	refreshCalls int
}

func (p *fakeProvider) AuthCodeURL(state, nonce, verifier string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state, p.nonce, p.verifier = state, nonce, verifier
	return "https://login.example.com/authorize?" + url.Values{"state": {state}}.Encode()
}

func (p *fakeProvider) Exchange(_ context.Context, code, verifier, nonce string) (*identity.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	if code != "good-code" || verifier != p.verifier || nonce != p.nonce {
		return nil, &errors.AuthenticationError{Reason: "code exchange rejected"}
	}
	return &identity.Result{Identity: p.identity, Token: p.token}, nil
}

func (p *fakeProvider) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshCalls++
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	return p.refreshed, nil
}

func (p *fakeProvider) LogoutURL(postLogout string) string {
	return "https://login.example.com/logout?" + url.Values{"post_logout_redirect_uri": {postLogout}}.Encode()
}

type fakeTemplates struct {
	err error
}

func (f *fakeTemplates) Fetch(_ context.Context, name string) (*doctemplate.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, err := doctemplate.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	data, err := doctemplate.Fallback()
	if err != nil {
		return nil, err
	}
	return &doctemplate.Template{Name: name, Data: data, Fallback: true}, nil
}

type sentMail struct {
	image       *mailer.Attachment
	recipient   string
	displayName string
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	err   error
	panic bool
}

func (m *fakeMailer) Send(_ context.Context, imageDataURL, recipient, displayName string) error {
	if m.panic {
		panic("relay exploded")
	}
	image, err := mailer.ParseDataURL(imageDataURL)
	if err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{image: image, recipient: recipient, displayName: displayName})
	return nil
}

type fakeGraph struct {
	mu      sync.Mutex
	tokens  []string
	profile *graph.Profile
	meErr   error

	settings    *graph.MailboxSettings
	settingsErr error

	uploads map[string][]byte
}

func (g *fakeGraph) seen(ctx context.Context) {
	token, _ := graph.TokenFromContext(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokens = append(g.tokens, token)
}

func (g *fakeGraph) lastToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.tokens) == 0 {
		return ""
	}
	return g.tokens[len(g.tokens)-1]
}

func (g *fakeGraph) Me(ctx context.Context) (*graph.Profile, error) {
	g.seen(ctx)
	if g.meErr != nil {
		return nil, g.meErr
	}
	return g.profile, nil
}

func (g *fakeGraph) MailboxSettings(ctx context.Context) (*graph.MailboxSettings, error) {
	g.seen(ctx)
	if g.settingsErr != nil {
		return nil, g.settingsErr
	}
	return g.settings, nil
}

func (g *fakeGraph) UploadFile(ctx context.Context, path string, content []byte, _ string) (*graph.DriveItem, error) {
	g.seen(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.uploads == nil {
		g.uploads = map[string][]byte{}
	}
	g.uploads[path] = content
	name := path[strings.LastIndex(path, "/")+1:]
	return &graph.DriveItem{ID: "item-1", Name: name, WebURL: "https://onedrive.example.com/" + name, Size: int64(len(content))}, nil
}

type harness struct {
	server    *server.Server
	provider  *fakeProvider
	templates *fakeTemplates
	mailer    *fakeMailer
	graph     *fakeGraph
	store     *sessions.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("BASE_URL", testBaseURL)
	t.Setenv("APP_NAME", "Signature Studio")
	t.Setenv("SIGNATURE_COMPANY", "Example Corp")

	store := sessions.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	codec, err := sessions.NewCookieCodec(testSecret)
	require.NoError(t, err)
	flows := authflowrepo.NewCacheRepo(time.Minute)
	t.Cleanup(flows.Close)

	renderer, err := signature.NewRenderer(signature.Branding{Company: "Example Corp", Website: "https://example.com"})
	require.NoError(t, err)

	h := &harness{
		provider: &fakeProvider{
			identity: sessions.Identity{ID: "oid-1", Name: "Jeanne Martin", Email: testEmail},
			token:    &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)},
		},
		templates: &fakeTemplates{},
		mailer:    &fakeMailer{},
		graph: &fakeGraph{
			profile: &graph.Profile{
				ID: "oid-1", GivenName: "Jeanne", Surname: "Martin", JobTitle: "Head of Design",
				Mail: testEmail, BusinessPhones: []string{"+33 1 23 45 67 89"}, City: "PARIS", UsageLocation: "fr",
			},
			settings: &graph.MailboxSettings{TimeZone: "Romance Standard Time", Language: graph.Language{Locale: "fr-FR", DisplayName: "French (France)"}},
		},
		store: store,
	}

	srv, err := server.New(server.Dependencies{
		Config:    config.New(),
		Sessions:  sessions.NewManager(store, codec, sessions.ManagerOptions{MaxAge: time.Hour}),
		AuthFlows: flows,
		Identity:  h.provider,
		Templates: h.templates,
		Mailer:    h.mailer,
		Graph:     h.graph,
		Renderer:  renderer,
		Metrics:   metrics.New(),
	})
	require.NoError(t, err)
	h.server = srv
	return h
}

func (h *harness) do(method, target string, body io.Reader, cookies []*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, r)
	return rec
}

func (h *harness) get(target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return h.do(http.MethodGet, target, nil, cookies)
}

func (h *harness) postJSON(target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return h.do(http.MethodPost, target, strings.NewReader(body), cookies)
}

// signIn runs the whole sign-in flow and returns the session cookies and the final redirect.
func (h *harness) signIn(t *testing.T, callbackURL string) ([]*http.Cookie, string) {
	t.Helper()
	start := server.RouteSignInStart
	if callbackURL != "" {
		start += "?callbackUrl=" + url.QueryEscape(callbackURL)
	}
	rec := h.get(start, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	authorize, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := authorize.Query().Get("state")
	require.NotEmpty(t, state)

	rec = h.get(server.RouteCallback+"?"+url.Values{"code": {"good-code"}, "state": {state}}.Encode(), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return liveCookies(rec), rec.Header().Get("Location")
}

// liveCookies returns the cookies a browser would keep from rec.
func liveCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}

// clearedCookie reports whether rec deletes the named cookie.
func clearedCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return true
		}
	}
	return false
}
