package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio-site/portfolio/config"
	"github.com/portfolio-site/portfolio/internal/db"
	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/internal/services"
	"github.com/portfolio-site/portfolio/internal/session"
	"github.com/portfolio-site/portfolio/internal/storage"
	"github.com/portfolio-site/portfolio/internal/store"
	"github.com/portfolio-site/portfolio/internal/web"
	"github.com/stretchr/testify/require"
)

type memoryMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryMedia) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryMedia) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type testApp struct {
	t        *testing.T
	pool     *sql.DB
	server   *httptest.Server
	client   *http.Client
	media    *memoryMedia
	sessions *session.Manager
}

// newTestApp wires the site against a fresh SQLite file and an in-memory
// media store.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	ctx := context.Background()
	pool, err := db.Open(ctx, config.DatabaseConfig{
		Driver: db.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "instance", "site.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, db.InitSchema(ctx, pool, db.DriverSQLite))

	logger := logging.NewJSONLogger(io.Discard, "error")
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	sessions, err := session.NewManager("test-secret", session.Options{})
	require.NoError(t, err)
	view := NewView(renderer, sessions, logger)

	media := &memoryMedia{objects: map[string][]byte{}}
	users := services.NewUserService(store.NewUserRepository(pool), nil)
	posts := services.NewPostService(store.NewPostRepository(pool), media, nil, logger)

	router := chi.NewRouter()
	router.Use(db.Middleware(pool), sessions.Middleware, LoadCurrentUser(users, logger))
	PagesRouter(router, view)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, users, view)
	})
	router.Get("/media/*", Media(posts, view))
	BlogRouter(router, posts, view)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	app := &testApp{t: t, pool: pool, server: srv, media: media, sessions: sessions}
	app.client = app.newClient()
	return app
}

// newClient returns a client with its own cookie jar that does not follow
// redirects.
func (a *testApp) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type result struct {
	status   int
	location string
	body     string
}

func (a *testApp) do(client *http.Client, req *http.Request) result {
	a.t.Helper()
	resp, err := client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return result{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (a *testApp) get(path string) result {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	require.NoError(a.t, err)
	return a.do(a.client, req)
}

func (a *testApp) post(path string, form url.Values) result {
	a.t.Helper()
	return a.postAs(a.client, path, form)
}

func (a *testApp) postAs(client *http.Client, path string, form url.Values) result {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(client, req)
}

func (a *testApp) register(username, password string) result {
	a.t.Helper()
	return a.post("/auth/register", url.Values{"username": {username}, "password": {password}})
}

func (a *testApp) login(username, password string) result {
	a.t.Helper()
	return a.post("/auth/login", url.Values{"username": {username}, "password": {password}})
}

func (a *testApp) signUpAndLogIn(username, password string) {
	a.t.Helper()
	require.Equal(a.t, http.StatusSeeOther, a.register(username, password).status)
	require.Equal(a.t, http.StatusSeeOther, a.login(username, password).status)
}

func (a *testApp) sessionCookie() *http.Cookie {
	u, err := url.Parse(a.server.URL)
	require.NoError(a.t, err)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == session.DefaultCookieName {
			return c
		}
	}
	return nil
}
