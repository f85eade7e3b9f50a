package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/portfolio-site/portfolio/config"
	"github.com/portfolio-site/portfolio/internal/db"
	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "instance", "site.sqlite")
	cfg.ServerPort = 0

	srv, err := New(context.Background(), cfg, logging.NewJSONLogger(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.close() })
	require.NoError(t, db.InitSchema(context.Background(), srv.db, db.DriverSQLite))
	return srv
}

func serve(srv *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNew_Routes(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, ":8080", srv.Addr())

	rec := serve(srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(srv, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No posts yet.")

	rec = serve(srv, http.MethodGet, "/static/style.css")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, http.MethodGet, "/create")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

	rec = serve(srv, http.MethodGet, "/media/posts/x.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_RejectsUnknownStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "site.sqlite")
	cfg.Storage.Backend = "ftp"

	_, err := New(context.Background(), cfg, logging.NewJSONLogger(io.Discard, "error"))
	assert.ErrorContains(t, err, "storage")
}

func TestShutdown_ClosesDatabase(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "site.sqlite")
	srv, err := New(context.Background(), cfg, logging.NewJSONLogger(io.Discard, "error"))
	require.NoError(t, err)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Error(t, srv.db.Ping())
}

func TestNew_WriteDeadlineOutlastsRequestTimeout(t *testing.T) {
	srv := newTestServer(t)
	assert.Greater(t, srv.httpServer.WriteTimeout, requestTimeout)
	assert.Equal(t, 35*time.Second, srv.httpServer.WriteTimeout)
}

type closingBackend struct {
	closed bool
}

func (b *closingBackend) EnsureBucket(context.Context) error { return nil }

func (b *closingBackend) Put(context.Context, string, io.Reader, int64, string) error { return nil }

func (b *closingBackend) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (b *closingBackend) Delete(context.Context, string) error { return nil }

func (b *closingBackend) Bucket() string { return "images" }

func (b *closingBackend) Close() error {
	b.closed = true
	return nil
}

func TestShutdown_ClosesObjectStorage(t *testing.T) {
	srv := newTestServer(t)
	backend := &closingBackend{}
	srv.objects = storage.NewStorage(backend)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.True(t, backend.closed)
	assert.Error(t, srv.db.Ping())
}
