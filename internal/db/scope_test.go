package db

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_AcquireMemoizes(t *testing.T) {
	pool := openTestDB(t)
	scope := NewScope(pool)
	defer scope.Release()

	first, err := scope.Acquire(context.Background())
	require.NoError(t, err)
	second, err := scope.Acquire(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestScope_ReleaseWithoutAcquire(t *testing.T) {
	scope := NewScope(openTestDB(t))

	assert.NoError(t, scope.Release())
	assert.NoError(t, scope.Release())
}

func TestScope_ReleaseClosesConnection(t *testing.T) {
	pool := openTestDB(t)
	scope := NewScope(pool)

	conn, err := scope.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.PingContext(context.Background()))

	require.NoError(t, scope.Release())
	assert.ErrorIs(t, conn.PingContext(context.Background()), sql.ErrConnDone)
	assert.NoError(t, scope.Release())

	fresh, err := scope.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, conn, fresh)
	require.NoError(t, scope.Release())
}

func TestQuerier_FallsBackToPool(t *testing.T) {
	pool := openTestDB(t)

	q, err := Querier(context.Background(), pool)
	require.NoError(t, err)
	assert.Same(t, pool, q)
}

func TestQuerier_UsesScope(t *testing.T) {
	pool := openTestDB(t)
	scope := NewScope(pool)
	defer scope.Release()
	ctx := WithScope(context.Background(), scope)

	q, err := Querier(ctx, pool)
	require.NoError(t, err)
	conn, err := scope.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, conn, q)
}

func TestMiddleware_ReleasesAfterRequest(t *testing.T) {
	pool := openTestDB(t)

	var held *sql.Conn
	var calls int
	handler := Middleware(pool)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		q, err := Querier(r.Context(), pool)
		require.NoError(t, err)
		again, err := Querier(r.Context(), pool)
		require.NoError(t, err)
		assert.Same(t, q, again)

		conn, ok := q.(*sql.Conn)
		require.True(t, ok, "expected a scoped *sql.Conn, got %T", q)
		held = conn
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, held)
	assert.ErrorIs(t, held.PingContext(context.Background()), sql.ErrConnDone)
}

func TestMiddleware_NoConnectionWhenUnused(t *testing.T) {
	pool := openTestDB(t)
	before := pool.Stats().OpenConnections

	handler := Middleware(pool)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := ScopeFrom(r.Context())
		assert.True(t, ok)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, before, pool.Stats().OpenConnections)
	assert.Equal(t, 0, pool.Stats().InUse)
}
