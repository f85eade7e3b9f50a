package db

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
)

// Scope memoizes one connection for the lifetime of a request. The
// connection is opened on first use and closed by Release.
type Scope struct {
	pool *sql.DB

	mu   sync.Mutex
	conn *sql.Conn
}

func NewScope(pool *sql.DB) *Scope {
	return &Scope{pool: pool}
}

// Acquire returns the scope's connection, opening it on the first call.
func (s *Scope) Acquire(ctx context.Context) (*sql.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

// Release closes the memoized connection, if any. It is a no-op when no
// connection was opened and safe to call more than once.
func (s *Scope) Release() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

type scopeKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope stored in ctx, if any.
func ScopeFrom(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}

// Querier returns the request's connection when ctx carries a scope, and the
// pool otherwise.
func Querier(ctx context.Context, pool *sql.DB) (DBTX, error) {
	if s, ok := ScopeFrom(ctx); ok {
		return s.Acquire(ctx)
	}
	return pool, nil
}

// Middleware gives every request its own Scope and releases it once the
// handler returns.
func Middleware(pool *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := NewScope(pool)
			defer func() {
				_ = scope.Release()
			}()
			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}
