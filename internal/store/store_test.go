package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/portfolio-site/portfolio/config"
	"github.com/portfolio-site/portfolio/internal/db"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := db.Open(context.Background(), config.DatabaseConfig{
		Driver: db.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "store.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, db.InitSchema(context.Background(), pool, db.DriverSQLite))
	return pool
}
