package db

import (
	"context"
	"embed"
	"fmt"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// InitSchema drops and recreates every table using the schema script for
// driver. All existing data is lost.
func InitSchema(ctx context.Context, q DBTX, driver string) error {
	script, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return fmt.Errorf("no schema for driver %q: %w", driver, err)
	}
	if _, err := q.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}
