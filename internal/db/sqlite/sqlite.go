// Package sqlite opens the embedded conversation database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kailas-cloud/convsearch/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps ":memory:" databases shared.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		_ = conn.Close()
		return nil, &db.Error{Op: db.OpApplySchema, Err: err}
	}

	return conn, nil
}
