// Package registry looks up the set of manufacturers a deployment serves
// from an optional MySQL-compatible registry database, falling back to a
// directory scan of the data root when no registry is configured or
// reachable.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"ofmlcore/internal/fsdiscover"
)

const manufacturerPrefix = "manufacturer:"

// Registry wraps an optional database/sql connection to a manufacturer
// registry database.
type Registry struct {
	db *sql.DB
}

// Connect opens and pings a MySQL-compatible registry database. Connect
// establishes the connection and verifies it is reachable before
// returning; Close must be called when done.
func Connect(ctx context.Context, dsn string) (*Registry, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping registry: %w; additionally failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping registry: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close releases the underlying connection.
func (r *Registry) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Manufacturers queries the registry for names stored under the
// "manufacturer:" key prefix.
func (r *Registry) Manufacturers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM registry WHERE name LIKE 'manufacturer:%'")
	if err != nil {
		return nil, fmt.Errorf("querying registry: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning registry row: %w", err)
		}
		names = append(names, strings.TrimPrefix(name, manufacturerPrefix))
	}
	return names, rows.Err()
}

// Resolve returns the manufacturer list from the registry at dsn, falling
// back to scanning root when dsn is empty or the registry is unreachable.
func Resolve(ctx context.Context, dsn, root string) ([]string, error) {
	if dsn == "" {
		return fsdiscover.Manufacturers(root)
	}

	reg, err := Connect(ctx, dsn)
	if err != nil {
		return fsdiscover.Manufacturers(root)
	}
	defer reg.Close()

	names, err := reg.Manufacturers(ctx)
	if err != nil || len(names) == 0 {
		return fsdiscover.Manufacturers(root)
	}
	return names, nil
}
