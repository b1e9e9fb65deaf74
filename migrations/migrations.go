// Package migrations embeds the schema for every supported storage driver
// and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/envi-dictionary/internal/config"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// FS returns the migration files for driver.
func FS(driver string) (fs.FS, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
		return fs.Sub(files, driver)
	}
	return nil, fmt.Errorf("migrations: unsupported driver %q", driver)
}

// NewProvider builds a goose provider for driver over db.
func NewProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	fsys, err := FS(driver)
	if err != nil {
		return nil, err
	}

	dialect := goose.DialectPostgres
	if driver == config.DriverSQLite {
		dialect = goose.DialectSQLite3
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider, nil
}

// Up applies all pending migrations and returns the versions applied.
func Up(ctx context.Context, db *sql.DB, driver string) ([]int64, error) {
	provider, err := NewProvider(db, driver)
	if err != nil {
		return nil, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}
