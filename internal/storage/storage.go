// Package storage opens the dictionary store selected by configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/heartmarshall/envi-dictionary/internal/adapter/postgres"
	"github.com/heartmarshall/envi-dictionary/internal/adapter/postgres/dictionary"
	"github.com/heartmarshall/envi-dictionary/internal/adapter/sqlite"
	"github.com/heartmarshall/envi-dictionary/internal/config"
	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/migrations"
)

// Store is the dictionary table as seen by the passes and the merge.
type Store interface {
	UpsertWords(ctx context.Context, records []domain.WordRecord, policy domain.ConflictPolicy) (int64, error)
	InsertMerged(ctx context.Context, records []domain.WordRecord) (int64, error)
	Count(ctx context.Context, source string) (int64, error)
	Lookup(ctx context.Context, word string) (domain.WordRecord, error)
	Close() error
}

type pgStore struct {
	*dictionary.Repo
	pool *pgxpool.Pool
}

func (s pgStore) Close() error {
	s.pool.Close()
	return nil
}

// Open connects to the configured database. The schema is not touched;
// run Migrate first.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return pgStore{Repo: dictionary.New(pool), pool: pool}, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
}

// Migrate applies the embedded migrations for the configured driver and
// returns the versions applied.
func Migrate(ctx context.Context, cfg config.DatabaseConfig) ([]int64, error) {
	var driverName string
	switch cfg.Driver {
	case config.DriverPostgres:
		driverName = "pgx"
	case config.DriverSQLite:
		driverName = sqlite.DriverName
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return migrations.Up(ctx, db, cfg.Driver)
}
