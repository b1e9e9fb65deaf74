// Package sqlite implements the dictionary table writer on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/heartmarshall/envi-dictionary/internal/adapter/dictsql"
	"github.com/heartmarshall/envi-dictionary/internal/domain"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

const entity = "dictionary"

// Store provides dictionary persistence backed by SQLite.
type Store struct {
	db *sql.DB
}

// New wraps an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the database file at dsn and checks that it is reachable.
// SQLite allows one writer, so the pool is limited to one connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// UpsertWords writes records in one transaction. Words repeated inside the
// batch collapse to their last record. Returns the number of rows inserted
// or updated.
func (s *Store) UpsertWords(ctx context.Context, records []domain.WordRecord, policy domain.ConflictPolicy) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	records = dictsql.Dedupe(records)
	key := fmt.Sprintf("batch(%d)", len(records))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapError(fmt.Errorf("begin transaction: %w", err), key)
	}

	var affected int64
	for _, chunk := range dictsql.Chunk(records, dictsql.MaxRowsPerStatement) {
		query, args, err := dictsql.Upsert(chunk, policy, squirrel.Question)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, mapError(err, key)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, mapError(err, key)
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, mapError(fmt.Errorf("commit transaction: %w", err), key)
	}
	return affected, nil
}

// InsertMerged inserts records built from offline dumps, keeping rows that
// already exist.
func (s *Store) InsertMerged(ctx context.Context, records []domain.WordRecord) (int64, error) {
	return s.UpsertWords(ctx, records, domain.ConflictIgnore)
}

// Count returns the number of rows, optionally restricted to one source.
func (s *Store) Count(ctx context.Context, source string) (int64, error) {
	query := squirrel.Select("COUNT(*)").From(dictsql.Table)
	if source != "" {
		query = query.Where(squirrel.Eq{"source": source})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, mapError(err, "count")
	}
	return n, nil
}

// Lookup returns the stored record for word.
func (s *Store) Lookup(ctx context.Context, word string) (domain.WordRecord, error) {
	q, args, err := squirrel.
		Select("word", "part_of_speech", "part_of_speech_vi", "phonetic", "meanings", "definitions", "source").
		From(dictsql.Table).
		Where(squirrel.Eq{"word": word}).
		ToSql()
	if err != nil {
		return domain.WordRecord{}, fmt.Errorf("build lookup: %w", err)
	}

	var (
		rec                        domain.WordRecord
		pos, phonetic, definitions sql.NullString
	)
	err = s.db.QueryRowContext(ctx, q, args...).Scan(
		&rec.Word, &pos, &rec.PartOfSpeechLocalized, &phonetic, &rec.Meaning, &definitions, &rec.Source,
	)
	if err != nil {
		return domain.WordRecord{}, mapError(err, word)
	}
	rec.PartOfSpeech = nullable(pos)
	rec.Phonetic = nullable(phonetic)
	rec.Definitions = nullable(definitions)
	return rec, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// mapError converts database/sql and go-sqlite3 errors to domain errors.
func mapError(err error, key string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, key, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}

	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		switch {
		case sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrAlreadyExists)
		case sqlErr.ExtendedCode == sqlite3.ErrConstraintNotNull,
			sqlErr.ExtendedCode == sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrValidation)
		case strings.Contains(sqlErr.Error(), "no such table"):
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrSchemaMissing)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, key, err)
}
