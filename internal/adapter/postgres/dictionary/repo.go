// Package dictionary implements the dictionary table writer using PostgreSQL.
package dictionary

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/envi-dictionary/internal/adapter/dictsql"
	postgres "github.com/heartmarshall/envi-dictionary/internal/adapter/postgres"
	"github.com/heartmarshall/envi-dictionary/internal/domain"
)

const entity = "dictionary"

// Repo provides dictionary persistence backed by PostgreSQL.
type Repo struct {
	db  postgres.DB
	txm *postgres.TxManager
}

// New creates a new dictionary repository. db is usually a *pgxpool.Pool.
func New(db postgres.DB) *Repo {
	return &Repo{db: db, txm: postgres.NewTxManager(db)}
}

// UpsertWords writes records in one transaction. Words repeated inside the
// batch collapse to their last record. Returns the number of rows inserted
// or updated.
func (r *Repo) UpsertWords(ctx context.Context, records []domain.WordRecord, policy domain.ConflictPolicy) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	records = dictsql.Dedupe(records)
	key := fmt.Sprintf("batch(%d)", len(records))

	var affected int64
	err := r.txm.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.db)
		for _, chunk := range dictsql.Chunk(records, dictsql.MaxRowsPerStatement) {
			sql, args, err := dictsql.Upsert(chunk, policy, squirrel.Dollar)
			if err != nil {
				return err
			}
			tag, err := q.Exec(ctx, sql, args...)
			if err != nil {
				return err
			}
			affected += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, postgres.MapError(err, entity, key)
	}
	return affected, nil
}

// InsertMerged inserts records built from offline dumps, keeping rows that
// already exist.
func (r *Repo) InsertMerged(ctx context.Context, records []domain.WordRecord) (int64, error) {
	return r.UpsertWords(ctx, records, domain.ConflictIgnore)
}

// Count returns the number of rows, optionally restricted to one source.
func (r *Repo) Count(ctx context.Context, source string) (int64, error) {
	query := squirrel.Select("COUNT(*)").From(dictsql.Table).PlaceholderFormat(squirrel.Dollar)
	if source != "" {
		query = query.Where(squirrel.Eq{"source": source})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, entity, "count")
	}
	return n, nil
}

// Lookup returns the stored record for word.
func (r *Repo) Lookup(ctx context.Context, word string) (domain.WordRecord, error) {
	sql, args, err := squirrel.
		Select("word", "part_of_speech", "part_of_speech_vi", "phonetic", "meanings", "definitions", "source").
		From(dictsql.Table).
		Where(squirrel.Eq{"word": word}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return domain.WordRecord{}, fmt.Errorf("build lookup: %w", err)
	}

	var rec domain.WordRecord
	err = postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(
		&rec.Word, &rec.PartOfSpeech, &rec.PartOfSpeechLocalized, &rec.Phonetic,
		&rec.Meaning, &rec.Definitions, &rec.Source,
	)
	if err != nil {
		return domain.WordRecord{}, postgres.MapError(err, entity, word)
	}
	return rec, nil
}
