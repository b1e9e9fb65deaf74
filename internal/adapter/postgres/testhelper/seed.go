package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
)

// UniqueWord returns a word that no other test in the shared database uses.
func UniqueWord(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// SeedWord inserts rec directly and fails the test on error.
func SeedWord(t *testing.T, pool *pgxpool.Pool, rec domain.WordRecord) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO dictionary (word, part_of_speech, part_of_speech_vi, phonetic, meanings, definitions, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Word, rec.PartOfSpeech, rec.PartOfSpeechLocalized, rec.Phonetic, rec.Meaning, rec.Definitions, rec.Source,
	)
	if err != nil {
		t.Fatalf("SeedWord(%s): %v", rec.Word, err)
	}
}

// Meaning reads the stored meaning and source for word.
func Meaning(t *testing.T, pool *pgxpool.Pool, word string) (meaning, source string) {
	t.Helper()

	err := pool.QueryRow(context.Background(),
		`SELECT meanings, source FROM dictionary WHERE word = $1`, word,
	).Scan(&meaning, &source)
	if err != nil {
		t.Fatalf("Meaning(%s): %v", word, err)
	}
	return meaning, source
}
