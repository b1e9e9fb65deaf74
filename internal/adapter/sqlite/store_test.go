package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/migrations"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "dictionary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = migrations.Up(ctx, store.DB(), "sqlite")
	require.NoError(t, err)
	return store
}

func hello() domain.WordRecord {
	return domain.NewWordRecord("hello", "interjection", "/həˈloʊ/", "xin chào", domain.SourceAPI)
}

func TestStore_UpsertWords_IgnoreKeepsFirst(t *testing.T) {
	t.Parallel()
	store := setupStore(t)
	ctx := context.Background()

	n, err := store.UpsertWords(ctx, []domain.WordRecord{hello()}, domain.ConflictIgnore)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.UpsertWords(ctx, []domain.WordRecord{
		domain.NewWordRecord("hello", "noun", "", "chào", domain.SourceAPIRetry),
	}, domain.ConflictIgnore)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err := store.Lookup(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, hello(), got)
}

func TestStore_UpsertWords_UpdateOverwrites(t *testing.T) {
	t.Parallel()
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.UpsertWords(ctx, []domain.WordRecord{hello()}, domain.ConflictIgnore)
	require.NoError(t, err)

	n, err := store.UpsertWords(ctx, []domain.WordRecord{
		domain.NewWordRecord("hello", "noun", "", "lời chào", domain.SourceAPIRetryMyMemory),
		domain.NewWordRecord("world", "noun", "/wɜːld/", "thế giới", domain.SourceAPIRetry),
	}, domain.ConflictUpdate)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := store.Lookup(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "lời chào", got.Meaning)
	assert.Equal(t, "noun", got.POS())
	assert.Equal(t, "Danh từ", got.PartOfSpeechLocalized)
	assert.Nil(t, got.Phonetic)
	assert.Equal(t, domain.SourceAPIRetryMyMemory, got.Source)

	total, err := store.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestStore_UpsertWords_DuplicatesInBatch(t *testing.T) {
	t.Parallel()
	store := setupStore(t)
	ctx := context.Background()

	n, err := store.UpsertWords(ctx, []domain.WordRecord{
		domain.NewWordRecord("cat", "noun", "", "một", domain.SourceAPI),
		domain.NewWordRecord("cat", "noun", "", "hai", domain.SourceAPI),
	}, domain.ConflictIgnore)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.Lookup(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, "hai", got.Meaning)
}

func TestStore_InsertMerged(t *testing.T) {
	t.Parallel()
	store := setupStore(t)
	ctx := context.Background()

	rec := domain.NewWordRecord("cat", "noun", "/kæt/", "mèo", domain.SourceMerge)
	defs := "a small domesticated feline; a person"
	rec.Definitions = &defs

	n, err := store.InsertMerged(ctx, []domain.WordRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.UpsertWords(ctx, []domain.WordRecord{
		domain.NewWordRecord("cat", "noun", "", "con mèo", domain.SourceAPIRetry),
	}, domain.ConflictUpdate)
	require.NoError(t, err)

	got, err := store.Lookup(ctx, "cat")
	require.NoError(t, err)
	require.NotNil(t, got.Definitions)
	assert.Equal(t, defs, *got.Definitions)

	merged, err := store.Count(ctx, domain.SourceMerge)
	require.NoError(t, err)
	assert.Equal(t, int64(0), merged)
}

func TestStore_LargeBatchSpansStatements(t *testing.T) {
	t.Parallel()
	store := setupStore(t)
	ctx := context.Background()

	records := make([]domain.WordRecord, 0, 4500)
	for i := range 4500 {
		word := "w" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + string(rune('a'+(i/676)%26))
		records = append(records, domain.NewWordRecord(word, "", "", "nghĩa", domain.SourceAPI))
	}

	n, err := store.UpsertWords(ctx, records, domain.ConflictIgnore)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), n)
}

func TestStore_Lookup_NotFound(t *testing.T) {
	t.Parallel()
	store := setupStore(t)

	_, err := store.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_WithoutSchema(t *testing.T) {
	t.Parallel()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.UpsertWords(context.Background(), []domain.WordRecord{hello()}, domain.ConflictIgnore)
	assert.ErrorIs(t, err, domain.ErrSchemaMissing)
}

func TestStore_CheckConstraint(t *testing.T) {
	t.Parallel()
	store := setupStore(t)

	blank := domain.WordRecord{Word: "blank", Meaning: "   ", Source: domain.SourceAPI}
	_, err := store.UpsertWords(context.Background(), []domain.WordRecord{blank}, domain.ConflictIgnore)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
