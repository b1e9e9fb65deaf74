// Package dictsql builds the SQL shared by the dictionary stores.
package dictsql

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
)

// Table is the dictionary table name.
const Table = "dictionary"

var insertColumns = []string{
	"word",
	"part_of_speech",
	"part_of_speech_vi",
	"phonetic",
	"meanings",
	"definitions",
	"source",
}

// updateColumns are overwritten by ConflictUpdate. definitions is left
// alone so a crawl never erases glosses written by a merge.
var updateColumns = []string{
	"meanings",
	"part_of_speech",
	"part_of_speech_vi",
	"phonetic",
	"source",
}

// Dedupe drops repeated words keeping the last record for each word at the
// position of its first occurrence. One statement cannot touch the same
// conflict key twice.
func Dedupe(records []domain.WordRecord) []domain.WordRecord {
	out := make([]domain.WordRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		if i, ok := index[rec.Word]; ok {
			out[i] = rec
			continue
		}
		index[rec.Word] = len(out)
		out = append(out, rec)
	}
	return out
}

// ConflictClause renders the ON CONFLICT suffix for policy.
func ConflictClause(policy domain.ConflictPolicy) string {
	if policy != domain.ConflictUpdate {
		return "ON CONFLICT (word) DO NOTHING"
	}
	sets := make([]string, 0, len(updateColumns)+1)
	for _, c := range updateColumns {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	return "ON CONFLICT (word) DO UPDATE SET " + strings.Join(sets, ", ")
}

// Upsert builds one multi-row INSERT for records. Records must be non-empty.
func Upsert(records []domain.WordRecord, policy domain.ConflictPolicy, format squirrel.PlaceholderFormat) (string, []any, error) {
	if len(records) == 0 {
		return "", nil, fmt.Errorf("dictsql: no records: %w", domain.ErrValidation)
	}

	q := squirrel.Insert(Table).
		Columns(insertColumns...).
		PlaceholderFormat(format)

	for _, r := range Dedupe(records) {
		q = q.Values(r.Word, r.PartOfSpeech, r.PartOfSpeechLocalized, r.Phonetic, r.Meaning, r.Definitions, r.Source)
	}

	sql, args, err := q.Suffix(ConflictClause(policy)).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert: %w", err)
	}
	return sql, args, nil
}

// Chunk splits records into slices of at most size records, so a single
// statement stays under the driver's bind parameter limit.
func Chunk(records []domain.WordRecord, size int) [][]domain.WordRecord {
	if size <= 0 {
		size = len(records)
	}
	var chunks [][]domain.WordRecord
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

// MaxRowsPerStatement keeps 7 bind parameters per row under the SQLite
// default limit of 32766 and the Postgres limit of 65535.
const MaxRowsPerStatement = 4000
