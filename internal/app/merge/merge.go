// Package merge joins an English and a Vietnamese Wiktionary dump into
// dictionary rows.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/envi-dictionary/internal/batch"
	"github.com/heartmarshall/envi-dictionary/internal/config"
	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/kaikki"
	"github.com/heartmarshall/envi-dictionary/internal/metrics"
)

// Pass is the metrics label of the merge.
const Pass = "merge"

// DefinitionSeparator joins English glosses in the definitions column.
const DefinitionSeparator = "; "

// Inserter stores merged records without overwriting existing rows.
type Inserter interface {
	InsertMerged(ctx context.Context, records []domain.WordRecord) (int64, error)
}

// insertOnly adapts an Inserter to batch.Writer.
type insertOnly struct{ Inserter }

func (w insertOnly) UpsertWords(ctx context.Context, records []domain.WordRecord, _ domain.ConflictPolicy) (int64, error) {
	return w.InsertMerged(ctx, records)
}

// Summary reports one merge run.
type Summary struct {
	English    kaikki.Stats
	Vietnamese kaikki.Stats
	// Unmatched counts Vietnamese entries without an English translation
	// or whose translation is missing from the English dump.
	Unmatched int
	Built     int
	Rejected  int
	Buffer    batch.Stats
	Elapsed   time.Duration
}

// Run loads the English dump into memory, streams the Vietnamese dump and
// inserts one record per matched entry in batches of cfg.CommitEvery.
// rec may be nil.
func Run(ctx context.Context, store Inserter, cfg config.MergeConfig, rec *metrics.Recorder, logger *slog.Logger) (Summary, error) {
	log := logger.With("component", "merge")
	start := time.Now()
	var sum Summary

	english, stats, err := LoadEnglish(ctx, cfg.ENFile)
	sum.English = stats
	if err != nil {
		return sum, fmt.Errorf("load english dump: %w", err)
	}
	log.InfoContext(ctx, "english dump loaded",
		slog.String("file", cfg.ENFile),
		slog.Int("words", len(english)),
		slog.Int("malformed", stats.Malformed),
	)

	buf := batch.NewBuffer(insertOnly{store}, cfg.CommitEvery, domain.ConflictIgnore, log)
	if rec != nil {
		buf.OnFlush(func(records int, _ int64, err error) { rec.ObserveFlush(Pass, records, err) })
	}

	sum.Vietnamese, err = func() (kaikki.Stats, error) {
		defer buf.Flush(ctx)
		return kaikki.ScanFile(ctx, cfg.VIFile, func(vi kaikki.Entry) error {
			r, ok := BuildRecord(vi, english)
			if !ok {
				sum.Unmatched++
				return nil
			}
			sum.Built++
			if err := buf.Add(ctx, r); err != nil {
				sum.Rejected++
				log.DebugContext(ctx, "record rejected", slog.String("word", r.Word), slog.String("error", err.Error()))
			}
			return nil
		})
	}()
	sum.Buffer = buf.Stats()
	sum.Elapsed = time.Since(start)
	if rec != nil {
		rec.ObservePass(Pass, sum.Elapsed)
	}
	if err != nil {
		return sum, fmt.Errorf("merge vietnamese dump: %w", err)
	}

	log.InfoContext(ctx, "merge completed",
		slog.Int("built", sum.Built),
		slog.Int("unmatched", sum.Unmatched),
		slog.Int("rejected", sum.Rejected),
		slog.Int("malformed", sum.Vietnamese.Malformed),
		slog.Int("written", sum.Buffer.Written),
		slog.Int64("inserted", sum.Buffer.Affected),
		slog.Int("dropped", sum.Buffer.Dropped),
		slog.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}

// LoadEnglish indexes the English dump by normalized headword. A later
// entry for the same word replaces an earlier one.
func LoadEnglish(ctx context.Context, path string) (map[string]kaikki.Entry, kaikki.Stats, error) {
	index := make(map[string]kaikki.Entry)
	stats, err := kaikki.ScanFile(ctx, path, func(e kaikki.Entry) error {
		if key := e.Key(); key != "" {
			index[key] = e
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return index, stats, nil
}

// BuildRecord joins a Vietnamese entry with its English counterpart. It
// reports false when the entry has no English translation or the English
// word is not in the index.
func BuildRecord(vi kaikki.Entry, english map[string]kaikki.Entry) (domain.WordRecord, bool) {
	target := domain.NormalizeText(vi.TranslationTo("en"))
	if target == "" {
		return domain.WordRecord{}, false
	}
	en, ok := english[target]
	if !ok {
		return domain.WordRecord{}, false
	}

	rec := domain.NewWordRecord(target, strings.ToLower(strings.TrimSpace(en.POS)), en.IPA(), strings.TrimSpace(vi.Word), domain.SourceMerge)
	if glosses := en.Glosses(); len(glosses) > 0 {
		defs := strings.Join(glosses, DefinitionSeparator)
		rec.Definitions = &defs
	}
	return rec, true
}
