package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
)

// PrimaryConfig tunes the definition-then-translation pipeline.
type PrimaryConfig struct {
	DictionaryTimeout time.Duration
	TranslateTimeout  time.Duration
	// TranslateDelay is waited between the dictionary and translation calls.
	TranslateDelay time.Duration
	// GlossMaxLen bounds the English gloss used when translation fails.
	GlossMaxLen int
	// FallbackOnEcho also uses the gloss when the translation equals the word.
	FallbackOnEcho bool
	Source         string
}

// Primary looks a word up in the dictionary source, then translates it,
// falling back to the English gloss when translation yields nothing.
type Primary struct {
	dict DictionarySource
	tr   Translator
	cfg  PrimaryConfig
	log  *slog.Logger
}

// NewPrimary creates a Primary pipeline.
func NewPrimary(dict DictionarySource, tr Translator, cfg PrimaryConfig, logger *slog.Logger) *Primary {
	if cfg.GlossMaxLen <= 0 {
		cfg.GlossMaxLen = domain.MaxMeaningLen
	}
	if cfg.Source == "" {
		cfg.Source = domain.SourceAPI
	}
	return &Primary{
		dict: dict,
		tr:   tr,
		cfg:  cfg,
		log:  logger.With("component", "fetcher", "pipeline", "primary"),
	}
}

// Fetch implements Fetcher.
func (p *Primary) Fetch(ctx context.Context, word string) Outcome {
	rec, err := p.Resolve(ctx, word)
	if err != nil {
		return Fail(word, Classify(err), err)
	}
	return Success(rec)
}

// Resolve runs the pipeline and returns a validated record or the error that
// stopped it.
func (p *Primary) Resolve(ctx context.Context, word string) (domain.WordRecord, error) {
	dctx, cancel := withTimeout(ctx, p.cfg.DictionaryTimeout)
	entry, err := p.dict.FetchEntry(dctx, word)
	cancel()
	if err != nil {
		return domain.WordRecord{}, fmt.Errorf("dictionary: %w", err)
	}
	if entry == nil {
		return domain.WordRecord{}, fmt.Errorf("dictionary %q: %w", word, domain.ErrNotFound)
	}

	if err := sleep(ctx, p.cfg.TranslateDelay); err != nil {
		return domain.WordRecord{}, err
	}

	tctx, cancel := withTimeout(ctx, p.cfg.TranslateTimeout)
	meaning, err := p.tr.Translate(tctx, word)
	cancel()

	if p.needsGloss(word, meaning, err) {
		if err != nil {
			p.log.DebugContext(ctx, "translation failed, using gloss",
				slog.String("word", word),
				slog.String("error", domain.Truncate(err.Error(), 50)),
			)
		}
		meaning = domain.Truncate(strings.TrimSpace(entry.Gloss), p.cfg.GlossMaxLen)
	}

	if err := domain.ValidateMeaning(word, meaning); err != nil {
		return domain.WordRecord{}, fmt.Errorf("%q: %w", word, err)
	}

	return domain.NewWordRecord(word, entry.PartOfSpeech, entry.Phonetic, meaning, p.cfg.Source), nil
}

func (p *Primary) needsGloss(word, meaning string, err error) bool {
	if err != nil || strings.TrimSpace(meaning) == "" {
		return true
	}
	return p.cfg.FallbackOnEcho && strings.TrimSpace(meaning) == word
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
