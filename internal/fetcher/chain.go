package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
)

// Strategy is one way of resolving a word. Strategies of a Chain share the
// same signature so the fallback order is plain data.
type Strategy struct {
	Name    string
	Resolve func(ctx context.Context, word string) (domain.WordRecord, error)
}

// Chain tries its strategies in order until one returns a record with a
// usable meaning. If none does, the outcome is a ReasonExhausted failure.
type Chain struct {
	strategies []Strategy
	delay      time.Duration
	log        *slog.Logger
}

// NewChain creates a Chain. delay is waited before every strategy but the first.
func NewChain(delay time.Duration, logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		delay:      delay,
		log:        logger.With("component", "fetcher", "pipeline", "chain"),
	}
}

// Fetch implements Fetcher.
func (c *Chain) Fetch(ctx context.Context, word string) Outcome {
	errs := make([]error, 0, len(c.strategies))

	for i, s := range c.strategies {
		if i > 0 {
			if err := sleep(ctx, c.delay); err != nil {
				return Fail(word, ReasonNetwork, err)
			}
		}

		rec, err := s.Resolve(ctx, word)
		if err == nil {
			err = rec.Validate()
		}
		if err == nil {
			c.log.DebugContext(ctx, "strategy succeeded",
				slog.String("word", word),
				slog.String("strategy", s.Name),
			)
			return Success(rec)
		}

		c.log.DebugContext(ctx, "strategy failed",
			slog.String("word", word),
			slog.String("strategy", s.Name),
			slog.String("reason", string(Classify(err))),
		)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}

	return Fail(word, ReasonExhausted, errors.Join(errs...))
}

// PrimaryStrategy adapts a Primary pipeline to a Strategy.
func PrimaryStrategy(p *Primary) Strategy {
	return Strategy{Name: "primary", Resolve: p.Resolve}
}

// TranslationStrategy translates the word directly with tr. The record has
// no part of speech or phonetic.
func TranslationStrategy(name string, tr Translator, timeout time.Duration, source string) Strategy {
	return Strategy{
		Name: name,
		Resolve: func(ctx context.Context, word string) (domain.WordRecord, error) {
			tctx, cancel := withTimeout(ctx, timeout)
			defer cancel()

			meaning, err := tr.Translate(tctx, word)
			if err != nil {
				return domain.WordRecord{}, err
			}
			if err := domain.ValidateMeaning(word, meaning); err != nil {
				return domain.WordRecord{}, err
			}
			return domain.NewWordRecord(word, "", "", meaning, source), nil
		},
	}
}

// EnglishPrefix marks a meaning that is an untranslated English definition.
const EnglishPrefix = "[EN] "

// DefinitionStrategy stores the English definition from def, prefixed with
// EnglishPrefix, keeping its part of speech.
func DefinitionStrategy(name string, def DefinitionSource, timeout time.Duration, source string) Strategy {
	return Strategy{
		Name: name,
		Resolve: func(ctx context.Context, word string) (domain.WordRecord, error) {
			dctx, cancel := withTimeout(ctx, timeout)
			defer cancel()

			d, err := def.Define(dctx, word)
			if err != nil {
				return domain.WordRecord{}, err
			}
			if d == nil {
				return domain.WordRecord{}, fmt.Errorf("definition %q: %w", word, domain.ErrNotFound)
			}
			text := strings.TrimSpace(d.Text)
			if text == "" {
				return domain.WordRecord{}, domain.ErrEmptyMeaning
			}
			return domain.NewWordRecord(word, d.PartOfSpeech, "", EnglishPrefix+text, source), nil
		},
	}
}
