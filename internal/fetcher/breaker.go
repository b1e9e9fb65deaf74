package fetcher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker"

	"github.com/heartmarshall/envi-dictionary/internal/config"
	"github.com/heartmarshall/envi-dictionary/internal/provider"
)

// DictionarySource looks up an English word.
// A nil result with a nil error means the word is unknown.
type DictionarySource interface {
	FetchEntry(ctx context.Context, word string) (*provider.DictionaryResult, error)
}

// Translator translates English text to Vietnamese.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// DefinitionSource looks up a monolingual definition.
// A nil result with a nil error means the word is unknown.
type DefinitionSource interface {
	Define(ctx context.Context, word string) (*provider.Definition, error)
}

// Breakers holds one circuit breaker per upstream. A single Breakers value is
// shared by all workers of a pass so that an outage trips once for everyone.
type Breakers struct {
	Dictionary *gobreaker.CircuitBreaker
	Translate  *gobreaker.CircuitBreaker
	MyMemory   *gobreaker.CircuitBreaker
	Wiktionary *gobreaker.CircuitBreaker
}

// StateHook observes breaker transitions. Implementations must be safe for
// concurrent use.
type StateHook func(upstream string, from, to gobreaker.State)

// NewBreakers creates the per-upstream breakers. hook may be nil.
func NewBreakers(cfg config.BreakerConfig, logger *slog.Logger, hook StateHook) *Breakers {
	log := logger.With("component", "breaker")
	return &Breakers{
		Dictionary: newBreaker("dictionary", cfg, log, hook),
		Translate:  newBreaker("translate", cfg, log, hook),
		MyMemory:   newBreaker("mymemory", cfg, log, hook),
		Wiktionary: newBreaker("wiktionary", cfg, log, hook),
	}
}

func newBreaker(name string, cfg config.BreakerConfig, log *slog.Logger, hook StateHook) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: upstreamHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("upstream", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			if hook != nil {
				hook(name, from, to)
			}
		},
	})
}

// upstreamHealthy reports whether err says nothing bad about the upstream
// itself. Unknown words and bad payloads do not trip a breaker; transport
// errors, timeouts, throttling and 5xx responses do.
func upstreamHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return Classify(err) != ReasonNetwork
}

func guard[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}
	var zero T
	v, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

type guardedDictionary struct {
	src DictionarySource
	cb  *gobreaker.CircuitBreaker
}

func (g guardedDictionary) FetchEntry(ctx context.Context, word string) (*provider.DictionaryResult, error) {
	return guard(g.cb, func() (*provider.DictionaryResult, error) { return g.src.FetchEntry(ctx, word) })
}

type guardedTranslator struct {
	src Translator
	cb  *gobreaker.CircuitBreaker
}

func (g guardedTranslator) Translate(ctx context.Context, text string) (string, error) {
	return guard(g.cb, func() (string, error) { return g.src.Translate(ctx, text) })
}

type guardedDefinition struct {
	src DefinitionSource
	cb  *gobreaker.CircuitBreaker
}

func (g guardedDefinition) Define(ctx context.Context, word string) (*provider.Definition, error) {
	return guard(g.cb, func() (*provider.Definition, error) { return g.src.Define(ctx, word) })
}

// GuardDictionary wraps src with cb. A nil cb returns src unchanged.
func GuardDictionary(src DictionarySource, cb *gobreaker.CircuitBreaker) DictionarySource {
	if cb == nil {
		return src
	}
	return guardedDictionary{src: src, cb: cb}
}

// GuardTranslator wraps src with cb. A nil cb returns src unchanged.
func GuardTranslator(src Translator, cb *gobreaker.CircuitBreaker) Translator {
	if cb == nil {
		return src
	}
	return guardedTranslator{src: src, cb: cb}
}

// GuardDefinition wraps src with cb. A nil cb returns src unchanged.
func GuardDefinition(src DefinitionSource, cb *gobreaker.CircuitBreaker) DefinitionSource {
	if cb == nil {
		return src
	}
	return guardedDefinition{src: src, cb: cb}
}
