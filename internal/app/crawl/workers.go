package crawl

import (
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/heartmarshall/envi-dictionary/internal/adapter/provider/freedict"
	"github.com/heartmarshall/envi-dictionary/internal/adapter/provider/gtranslate"
	"github.com/heartmarshall/envi-dictionary/internal/adapter/provider/mymemory"
	"github.com/heartmarshall/envi-dictionary/internal/adapter/provider/wiktionary"
	"github.com/heartmarshall/envi-dictionary/internal/config"
	"github.com/heartmarshall/envi-dictionary/internal/dispatcher"
	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/fetcher"
	"github.com/heartmarshall/envi-dictionary/internal/metrics"
)

// ClientFactory hands out one HTTP client per worker.
// *httpclient.Factory satisfies it.
type ClientFactory interface {
	New() *http.Client
}

// NewBreakers creates the shared breakers of a pass and feeds their
// transitions to rec. rec may be nil.
func NewBreakers(cfg config.BreakerConfig, rec *metrics.Recorder, logger *slog.Logger) *fetcher.Breakers {
	var hook fetcher.StateHook
	if rec != nil {
		hook = func(upstream string, _, to gobreaker.State) { rec.ObserveBreaker(upstream, to.String()) }
	}
	return fetcher.NewBreakers(cfg, logger, hook)
}

// InitialWorkers builds the dictionary-then-translate fetcher of the
// initial pass, one HTTP client per worker.
func InitialWorkers(cfg *config.Config, clients ClientFactory, breakers *fetcher.Breakers, logger *slog.Logger) dispatcher.WorkerFactory {
	return func(id int) fetcher.Fetcher {
		client := clients.New()
		log := logger.With("worker", id)

		return fetcher.NewPrimary(
			fetcher.GuardDictionary(freedict.NewProvider(client, cfg.Upstream.DictionaryURL, log), breakers.Dictionary),
			fetcher.GuardTranslator(gtranslate.NewProvider(client, cfg.Upstream.TranslateURL, log), breakers.Translate),
			fetcher.PrimaryConfig{
				DictionaryTimeout: cfg.Crawl.DictionaryTimeout,
				TranslateTimeout:  cfg.Crawl.TranslateTimeout,
				TranslateDelay:    cfg.Crawl.TranslateDelay,
				GlossMaxLen:       cfg.Crawl.GlossMaxLen,
				Source:            domain.SourceAPI,
			},
			log,
		)
	}
}

// RetryWorkers builds the fallback chain of the retry pass: the primary
// pipeline with slower pacing, then MyMemory, then Wiktionary.
func RetryWorkers(cfg *config.Config, clients ClientFactory, breakers *fetcher.Breakers, logger *slog.Logger) dispatcher.WorkerFactory {
	return func(id int) fetcher.Fetcher {
		client := clients.New()
		log := logger.With("worker", id)

		primary := fetcher.NewPrimary(
			fetcher.GuardDictionary(freedict.NewProvider(client, cfg.Upstream.DictionaryURL, log), breakers.Dictionary),
			fetcher.GuardTranslator(gtranslate.NewProvider(client, cfg.Upstream.TranslateURL, log), breakers.Translate),
			fetcher.PrimaryConfig{
				DictionaryTimeout: cfg.Retry.DictionaryTimeout,
				TranslateTimeout:  cfg.Retry.TranslateTimeout,
				TranslateDelay:    cfg.Retry.TranslateDelay,
				GlossMaxLen:       domain.MaxMeaningLen,
				FallbackOnEcho:    true,
				Source:            domain.SourceAPIRetry,
			},
			log,
		)

		return fetcher.NewChain(cfg.Retry.StrategyDelay, log,
			fetcher.PrimaryStrategy(primary),
			fetcher.TranslationStrategy("mymemory",
				fetcher.GuardTranslator(mymemory.NewProvider(client, cfg.Upstream.MyMemoryURL, log), breakers.MyMemory),
				cfg.Retry.TranslateTimeout, domain.SourceAPIRetryMyMemory),
			fetcher.DefinitionStrategy("wiktionary",
				fetcher.GuardDefinition(wiktionary.NewProvider(client, cfg.Upstream.WiktionaryURL, log), breakers.Wiktionary),
				cfg.Retry.DictionaryTimeout, domain.SourceAPIRetryWiktionary),
		)
	}
}
