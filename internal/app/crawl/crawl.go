package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/envi-dictionary/internal/batch"
	"github.com/heartmarshall/envi-dictionary/internal/config"
	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/ledger"
	"github.com/heartmarshall/envi-dictionary/internal/metrics"
	"github.com/heartmarshall/envi-dictionary/internal/wordlist"
)

// Deps are the collaborators shared by both passes.
type Deps struct {
	Store   batch.Writer
	Clients ClientFactory
	// Metrics may be nil.
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// RunInitial crawls the word list named by cfg.Crawl.WordList (a path or a
// URL) and stores new words without touching existing rows.
func RunInitial(ctx context.Context, cfg *config.Config, deps Deps) (Summary, error) {
	words, err := wordlist.Load(ctx, deps.Clients.New(), cfg.Crawl.WordList)
	if err != nil {
		return Summary{Pass: PassInitial}, fmt.Errorf("load word list: %w", err)
	}

	breakers := NewBreakers(cfg.Breaker, deps.Metrics, deps.Logger)
	return Run(ctx, words, InitialWorkers(cfg, deps.Clients, breakers, deps.Logger), deps.Store, Options{
		Pass:          PassInitial,
		Workers:       cfg.Crawl.Workers,
		BatchSize:     cfg.Crawl.BatchSize,
		ProgressEvery: cfg.Crawl.ProgressEvery,
		Policy:        domain.ConflictIgnore,
		LedgerPath:    cfg.Crawl.FailedFile,
	}, deps.Metrics, deps.Logger)
}

// RunRetry re-crawls the words in cfg.Retry.InputFile through the fallback
// chain and overwrites their rows.
func RunRetry(ctx context.Context, cfg *config.Config, deps Deps) (Summary, error) {
	words, err := ledger.ReadFile(cfg.Retry.InputFile)
	if err != nil {
		return Summary{Pass: PassRetry}, fmt.Errorf("load failed words: %w", err)
	}
	if len(words) == 0 {
		deps.Logger.InfoContext(ctx, "no failed words to retry", slog.String("file", cfg.Retry.InputFile))
	}

	breakers := NewBreakers(cfg.Breaker, deps.Metrics, deps.Logger)
	return Run(ctx, words, RetryWorkers(cfg, deps.Clients, breakers, deps.Logger), deps.Store, Options{
		Pass:          PassRetry,
		Workers:       cfg.Retry.Workers,
		BatchSize:     cfg.Retry.BatchSize,
		ProgressEvery: cfg.Retry.ProgressEvery,
		Policy:        domain.ConflictUpdate,
		LedgerPath:    cfg.Retry.StillFailedFile,
	}, deps.Metrics, deps.Logger)
}
