// Package dispatcher runs a Fetcher over a word list with a fixed number of
// workers and funnels every outcome through a single lock.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/fetcher"
	"github.com/heartmarshall/envi-dictionary/pkg/ctxutil"
)

// Sink receives every outcome exactly once. Accept is always called with the
// dispatcher lock held, so implementations need no locking of their own.
// It reports whether the word ends as a success: a sink may turn down a
// successful fetch, and the word is then counted as failed.
type Sink interface {
	Accept(ctx context.Context, out fetcher.Outcome) bool
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, out fetcher.Outcome) bool

func (f SinkFunc) Accept(ctx context.Context, out fetcher.Outcome) bool { return f(ctx, out) }

// WorkerFactory builds the Fetcher used by one worker. It is called once per
// worker, which lets each worker own its HTTP client.
type WorkerFactory func(id int) fetcher.Fetcher

// Stats summarises one run.
type Stats struct {
	Total     int
	Processed int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Rate returns processed words per second.
func (s Stats) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Processed) / s.Elapsed.Seconds()
}

// SuccessRate returns the share of succeeded words in percent.
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total) * 100
}

// Dispatcher applies a Fetcher to every word with bounded parallelism.
type Dispatcher struct {
	workers       int
	progressEvery int
	log           *slog.Logger
}

// New creates a Dispatcher. progressEvery <= 0 disables progress logs.
func New(workers, progressEvery int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		workers:       workers,
		progressEvery: progressEvery,
		log:           logger.With("component", "dispatcher"),
	}
}

// Run blocks until every word has produced exactly one outcome.
// ctx is handed to the fetchers; Run itself never abandons queued words.
func (d *Dispatcher) Run(ctx context.Context, words []string, newWorker WorkerFactory, sink Sink) Stats {
	start := time.Now()

	jobs := make(chan string, len(words))
	for _, w := range words {
		jobs <- w
	}
	close(jobs)

	var (
		mu    sync.Mutex
		stats = Stats{Total: len(words)}
	)

	record := func(out fetcher.Outcome) {
		mu.Lock()
		defer mu.Unlock()

		stats.Processed++
		if d.accept(ctx, sink, out) && out.OK() {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		d.progress(ctx, stats)
	}

	var g errgroup.Group
	for id := range d.workers {
		g.Go(func() error {
			f, err := d.buildWorker(newWorker, id)
			for word := range jobs {
				if err != nil {
					record(fetcher.Fail(word, fetcher.ReasonPanic, err))
					continue
				}
				record(d.fetch(ctx, f, word))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Elapsed = time.Since(start)
	return stats
}

func (d *Dispatcher) buildWorker(newWorker WorkerFactory, id int) (f fetcher.Fetcher, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d setup panicked: %v", id, r)
			d.log.Error("worker setup panicked", slog.Int("worker", id), slog.String("error", domain.Truncate(err.Error(), 50)))
		}
	}()
	return newWorker(id), nil
}

// fetch runs one unit of work inside a recover boundary.
func (d *Dispatcher) fetch(ctx context.Context, f fetcher.Fetcher, word string) (out fetcher.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			d.log.ErrorContext(ctx, "unexpected error",
				slog.String("word", word),
				slog.String("error", domain.Truncate(err.Error(), 50)),
			)
			out = fetcher.Fail(word, fetcher.ReasonPanic, err)
		}
	}()

	out = f.Fetch(ctxutil.WithWord(ctx, word), word)
	if out.Word == "" {
		out.Word = word
	}
	return out
}

// accept hands out to sink; a panicking sink counts as a rejection.
func (d *Dispatcher) accept(ctx context.Context, sink Sink, out fetcher.Outcome) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorContext(ctx, "sink panicked",
				slog.String("word", out.Word),
				slog.String("error", domain.Truncate(fmt.Sprint(r), 50)),
			)
			ok = false
		}
	}()
	return sink.Accept(ctx, out)
}

func (d *Dispatcher) progress(ctx context.Context, s Stats) {
	if d.progressEvery <= 0 || s.Processed%d.progressEvery != 0 {
		return
	}
	d.log.InfoContext(ctx, "progress",
		slog.Int("processed", s.Processed),
		slog.Int("total", s.Total),
		slog.String("percent", fmt.Sprintf("%.1f", float64(s.Processed)/float64(s.Total)*100)),
		slog.Int("succeeded", s.Succeeded),
		slog.Int("failed", s.Failed),
	)
}
