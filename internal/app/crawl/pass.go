// Package crawl runs the initial and the retry crawl passes.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/envi-dictionary/internal/batch"
	"github.com/heartmarshall/envi-dictionary/internal/dispatcher"
	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/fetcher"
	"github.com/heartmarshall/envi-dictionary/internal/ledger"
	"github.com/heartmarshall/envi-dictionary/internal/metrics"
	"github.com/heartmarshall/envi-dictionary/pkg/ctxutil"
)

// Pass names, used in logs and metrics labels.
const (
	PassInitial = "initial"
	PassRetry   = "retry"
)

// Options configure one pass.
type Options struct {
	Pass          string
	Workers       int
	BatchSize     int
	ProgressEvery int
	Policy        domain.ConflictPolicy
	// LedgerPath receives the words that failed. It is always written.
	LedgerPath string
}

// Summary reports one finished pass.
type Summary struct {
	Pass       string
	Stats      dispatcher.Stats
	Buffer     batch.Stats
	Reasons    map[fetcher.Reason]int
	Failed     int
	LedgerPath string
}

// state is the mutable state of a pass. Every method runs under the
// dispatcher lock.
type state struct {
	pass    string
	buf     *batch.Buffer
	ledger  *ledger.Ledger
	reasons map[fetcher.Reason]int
	rec     *metrics.Recorder
	log     *slog.Logger
}

// Accept implements dispatcher.Sink.
func (s *state) Accept(ctx context.Context, out fetcher.Outcome) bool {
	if !out.OK() {
		s.fail(out.Word, out.Failure.Reason)
		return false
	}
	// Records already fetched are written even after an interrupt.
	if err := s.buf.Add(context.WithoutCancel(ctx), out.Record); err != nil {
		s.log.WarnContext(ctx, "record rejected", slog.String("word", out.Word), slog.String("error", err.Error()))
		s.fail(out.Word, fetcher.ReasonEchoOrEmpty)
		return false
	}
	if s.rec != nil {
		s.rec.ObserveWord(s.pass, true, "")
	}
	return true
}

func (s *state) fail(word string, reason fetcher.Reason) {
	s.ledger.Add(word)
	s.reasons[reason]++
	if s.rec != nil {
		s.rec.ObserveWord(s.pass, false, string(reason))
	}
}

// Run fetches every word with newWorker, batches successes into w and
// writes failed words to opts.LedgerPath. Batch write failures are logged
// and counted; only a ledger write failure is returned as an error.
// rec may be nil.
func Run(ctx context.Context, words []string, newWorker dispatcher.WorkerFactory, w batch.Writer, opts Options, rec *metrics.Recorder, logger *slog.Logger) (Summary, error) {
	ctx = ctxutil.WithPass(ctx, opts.Pass)
	log := logger.With("pass", opts.Pass)
	log.InfoContext(ctx, "pass started",
		slog.Int("words", len(words)),
		slog.Int("workers", opts.Workers),
		slog.Int("batch_size", opts.BatchSize),
	)

	st := &state{
		pass:    opts.Pass,
		buf:     batch.NewBuffer(w, opts.BatchSize, opts.Policy, log),
		ledger:  ledger.New(),
		reasons: make(map[fetcher.Reason]int),
		rec:     rec,
		log:     log,
	}
	if rec != nil {
		st.buf.OnFlush(func(records int, _ int64, err error) { rec.ObserveFlush(opts.Pass, records, err) })
	}

	stats := func() dispatcher.Stats {
		defer st.buf.Flush(context.WithoutCancel(ctx))
		return dispatcher.New(opts.Workers, opts.ProgressEvery, log).Run(ctx, words, newWorker, st)
	}()

	sum := Summary{
		Pass:       opts.Pass,
		Stats:      stats,
		Buffer:     st.buf.Stats(),
		Reasons:    st.reasons,
		Failed:     st.ledger.Len(),
		LedgerPath: opts.LedgerPath,
	}
	if rec != nil {
		rec.ObservePass(opts.Pass, stats.Elapsed)
	}

	if err := st.ledger.WriteFile(opts.LedgerPath); err != nil {
		return sum, fmt.Errorf("write failed words: %w", err)
	}

	logSummary(ctx, log, sum)
	return sum, nil
}

func logSummary(ctx context.Context, log *slog.Logger, sum Summary) {
	attrs := []any{
		slog.Int("total", sum.Stats.Total),
		slog.Int("succeeded", sum.Stats.Succeeded),
		slog.Int("failed", sum.Failed),
		slog.String("success_rate", fmt.Sprintf("%.1f%%", sum.Stats.SuccessRate())),
		slog.Duration("elapsed", sum.Stats.Elapsed.Round(time.Millisecond)),
		slog.String("words_per_sec", fmt.Sprintf("%.2f", sum.Stats.Rate())),
		slog.Int("batches", sum.Buffer.Flushes),
		slog.Int("failed_batches", sum.Buffer.FailedFlushes),
		slog.Int("dropped", sum.Buffer.Dropped),
		slog.String("ledger", sum.LedgerPath),
	}
	for reason, n := range sum.Reasons {
		attrs = append(attrs, slog.Int("reason_"+string(reason), n))
	}
	log.InfoContext(ctx, "pass completed", attrs...)
}
