// Package batch accumulates word records and writes them in batches.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
)

// Writer persists a batch of records in one transaction and reports the
// number of rows inserted or updated.
type Writer interface {
	UpsertWords(ctx context.Context, records []domain.WordRecord, policy domain.ConflictPolicy) (int64, error)
}

// Stats counts buffer activity.
type Stats struct {
	Flushes       int
	FailedFlushes int
	// Written is the number of records in committed batches.
	Written int
	// Affected is the number of rows the storage reported as changed.
	Affected int64
	// Dropped is the number of records lost with failed batches.
	Dropped int
	// Rejected is the number of records refused by Add.
	Rejected int
}

// FlushHook observes every flush attempt.
type FlushHook func(records int, affected int64, err error)

// Buffer collects records and flushes them when the threshold is reached.
//
// Buffer is not safe for concurrent use. The owner serialises calls, which
// keeps flushes from overlapping and keeps storage access single-threaded.
type Buffer struct {
	w         Writer
	policy    domain.ConflictPolicy
	threshold int
	buf       []domain.WordRecord
	stats     Stats
	onFlush   FlushHook
	log       *slog.Logger
}

// NewBuffer creates a Buffer. threshold <= 0 is treated as 1.
func NewBuffer(w Writer, threshold int, policy domain.ConflictPolicy, logger *slog.Logger) *Buffer {
	if threshold <= 0 {
		threshold = 1
	}
	return &Buffer{
		w:         w,
		policy:    policy,
		threshold: threshold,
		buf:       make([]domain.WordRecord, 0, threshold),
		log:       logger.With("component", "batch", "policy", policy.String()),
	}
}

// OnFlush registers a hook called after each flush attempt.
func (b *Buffer) OnFlush(h FlushHook) { b.onFlush = h }

// Add appends rec and flushes once the buffer holds threshold records.
// Records that fail validation are rejected and never reach storage.
func (b *Buffer) Add(ctx context.Context, rec domain.WordRecord) error {
	if err := rec.Validate(); err != nil {
		b.stats.Rejected++
		return fmt.Errorf("batch: reject %q: %w", rec.Word, err)
	}

	b.buf = append(b.buf, rec)
	if len(b.buf) >= b.threshold {
		b.Flush(ctx)
	}
	return nil
}

// Flush writes the buffered records. The buffer is cleared whether or not
// the write succeeds; a failed batch is logged and counted, not returned.
// Flush runs even when ctx is already cancelled.
func (b *Buffer) Flush(ctx context.Context) {
	if len(b.buf) == 0 {
		return
	}

	batch := b.buf
	b.buf = make([]domain.WordRecord, 0, b.threshold)

	affected, err := b.w.UpsertWords(context.WithoutCancel(ctx), batch, b.policy)
	if err != nil {
		b.stats.FailedFlushes++
		b.stats.Dropped += len(batch)
		b.log.ErrorContext(ctx, "batch write failed",
			slog.Int("records", len(batch)),
			slog.String("error", err.Error()),
		)
	} else {
		b.stats.Flushes++
		b.stats.Written += len(batch)
		b.stats.Affected += affected
		b.log.InfoContext(ctx, "batch committed",
			slog.Int("records", len(batch)),
			slog.Int64("affected", affected),
		)
	}

	if b.onFlush != nil {
		b.onFlush(len(batch), affected, err)
	}
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int { return len(b.buf) }

// Stats returns a copy of the counters.
func (b *Buffer) Stats() Stats { return b.stats }
