package dispatcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/envi-dictionary/internal/domain"
	"github.com/heartmarshall/envi-dictionary/internal/fetcher"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fetchFunc func(ctx context.Context, word string) fetcher.Outcome

func (f fetchFunc) Fetch(ctx context.Context, word string) fetcher.Outcome { return f(ctx, word) }

func words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%03d", i)
	}
	return out
}

type collectingSink struct {
	outcomes []fetcher.Outcome
}

func (s *collectingSink) Accept(_ context.Context, out fetcher.Outcome) bool {
	s.outcomes = append(s.outcomes, out)
	return out.OK()
}

func TestRun_EveryWordExactlyOnce(t *testing.T) {
	t.Parallel()

	input := words(200)
	sink := &collectingSink{}

	d := New(5, 0, discardLogger())
	stats := d.Run(context.Background(), input, func(int) fetcher.Fetcher {
		return fetchFunc(func(_ context.Context, word string) fetcher.Outcome {
			if word[len(word)-1]%3 == 0 {
				return fetcher.Fail(word, fetcher.ReasonNoDefinition, nil)
			}
			return fetcher.Success(domain.NewWordRecord(word, "", "", "nghĩa "+word, domain.SourceAPI))
		})
	}, sink)

	assert.Equal(t, len(input), stats.Total)
	assert.Equal(t, len(input), stats.Processed)
	assert.Equal(t, stats.Total, stats.Succeeded+stats.Failed)
	require.Len(t, sink.outcomes, len(input))

	got := make([]string, 0, len(sink.outcomes))
	for _, o := range sink.outcomes {
		got = append(got, o.Word)
	}
	sort.Strings(got)
	assert.Equal(t, input, got)
}

func TestRun_BuildsOneFetcherPerWorker(t *testing.T) {
	t.Parallel()

	var (
		mu  sync.Mutex
		ids []int
	)
	d := New(4, 0, discardLogger())
	d.Run(context.Background(), words(20), func(id int) fetcher.Fetcher {
		mu.Lock()
		ids = append(ids, id)
		mu.Unlock()
		return fetchFunc(func(_ context.Context, w string) fetcher.Outcome {
			return fetcher.Fail(w, fetcher.ReasonNetwork, nil)
		})
	}, SinkFunc(func(_ context.Context, out fetcher.Outcome) bool { return out.OK() }))

	sort.Ints(ids)
	assert.Equal(t, []int{0, 1, 2, 3}, ids)
}

func TestRun_BoundedParallelism(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	d := New(3, 0, discardLogger())
	d.Run(context.Background(), words(30), func(int) fetcher.Fetcher {
		return fetchFunc(func(_ context.Context, w string) fetcher.Outcome {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return fetcher.Fail(w, fetcher.ReasonNetwork, nil)
		})
	}, SinkFunc(func(_ context.Context, out fetcher.Outcome) bool { return out.OK() }))

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRun_PanicIsIsolated(t *testing.T) {
	t.Parallel()

	sink := &collectingSink{}
	d := New(2, 0, discardLogger())
	stats := d.Run(context.Background(), []string{"ok1", "boom", "ok2", "ok3"}, func(int) fetcher.Fetcher {
		return fetchFunc(func(_ context.Context, w string) fetcher.Outcome {
			if w == "boom" {
				panic("nil map write")
			}
			return fetcher.Success(domain.NewWordRecord(w, "", "", "x", domain.SourceAPI))
		})
	}, sink)

	assert.Equal(t, 4, stats.Processed)
	assert.Equal(t, 3, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)

	var panicked *fetcher.Outcome
	for i := range sink.outcomes {
		if sink.outcomes[i].Word == "boom" {
			panicked = &sink.outcomes[i]
		}
	}
	require.NotNil(t, panicked)
	require.NotNil(t, panicked.Failure)
	assert.Equal(t, fetcher.ReasonPanic, panicked.Failure.Reason)
}

func TestRun_WorkerSetupPanicFailsItsWords(t *testing.T) {
	t.Parallel()

	d := New(1, 0, discardLogger())
	stats := d.Run(context.Background(), words(3), func(int) fetcher.Fetcher {
		panic("no client")
	}, SinkFunc(func(_ context.Context, out fetcher.Outcome) bool { return out.OK() }))

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 3, stats.Failed)
}

func TestRun_SinkCallsAreSerialized(t *testing.T) {
	t.Parallel()

	var active, overlaps atomic.Int32
	d := New(8, 0, discardLogger())
	d.Run(context.Background(), words(100), func(int) fetcher.Fetcher {
		return fetchFunc(func(_ context.Context, w string) fetcher.Outcome {
			return fetcher.Fail(w, fetcher.ReasonNetwork, nil)
		})
	}, SinkFunc(func(context.Context, fetcher.Outcome) bool {
		if active.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(100 * time.Microsecond)
		active.Add(-1)
		return false
	}))

	assert.Zero(t, overlaps.Load())
}

func TestRun_RejectedSuccessCountsAsFailure(t *testing.T) {
	t.Parallel()

	d := New(2, 0, discardLogger())
	stats := d.Run(context.Background(), []string{"hello", "echo", "nope"}, func(int) fetcher.Fetcher {
		return fetchFunc(func(_ context.Context, w string) fetcher.Outcome {
			if w == "nope" {
				return fetcher.Fail(w, fetcher.ReasonNoDefinition, nil)
			}
			return fetcher.Success(domain.NewWordRecord(w, "", "", "nghĩa", domain.SourceAPI))
		})
	}, SinkFunc(func(_ context.Context, out fetcher.Outcome) bool {
		return out.OK() && out.Word != "echo"
	}))

	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, stats.Total, stats.Succeeded+stats.Failed)
}

func TestRun_PanickingSinkCountsAsFailure(t *testing.T) {
	t.Parallel()

	d := New(1, 0, discardLogger())
	stats := d.Run(context.Background(), []string{"hello"}, func(int) fetcher.Fetcher {
		return fetchFunc(func(_ context.Context, w string) fetcher.Outcome {
			return fetcher.Success(domain.NewWordRecord(w, "", "", "xin chào", domain.SourceAPI))
		})
	}, SinkFunc(func(context.Context, fetcher.Outcome) bool { panic("disk full") }))

	assert.Equal(t, 0, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()

	stats := New(5, 10, discardLogger()).Run(context.Background(), nil, func(int) fetcher.Fetcher {
		return fetchFunc(func(_ context.Context, w string) fetcher.Outcome { return fetcher.Fail(w, "", nil) })
	}, SinkFunc(func(_ context.Context, out fetcher.Outcome) bool { return out.OK() }))

	assert.Equal(t, Stats{Elapsed: stats.Elapsed}, stats)
}

func TestStats_Rates(t *testing.T) {
	t.Parallel()

	s := Stats{Total: 10, Processed: 10, Succeeded: 8, Elapsed: 2 * time.Second}
	assert.InDelta(t, 5.0, s.Rate(), 0.001)
	assert.InDelta(t, 80.0, s.SuccessRate(), 0.001)
	assert.Zero(t, Stats{}.Rate())
	assert.Zero(t, Stats{}.SuccessRate())
}
