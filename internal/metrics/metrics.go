// Package metrics collects per-run Prometheus counters and exports them as a
// node_exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder owns the collectors of one run. Every collector carries the run
// id as a constant label.
type Recorder struct {
	reg *prometheus.Registry

	words    *prometheus.CounterVec
	failures *prometheus.CounterVec
	flushes  *prometheus.CounterVec
	written  *prometheus.CounterVec
	duration *prometheus.GaugeVec
	breakers *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New(runID string) (*Recorder, error) {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		words: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dictcrawl_words_total",
			Help: "Words processed, partitioned by pass and outcome.",
		}, []string{"pass", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dictcrawl_failures_total",
			Help: "Failed words partitioned by pass and failure reason.",
		}, []string{"pass", "reason"}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dictcrawl_flushes_total",
			Help: "Batch writes partitioned by pass and status.",
		}, []string{"pass", "status"}),
		written: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dictcrawl_records_written_total",
			Help: "Records in committed batches.",
		}, []string{"pass"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dictcrawl_pass_duration_seconds",
			Help: "Wall time of the last completed pass.",
		}, []string{"pass"}),
		breakers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dictcrawl_breaker_transitions_total",
			Help: "Circuit breaker state changes partitioned by upstream and new state.",
		}, []string{"upstream", "state"}),
	}

	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"run_id": runID}, reg)
	for _, c := range []prometheus.Collector{r.words, r.failures, r.flushes, r.written, r.duration, r.breakers} {
		if err := wrapped.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// Gatherer exposes the registry for tests and exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveWord counts one processed word. reason is ignored on success.
func (r *Recorder) ObserveWord(pass string, ok bool, reason string) {
	if ok {
		r.words.WithLabelValues(pass, OutcomeSuccess).Inc()
		return
	}
	r.words.WithLabelValues(pass, OutcomeFailure).Inc()
	r.failures.WithLabelValues(pass, reason).Inc()
}

// ObserveFlush counts one batch write.
func (r *Recorder) ObserveFlush(pass string, records int, err error) {
	if err != nil {
		r.flushes.WithLabelValues(pass, "error").Inc()
		return
	}
	r.flushes.WithLabelValues(pass, "ok").Inc()
	r.written.WithLabelValues(pass).Add(float64(records))
}

// ObservePass records the duration of a finished pass.
func (r *Recorder) ObservePass(pass string, elapsed time.Duration) {
	r.duration.WithLabelValues(pass).Set(elapsed.Seconds())
}

// ObserveBreaker counts a breaker transition into state.
func (r *Recorder) ObserveBreaker(upstream, state string) {
	r.breakers.WithLabelValues(upstream, state).Inc()
}

// WriteTextfile writes the registry to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
