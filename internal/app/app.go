package app

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/envi-dictionary/internal/config"
	"github.com/heartmarshall/envi-dictionary/internal/metrics"
)

// Env is the process-wide state shared by every command.
type Env struct {
	Config  *config.Config
	Logger  *slog.Logger
	RunID   string
	Metrics *metrics.Recorder
}

// Bootstrap loads configuration from configPath (see config.Load), initializes
// the logger and assigns a run id that tags every log line and metric.
func Bootstrap(configPath string) (*Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := NewLogger(cfg.Log).With(slog.String("run_id", runID))

	rec, err := metrics.New(runID)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	logger.Info("starting dictcrawl",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("db_driver", cfg.Database.Driver),
	)

	return &Env{Config: cfg, Logger: logger, RunID: runID, Metrics: rec}, nil
}

// Finish exports the run metrics to the configured textfile, if any.
// Failures are logged, never returned: metrics must not fail a run.
func (e *Env) Finish() {
	if e.Config.Metrics.Textfile == "" {
		return
	}
	if err := e.Metrics.WriteTextfile(e.Config.Metrics.Textfile); err != nil {
		e.Logger.Warn("write metrics textfile",
			slog.String("path", e.Config.Metrics.Textfile),
			slog.String("error", err.Error()),
		)
		return
	}
	e.Logger.Debug("metrics written", slog.String("path", e.Config.Metrics.Textfile))
}
