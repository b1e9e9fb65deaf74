package config

import (
	"fmt"
	"net/http"
	"strings"
)

// Validate performs rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case DriverPostgres, DriverSQLite:
		c.Database.Driver = strings.ToLower(c.Database.Driver)
	default:
		return fmt.Errorf("database.driver must be %q or %q (got %q)", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	// cleanenv's env-required accepts a variable that is set but empty.
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if err := c.Crawl.validate(); err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	if err := c.Retry.validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := c.HTTP.validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("breaker: consecutive_failures must be > 0")
	}
	if c.Merge.CommitEvery <= 0 {
		return fmt.Errorf("merge: commit_every must be > 0 (got %d)", c.Merge.CommitEvery)
	}

	return nil
}

func (c *CrawlConfig) validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.GlossMaxLen <= 0 {
		return fmt.Errorf("gloss_max_len must be > 0 (got %d)", c.GlossMaxLen)
	}
	if c.FailedFile == "" {
		return fmt.Errorf("failed_file is required")
	}
	if c.WordList == "" {
		return fmt.Errorf("word_list is required")
	}
	return nil
}

func (r *RetryConfig) validate() error {
	if r.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", r.Workers)
	}
	if r.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", r.BatchSize)
	}
	if r.InputFile == "" || r.StillFailedFile == "" {
		return fmt.Errorf("input_file and still_failed_file are required")
	}
	return nil
}

func (h *HTTPConfig) validate() error {
	if h.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", h.MaxRetries)
	}
	if h.BackoffBase <= 0 {
		return fmt.Errorf("backoff_base must be > 0 (got %v)", h.BackoffBase)
	}
	for _, s := range h.RetryStatuses {
		if http.StatusText(s) == "" {
			return fmt.Errorf("retry_statuses: unknown status %d", s)
		}
	}
	if h.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0 (got %v)", h.RequestsPerSecond)
	}
	if h.RequestsPerSecond > 0 && h.Burst <= 0 {
		return fmt.Errorf("burst must be > 0 when requests_per_second is set (got %d)", h.Burst)
	}
	return nil
}
