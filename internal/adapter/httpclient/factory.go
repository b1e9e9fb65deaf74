// Package httpclient builds the outbound HTTP clients used by the upstream
// providers: retries with exponential backoff, an optional per-host rate
// limit and a fixed User-Agent.
package httpclient

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/envi-dictionary/internal/config"
)

// Factory creates HTTP clients that share a rate limiter but never a
// connection pool.
type Factory struct {
	cfg     config.HTTPConfig
	limiter *HostLimiter
	log     *slog.Logger
}

// NewFactory creates a Factory from HTTPConfig.
func NewFactory(cfg config.HTTPConfig, logger *slog.Logger) *Factory {
	return &Factory{
		cfg:     cfg,
		limiter: NewHostLimiter(cfg.RequestsPerSecond, cfg.Burst),
		log:     logger.With("component", "httpclient"),
	}
}

// New returns a client with its own *http.Transport. The client has no
// overall timeout; callers bound each call through the request context.
func (f *Factory) New() *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()

	return &http.Client{
		Transport: &retryTransport{
			next:          base,
			maxRetries:    f.cfg.MaxRetries,
			base:          f.cfg.BackoffBase,
			retryStatuses: f.cfg.RetryStatuses,
			userAgent:     f.cfg.UserAgent,
			limiter:       f.limiter,
			log:           f.log,
		},
	}
}
