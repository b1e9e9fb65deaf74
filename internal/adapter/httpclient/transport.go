package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heartmarshall/envi-dictionary/pkg/ctxutil"
)

// retryTransport retries idempotent requests on transport errors and on
// configured status codes with exponential backoff (base, 2*base, 4*base...).
// After the last retry the last response or error is returned unchanged.
type retryTransport struct {
	next          http.RoundTripper
	maxRetries    int
	base          time.Duration
	retryStatuses []int
	userAgent     string
	limiter       *HostLimiter
	log           *slog.Logger
}

func (t *retryTransport) newBackOff(req *http.Request) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = t.base
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = t.base << 10
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(t.maxRetries)), req.Context())
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(ctx)
		req.Header.Set("User-Agent", t.userAgent)
	}

	bo := t.newBackOff(req)

	for attempt := 0; ; attempt++ {
		if err := t.limiter.Wait(ctx, req.URL.Host); err != nil {
			return nil, err
		}

		attemptReq, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := t.next.RoundTrip(attemptReq)
		if !t.shouldRetry(req, resp, err) {
			return resp, err
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return resp, err
		}

		t.log.LogAttrs(ctx, slog.LevelWarn, "http retry", append(ctxutil.LogAttrs(ctx),
			slog.String("host", req.URL.Host),
			slog.Int("attempt", attempt+1),
			slog.String("reason", retryReason(resp, err)),
			slog.Duration("backoff", wait),
		)...)

		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (t *retryTransport) shouldRetry(req *http.Request, resp *http.Response, err error) bool {
	if req.Body != nil && req.GetBody == nil {
		return false
	}
	if err != nil {
		return req.Context().Err() == nil && !errors.Is(err, context.Canceled)
	}
	return slices.Contains(t.retryStatuses, resp.StatusCode)
}

// rewind returns the request to send for the given attempt, restoring the
// body for retries.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.GetBody == nil {
		return req, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func retryReason(resp *http.Response, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
