package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sergss/geomark/internal/geocoding"
	"github.com/sergss/geomark/internal/metrics"
	"github.com/sergss/geomark/internal/models"
)

// Resolver wraps a single geocoding provider call with bounded retry,
// configurable backoff, and an auth-error short circuit. One Resolve call is
// a single logical lookup, but internally it may issue up to
// policy.MaxAttempts attempts, each of which is up to two provider calls
// (viewport-biased, then global).
type Resolver struct {
	provider     geocoding.Provider // provider performs the remote lookups
	providerName string             // providerName labels request metrics
	policy       RetryPolicy        // policy bounds attempts and backoff
	log          *slog.Logger       // log records per-attempt diagnostics
	metrics      *metrics.Metrics   // metrics tracks attempts and durations
}

// New creates a resolver around the given provider. The policy must already
// be validated; the batch runner refuses to start a run with a bad policy.
func New(
	provider geocoding.Provider,
	providerName string,
	policy RetryPolicy,
	log *slog.Logger,
	appMetrics *metrics.Metrics,
) *Resolver {
	return &Resolver{
		provider:     provider,
		providerName: providerName,
		policy:       policy,
		log:          log,
		metrics:      appMetrics,
	}
}

// Resolve geocodes one address. A non-nil bias restricts the first lookup of
// each attempt to the given region; when that biased lookup finds nothing,
// the same attempt falls back to a global lookup. Zero results from the
// global tier end the job immediately as NotFound, since no amount of
// retrying turns "no such address" into a hit. A rejected credential ends
// the job immediately as AuthFailed. Any other failure is retried with
// backoff until the policy's attempts are exhausted.
func (r *Resolver) Resolve(ctx context.Context, address string, bias *models.Bounds) Outcome {
	var lastErr error

	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return Outcome{Status: StatusCancelled}
		}
		if attempt > 0 {
			r.metrics.RetryAttempts.Inc()
		}

		match, err := r.lookup(ctx, address, bias)
		if err == nil {
			return Outcome{Status: StatusFound, Match: match}
		}

		if errors.Is(err, geocoding.ErrNoMatch) {
			return Outcome{Status: StatusNotFound}
		}
		if errors.Is(err, geocoding.ErrUnauthorized) {
			r.metrics.APIErrors.Inc()
			return Outcome{Status: StatusAuthFailed, Err: err}
		}
		if ctx.Err() != nil {
			// The in-flight call was torn down by cancellation, not by the
			// provider; do not count it as a provider failure.
			return Outcome{Status: StatusCancelled}
		}

		r.metrics.APIErrors.Inc()
		lastErr = err
		r.log.WarnContext(ctx, "Geocoding attempt failed",
			"address", address, "attempt", attempt+1, "error", err)

		if attempt == r.policy.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return Outcome{Status: StatusCancelled}
		case <-time.After(r.policy.backoff(attempt)):
		}
	}

	return Outcome{
		Status: StatusFailed,
		Err:    fmt.Errorf("resolve %q failed after %d attempts: %w", address, r.policy.MaxAttempts, lastErr),
	}
}

// lookup performs one attempt: a biased call when a bias region is set, then
// a global fallback call when the biased view holds no match. Both calls
// belong to the same attempt, so a transient failure in either tier consumes
// only one attempt.
func (r *Resolver) lookup(ctx context.Context, address string, bias *models.Bounds) (*models.Match, error) {
	if bias != nil {
		match, err := r.geocode(ctx, address, bias)
		if err == nil {
			return match, nil
		}
		if !errors.Is(err, geocoding.ErrNoMatch) {
			return nil, err
		}
		// Nothing inside the viewport; widen to a global lookup.
	}

	return r.geocode(ctx, address, nil)
}

func (r *Resolver) geocode(ctx context.Context, address string, bias *models.Bounds) (*models.Match, error) {
	startTime := time.Now()
	match, err := r.provider.Geocode(ctx, address, bias)
	r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(time.Since(startTime).Seconds())
	return match, err
}
