package generate

import (
	"context"
	"log/slog"
	"time"

	"github.com/zela-ai/zela/internal/model"
	"github.com/zela-ai/zela/internal/prompt"
)

// DefaultMaxAttempts bounds the retry loop.
const DefaultMaxAttempts = 3

// DefaultBackoff waits 1000 + 500×attempt milliseconds before the attempt
// that follows attempt n (1500ms after the first failure, 2000ms after the
// second).
func DefaultBackoff(attempt int) time.Duration {
	return time.Duration(1000+500*attempt) * time.Millisecond
}

// RetryConfig parameterizes the retry policy so it is testable independent
// of the generation adapter. Zero values select the defaults above.
type RetryConfig struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Logger      *slog.Logger
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Backoff == nil {
		c.Backoff = DefaultBackoff
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Retryer wraps a Generator with bounded retries across a fallback
// ordering of model profiles.
type Retryer struct {
	gen Generator
	cfg RetryConfig
}

// NewRetryer creates a Retryer over the given generator.
func NewRetryer(gen Generator, cfg RetryConfig) *Retryer {
	return &Retryer{gen: gen, cfg: cfg.withDefaults()}
}

// Generate attempts the preferred profile first, then substitutes entries
// from the fallback ordering, waiting the configured backoff between
// attempts. The last attempt's error is propagated on exhaustion.
func (r *Retryer) Generate(ctx context.Context, req prompt.Request, preferred model.Profile, fallback []model.Profile) (string, error) {
	candidates := candidateOrder(preferred, fallback, r.cfg.MaxAttempts)

	var lastErr error
	for attempt, profile := range candidates {
		if attempt > 0 {
			if err := sleep(ctx, r.cfg.Backoff(attempt)); err != nil {
				return "", err
			}
		}

		text, err := r.gen.Generate(ctx, req, profile.UpstreamName)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			break
		}

		r.cfg.Logger.Warn("generation attempt failed, falling back",
			"attempt", attempt+1,
			"model", profile.Key,
			"error", err,
		)
	}

	return "", lastErr
}

// candidateOrder builds the attempt sequence: the preferred profile first,
// then fallback entries in order, skipping immediate repeats of the profile
// just tried. The sequence is capped at n and padded by cycling the
// fallback list when it is shorter than n.
func candidateOrder(preferred model.Profile, fallback []model.Profile, n int) []model.Profile {
	out := []model.Profile{preferred}
	if len(fallback) == 0 {
		return out
	}

	for i := 0; len(out) < n; i++ {
		next := fallback[i%len(fallback)]
		if next.Key == out[len(out)-1].Key {
			// Avoid retrying the model that just failed back to back.
			// A repeating source list still cycles through on later turns.
			if allSameKey(fallback, next.Key) {
				break
			}
			continue
		}
		out = append(out, next)
	}
	return out
}

func allSameKey(profiles []model.Profile, key string) bool {
	for _, p := range profiles {
		if p.Key != key {
			return false
		}
	}
	return true
}

// sleep blocks for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
