// Package generate defines the boundary to the upstream generative API and
// the bounded retry policy applied across the model fallback ordering.
// Concrete adapters live in separate packages (e.g. internal/gemini).
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/zela-ai/zela/internal/prompt"
)

// Generator invokes the upstream generative API once with a composed
// request against a concrete upstream model name.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request, upstreamModel string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req prompt.Request, upstreamModel string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req prompt.Request, upstreamModel string) (string, error) {
	return f(ctx, req, upstreamModel)
}

// UpstreamError is a failure reported by the generation API.
type UpstreamError struct {
	// Status is the HTTP-level status code when known, zero otherwise.
	Status  int
	Message string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generate: upstream status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("generate: upstream: %s", e.Message)
}

// IsRetryable reports whether a failed attempt may be retried with a
// fallback model. Context cancellation is never retried.
func IsRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
