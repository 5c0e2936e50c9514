// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate calls a text generation API and provides bounded retry
// for required generation steps.
package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/deepsearch/pkg/types"
)

// Generator abstracts the text generation API so tests can supply a mock.
// Implementations are stateless request/response clients and safe to share
// across concurrent section workers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// retryDelay is the fixed delay between retry attempts for required
// generation steps. Tests override this to avoid real sleeps.
var retryDelay = 2 * time.Second

// WithRetry calls gen with a fixed retry count and fixed delay. It is used
// for required steps (structure proposal, first-pass queries, summaries)
// where a failed call abandons the whole unit of work; optional steps call
// the generator directly and degrade on failure instead.
//
// An empty response counts as a failure. When maxRetries is not positive
// the default (3) is used.
func WithRetry(ctx context.Context, gen Generator, prompt string, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		out, err := gen.Generate(ctx, prompt)
		if err == nil && out != "" {
			return out, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("empty response")
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// applyTimeout derives a per-call context from cfg.Timeout. The returned
// cancel func is always non-nil.
func applyTimeout(ctx context.Context, cfg types.AIConfig) (context.Context, context.CancelFunc) {
	if cfg.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
