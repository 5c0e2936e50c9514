// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	// Override the retry delay to avoid real sleeps in retry tests.
	retryDelay = time.Millisecond
	os.Exit(m.Run())
}

// failNTimesGenerator fails the first N calls, then succeeds.
type failNTimesGenerator struct {
	failures  int
	callCount int
	response  string
}

func (f *failNTimesGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.callCount++
	if f.callCount <= f.failures {
		return "", fmt.Errorf("transient error (call %d)", f.callCount)
	}
	return f.response, nil
}

// emptyNTimesGenerator returns an empty response for the first N calls.
type emptyNTimesGenerator struct {
	empties   int
	callCount int
	response  string
}

func (e *emptyNTimesGenerator) Generate(_ context.Context, _ string) (string, error) {
	e.callCount++
	if e.callCount <= e.empties {
		return "", nil
	}
	return e.response, nil
}

// --- WithRetry ---

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		maxRetries int
		wantCalls  int
		wantErr    bool
	}{
		{"succeeds first try", 0, 3, 1, false},
		{"succeeds after 2 failures", 2, 3, 3, false},
		{"fails after exhausting retries", 3, 3, 3, true},
		{"succeeds on last attempt", 2, 3, 3, false},
		{"default retry count when non-positive", 2, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &failNTimesGenerator{failures: tt.failures, response: "output"}

			out, err := WithRetry(context.Background(), gen, "prompt", tt.maxRetries)

			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantErr && out != "output" {
				t.Errorf("out = %q, want %q", out, "output")
			}
			if gen.callCount != tt.wantCalls {
				t.Errorf("callCount = %d, want %d", gen.callCount, tt.wantCalls)
			}
		})
	}
}

func TestWithRetryEmptyResponseIsFailure(t *testing.T) {
	gen := &emptyNTimesGenerator{empties: 2, response: "eventually"}

	out, err := WithRetry(context.Background(), gen, "prompt", 3)
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if out != "eventually" {
		t.Errorf("out = %q, want %q", out, "eventually")
	}
	if gen.callCount != 3 {
		t.Errorf("callCount = %d, want 3", gen.callCount)
	}
}

func TestWithRetryAllEmpty(t *testing.T) {
	gen := &emptyNTimesGenerator{empties: 10}

	_, err := WithRetry(context.Background(), gen, "prompt", 3)
	if err == nil {
		t.Fatal("expected error for all-empty responses, got nil")
	}
	if gen.callCount != 3 {
		t.Errorf("callCount = %d, want 3", gen.callCount)
	}
}

func TestWithRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &failNTimesGenerator{failures: 10}
	_, err := WithRetry(ctx, gen, "prompt", 3)
	if err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	// The first attempt runs without a delay; cancellation is observed
	// before the second.
	if gen.callCount > 1 {
		t.Errorf("callCount = %d, want at most 1", gen.callCount)
	}
}
