// SPDX-License-Identifier: Apache-2.0
package resilience

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/castellanhq/castellan/pkg/errors"
)

func fastConfig() RetryConfig {
	return DefaultRetryConfig().
		WithMaxAttempts(3)
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	rc := fastConfig()
	rc.InitialDelay = time.Millisecond
	err := rc.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_StructuralErrorRetriesUpToMax(t *testing.T) {
	calls := 0
	retries := 0
	rc := fastConfig().WithOnRetry(func(attempt int, err error) { retries++ })
	rc.InitialDelay = time.Millisecond
	rc.MaxDelay = 2 * time.Millisecond

	err := rc.Do(context.Background(), func() error {
		calls++
		return errors.New(errors.CodeTimeout, "stage timed out", nil)
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if retries != 2 {
		t.Errorf("expected 2 retry callbacks, got %d", retries)
	}
}

func TestRetry_StructuralErrorRecoversMidway(t *testing.T) {
	calls := 0
	rc := fastConfig()
	rc.InitialDelay = time.Millisecond

	err := rc.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New(errors.CodeMalformedOutput, "bad output", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestRetry_SemanticErrorNeverRetries(t *testing.T) {
	calls := 0
	rc := fastConfig()
	rc.InitialDelay = time.Millisecond

	semantic := errors.New(errors.CodeScopeViolation, "outside scope", nil)
	err := rc.Do(context.Background(), func() error {
		calls++
		return semantic
	})
	if err != semantic {
		t.Fatalf("expected the semantic error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("semantic errors must not retry, got %d attempts", calls)
	}
}

func TestRetry_PlainErrorIsRetried(t *testing.T) {
	calls := 0
	rc := fastConfig()
	rc.InitialDelay = time.Millisecond
	rc.MaxDelay = 2 * time.Millisecond

	_ = rc.Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("opaque failure")
	})
	if calls != 3 {
		t.Errorf("plain errors are structural and retried, got %d attempts", calls)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rc := fastConfig()
	rc.InitialDelay = time.Hour // force the select to block on ctx

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := rc.Do(ctx, func() error {
		calls++
		return errors.New(errors.CodeTimeout, "x", nil)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", calls)
	}
}

func TestRetry_ZeroAttemptsClampedToOne(t *testing.T) {
	calls := 0
	rc := RetryConfig{MaxAttempts: 0}
	_ = rc.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if calls != 1 {
		t.Errorf("expected at least one attempt, got %d", calls)
	}
}
