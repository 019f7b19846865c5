package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2.0,
		BreakerEnabled: false,
	}
}

func TestExecuteRetriesRetryableErrors(t *testing.T) {
	executor := NewExecutor(fastConfig())

	attempts := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error) Classification {
		return Classification{Retryable: true, RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteStopsOnNonRetryableError(t *testing.T) {
	executor := NewExecutor(fastConfig())

	attempts := 0
	wantErr := errors.New("fatal")
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return wantErr
	}, func(error) Classification {
		return Classification{Retryable: false, RecordFailure: true}
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped fatal error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteGivesUpAfterMaxAttempts(t *testing.T) {
	executor := NewExecutor(fastConfig())

	attempts := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errors.New("still down")
	}, func(error) Classification {
		return Classification{Retryable: true, RecordFailure: true}
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteRespectsContextCancellation(t *testing.T) {
	executor := NewExecutor(fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := executor.Execute(ctx, "op", func(context.Context) error {
		attempts++
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected no attempts, got %d", attempts)
	}
}

func TestBreakerOpensAfterFailureRatio(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	executor := NewExecutor(cfg)

	classify := func(error) Classification {
		return Classification{Retryable: false, RecordFailure: true}
	}
	for i := 0; i < 3; i++ {
		_ = executor.Execute(context.Background(), "flaky", func(context.Context) error {
			return errors.New("down")
		}, classify)
	}

	err := executor.Execute(context.Background(), "flaky", func(context.Context) error {
		return nil
	}, classify)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}
