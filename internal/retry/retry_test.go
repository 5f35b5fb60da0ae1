package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxRetries:      2,
		BaseDelay:       time.Millisecond,
		MaxDelay:        2 * time.Millisecond,
		BackoffMultiple: 2.0,
	}
}

func TestExecute_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	result, err := Execute(context.Background(), Options{Config: fastConfig(), APIName: "test"}, func(attempt int) (string, error) {
		calls++
		if attempt < 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "ok" {
		t.Errorf("Expected result 'ok', got '%s'", result)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestExecute_NonRetryable(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	opts := Options{
		Config:       fastConfig(),
		ErrorChecker: func(err error) bool { return !errors.Is(err, permanent) },
		APIName:      "test",
	}

	_, err := Execute(context.Background(), opts, func(attempt int) (int, error) {
		calls++
		return 0, permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("Expected permanent error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestExecute_Exhausted(t *testing.T) {
	transient := errors.New("unavailable")
	calls := 0

	_, err := Execute(context.Background(), Options{Config: fastConfig(), APIName: "test"}, func(attempt int) (int, error) {
		calls++
		return 0, transient
	})

	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected RetryExhaustedError, got: %v", err)
	}
	if exhausted.MaxAttempts != 3 {
		t.Errorf("Expected 3 max attempts, got %d", exhausted.MaxAttempts)
	}
	if !errors.Is(err, transient) {
		t.Error("Expected exhausted error to wrap the last error")
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestExecute_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastConfig()
	cfg.BaseDelay = time.Second
	_, err := Execute(ctx, Options{Config: cfg, APIName: "test"}, func(attempt int) (int, error) {
		return 0, errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestCalculateDelay_Capped(t *testing.T) {
	cfg := Config{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffMultiple: 2.0}

	if d := cfg.calculateDelay(0); d != 100*time.Millisecond {
		t.Errorf("Expected 100ms, got %v", d)
	}
	if d := cfg.calculateDelay(1); d != 200*time.Millisecond {
		t.Errorf("Expected 200ms, got %v", d)
	}
	if d := cfg.calculateDelay(5); d != 300*time.Millisecond {
		t.Errorf("Expected capped 300ms, got %v", d)
	}
}
