package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
	}
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	retrier := NewDefaultRetrier()

	counter := 0
	err := retrier.Do(context.Background(), func(context.Context) error {
		counter++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt, got %d", counter)
	}
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	retrier := NewRetrier(fastConfig(3))

	counter := 0
	err := retrier.Do(context.Background(), func(context.Context) error {
		counter++
		if counter < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 3 {
		t.Errorf("expected 3 attempts, got %d", counter)
	}
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	retrier := NewRetrier(fastConfig(2))

	expectedErr := errors.New("still failing")
	counter := 0
	err := retrier.Do(context.Background(), func(context.Context) error {
		counter++
		return expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	if counter != 3 { // initial try + 2 retries
		t.Errorf("expected 3 attempts, got %d", counter)
	}
}

func TestRetry_PermanentErrorStops(t *testing.T) {
	permanent := errors.New("bad request")
	config := fastConfig(5)
	config.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	var retries []int
	config.OnRetry = func(attempt int, _ error, _ time.Duration) {
		retries = append(retries, attempt)
	}

	counter := 0
	err := NewRetrier(config).Do(context.Background(), func(context.Context) error {
		counter++
		if counter == 1 {
			return errors.New("timeout")
		}
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("expected %v, got %v", permanent, err)
	}
	if counter != 2 {
		t.Errorf("expected 2 attempts, got %d", counter)
	}
	if len(retries) != 1 || retries[0] != 1 {
		t.Errorf("expected a single retry notification, got %v", retries)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retrier := NewDefaultRetrier()

	err := retrier.Do(ctx, func(context.Context) error {
		cancel()
		return errors.New("operation error after cancel")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_BackoffAndJitter(t *testing.T) {
	config := &Config{
		MaxRetries:    2,
		BackoffFactor: 2.0,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      1 * time.Second,
		Jitter:        50 * time.Millisecond,
	}
	retrier := NewRetrier(config)

	start := time.Now()
	counter := 0
	_ = retrier.Do(context.Background(), func(context.Context) error {
		counter++
		return errors.New("error")
	})
	elapsed := time.Since(start)

	// two waits: 100ms and 200ms, each plus up to 50ms of jitter
	minExpected := 300 * time.Millisecond
	maxExpected := 400*time.Millisecond + 150*time.Millisecond
	if elapsed < minExpected || elapsed > maxExpected {
		t.Errorf("expected total delay between %v and %v, got %v", minExpected, maxExpected, elapsed)
	}
	if counter != 3 {
		t.Errorf("expected 3 attempts, got %d", counter)
	}
}
