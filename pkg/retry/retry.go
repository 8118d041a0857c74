package retry

import (
	"context"
	"math/rand"
	"time"
)

type Operation = func(ctx context.Context) error

// Config controls backoff. Retryable decides which errors are worth another
// attempt; nil retries every error.
type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
	Retryable     func(err error) bool
	// OnRetry is called before each wait with the failed attempt number (from 1).
	OnRetry func(attempt int, err error, wait time.Duration)
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		BackoffFactor: 2.15,
		InitialDelay:  300 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		Jitter:        50 * time.Millisecond,
	}
}

type Retrier struct {
	config *Config
}

func NewRetrier(config *Config) *Retrier {
	return &Retrier{
		config: config,
	}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

// Do runs op until it succeeds, fails permanently, exhausts MaxRetries or ctx
// is done. The last operation error is returned, or ctx.Err() if the wait
// was interrupted.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	delay := r.config.InitialDelay
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}

		if attempt == r.config.MaxRetries || !r.retryable(err) {
			return err
		}

		jitter := time.Duration(0)
		if r.config.Jitter > 0 {
			jitter = time.Duration(rnd.Float64() * float64(r.config.Jitter))
		}
		wait := delay + jitter
		if wait > r.config.MaxDelay {
			wait = r.config.MaxDelay + jitter
		}

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt+1, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * r.config.BackoffFactor)
		if delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}
	}
	return err
}

func (r *Retrier) retryable(err error) bool {
	if r.config.Retryable == nil {
		return true
	}
	return r.config.Retryable(err)
}
