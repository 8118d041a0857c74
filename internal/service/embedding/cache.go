// Package embedding memoises text embeddings and shields callers from
// provider failures.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/pkg/log"
	"github.com/sandevgo/mnemo/pkg/retry"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCapacity = 1000
	DefaultTimeout  = 15 * time.Second

	opLookup = "embed"
)

type Options struct {
	Capacity   int
	Dimensions int
	// Timeout bounds one lookup, retries included.
	Timeout    time.Duration
	MaxRetries int
	// RetryDelay is the first backoff step.
	RetryDelay time.Duration
}

type Stats struct {
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Fallbacks int64 `json:"fallbacks"`
	Evictions int64 `json:"evictions"`
}

// Cache is a bounded LRU of embeddings keyed by exact text. Only successful
// provider vectors of the configured dimension are stored. It is safe for
// concurrent use.
type Cache struct {
	provider core.Embedder
	opts     Options
	entries  *lru.Cache[string, []float64]
	flights  singleflight.Group
	retrier  *retry.Retrier

	hits      atomic.Int64
	misses    atomic.Int64
	fallbacks atomic.Int64
	evictions atomic.Int64
}

func NewCache(provider core.Embedder, opts Options) (*Cache, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = provider.Dimensions()
	}
	if opts.Dimensions <= 0 {
		return nil, errors.New("embedding dimensions must be positive")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	c := &Cache{provider: provider, opts: opts}

	entries, err := lru.NewWithEvict(opts.Capacity, func(string, []float64) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	c.entries = entries

	retryCfg := retry.NewDefaultConfig()
	retryCfg.MaxRetries = max(opts.MaxRetries, 0)
	if opts.RetryDelay > 0 {
		retryCfg.InitialDelay = opts.RetryDelay
		retryCfg.Jitter = opts.RetryDelay / 4
	}
	retryCfg.Retryable = core.IsTransient
	c.retrier = retry.NewRetrier(retryCfg)

	return c, nil
}

// Embed returns the embedding of text. When the provider cannot deliver one
// it logs the failure and returns a vector of zeros, which recall treats as
// matching nothing.
func (c *Cache) Embed(ctx context.Context, text string) []float64 {
	vector, err := c.Lookup(ctx, text)
	if err != nil {
		c.fallbacks.Add(1)
		log.FromCtx(ctx).Warn().
			Err(err).
			Bool("transient", core.IsTransient(err)).
			Int("text_len", len(text)).
			Msg("embedding unavailable, using zero vector")
		return make([]float64, c.opts.Dimensions)
	}
	return vector
}

// Lookup is Embed without the fallback. Errors are *core.ProviderError of
// kind core.ErrEmbeddingUnavailable. Concurrent misses on the same text share
// one provider call; a caller whose ctx ends stops waiting but the shared
// call runs on until Options.Timeout.
func (c *Cache) Lookup(ctx context.Context, text string) ([]float64, error) {
	if v, ok := c.entries.Get(text); ok {
		c.hits.Add(1)
		return slices.Clone(v), nil
	}
	c.misses.Add(1)

	ch := c.flights.DoChan(text, func() (any, error) {
		// a flight that started just after another one filled the entry
		if v, ok := c.entries.Peek(text); ok {
			return v, nil
		}

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.Timeout)
		defer cancel()

		v, err := c.fetch(callCtx, text)
		if err != nil {
			return nil, err
		}
		c.entries.Add(text, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, core.NewProviderError(opLookup, core.ErrEmbeddingUnavailable, ctx.Err(), false)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]float64)), nil
	}
}

func (c *Cache) fetch(ctx context.Context, text string) ([]float64, error) {
	logger := log.FromCtx(ctx)

	var vector []float64
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		v, err := c.provider.Embed(ctx, text)
		if err != nil {
			return err
		}
		if len(v) != c.opts.Dimensions {
			return core.NewProviderError(opLookup, core.ErrEmbeddingUnavailable,
				fmt.Errorf("got %d dimensions, want %d", len(v), c.opts.Dimensions), false)
		}
		vector = slices.Clone(v)
		return nil
	})
	if err != nil {
		var pe *core.ProviderError
		if !errors.As(err, &pe) {
			err = core.NewProviderError(opLookup, core.ErrEmbeddingUnavailable, err, core.IsTransient(err))
		}
		return nil, err
	}

	logger.Debug().Int("dimensions", len(vector)).Msg("embedding fetched")
	return vector, nil
}

func (c *Cache) Dimensions() int {
	return c.opts.Dimensions
}

func (c *Cache) Stats() Stats {
	return Stats{
		Size:      c.entries.Len(),
		Capacity:  c.opts.Capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Fallbacks: c.fallbacks.Load(),
		Evictions: c.evictions.Load(),
	}
}
