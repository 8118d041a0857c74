package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

type EmbeddingConfig struct {
	Dimensions int           `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`
	CacheSize  int           `env:"EMBEDDING_CACHE_SIZE" envDefault:"1000"`
	Timeout    time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"15s"`
	MaxRetries int           `env:"EMBEDDING_MAX_RETRIES" envDefault:"2"`
	// Inputs longer than this are cut before reaching the provider
	MaxInputTokens int `env:"EMBEDDING_MAX_INPUT_TOKENS" envDefault:"8191"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	if c.Dimensions <= 0 || c.CacheSize <= 0 {
		log.FromCtx(ctx).Fatal().
			Int("dimensions", c.Dimensions).
			Int("cache_size", c.CacheSize).
			Msg("embedding dimensions and cache size must be positive")
	}
	return c
}
