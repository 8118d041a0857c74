package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

type CompletionConfig struct {
	Temperature float64       `env:"COMPLETION_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int           `env:"COMPLETION_MAX_TOKENS" envDefault:"1000"`
	Timeout     time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"60s"`
}

func NewCompletionConfig(ctx context.Context) *CompletionConfig {
	c := &CompletionConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Completion config")
	}
	return c
}
