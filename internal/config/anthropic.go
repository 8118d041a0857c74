package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

type AnthropicConfig struct {
	APIKey string `env:"ANTHROPIC_API_KEY,required,notEmpty"`
	Model  string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`
}

func NewAnthropicConfig(ctx context.Context) *AnthropicConfig {
	c := &AnthropicConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Anthropic config")
	}
	return c
}
