package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/mnemo/pkg/log"
)

// OpenAIConfig is always parsed: embeddings come from OpenAI even when
// completions are served by another provider.
type OpenAIConfig struct {
	APIKey         string `env:"OPENAI_API_KEY,required,notEmpty"`
	BaseURL        string `env:"OPENAI_BASE_URL"`
	ChatModel      string `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4"`
	EmbeddingModel string `env:"OPENAI_EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}
