// Package llm holds the completion providers.
package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/pkg/log"
)

const opGenerate = "generate"

// NewCompleter creates the completion provider selected by LLM_PROVIDER.
func NewCompleter(ctx context.Context, cfg *config.AppConfig) (core.Completer, error) {
	logger := log.FromCtx(ctx)

	switch cfg.LLMProvider {
	case "openai":
		oaCfg := config.NewOpenAIConfig(ctx)
		logger.Info().Str("provider", cfg.LLMProvider).Str("model", oaCfg.ChatModel).Msg("starting llm provider")
		return NewOpenAI(oaCfg), nil
	case "anthropic":
		antCfg := config.NewAnthropicConfig(ctx)
		logger.Info().Str("provider", cfg.LLMProvider).Str("model", antCfg.Model).Msg("starting llm provider")
		return NewAnthropic(antCfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
