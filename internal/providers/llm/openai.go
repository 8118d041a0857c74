package llm

import (
	"context"
	"errors"

	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/providers/apierr"
	openai "github.com/sashabaranov/go-openai"
)

type chatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI generates replies with the chat completions endpoint.
type OpenAI struct {
	client chatAPI
	model  string
}

func NewOpenAI(cfg *config.OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.ChatModel,
	}
}

func (o *OpenAI) Generate(ctx context.Context, messages []core.Message, opts core.GenerateOptions) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    chatMessages,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", apierr.Wrap(opGenerate, core.ErrGenerationUnavailable, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", core.NewProviderError(opGenerate, core.ErrGenerationUnavailable,
			errors.New("empty completion"), false)
	}
	return resp.Choices[0].Message.Content, nil
}
