package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/providers/apierr"
)

type messagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type Anthropic struct {
	messages messagesAPI
	model    string
}

func NewAnthropic(cfg *config.AnthropicConfig) *Anthropic {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Anthropic{
		messages: &client.Messages,
		model:    cfg.Model,
	}
}

func (a *Anthropic) Generate(ctx context.Context, messages []core.Message, opts core.GenerateOptions) (string, error) {
	system, turns := splitAnthropic(messages)
	if len(turns) == 0 {
		return "", core.NewProviderError(opGenerate, core.ErrGenerationUnavailable,
			errors.New("no user message"), false)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(opts.MaxTokens),
		Messages:    turns,
		Temperature: anthropic.Float(opts.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := a.messages.New(ctx, params)
	if err != nil {
		return "", apierr.Wrap(opGenerate, core.ErrGenerationUnavailable, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", core.NewProviderError(opGenerate, core.ErrGenerationUnavailable,
			errors.New("empty completion"), false)
	}
	return b.String(), nil
}

// splitAnthropic moves system messages into the system prompt and shapes the
// rest into alternating turns that start with the user: leading assistant
// turns are dropped and consecutive turns of one role are joined.
func splitAnthropic(messages []core.Message) (string, []anthropic.MessageParam) {
	var system []string
	type turn struct {
		role  string
		parts []string
	}
	var turns []turn

	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, m.Content)
			continue
		case core.RoleAssistant:
			if len(turns) == 0 {
				continue
			}
		}
		if n := len(turns); n > 0 && turns[n-1].role == m.Role {
			turns[n-1].parts = append(turns[n-1].parts, m.Content)
			continue
		}
		turns = append(turns, turn{role: m.Role, parts: []string{m.Content}})
	}

	params := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(strings.Join(t.parts, "\n\n"))
		if t.role == core.RoleAssistant {
			params = append(params, anthropic.NewAssistantMessage(block))
		} else {
			params = append(params, anthropic.NewUserMessage(block))
		}
	}
	return strings.Join(system, "\n\n"), params
}
