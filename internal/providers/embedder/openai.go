// Package embedder holds the remote embedding providers.
package embedder

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/providers/apierr"
	openai "github.com/sashabaranov/go-openai"
)

const opEmbed = "embed"

type embeddingsAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAI produces embeddings through the OpenAI embeddings endpoint or any
// server that speaks the same protocol.
type OpenAI struct {
	client     embeddingsAPI
	model      openai.EmbeddingModel
	dimensions int
	truncator  *Truncator
}

func NewOpenAI(cfg *config.OpenAIConfig, embCfg *config.EmbeddingConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.EmbeddingModel),
		dimensions: embCfg.Dimensions,
		truncator:  NewTruncator(embCfg.MaxInputTokens),
	}
}

// Embed returns the embedding of text. Every failure is a *core.ProviderError
// of kind core.ErrEmbeddingUnavailable; a vector of the wrong size is
// permanent.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{o.truncator.Truncate(ctx, text)},
		Model: o.model,
	})
	if err != nil {
		return nil, apierr.Wrap(opEmbed, core.ErrEmbeddingUnavailable, err)
	}

	if len(resp.Data) == 0 {
		return nil, core.NewProviderError(opEmbed, core.ErrEmbeddingUnavailable,
			errors.New("no data returned"), false)
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != o.dimensions {
		return nil, core.NewProviderError(opEmbed, core.ErrEmbeddingUnavailable,
			fmt.Errorf("got %d dimensions, want %d", len(embedding), o.dimensions), false)
	}

	vector := make([]float64, len(embedding))
	for i, v := range embedding {
		vector[i] = float64(v)
	}
	return vector, nil
}

func (o *OpenAI) Dimensions() int {
	return o.dimensions
}
