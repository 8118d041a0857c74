package core

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimensions() int
}

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

type Completer interface {
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, error)
}
