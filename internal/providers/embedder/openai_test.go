package embedder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmbeddingsAPI struct {
	resp   openai.EmbeddingResponse
	err    error
	inputs []string
}

func (m *mockEmbeddingsAPI) CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	req := conv.Convert()
	if in, ok := req.Input.([]string); ok {
		m.inputs = append(m.inputs, in...)
	}
	return m.resp, m.err
}

func response(vector ...float32) openai.EmbeddingResponse {
	return openai.EmbeddingResponse{Data: []openai.Embedding{{Embedding: vector}}}
}

func TestOpenAI_Embed(t *testing.T) {
	tests := []struct {
		name          string
		api           *mockEmbeddingsAPI
		want          []float64
		wantErr       bool
		wantTransient bool
	}{
		{
			name: "converts to float64",
			api:  &mockEmbeddingsAPI{resp: response(0.5, -0.25, 1)},
			want: []float64{0.5, -0.25, 1},
		},
		{
			name:          "rate limit is transient",
			api:           &mockEmbeddingsAPI{err: &openai.APIError{HTTPStatusCode: 429}},
			wantErr:       true,
			wantTransient: true,
		},
		{
			name:    "auth failure is permanent",
			api:     &mockEmbeddingsAPI{err: &openai.APIError{HTTPStatusCode: 401}},
			wantErr: true,
		},
		{
			name:    "empty response",
			api:     &mockEmbeddingsAPI{resp: openai.EmbeddingResponse{}},
			wantErr: true,
		},
		{
			name:    "wrong dimension is permanent",
			api:     &mockEmbeddingsAPI{resp: response(1, 2)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &OpenAI{client: tt.api, model: openai.AdaEmbeddingV2, dimensions: 3}

			got, err := e.Embed(context.Background(), "hello")
			assert.Equal(t, []string{"hello"}, tt.api.inputs)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable)
				assert.Equal(t, tt.wantTransient, core.IsTransient(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeTokenizer struct{}

// one token per word
func (fakeTokenizer) Encode(text string, _, _ []string) []int {
	out := make([]int, len(strings.Fields(text)))
	for i := range out {
		out[i] = i
	}
	return out
}

func (fakeTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i := range tokens {
		words[i] = "w"
	}
	return strings.Join(words, " ")
}

func TestTruncator(t *testing.T) {
	load := func() (tokenizer, error) { return fakeTokenizer{}, nil }

	tests := []struct {
		name      string
		maxTokens int
		load      func() (tokenizer, error)
		text      string
		want      string
	}{
		{name: "disabled", maxTokens: 0, load: load, text: "a b c d e f", want: "a b c d e f"},
		{name: "short input", maxTokens: 100, load: load, text: "a b c", want: "a b c"},
		{name: "fits in tokens", maxTokens: 4, load: load, text: "aaaa bbbb", want: "aaaa bbbb"},
		{name: "cut", maxTokens: 3, load: load, text: "a b c d e f", want: "w w w"},
		{
			name:      "tokenizer unavailable",
			maxTokens: 3,
			load:      func() (tokenizer, error) { return nil, errors.New("offline") },
			text:      "a b c d e f",
			want:      "a b c d e f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Truncator{maxTokens: tt.maxTokens, load: tt.load}
			assert.Equal(t, tt.want, tr.Truncate(context.Background(), tt.text))
		})
	}

	var nilTruncator *Truncator
	assert.Equal(t, "x", nilTruncator.Truncate(context.Background(), "x"))
}
