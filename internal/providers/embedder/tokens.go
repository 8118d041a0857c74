package embedder

import (
	"context"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/mnemo/pkg/log"
)

// encoding used by the ada-002 and text-embedding-3 models
const encodingName = "cl100k_base"

type tokenizer interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

var (
	tk     tokenizer
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (tokenizer, error) {
	tkOnce.Do(func() {
		var enc *tiktoken.Tiktoken
		enc, tkErr = tiktoken.GetEncoding(encodingName)
		if tkErr == nil {
			tk = enc
		}
	})
	return tk, tkErr
}

// Truncator cuts text to the provider's input token limit.
type Truncator struct {
	maxTokens int
	load      func() (tokenizer, error)
}

func NewTruncator(maxTokens int) *Truncator {
	return &Truncator{maxTokens: maxTokens, load: getTokenizer}
}

// Truncate returns text unchanged when it fits, when the limit is disabled or
// when no tokenizer is available; the provider then decides what to do with
// an oversized input.
func (t *Truncator) Truncate(ctx context.Context, text string) string {
	if t == nil || t.maxTokens <= 0 || text == "" {
		return text
	}

	// fewer bytes than tokens means nothing to cut
	if len(text) <= t.maxTokens {
		return text
	}

	enc, err := t.load()
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("tokenizer unavailable, sending input untruncated")
		return text
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= t.maxTokens {
		return text
	}

	log.FromCtx(ctx).Debug().
		Int("tokens", len(tokens)).
		Int("limit", t.maxTokens).
		Msg("truncating embedding input")
	return enc.Decode(tokens[:t.maxTokens])
}
