// Package assistant runs one chat turn: remember the message, recall related
// memories, strengthen them and ask the completion model for a reply.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/recall"
	"github.com/sandevgo/mnemo/pkg/log"
)

// Embedder never fails; a degraded lookup yields a zero vector.
type Embedder interface {
	Embed(ctx context.Context, text string) []float64
}

type Options struct {
	Recall        recall.Options
	Consolidator  recall.Consolidator
	HistoryWindow int
	Generate      core.GenerateOptions
	// GenerateTimeout bounds the completion call, 0 leaves it to ctx.
	GenerateTimeout time.Duration
	SystemPrompt    string
}

func DefaultOptions() Options {
	return Options{
		Recall:        recall.DefaultOptions(),
		HistoryWindow: 5,
		Generate:      core.GenerateOptions{Temperature: 0.7, MaxTokens: 1000},
		SystemPrompt:  SystemPrompt,
	}
}

type Reply struct {
	Response     string              `json:"response"`
	MemoriesUsed []core.ScoredMemory `json:"memories_used"`
}

type Service struct {
	embedder  Embedder
	store     core.Store
	completer core.Completer
	opts      Options
	now       func() time.Time

	// memory phase of a turn: load, append, score, consolidate
	turnMu sync.Mutex
}

func NewService(embedder Embedder, store core.Store, completer core.Completer, opts Options) *Service {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = SystemPrompt
	}
	return &Service{
		embedder:  embedder,
		store:     store,
		completer: completer,
		opts:      opts,
		now:       time.Now,
	}
}

// Respond handles one user message. Provider failures degrade the reply;
// only store failures and an empty message are returned as errors.
func (s *Service) Respond(ctx context.Context, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyMessage
	}
	logger := log.FromCtx(ctx)

	vector := s.embedder.Embed(ctx, text)

	recalled, history, ts, err := s.remember(ctx, text, vector)
	if err != nil {
		return nil, err
	}

	messages := BuildMessages(s.opts.SystemPrompt, recalled, history, text)
	response := s.generate(ctx, messages)

	ids := make([]int64, len(recalled))
	for i, m := range recalled {
		ids[i] = m.ID
	}
	err = s.store.AppendChatMessage(ctx, core.ChatEntry{
		Role:         core.RoleAssistant,
		Content:      response,
		Timestamp:    ts,
		MemoriesUsed: ids,
	})
	if err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}

	logger.Info().
		Int("memories_used", len(recalled)).
		Int("response_len", len(response)).
		Msg("turn completed")

	if recalled == nil {
		recalled = []core.ScoredMemory{}
	}
	return &Reply{Response: response, MemoriesUsed: recalled}, nil
}

func (s *Service) remember(ctx context.Context, text string, vector []float64) ([]core.ScoredMemory, []core.ChatEntry, float64, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	memories, err := s.store.LoadMemories(ctx)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load memories: %w", err)
	}
	history, err := s.store.LoadChatHistory(ctx, s.opts.HistoryWindow)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load chat history: %w", err)
	}
	if s.opts.HistoryWindow <= 0 {
		history = nil
	}

	ts := core.Timestamp(s.now())

	err = s.store.AppendChatMessage(ctx, core.ChatEntry{Role: core.RoleUser, Content: text, Timestamp: ts})
	if err != nil {
		return nil, nil, 0, fmt.Errorf("store user message: %w", err)
	}

	stored, err := s.store.AppendMemory(ctx, core.NewMemory(text, vector, ts))
	if err != nil {
		return nil, nil, 0, fmt.Errorf("store memory: %w", err)
	}
	log.FromCtx(ctx).Debug().Int64("id", stored.ID).Msg("memory stored")

	recalled := s.score(ctx, vector, memories, ts)

	for _, m := range recalled {
		if _, err := s.store.UpdateMemory(ctx, m.ID, s.opts.Consolidator.Recall(ts)); err != nil {
			return nil, nil, 0, fmt.Errorf("consolidate memory %d: %w", m.ID, err)
		}
	}

	return recalled, history, ts, nil
}

func (s *Service) score(ctx context.Context, vector []float64, memories []core.Memory, now float64) []core.ScoredMemory {
	logger := log.FromCtx(ctx)

	opts := s.opts.Recall
	opts.Now = now
	out := recall.FindRelevant(vector, memories, opts)

	for _, sk := range out.Skipped {
		logger.Warn().Err(sk.Err).Int64("id", sk.ID).Msg("skipping malformed memory")
	}
	if out.Degenerate > 0 {
		logger.Debug().
			Int("count", out.Degenerate).
			Err(core.ErrDegenerateVector).
			Msg("memories excluded for zero magnitude")
	}
	logger.Debug().
		Int("candidates", len(memories)).
		Int("recalled", len(out.Results)).
		Msg("recall scored")

	return out.Results
}

func (s *Service) generate(ctx context.Context, messages []core.Message) string {
	if s.opts.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.GenerateTimeout)
		defer cancel()
	}

	response, err := s.completer.Generate(ctx, messages, s.opts.Generate)
	if err != nil {
		log.FromCtx(ctx).Error().
			Err(err).
			Bool("transient", core.IsTransient(err)).
			Msg("generation failed, sending fallback response")
		return FallbackResponse
	}
	return response
}

// Preview scores text against the stored memories without storing anything
// or strengthening the matches.
func (s *Service) Preview(ctx context.Context, text string) ([]core.ScoredMemory, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyMessage
	}

	vector := s.embedder.Embed(ctx, text)
	memories, err := s.store.LoadMemories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	return s.score(ctx, vector, memories, core.Timestamp(s.now())), nil
}

// Memories returns every stored memory.
func (s *Service) Memories(ctx context.Context) ([]core.Memory, error) {
	return s.store.LoadMemories(ctx)
}

// History returns the last limit chat entries, all of them for limit <= 0.
func (s *Service) History(ctx context.Context, limit int) ([]core.ChatEntry, error) {
	return s.store.LoadChatHistory(ctx, limit)
}
