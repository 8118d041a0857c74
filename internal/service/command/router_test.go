package command

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/embedding"
	"github.com/stretchr/testify/assert"
)

type mockAssistant struct {
	memories  []core.Memory
	previews  []core.ScoredMemory
	err       error
	lastQuery string
	previewed int
}

func (m *mockAssistant) Memories(ctx context.Context) ([]core.Memory, error) {
	return m.memories, m.err
}

func (m *mockAssistant) Preview(ctx context.Context, text string) ([]core.ScoredMemory, error) {
	m.previewed++
	m.lastQuery = text
	return m.previews, m.err
}

type mockCache struct{ stats embedding.Stats }

func (m mockCache) Stats() embedding.Stats { return m.stats }

func TestRouter_Execute(t *testing.T) {
	assistant := &mockAssistant{
		memories: []core.Memory{
			{ID: 0, Content: "tea", RecallCount: 2, ConsolidationFactor: 2.5},
			{ID: 1, Content: "oslo", ConsolidationFactor: 1},
		},
		previews: []core.ScoredMemory{
			{Memory: core.Memory{ID: 0, Content: "tea", RecallCount: 2}, Relevance: 0.93, RecallProbability: 0.9},
		},
	}
	router := NewRouter(assistant, mockCache{stats: embedding.Stats{Size: 3, Capacity: 1000, Hits: 7, Misses: 3}})
	ctx := context.Background()

	tests := []struct {
		name         string
		input        string
		wantHandled  bool
		wantContains []string
	}{
		{name: "plain text", input: "hello there", wantHandled: false},
		{name: "unknown", input: "/nope", wantHandled: true, wantContains: []string{"Unknown command: /nope"}},
		{
			name:         "stats",
			input:        "/stats",
			wantHandled:  true,
			wantContains: []string{"`2`", "`1`", "`1.750`", "`2.500`", "`3 / 1000`", "`7`"},
		},
		{
			name:         "recall",
			input:        "  /recall do I like tea  ",
			wantHandled:  true,
			wantContains: []string{"#0 tea", "relevance 0.930", "recalled 2 times"},
		},
		{name: "recall usage", input: "/recall", wantHandled: true, wantContains: []string{"/recall <text>"}},
		{name: "prefix mid-sentence", input: "what does /stats show?", wantHandled: false},
		{name: "case insensitive", input: "/HELP", wantHandled: true, wantContains: []string{"/help", "/recall", "/stats"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, handled := router.Execute(ctx, tt.input)
			assert.Equal(t, tt.wantHandled, handled)
			for _, want := range tt.wantContains {
				assert.Contains(t, out, want)
			}
		})
	}

	assert.Equal(t, "do I like tea", assistant.lastQuery)
}

func TestRouter_CommandError(t *testing.T) {
	router := NewRouter(&mockAssistant{err: errors.New("db locked")}, nil)

	out, handled := router.Execute(context.Background(), "/stats")
	assert.True(t, handled)
	assert.Contains(t, out, "db locked")
}

func TestRouter_EmptyRecall(t *testing.T) {
	router := NewRouter(&mockAssistant{}, nil)

	out, handled := router.Execute(context.Background(), "/recall anything")
	assert.True(t, handled)
	assert.Contains(t, out, "Nothing comes to mind")
}

func TestRouter_ListCommandsSorted(t *testing.T) {
	router := NewRouter(&mockAssistant{}, nil)

	var names []string
	for _, c := range router.ListCommands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"help", "recall", "stats"}, names)
}
