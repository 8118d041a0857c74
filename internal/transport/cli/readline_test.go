package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/stretchr/testify/assert"
)

type mockAssistant struct {
	reply *assistant.Reply
	err   error
	got   []string
}

func (m *mockAssistant) Respond(_ context.Context, text string) (*assistant.Reply, error) {
	m.got = append(m.got, text)
	return m.reply, m.err
}

type mockRouter struct{}

func (mockRouter) Execute(_ context.Context, input string) (string, bool) {
	if strings.HasPrefix(input, "/") {
		return "ran " + input, true
	}
	return "", false
}

func (mockRouter) ListCommands() []core.Command { return nil }

func TestReadLine_Handle(t *testing.T) {
	ctx := context.Background()
	reply := &assistant.Reply{
		Response: "You like tea.",
		MemoriesUsed: []core.ScoredMemory{
			{Memory: core.Memory{Content: "I like tea", RecallCount: 1}, Relevance: 0.95, RecallProbability: 0.9},
		},
	}

	tests := []struct {
		name      string
		input     string
		assistant *mockAssistant
		want      []string
		wantAsked int
	}{
		{
			name:      "command bypasses assistant",
			input:     "/help",
			assistant: &mockAssistant{reply: reply},
			want:      []string{"ran /help"},
		},
		{
			name:      "chat prints memories",
			input:     "what do I drink?",
			assistant: &mockAssistant{reply: reply},
			want:      []string{"You like tea.", "memories used:", "I like tea (relevance 0.950, p 0.900, recalled 1 times)"},
			wantAsked: 1,
		},
		{
			name:      "failure is printed",
			input:     "hi",
			assistant: &mockAssistant{err: errors.New("disk full")},
			want:      []string{"Error: disk full"},
			wantAsked: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ReadLine{assistant: tt.assistant, router: mockRouter{}}
			var buf bytes.Buffer

			r.handle(ctx, &buf, tt.input)

			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			assert.Len(t, tt.assistant.got, tt.wantAsked)
		})
	}
}

func TestPrintReply_NoMemories(t *testing.T) {
	var buf bytes.Buffer
	PrintReply(&buf, &assistant.Reply{Response: "hello"})

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "memories used")
}
