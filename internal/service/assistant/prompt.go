package assistant

import (
	"fmt"
	"strings"

	"github.com/sandevgo/mnemo/internal/core"
)

const (
	SystemPrompt = "You are an intelligent assistant with human-like memory capabilities. " +
		"You can recall past conversations and experiences, with memories becoming stronger through repeated recall. " +
		"When using memories in your responses, try to naturally weave them into the conversation rather than " +
		"just listing them."

	// FallbackResponse is sent when no completion could be generated.
	FallbackResponse = "I apologize, but I'm having trouble generating a response right now."
)

// BuildMessages assembles the completion request: the system prompt with the
// recalled memories appended, the recent history, then the user's message.
func BuildMessages(system string, recalled []core.ScoredMemory, history []core.ChatEntry, userText string) []core.Message {
	var sb strings.Builder
	sb.WriteString(system)
	if len(recalled) > 0 {
		sb.WriteString("\nRelevant memories:")
		for _, m := range recalled {
			fmt.Fprintf(&sb, "\n- %s (Recalled %d times)", m.Content, m.RecallCount)
		}
	}

	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: sb.String()})
	for _, e := range history {
		messages = append(messages, core.Message{Role: e.Role, Content: e.Content})
	}
	return append(messages, core.Message{Role: core.RoleUser, Content: userText})
}
