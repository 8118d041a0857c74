package core

import "context"

// CommandPrefix marks chat input that is a command rather than a message.
const CommandPrefix = "/"

// CmdRouter is shared by every transport. Execute reports false when input is
// an ordinary message; the output of a handled command is Markdown.
type CmdRouter interface {
	Execute(ctx context.Context, input string) (string, bool)
	ListCommands() []Command
}

// Command is one slash command. Name is matched case-insensitively without
// the prefix; args are the whitespace separated words after it.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args []string) (string, error)
}
