package command

import (
	"github.com/sandevgo/mnemo/internal/core"
)

type Assistant interface {
	MemorySource
	Previewer
}

// NewRouter wires the built-in commands.
func NewRouter(assistant Assistant, cache CacheStatser) *Router {
	r := New([]core.Command{
		NewStatsCommand(assistant, cache),
		NewRecallCommand(assistant),
	})
	help := NewHelpCommand(r.ListCommands)
	r.commands[help.Name()] = help
	return r
}
