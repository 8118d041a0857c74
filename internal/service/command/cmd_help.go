package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/mnemo/internal/core"
)

type HelpCommand struct {
	list      func() []core.Command
	formatter *ResponseFormatter
}

// NewHelpCommand takes a lister so help can describe the router it is
// registered in.
func NewHelpCommand(list func() []core.Command) *HelpCommand {
	return &HelpCommand{list: list, formatter: NewResponseFormatter()}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, args []string) (string, error) {
	cmds := c.list()
	items := make([]string, len(cmds))
	for i, cmd := range cmds {
		items[i] = fmt.Sprintf("/%s · %s", cmd.Name(), cmd.Description())
	}
	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(items),
		c.formatter.Tip("anything that is not a command is sent to the assistant"),
	), nil
}
