package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/mnemo/internal/core"
)

type Previewer interface {
	Preview(ctx context.Context, text string) ([]core.ScoredMemory, error)
}

// RecallCommand shows what a message would recall, without strengthening
// anything.
type RecallCommand struct {
	previewer Previewer
	formatter *ResponseFormatter
}

func NewRecallCommand(previewer Previewer) *RecallCommand {
	return &RecallCommand{
		previewer: previewer,
		formatter: NewResponseFormatter(),
	}
}

func (c *RecallCommand) Name() string {
	return "recall"
}

func (c *RecallCommand) Description() string {
	return "Preview the memories a message would recall"
}

func (c *RecallCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Recall preview"),
			c.formatter.Usage("/recall <text>"),
		), nil
	}

	results, err := c.previewer.Preview(ctx, strings.Join(args, " "))
	if err != nil {
		return "", err
	}

	if len(results) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Recall preview"),
			"Nothing comes to mind.\n",
			c.formatter.Tip("memories surface when they are both similar and fresh enough"),
		), nil
	}

	items := make([]string, len(results))
	for i, r := range results {
		items[i] = fmt.Sprintf("#%d %s (relevance %.3f, probability %.3f, recalled %d times)",
			r.ID, r.Content, r.Relevance, r.RecallProbability, r.RecallCount)
	}
	return c.formatter.Combine(
		c.formatter.Info("Recall preview"),
		c.formatter.List(items),
	), nil
}
