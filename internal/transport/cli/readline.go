package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/sandevgo/mnemo/internal/service/ui"
	"github.com/sandevgo/mnemo/pkg/log"
)

type Assistant interface {
	Respond(ctx context.Context, text string) (*assistant.Reply, error)
}

type ReadLine struct {
	assistant Assistant
	router    core.CmdRouter
	rl        *readline.Instance
	// stop ends the application once the user leaves the chat
	stop context.CancelFunc
}

func NewReadLine(assistant Assistant, router core.CmdRouter, historyFile string, stop context.CancelFunc) (*ReadLine, error) {
	if err := os.MkdirAll(filepath.Dir(historyFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		assistant: assistant,
		router:    router,
		rl:        rl,
		stop:      stop,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	if r.stop != nil {
		defer r.stop()
	}
	ctx = log.WithComponent(ctx, "cli")
	fmt.Fprintln(r.rl.Stdout(), "Chat started. Type /help for commands, 'exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		r.handle(ctx, r.rl.Stdout(), line)
	}
}

func (r *ReadLine) handle(ctx context.Context, w io.Writer, line string) {
	if out, handled := r.router.Execute(ctx, line); handled {
		fmt.Fprintln(w, out)
		return
	}

	reply, err := r.assistant.Respond(ctx, line)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("chat turn failed")
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	PrintReply(w, reply)
}

// PrintReply writes the response and the memories used to w.
func PrintReply(w io.Writer, reply *assistant.Reply) {
	fmt.Fprintf(w, "%s %s\n", ui.AssistantStyle.Render("mnemo"), reply.Response)
	if len(reply.MemoriesUsed) == 0 {
		return
	}

	fmt.Fprintln(w, ui.DescStyle.Render("memories used:"))
	for _, m := range reply.MemoriesUsed {
		fmt.Fprintln(w, ui.DescStyle.Render(fmt.Sprintf("  - %s (relevance %.3f, p %.3f, recalled %d times)",
			m.Content, m.Relevance, m.RecallProbability, m.RecallCount)))
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
