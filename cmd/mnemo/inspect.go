package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/ui"
	"github.com/sandevgo/mnemo/pkg/log"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored chat history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store core.Store) error {
			entries, err := store.LoadChatHistory(ctx, historyLimit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var memoriesCmd = &cobra.Command{
	Use:   "memories",
	Short: "Print the stored memories and their recall state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store core.Store) error {
			memories, err := store.LoadMemories(ctx)
			if err != nil {
				return err
			}
			printMemories(cmd.OutOrStdout(), memories)
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to print, 0 for all")
	rootCmd.AddCommand(historyCmd, memoriesCmd)
}

// withStore opens the configured store for a one-shot command.
func withStore(ctx context.Context, fn func(ctx context.Context, store core.Store) error) error {
	ctx, flushLog := setupLogger(ctx)
	defer flushLog()

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return err
	}

	store, err := initStore(ctx, config.NewAppConfig(ctx))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to close store")
		}
	}()

	return fn(ctx, store)
}

func printHistory(w io.Writer, entries []core.ChatEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, ui.DescStyle.Render("no chat history yet"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s\n%s\n\n",
			ui.RoleStyle(e.Role).Render(e.Role),
			ui.DescStyle.Render(formatTime(e.Timestamp)),
			e.Content)
	}
}

func printMemories(w io.Writer, memories []core.Memory) {
	if len(memories) == 0 {
		fmt.Fprintln(w, ui.DescStyle.Render("no memories yet"))
		return
	}
	for _, m := range memories {
		fmt.Fprintf(w, "%s %s\n  %s\n",
			ui.FlagStyle.Render(fmt.Sprintf("#%d", m.ID)),
			m.Content,
			ui.DescStyle.Render(fmt.Sprintf("created %s, recalled %d times, last %s, consolidation %.3f",
				formatTime(m.CreatedAt), m.RecallCount, formatTime(m.LastRecalled), m.ConsolidationFactor)))
	}
}

func formatTime(ts float64) string {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).Local().Format(time.DateTime)
}
