package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/pkg/log"
	"github.com/sandevgo/mnemo/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the assistant",
	Long:  `Starts every enabled transport (HTTP API, Telegram, terminal chat) over one shared memory store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Str("version", core.AppVersion).Msg("starting mnemo")

		services := NewServices(ctx, stop)

		srv.StartServices(ctx, services)

		// Wait for a signal or for the terminal chat to end
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("mnemo has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
