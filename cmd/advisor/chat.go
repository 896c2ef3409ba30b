package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sandevgo/policyadvisor/pkg/log"
	"github.com/sandevgo/policyadvisor/pkg/srv"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive advisor conversation",
	Long:  `Restores the last conversation (or starts a new one) and opens the interactive chat loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Debug().Msg("starting policyadvisor")

		transport, services := NewServices(ctx)
		srv.StartServices(ctx, services)

		// The chat loop owns the foreground; leaving it (exit/^C/^D) tears
		// everything else down.
		runErr := transport.Start(ctx)
		cancel()

		srv.ShutdownServices(ctx, services)
		if err := transport.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to close chat transport")
		}

		logger.Debug().Msg("policyadvisor has been shut down")
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
