package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/mnemo/pkg/log"
	"github.com/sandevgo/mnemo/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Mnemo assistant",
	Long:  `Connects to the model backend, opens the configured transports and serves conversations until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting mnemo")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("mnemo has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
