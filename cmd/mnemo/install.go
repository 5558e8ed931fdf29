package main

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/service/installer"
	"github.com/sandevgo/mnemo/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Run the interactive setup wizard",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		// The wizard saves the .env itself as its final step.
		_, err := installer.RunWizard()
		if err != nil {
			return err
		}

		runtimePath := config.GetRuntimePath()
		envPath := filepath.Join(runtimePath, ".env")
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! You can now run 'mnemo start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
