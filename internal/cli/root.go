package cli

import (
	"os"

	"github.com/spf13/cobra"

	"kidlearn-service/internal/config"
)

const serviceName = "kidlearn-service"

var (
	port       string
	configPath string
	logLevel   string
)

// Execute runs the CLI. A .env file in the working directory is loaded first so it
// can supply flag defaults.
func Execute() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "kidlearn",
		Short:        "Quiz engine and hosted game session service for young learners",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envOr("PORT", ""), "port to listen on (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "config/config.yaml"), "path to YAML config")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", ""), "debug, info, warn or error")
	cmd.AddCommand(NewStartCmd(&configPath, &port, &logLevel))
	cmd.AddCommand(NewMigrateCmd(&configPath, &logLevel))
	cmd.AddCommand(NewSeedCmd(&configPath, &logLevel))
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
