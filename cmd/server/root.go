package main

import (
	"alcyxob/fitness-social/internal/config"
	"alcyxob/fitness-social/internal/logging"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fitness-server",
	Short: "Workout planner and social feed backend",
	Long: `fitness-server runs the workout planner API and its maintenance tasks.

Configuration is read from config.yaml in --config, then from environment
variables (server.address -> SERVER_ADDRESS). A .env file next to config.yaml
is loaded first when present.

  $ fitness-server serve
  $ fitness-server import-exercises exercises.json --gif-dir ./gifs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		logging.Setup(logging.LoggerSetupParams{
			LogFileName:   cfg.Log.File,
			LogToStdout:   cfg.Log.ToStdout,
			LogLevel:      cfg.Log.Level,
			LogFormatJSON: cfg.Log.JSON,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding config.yaml and .env")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
}
