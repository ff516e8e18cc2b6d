package main

import (
	"context"
	"fmt"
	"os"

	"salesdash/server/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// debug overrides LOG_LEVEL for every command
	debug bool

	rootCmd = &cobra.Command{
		Use:           "salesdash",
		Short:         "Okinawa property sales dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(statsCommand())
	rootCmd.AddCommand(areasCommand())
	rootCmd.AddCommand(exportCommand())
	rootCmd.AddCommand(migrateCommand())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment, then builds the process logger.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	if debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	return cfg, logger, nil
}
