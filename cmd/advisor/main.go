// Package main provides the keiba advisor command line tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/keiba-advisor/internal/config"
	"github.com/yourusername/keiba-advisor/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	verbose    bool
	cfg        *config.Config
	appLog     *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:     "advisor",
	Short:   "Horse race wagering recommendations",
	Long:    `Turns win-probability predictions and odds into bet candidates and a stake plan.`,
	Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.LoadSecretsFromAWS(cmd.Context(), cfg); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		appLog = logger.NewLoggerWithOutput(level, cfg.App.Environment, os.Stderr)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newKellyCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newHistoryCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
