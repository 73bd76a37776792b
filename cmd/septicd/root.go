package main

import (
	"fmt"
	"time"

	"septic_reminder_service/internal/infra/config"
	"septic_reminder_service/internal/infra/logger"

	"github.com/spf13/cobra"
)

// cfg is loaded once for every command.
var cfg *config.AppConfig

var rootCmd = &cobra.Command{
	Use:   "septicd",
	Short: "Septic service customer tracking and reminders",
	Long: `septicd tracks septic service customers, works out when each tank is
next due and sends customer reminders, business alerts and a weekly digest.

Examples:
  septicd serve
  septicd check --date 2026-03-02
  septicd import customers.csv --dry-run
  septicd template > customers.csv`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "template" {
			return nil
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("could not load application configuration: %w", err)
		}
		logger.Init(cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, checkCmd, digestCmd, importCmd, templateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// now returns the current time in the configured zone.
func now() time.Time {
	return time.Now().In(cfg.Location)
}
