package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"septic_reminder_service/internal/domain/schedule"

	"github.com/spf13/cobra"
)

var checkDate string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one reminder pass now and print what was sent",
	Long: `check runs a single reminder pass against the stored customers, settings
and history, delivers whatever is due and prints the result as JSON.

--date evaluates the pass as if it were that calendar day.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		at, err := passTime(checkDate)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		result, err := rt.notifications.RunPass(ctx, at)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var digestDate string

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Print the weekly digest without sending it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		at, err := passTime(digestDate)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		d, err := rt.notifications.Digest(cmd.Context(), at)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), d.Summary())
		return err
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkDate, "date", "", "evaluate as of this date (YYYY-MM-DD)")
	digestCmd.Flags().StringVar(&digestDate, "date", "", "build the digest as of this date (YYYY-MM-DD)")
}

// passTime returns now, or noon of the given date in the configured zone.
func passTime(date string) (time.Time, error) {
	if date == "" {
		return now(), nil
	}
	d, err := schedule.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, cfg.Location), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
