package main

import (
	"fmt"
	"os"

	"septic_reminder_service/internal/infra/csvimport"

	"github.com/spf13/cobra"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import customers from a CSV file",
	Long: `import reads a customer spreadsheet export and stores every row in one batch.
A file with a missing required column or an empty required field is rejected
as a whole. Use --dry-run to see what would be imported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not open %s: %w", args[0], err)
		}
		defer f.Close()

		rt, err := newRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		report, err := rt.customers.ImportCSV(cmd.Context(), f, importDryRun)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range report.Warnings {
			fmt.Fprintln(out, "warning:", w)
		}
		_, err = fmt.Fprintln(out, report.Status)
		return err
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print an example customer CSV file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), csvimport.Template())
		return err
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and validate without storing")
}
