package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/faxhealth/carebook/internal/tabular"
)

// CreateExportCommand creates the export command.
func (a *App) CreateExportCommand() *cobra.Command {
	var (
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-emit a clean dataset as a spreadsheet",
		Long: `Export reads a previously cleaned dataset and writes it as a styled
XLSX workbook for the teams that review establishments in a spreadsheet.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			records, err := tabular.ReadRecords(input)
			if err != nil {
				return err
			}
			if err := tabular.ExportRecordsXLSX(output, records); err != nil {
				return err
			}
			a.logger.Info().
				Str("input", input).
				Str("output", output).
				Int("records", len(records)).
				Msg("Exported clean dataset")
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "clean CSV file to export (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "XLSX file to write (required)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("carebook %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:     %s\n", a.commit)
				cmd.Printf("  built:      %s\n", a.date)
				cmd.Printf("  built by:   %s\n", a.builtBy)
				cmd.Printf("  go version: %s\n", runtime.Version())
				cmd.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
