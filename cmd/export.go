package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/export"
	"github.com/KaramelBytes/tabloom-cli/internal/intake"
)

var (
	exFormat string
	exOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the working table as CSV, JSON or XLSX",
	Example: `  tabloom export --format csv
  tabloom export --format xlsx --output report.xlsx
  tabloom export --format json --output -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := export.ParseFormat(exFormat)
		if err != nil {
			return err
		}
		snap, err := currentTable()
		if err != nil {
			return err
		}
		if exOutput == "-" {
			return export.Export(os.Stdout, snap.Table, f)
		}
		out := exOutput
		if out == "" {
			base := snap.Source
			if intake.IsURL(base) {
				base = ""
			}
			out = export.Filename(base, f)
		}
		if err := export.WriteFile(out, snap.Table, f); err != nil {
			return err
		}
		fmt.Printf("✓ Exported %d rows to %s (%s)\n", snap.Table.Len(), out, export.MIMEType(f))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exFormat, "format", "f", "csv", "export format: csv | json | xlsx")
	exportCmd.Flags().StringVarP(&exOutput, "output", "o", "", "output path (default <source>_export.<format>, '-' for stdout)")
}
