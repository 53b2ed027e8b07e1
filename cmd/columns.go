package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/dedupe"
	"github.com/KaramelBytes/tabloom-cli/internal/formula"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/transform"
)

var (
	acName       string
	acFormula    string
	acValues     string
	acValuesFile string
)

var addColumnCmd = &cobra.Command{
	Use:   "add-column",
	Short: "Add a derived column from a formula or manual values",
	Example: `  tabloom add-column --name total --formula "{price} * {qty}"
  tabloom add-column --name label --values-file labels.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		values := acValues
		if acValuesFile != "" {
			if values != "" {
				return apperr.Validation("values", "use either --values or --values-file")
			}
			b, err := os.ReadFile(acValuesFile)
			if err != nil {
				return fmt.Errorf("read values: %w", err)
			}
			values = string(b)
		}
		_, err := applyStep("add-column "+acName, func(t *table.Table) (*table.Table, error) {
			return formula.AddColumn(t, acName, acFormula, values)
		})
		return err
	},
}

var removeColumnCmd = &cobra.Command{
	Use:   "remove-column <name>",
	Short: "Drop a column from every row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		_, err := applyStep("remove-column "+name, func(t *table.Table) (*table.Table, error) {
			if !t.HasColumn(name) {
				return nil, apperr.Validation("column", fmt.Sprintf("unknown column %q", name))
			}
			return transform.RemoveColumn(t, name), nil
		})
		return err
	},
}

var fillNullCmd = &cobra.Command{
	Use:   "fill-null <column> <value>",
	Short: "Replace blank values of a column (creating missing keys)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, val := args[0], args[1]
		_, err := applyStep("fill-null "+col, func(t *table.Table) (*table.Table, error) {
			return transform.FillNulls(t, col, val), nil
		})
		return err
	},
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove exact duplicate rows, keeping the first occurrence",
	RunE: func(cmd *cobra.Command, args []string) error {
		removed := 0
		_, err := applyStep("dedupe", func(t *table.Table) (*table.Table, error) {
			out, n := dedupe.Dedupe(t)
			removed = n
			return out, nil
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Removed %d duplicate rows\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addColumnCmd, removeColumnCmd, fillNullCmd, dedupeCmd)
	addColumnCmd.Flags().StringVarP(&acName, "name", "n", "", "new column name")
	addColumnCmd.Flags().StringVarP(&acFormula, "formula", "f", "", "arithmetic over {column} placeholders")
	addColumnCmd.Flags().StringVar(&acValues, "values", "", "newline-separated values, one per row")
	addColumnCmd.Flags().StringVar(&acValuesFile, "values-file", "", "file with one value per line")
}
