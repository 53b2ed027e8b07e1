package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the AI model catalog and pricing",
	Example: `  tabloom models show
  tabloom models show --provider gemini --json
  tabloom models sync --file ./models.json`,
}

var (
	modelsProvider string
	modelsJSON     bool
)

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		var list []ai.ModelInfo
		for _, m := range ai.Catalog() {
			if modelsProvider == "" || m.Provider == modelsProvider {
				list = append(list, m)
			}
		}
		if modelsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		if len(list) == 0 {
			fmt.Println("(no models)")
			return nil
		}
		for _, m := range list {
			fmt.Printf("%-11s %-30s ctx=%-8d in=$%.5f/1K out=$%.5f/1K\n", m.Provider, m.Name, m.ContextTokens, m.InputPerK, m.OutputPerK)
		}
		return nil
	},
}

var modelsSyncPath string

var modelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge model catalog/pricing from a JSON file and remember it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if modelsSyncPath == "" {
			return fmt.Errorf("--file is required")
		}
		m, err := ai.LoadCatalogFromJSON(modelsSyncPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		ai.MergeCatalog(m)
		c, err := requireConfig()
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(modelsSyncPath)
		if err != nil {
			return err
		}
		c.ModelsFile = abs
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Merged %d models; catalog file saved to config\n", len(m))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsSyncCmd)
	modelsShowCmd.Flags().StringVar(&modelsProvider, "provider", "", "only show models of this provider")
	modelsShowCmd.Flags().BoolVar(&modelsJSON, "json", false, "print JSON")
	modelsSyncCmd.Flags().StringVar(&modelsSyncPath, "file", "", "path to JSON catalog file")
}
