package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/intake"
)

var loadCmd = &cobra.Command{
	Use:   "load <file|url>",
	Short: "Load a CSV, XLSX or JSON dataset into the working slot",
	Long: `Load a dataset from a .csv/.tsv, .xlsx or .json file, or a JSON array from an
http(s) URL. The upload counts against the account quota; when the quota is
exhausted nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		src := args[0]
		ctx := commandContext(cmd)
		t, err := intake.NewLoader(httpTimeout(cfg), log).Load(ctx, src)
		if err != nil {
			return err
		}
		res, err := s.Upload(ctx, t, src)
		if res.QuotaExceeded {
			fmt.Printf("⚠ Warning: upload limit reached for user '%s' (free plan allows %d)\n", s.UserID, cfg.FreeUploadLimit)
			fmt.Println("  Upgrade with 'tabloom account upgrade --order-id ... --payment-id ... --signature ...'")
			return nil
		}
		if res.Snapshot != nil {
			fmt.Printf("✓ Loaded %s: %d rows, %d columns\n", src, t.Len(), len(t.Columns))
		}
		if err != nil {
			if res.Snapshot != nil {
				fmt.Printf("⚠ Warning: %v\n", err)
				return nil
			}
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
