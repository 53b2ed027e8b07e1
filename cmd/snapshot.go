package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var snapHead int

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect or clear the working slot",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the working table summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentTable()
		if err != nil {
			return err
		}
		t := snap.Table
		fmt.Printf("Snapshot: %s\n", snap.ID)
		fmt.Printf("Source: %s\n", snap.Source)
		fmt.Printf("Saved: %s\n", snap.SavedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("Rows: %d\n", t.Len())
		fmt.Printf("Columns: %s\n", strings.Join(t.Columns, ", "))
		if len(snap.Steps) > 0 {
			fmt.Println("Steps:")
			for i, s := range snap.Steps {
				fmt.Printf("  %d. %s\n", i+1, s)
			}
		}
		if snapHead > 0 && t.Len() > 0 {
			fmt.Println()
			for _, r := range t.Head(snapHead).Rows {
				vals := make([]string, len(t.Columns))
				for i, c := range t.Columns {
					vals[i] = r.Get(c).String()
				}
				fmt.Println(strings.Join(vals, " | "))
			}
		}
		return nil
	},
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the working slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.Store.Clear(); err != nil {
			return err
		}
		fmt.Printf("✓ Cleared %s\n", c.SnapshotPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotShowCmd, snapshotClearCmd)
	snapshotShowCmd.Flags().IntVar(&snapHead, "head", 5, "number of rows to print")
}
