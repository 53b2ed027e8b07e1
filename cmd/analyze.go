package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/forecast"
	"github.com/KaramelBytes/tabloom-cli/internal/insight"
	"github.com/KaramelBytes/tabloom-cli/internal/stats"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	statsJSON     bool
	insOutputPath string
	insAI         bool
	insJSON       bool
	insHeadRows   int
	fcJSON        bool
	chartsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-column statistics of the working table",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentTable()
		if err != nil {
			return err
		}
		st := stats.Compute(snap.Table)
		if statsJSON {
			return printJSON(st)
		}
		fmt.Printf("%-24s %7s %12s %12s %12s %12s %6s\n", "column", "count", "mean", "median", "min", "max", "nulls")
		for _, s := range st {
			fmt.Printf("%-24s %7d %12.4g %12.4g %12.4g %12.4g %6d\n", s.Column, s.Count, s.Mean, s.Median, s.Min, s.Max, s.NullCount)
		}
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Report data-quality insights, correlations and anomalies",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentTable()
		if err != nil {
			return err
		}
		t := snap.Table
		res := insight.NewAnalyzer(insight.Options{SampleRows: cfg.SampleRows}).Analyze(t)
		if insJSON {
			return printJSON(res)
		}
		rep := &insight.Report{
			Name:   filepath.Base(snap.Source),
			Result: res,
			Stats:  stats.Compute(t),
		}
		if insHeadRows > 0 {
			rep.Head = t.Head(insHeadRows)
		}
		if insAI {
			a, err := newAssistant(cfg)
			if err != nil {
				return err
			}
			text, err := a.GenerateInsightText(commandContext(cmd), t)
			if err != nil {
				// the local report is still useful without the AI text
				fmt.Printf("⚠ Warning: %v\n", explain(err))
			}
			rep.AIText = text
		}
		md := rep.Markdown()
		if insOutputPath != "" {
			if err := utils.SafeWriteFile(insOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote insights to %s\n", insOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast <column>",
	Short: "Project the next values of a numeric column with a linear fit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentTable()
		if err != nil {
			return err
		}
		col := args[0]
		if !snap.Table.HasColumn(col) {
			return apperr.Validation("column", fmt.Sprintf("unknown column %q", col))
		}
		preds, ok := forecast.Predict(snap.Table, col)
		if fcJSON {
			return printJSON(map[string]any{
				"column":      col,
				"series":      forecast.Series(snap.Table, col),
				"predictions": preds,
			})
		}
		if !ok {
			fmt.Printf("⚠ Warning: column '%s' needs at least 2 numeric values to forecast\n", col)
			return nil
		}
		fmt.Printf("Forecast for %s (next %d points):\n", col, forecast.Horizon)
		for i, p := range preds {
			fmt.Printf("  +%d: %.4f\n", i+1, p)
		}
		return nil
	},
}

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Recommend chart types for the working table",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentTable()
		if err != nil {
			return err
		}
		plan := insight.RecommendCharts(snap.Table)
		if chartsJSON {
			return printJSON(plan)
		}
		if len(plan.Charts) == 0 {
			fmt.Println("(no chart recommendations: no numeric or categorical columns)")
			return nil
		}
		fmt.Printf("Recommended charts: %v\n", plan.Charts)
		if plan.DefaultColumn != "" {
			fmt.Printf("Default column: %s\n", plan.DefaultColumn)
		}
		fmt.Printf("Numeric columns: %v\n", plan.NumericColumns)
		fmt.Printf("Categorical columns: %v\n", plan.CategoricalColumns)
		return nil
	},
}

func printJSON(v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func init() {
	rootCmd.AddCommand(statsCmd, insightsCmd, forecastCmd, chartsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON")
	insightsCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	insightsCmd.Flags().BoolVar(&insAI, "ai", false, "append free-text insights from the configured AI provider")
	insightsCmd.Flags().BoolVar(&insJSON, "json", false, "print the structured result as JSON")
	insightsCmd.Flags().IntVar(&insHeadRows, "head", 5, "number of sample rows to include (0 disables)")
	forecastCmd.Flags().BoolVar(&fcJSON, "json", false, "print series and predictions as JSON")
	chartsCmd.Flags().BoolVar(&chartsJSON, "json", false, "print JSON")
}
