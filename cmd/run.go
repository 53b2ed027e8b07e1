package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/export"
	"github.com/KaramelBytes/tabloom-cli/internal/intake"
	"github.com/KaramelBytes/tabloom-cli/internal/pipeline"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

var (
	runOutDir string
	runFormat string
	runQuiet  bool
)

var pipelineRunCmd = &cobra.Command{
	Use:   "run <pipeline.yaml> [files...]",
	Short: "Replay a pipeline on the working table or on a batch of files",
	Long: `Replay an ordered pipeline of steps (transform, add_column, remove_column,
fill_null, dedupe). Without files the working table is rewritten. With files
(globs allowed) each one is loaded, processed and exported to --out-dir; every
file counts as an upload.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pipeline.Load(args[0])
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return runOnSnapshot(p)
		}
		return runBatch(cmd, p, args[1:])
	},
}

func runOnSnapshot(p *pipeline.Pipeline) error {
	var run *pipeline.Run
	name := "pipeline"
	if p.Name != "" {
		name += " " + p.Name
	}
	_, err := applyStep(name, func(t *table.Table) (*table.Table, error) {
		r, err := pipeline.Execute(t, p.Steps)
		if err != nil {
			return nil, err
		}
		run = r
		return r.Table, nil
	})
	if err != nil {
		return err
	}
	printRun(run)
	return nil
}

func runBatch(cmd *cobra.Command, p *pipeline.Pipeline, patterns []string) error {
	f, err := export.ParseFormat(runFormat)
	if err != nil {
		return err
	}
	files, err := expandInputs(patterns)
	if err != nil {
		return err
	}
	c, err := requireConfig()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	gate := accountStore(c)
	loader := intake.NewLoader(httpTimeout(c), log)
	total := len(files)
	for i, path := range files {
		if !runQuiet {
			fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
		}
		ok, err := gate.CanUpload(ctx, c.UserID)
		if err != nil {
			return apperr.External("quota service", err)
		}
		if !ok {
			fmt.Printf("⚠ Warning: upload limit reached after %d of %d files\n", i, total)
			return nil
		}
		t, err := loader.Load(ctx, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		run, err := pipeline.Execute(t, p.Steps)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := gate.RecordUpload(ctx, c.UserID); err != nil {
			return apperr.External("quota service", err)
		}
		out := uniquePath(filepath.Join(runOutDir, export.Filename(path, f)))
		if err := export.WriteFile(out, run.Table, f); err != nil {
			return err
		}
		if !runQuiet {
			printRun(run)
			fmt.Printf("✓ Wrote %s\n", out)
		}
	}
	return nil
}

// expandInputs resolves globs, keeps literal paths and URLs, and drops duplicates.
func expandInputs(patterns []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range patterns {
		var matches []string
		if intake.IsURL(arg) {
			matches = []string{arg}
		} else {
			matches, _ = filepath.Glob(arg)
			if len(matches) == 0 {
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			// globs like dir/* also match files no parser reads
			if !intake.IsURL(m) && len(matches) > 1 && !intake.Supported(m) {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// uniquePath appends __2, __3, ... before the extension until path is free.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s__%d%s", stem, idx, ext)
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			if !runQuiet {
				fmt.Printf("⚠ Detected existing output, writing to %s to avoid overwrite.\n", filepath.Base(cand))
			}
			return cand
		}
	}
}

func printRun(run *pipeline.Run) {
	if run == nil || runQuiet {
		return
	}
	for _, r := range run.Results {
		line := fmt.Sprintf("  %d. %s: %d rows, %d columns", r.Index, r.Label, r.Rows, r.Columns)
		if r.Removed > 0 {
			line += fmt.Sprintf(" (%d removed)", r.Removed)
		}
		fmt.Println(line)
	}
}

func init() {
	rootCmd.AddCommand(pipelineRunCmd)
	pipelineRunCmd.Flags().StringVar(&runOutDir, "out-dir", ".", "batch mode: directory for exported files")
	pipelineRunCmd.Flags().StringVarP(&runFormat, "format", "f", "csv", "batch mode: export format csv | json | xlsx")
	pipelineRunCmd.Flags().BoolVar(&runQuiet, "quiet", false, "suppress progress and non-essential output")
}
