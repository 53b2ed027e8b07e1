package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/transform"
)

var (
	trRules     []string
	trRulesFile string
	trList      bool
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Apply column transformation rules to the working table",
	Example: `  tabloom transform --rule name:trim --rule name:titleCase
  tabloom transform --rule phone:formatPhoneNumber --rule price:roundNumber:2
  tabloom transform --rules rules.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if trList {
			for _, op := range transform.Operations() {
				fmt.Printf("%-20s %s\n", op, op.Label())
			}
			return nil
		}
		rules, err := collectRules(trRules, trRulesFile)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			return apperr.Validation("rule", "no rules given (use --rule col:op[:arg] or --rules file)")
		}
		names := make([]string, len(rules))
		for i, r := range rules {
			names[i] = r.Column + ":" + string(r.Operation)
		}
		_, err = applyStep("transform "+strings.Join(names, ","), func(t *table.Table) (*table.Table, error) {
			return transform.Apply(t, rules), nil
		})
		return err
	},
}

// collectRules validates every rule before any is applied.
func collectRules(specs []string, file string) ([]transform.Rule, error) {
	var rules []transform.Rule
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		if err := yaml.Unmarshal(b, &rules); err != nil {
			return nil, apperr.Parse("rules", err)
		}
	}
	for _, s := range specs {
		r, err := transform.ParseRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := transform.ValidateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.Flags().StringArrayVarP(&trRules, "rule", "r", nil, "rule as column:operation[:argument] (repeatable, applied in order)")
	transformCmd.Flags().StringVar(&trRulesFile, "rules", "", "YAML file with a list of {column, operation, argument}")
	transformCmd.Flags().BoolVar(&trList, "list", false, "list available operations")
}
