package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var suggestJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the AI provider a question about the working table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentTable()
		if err != nil {
			return err
		}
		a, err := newAssistant(cfg)
		if err != nil {
			return err
		}
		ans, err := a.AnswerQuestion(commandContext(cmd), snap.Table, strings.Join(args, " "))
		if err != nil {
			return explain(err)
		}
		fmt.Println(ans)
		return nil
	},
}

var suggestColumnsCmd = &cobra.Command{
	Use:   "suggest-columns",
	Short: "Ask the AI provider for new derived columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentTable()
		if err != nil {
			return err
		}
		a, err := newAssistant(cfg)
		if err != nil {
			return err
		}
		list, err := a.SuggestColumns(commandContext(cmd), snap.Table)
		if err != nil {
			return explain(err)
		}
		if suggestJSON {
			return printJSON(list)
		}
		if len(list) == 0 {
			fmt.Println("(no suggestions)")
			return nil
		}
		for i, s := range list {
			fmt.Printf("%d. %s", i+1, s.Name)
			if s.Type != "" {
				fmt.Printf(" (%s)", s.Type)
			}
			fmt.Println()
			if s.Description != "" {
				fmt.Printf("   %s\n", s.Description)
			}
		}
		fmt.Println("\nAdd one with 'tabloom add-column --name <name> --formula \"...\"'")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd, suggestColumnsCmd)
	suggestColumnsCmd.Flags().BoolVar(&suggestJSON, "json", false, "print JSON")
}
