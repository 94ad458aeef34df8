package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hr-assistant/internal/prompts"
)

var promptBindings []string

var promptsCmd = &cobra.Command{
	Use:   "prompts [key]",
	Short: "List the prompt templates, or print one rendered with --set bindings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPrompts,
}

func init() {
	promptsCmd.Flags().StringArrayVar(&promptBindings, "set", nil, "Placeholder binding name=value; repeatable")
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(cmd *cobra.Command, args []string) error {
	registry, err := loadPrompts()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		for _, key := range registry.Keys() {
			placeholders := prompts.Placeholders(registry.MustGet(key))
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", key, strings.Join(placeholders, ", "))
		}
		return nil
	}

	bindings, err := parseBindings(promptBindings)
	if err != nil {
		return err
	}
	rendered, err := registry.Render(args[0], bindings)
	if err != nil {
		return err
	}
	return writeOutput(cmd, "", rendered)
}

// parseBindings turns name=value pairs into a binding map.
func parseBindings(pairs []string) (map[string]string, error) {
	bindings := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid binding %q, expected name=value", pair)
		}
		bindings[strings.TrimSpace(name)] = value
	}
	return bindings, nil
}
