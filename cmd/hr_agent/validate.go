package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/schemas"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

var validateRequirementsFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration, prompt templates and optionally a requirements file",
	Long: `Check that the configuration loads, that every workflow stage has its prompt
template in dependency order and, with --requirements, that a requirements JSON
file matches the schema and that its weights sum to 1.0.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateRequirementsFile, "requirements", "r", "", "Path to a requirements JSON file to check")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	registry, err := loadPrompts()
	if err != nil {
		return err
	}
	if err := workflow.ValidateOrder(workflow.Pipeline, registry); err != nil {
		return fmt.Errorf("workflow is invalid: %w", err)
	}
	llmCfg, err := appConfig.LLMClientConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration OK (provider %s, %d prompts, %d stages)\n", llmCfg.Provider, len(registry.Keys()), len(workflow.Pipeline))
	fmt.Fprintf(out, "Schemas: %s\n", strings.Join(schemas.Names(), ", "))

	if validateRequirementsFile == "" {
		return nil
	}

	// A file on disk is stored data, so it must match the schema as a whole
	// instead of being searched for a JSON block like an LLM answer.
	if validateRequirementsFile != "-" {
		if err := schemas.ValidateFile(schemas.Requirements, validateRequirementsFile); err != nil {
			return err
		}
	}

	content, err := readInput(cmd, validateRequirementsFile)
	if err != nil {
		return err
	}
	reqs, err := parsing.ParseRequirements(content)
	if err != nil {
		return err
	}
	if warning := parsing.CheckWeights(reqs, appConfig.WeightTolerance); warning != nil {
		return warning
	}
	fmt.Fprintf(out, "Requirements OK (%d requirements for %q)\n", len(reqs.Requirements), reqs.JobTitle)
	return nil
}
