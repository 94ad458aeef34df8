package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hr-assistant/internal/fetch"
	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/types"
)

var (
	jdJobFile       string
	jdFields        types.JobFields
	jdInput         string
	jdFocusFile     string
	jdFocusText     string
	jdURL           string
	jdOutputFile    string
	structureStrict bool
)

var generateJDCmd = &cobra.Command{
	Use:   "generate-jd",
	Short: "Draft a job description from HR fields",
	Long:  "Draft a job description from a job title, responsibilities and must-have, preferred and bonus requirements. Fields come from --job (JSON) or individual flags.",
	RunE:  runGenerateJD,
}

var focusPointsCmd = &cobra.Command{
	Use:   "focus-points",
	Short: "Extract the one or two most important points of a job description",
	RunE:  runFocusPoints,
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Turn a job description into weighted requirements JSON",
	Long:  "Turn a job description and its focus points into a JSON rubric of requirements whose weights sum to 1.0.",
	RunE:  runStructure,
}

var polishCmd = &cobra.Command{
	Use:   "polish",
	Short: "Rewrite raw job description text as Markdown",
	RunE:  runPolish,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the key fields of a job description from text or a job posting URL",
	RunE:  runExtract,
}

func init() {
	generateJDCmd.Flags().StringVar(&jdJobFile, "job", "", "Path to a JSON file with jobName, jobDescription, mainPoint, extraPoint and bonusPoint")
	generateJDCmd.Flags().StringVar(&jdFields.JobName, "name", "", "Job title")
	generateJDCmd.Flags().StringVar(&jdFields.JobDescription, "description", "", "Responsibilities")
	generateJDCmd.Flags().StringVar(&jdFields.MainPoint, "main", "", "Must-have requirements")
	generateJDCmd.Flags().StringVar(&jdFields.ExtraPoint, "extra", "", "Preferred requirements")
	generateJDCmd.Flags().StringVar(&jdFields.BonusPoint, "bonus", "", "Bonus points")

	focusPointsCmd.Flags().StringVarP(&jdInput, "jd", "i", "", "Path to the job description (default: standard input)")

	structureCmd.Flags().StringVarP(&jdInput, "jd", "i", "", "Path to the job description (default: standard input)")
	structureCmd.Flags().StringVar(&jdFocusFile, "focus", "", "Path to the focus points")
	structureCmd.Flags().StringVar(&jdFocusText, "focus-text", "", "Focus points given inline")
	structureCmd.Flags().BoolVar(&structureStrict, "strict", false, "Fail when the weights do not sum to 1.0")

	polishCmd.Flags().StringVarP(&jdInput, "in", "i", "", "Path to the raw job description (default: standard input)")

	extractCmd.Flags().StringVarP(&jdInput, "in", "i", "", "Path to the job description text (default: standard input)")
	extractCmd.Flags().StringVar(&jdURL, "url", "", "URL of a job posting to fetch instead of reading text")

	for _, cmd := range []*cobra.Command{generateJDCmd, focusPointsCmd, structureCmd, polishCmd, extractCmd} {
		cmd.Flags().StringVarP(&jdOutputFile, "out", "o", "", "Path to the output file (default: standard output)")
		rootCmd.AddCommand(cmd)
	}
}

func runGenerateJD(cmd *cobra.Command, _ []string) error {
	fields := jdFields
	if jdJobFile != "" {
		if err := readJSON(cmd, jdJobFile, &fields); err != nil {
			return err
		}
	}

	o, closeFn, err := openOrchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	jd, err := o.GenerateJD(cmd.Context(), fields)
	if err != nil {
		return err
	}
	return writeOutput(cmd, jdOutputFile, jd)
}

func runFocusPoints(cmd *cobra.Command, _ []string) error {
	jd, err := readInput(cmd, jdInput)
	if err != nil {
		return err
	}

	o, closeFn, err := openOrchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	points, err := o.ExtractFocusPoints(cmd.Context(), jd)
	if err != nil {
		return err
	}
	return writeOutput(cmd, jdOutputFile, points)
}

func runStructure(cmd *cobra.Command, _ []string) error {
	jd, err := readInput(cmd, jdInput)
	if err != nil {
		return err
	}
	focus := jdFocusText
	if jdFocusFile != "" {
		if focus, err = readInput(cmd, jdFocusFile); err != nil {
			return err
		}
	}

	o, closeFn, err := openOrchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	reqs, err := o.StructureRequirements(cmd.Context(), jd, strings.TrimSpace(focus))
	if err != nil {
		return err
	}
	if warning := parsing.CheckWeights(reqs, appConfig.WeightTolerance); warning != nil {
		if structureStrict {
			return warning
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", warning)
	}
	if p := verbosePrinter(cmd); p != nil {
		p.PrintRequirements(reqs)
	}
	return writeOutput(cmd, jdOutputFile, reqs)
}

func runPolish(cmd *cobra.Command, _ []string) error {
	text, err := readInput(cmd, jdInput)
	if err != nil {
		return err
	}

	o, closeFn, err := openOrchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	markdown, err := o.PolishJD(cmd.Context(), text)
	if err != nil {
		return err
	}
	return writeOutput(cmd, jdOutputFile, markdown)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	var text string
	var err error
	if jdURL != "" {
		text, err = fetch.JobPage(cmd.Context(), jdURL, fetchOptions())
	} else {
		text, err = readInput(cmd, jdInput)
	}
	if err != nil {
		return err
	}

	o, closeFn, err := openOrchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	fields, err := o.ExtractJDFields(cmd.Context(), text)
	if err != nil {
		return err
	}
	return writeOutput(cmd, jdOutputFile, fields)
}
