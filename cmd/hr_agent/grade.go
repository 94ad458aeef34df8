package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hr-assistant/internal/resume"
	"github.com/jonathan/hr-assistant/internal/types"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

var (
	gradeRequirementsFile string
	gradeResumeFiles      []string
	gradeResumeKey        string
	gradeConcurrency      int
	gradeOutputFile       string

	runJobFile    string
	runResumeFile string
	runProgress   bool
	runOutputFile string
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Score resumes against a weighted requirements rubric",
	Long: `Score one or more resumes (PDF, DOCX or text) against a requirements JSON rubric.
With several --resume flags the resumes are graded concurrently and a list of
evaluations is written, in input order.`,
	RunE: runGrade,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full workflow: JD, focus points, requirements and resume score",
	Long:  "Run the four workflow stages in order for one job and one resume. The first failing stage stops the run.",
	RunE:  runWorkflow,
}

func init() {
	gradeCmd.Flags().StringVarP(&gradeRequirementsFile, "requirements", "r", "", "Path to the requirements JSON (required)")
	gradeCmd.Flags().StringSliceVar(&gradeResumeFiles, "resume", nil, "Path to a resume file; repeat for batch grading")
	gradeCmd.Flags().StringVar(&gradeResumeKey, "resume-key", "", "Key of a resume in the configured resume store")
	gradeCmd.Flags().IntVar(&gradeConcurrency, "concurrency", 0, "Maximum concurrent grading calls (default from config)")
	gradeCmd.Flags().StringVarP(&gradeOutputFile, "out", "o", "", "Path to the output file (default: standard output)")
	_ = gradeCmd.MarkFlagRequired("requirements")

	runCmd.Flags().StringVar(&runJobFile, "job", "", "Path to the job fields JSON (required)")
	runCmd.Flags().StringVar(&runResumeFile, "resume", "", "Path to the resume file (required)")
	runCmd.Flags().BoolVar(&runProgress, "progress", false, "Print stage progress to standard error")
	runCmd.Flags().StringVarP(&runOutputFile, "out", "o", "", "Path to the output file (default: standard output)")
	_ = runCmd.MarkFlagRequired("job")
	_ = runCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(runCmd)
}

func runGrade(cmd *cobra.Command, _ []string) error {
	if len(gradeResumeFiles) == 0 && gradeResumeKey == "" {
		return fmt.Errorf("either --resume or --resume-key is required")
	}

	var reqs types.JobRequirements
	if err := readJSON(cmd, gradeRequirementsFile, &reqs); err != nil {
		return err
	}

	ctx := cmd.Context()
	candidates, err := loadCandidates(ctx)
	if err != nil {
		return err
	}

	o, closeFn, err := openOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if len(candidates) == 1 {
		eval, err := o.GradeResume(ctx, &reqs, candidates[0].Resume)
		if err != nil {
			return err
		}
		if p := verbosePrinter(cmd); p != nil {
			p.PrintEvaluation(eval)
		}
		return writeOutput(cmd, gradeOutputFile, eval)
	}

	limit := gradeConcurrency
	if limit <= 0 {
		limit = appConfig.BatchConcurrency
	}
	results, err := o.GradeBatch(ctx, &reqs, candidates, limit)
	if err != nil {
		return err
	}
	if p := verbosePrinter(cmd); p != nil {
		p.PrintBatch(results)
	}
	return writeOutput(cmd, gradeOutputFile, results)
}

// loadCandidates reads the resumes named by the grade flags.
func loadCandidates(ctx context.Context) ([]workflow.Candidate, error) {
	var candidates []workflow.Candidate
	for _, path := range gradeResumeFiles {
		text, err := readResumeFile(path)
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		candidates = append(candidates, workflow.Candidate{ID: id, Resume: text})
	}

	if gradeResumeKey != "" {
		if !appConfig.Resume.Enabled() {
			return nil, fmt.Errorf("--resume-key requires a configured resume store (resume_store.bucket)")
		}
		src, err := resume.NewS3Source(ctx, appConfig.Resume)
		if err != nil {
			return nil, fmt.Errorf("failed to open resume store: %w", err)
		}
		text, err := resume.LoadText(ctx, src, gradeResumeKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load resume %s: %w", gradeResumeKey, err)
		}
		candidates = append(candidates, workflow.Candidate{ID: gradeResumeKey, Resume: text})
	}
	return candidates, nil
}

func runWorkflow(cmd *cobra.Command, _ []string) error {
	var fields types.JobFields
	if err := readJSON(cmd, runJobFile, &fields); err != nil {
		return err
	}
	resumeText, err := readResumeFile(runResumeFile)
	if err != nil {
		return err
	}

	o, closeFn, err := openOrchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	opts := workflow.RunOptions{Fields: fields, Resume: resumeText}
	if runProgress {
		opts.OnProgress = func(event workflow.ProgressEvent) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s %s: %s\n", event.Index, event.Total, event.Stage, event.Status, event.Message)
		}
	}

	result, err := o.Run(cmd.Context(), opts)
	if p := verbosePrinter(cmd); p != nil {
		p.PrintRun(result)
	}
	if err != nil {
		return err
	}
	return writeOutput(cmd, runOutputFile, result)
}
