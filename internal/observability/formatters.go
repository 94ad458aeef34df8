// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/hr-assistant/internal/types"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintRequirements outputs the weighted requirements rubric of a job.
func (p *Printer) PrintRequirements(reqs *types.JobRequirements) {
	if reqs == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:      %s\n", reqs.JobTitle))
	sb.WriteString(fmt.Sprintf("Weights:  %.2f", reqs.WeightSum()))
	if !reqs.WeightsBalanced() {
		sb.WriteString("  ⚠ not 1.0")
	}
	sb.WriteString("\n\n")

	count := min(len(reqs.Requirements), maxItemsToShow)
	for i := 0; i < count; i++ {
		req := reqs.Requirements[i]
		sb.WriteString(fmt.Sprintf("  • %-36s %5.0f%%\n", truncate(req.Name, 36), req.Weight*100))
	}
	if len(reqs.Requirements) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(reqs.Requirements)-maxItemsToShow))
	}

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvaluation outputs the per-requirement scores and the total of one resume.
func (p *Printer) PrintEvaluation(eval *types.ScoreEvaluation) {
	if eval == nil {
		return
	}

	var sb strings.Builder
	if eval.JobTitle != "" {
		sb.WriteString(fmt.Sprintf("Job:    %s\n\n", eval.JobTitle))
	}
	for _, s := range eval.Scores {
		sb.WriteString(fmt.Sprintf("%-30s %3d × %.2f = %6.2f\n", truncate(s.Name, 30), s.Score, s.Weight, s.WeightedScore))
	}
	sb.WriteString(fmt.Sprintf("\nTotal:  %.2f / 100", eval.TotalScore))

	p.printBox("RESUME SCORE", sb.String())
}

// PrintBatch outputs the candidates of a batch ranked by total score.
func (p *Printer) PrintBatch(results []workflow.BatchResult) {
	if len(results) == 0 {
		return
	}

	ranked := make([]workflow.BatchResult, 0, len(results))
	for _, r := range results {
		if r.Evaluation != nil {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Evaluation.TotalScore > ranked[j].Evaluation.TotalScore
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Graded %d resumes:\n\n", len(results)))
	for i, r := range ranked {
		sb.WriteString(fmt.Sprintf("#%-3d %-40s %6.2f\n", i+1, truncate(r.ID, 40), r.Evaluation.TotalScore))
	}

	p.printBox("CANDIDATE RANKING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRun outputs a summary of every stage a workflow run completed.
func (p *Printer) PrintRun(result *workflow.RunResult) {
	if result == nil {
		return
	}

	if result.JD != "" {
		lines := strings.Split(strings.TrimSpace(result.JD), "\n")
		content := strings.Join(lines[:min(len(lines), maxItemsToShow)], "\n")
		if len(lines) > maxItemsToShow {
			content += fmt.Sprintf("\n... and %d more lines", len(lines)-maxItemsToShow)
		}
		p.printBox("JOB DESCRIPTION", content)
	}
	if result.FocusPoints != "" {
		p.printBox("FOCUS POINTS", strings.TrimSpace(result.FocusPoints))
	}
	p.PrintRequirements(result.Requirements)
	p.PrintEvaluation(result.Evaluation)
}
