package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hr-assistant/internal/config"
	"github.com/jonathan/hr-assistant/internal/llm"
	"github.com/jonathan/hr-assistant/internal/observability"
	"github.com/jonathan/hr-assistant/internal/prompts"
	"github.com/jonathan/hr-assistant/internal/resume"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

var (
	configPath    string
	verbose       bool
	modelOverride string

	appConfig *config.Config
	logger    *slog.Logger
)

// openClient builds the LLM client of a command. Tests replace it.
var openClient = func(ctx context.Context, cfg *llm.Config, logger *slog.Logger) (llm.Client, error) {
	return llm.Open(ctx, cfg, logger)
}

// setup loads the configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Verbose = true
	}
	appConfig = cfg

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadPrompts returns the embedded templates merged with the configured override file.
func loadPrompts() (*prompts.Registry, error) {
	registry, err := prompts.Load(appConfig.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	return registry, nil
}

// openOrchestrator connects to the configured LLM provider. The returned
// close function releases the client.
func openOrchestrator(ctx context.Context) (*workflow.Orchestrator, func(), error) {
	llmCfg, err := appConfig.LLMClientConfig()
	if err != nil {
		return nil, nil, err
	}
	if modelOverride != "" {
		llmCfg = llmCfg.WithModel(modelOverride)
	}
	registry, err := loadPrompts()
	if err != nil {
		return nil, nil, err
	}

	client, err := openClient(ctx, llmCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close LLM client", "error", err)
		}
	}

	o := workflow.New(client, registry, logger, workflow.WithWeightTolerance(appConfig.WeightTolerance))
	return o, closeFn, nil
}

// readInput reads a file, or standard input when path is "" or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// readJSON decodes the JSON file at path into v.
func readJSON(cmd *cobra.Command, path string, v any) error {
	content, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", displayName(path), err)
	}
	return nil
}

// readResumeFile extracts the text of a resume in any supported format.
func readResumeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume %s: %w", path, err)
	}
	text, err := resume.ExtractText(resume.DetectMIME(path, data), data)
	if err != nil {
		return "", fmt.Errorf("resume %s: %w", path, err)
	}
	return text, nil
}

// writeOutput writes v to path, or to the command output when path is empty.
// Strings are written as is and anything else as indented JSON.
func writeOutput(cmd *cobra.Command, path string, v any) error {
	var content []byte
	switch val := v.(type) {
	case string:
		content = []byte(strings.TrimRight(val, "\n") + "\n")
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		content = append(data, '\n')
	}

	if path == "" {
		_, err := cmd.OutOrStdout().Write(content)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

// verbosePrinter returns a printer on the command's error output in verbose
// mode, and nil otherwise.
func verbosePrinter(cmd *cobra.Command) *observability.Printer {
	if appConfig == nil || !appConfig.Verbose {
		return nil
	}
	return observability.NewPrinter(cmd.ErrOrStderr())
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "standard input"
	}
	return path
}
