package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/report-classifier/internal/config"
	"github.com/jonathan/report-classifier/internal/llm"
	"github.com/jonathan/report-classifier/internal/pipeline"
	"github.com/jonathan/report-classifier/internal/types"
)

// runFlags holds the flag values shared by the classification commands.
type runFlags struct {
	configPath  string
	input       string
	output      string
	apiKey      string
	provider    string
	model       string
	databaseURL string
	batchSize   int
	verbose     bool
}

// registerRunFlags wires the shared classification flags onto cmd.
func registerRunFlags(cmd *cobra.Command, f *runFlags) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Path to the input CSV table")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Path to the output CSV table (default: <input>_classified.csv)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "LLM API key (optional, defaults to OPENAI_API_KEY or GEMINI_API_KEY)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider: openai (default) or gemini")
	cmd.Flags().StringVar(&f.model, "model", "", "Override the task's default model")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL run-history URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Records per checkpoint (default: task-specific)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print per-record progress")
}

// buildRunOptions merges config file, CLI flags, and environment into the
// pipeline options for the named task. Missing input or credentials is a
// fatal configuration error.
func buildRunOptions(cmd *cobra.Command, f *runFlags, taskName string) (pipeline.RunOptions, error) {
	var cfg config.Config
	if f.configPath != "" {
		loadedCfg, err := config.LoadConfig(f.configPath)
		if err != nil {
			return pipeline.RunOptions{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return pipeline.RunOptions{}, err
		}
		cfg = *loadedCfg
	}

	// Command-line args take priority; only override if the flag was set.
	flags := config.Config{
		Input:       f.input,
		Output:      f.output,
		APIKey:      f.apiKey,
		Provider:    f.provider,
		Model:       f.model,
		DatabaseURL: f.databaseURL,
		BatchSize:   f.batchSize,
	}
	cfg = flags.MergeWithDefaults(cfg)
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if cfg.Input == "" {
		return pipeline.RunOptions{}, fmt.Errorf("--input is required (or set 'input' in the config file)")
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutputPath(cfg.Input)
	}

	task, err := types.TaskByName(taskName)
	if err != nil {
		return pipeline.RunOptions{}, err
	}
	if cfg.Model != "" {
		task.Model = cfg.Model
	}
	if cfg.BatchSize > 0 {
		task.BatchSize = cfg.BatchSize
	}

	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return pipeline.RunOptions{}, err
	}

	apiKey, err := resolveAPIKey(cfg.APIKey, provider)
	if err != nil {
		return pipeline.RunOptions{}, err
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return pipeline.RunOptions{
		InputPath:   cfg.Input,
		OutputPath:  cfg.Output,
		Task:        task,
		Provider:    provider,
		APIKey:      apiKey,
		DatabaseURL: cfg.DatabaseURL,
		Verbose:     cfg.Verbose,
	}, nil
}

// defaultOutputPath derives the output file name from the input path.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_classified.csv"
}

// resolveAPIKey resolves the credential: explicit flag/config value first,
// then the provider's environment variable, then an interactive prompt when
// stdin is a terminal. An unresolvable key aborts before any processing.
func resolveAPIKey(explicit string, provider llm.Provider) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if key := os.Getenv(provider.APIKeyEnvVar()); key != "" {
		return key, nil
	}

	if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
		fmt.Fprintf(os.Stderr, "Please enter your %s: ", provider.APIKeyEnvVar())
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err == nil {
			if key := strings.TrimSpace(line); key != "" {
				return key, nil
			}
		}
	}

	return "", fmt.Errorf("API key not provided: set --api-key or %s", provider.APIKeyEnvVar())
}
