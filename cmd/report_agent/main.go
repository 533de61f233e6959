// Package main provides the entry point for the report classification CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "report_agent",
	Short: "Resumable LLM classification of radiology reports",
	Long:  "report_agent labels free-text radiology reports via an external LLM service and persists results into a CSV table, checkpointing at batch boundaries so an interrupted run resumes without re-processing labeled rows.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
