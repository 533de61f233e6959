package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/report-classifier/internal/observability"
	"github.com/jonathan/report-classifier/internal/store"
	"github.com/jonathan/report-classifier/internal/types"
)

var summaryCommand = &cobra.Command{
	Use:   "summary",
	Short: "Print the label distribution of a classified table",
	Long:  "Recomputes the value counts of the label column of an already-classified table, with human-readable category names and percentages. No service calls are made.",
	RunE:  runSummaryCmd,
}

var (
	summaryInput string
	summaryTask  string
)

func init() {
	summaryCommand.Flags().StringVarP(&summaryInput, "input", "i", "", "Path to the classified CSV table")
	summaryCommand.Flags().StringVarP(&summaryTask, "task", "t", "liver", "Task the table was classified by: chest or liver")
	_ = summaryCommand.MarkFlagRequired("input")
	rootCmd.AddCommand(summaryCommand)
}

func runSummaryCmd(_ *cobra.Command, _ []string) error {
	task, err := types.TaskByName(summaryTask)
	if err != nil {
		return err
	}

	table, err := store.Load(summaryInput, summaryInput, task)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintSummary(table.Summary())
	return nil
}
