package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/report-classifier/internal/pipeline"
)

var classifyCommand = &cobra.Command{
	Use:   "classify",
	Short: "Classify chest X-ray reports as normal/abnormal/uncertain",
	Long: `Labels every unclassified report in the REPORT column as 0 (normal), 1 (abnormal), or 2 (uncertain / lines, catheters, tubes present), writing the normal_0_abnormal_1_others_2 column.

Progress is checkpointed to the output file at every batch boundary; re-running the command resumes from the last checkpoint and never re-sends labeled rows.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runClassifyCmd,
}

var classifyFlags runFlags

func init() {
	registerRunFlags(classifyCommand, &classifyFlags)
	rootCmd.AddCommand(classifyCommand)
}

func runClassifyCmd(cmd *cobra.Command, _ []string) error {
	opts, err := buildRunOptions(cmd, &classifyFlags, "chest")
	if err != nil {
		return err
	}
	return pipeline.Run(context.Background(), opts)
}
