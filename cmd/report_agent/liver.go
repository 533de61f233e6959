package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/report-classifier/internal/pipeline"
)

var liverCommand = &cobra.Command{
	Use:   "liver",
	Short: "Classify radiology reports for liver metastasis",
	Long: `Labels every unclassified report in the report column as 0 (no liver metastasis), 1 (liver metastasis present), or 2 (uncertain), writing the classification together with the model's explanation and lesion count. A label distribution summary is printed at completion.

Progress is checkpointed to the output file at every batch boundary; re-running the command resumes from the last checkpoint and never re-sends labeled rows.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runLiverCmd,
}

var liverFlags runFlags

func init() {
	registerRunFlags(liverCommand, &liverFlags)
	rootCmd.AddCommand(liverCommand)
}

func runLiverCmd(cmd *cobra.Command, _ []string) error {
	opts, err := buildRunOptions(cmd, &liverFlags, "liver")
	if err != nil {
		return err
	}
	return pipeline.Run(context.Background(), opts)
}
