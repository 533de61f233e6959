// Package pipeline provides the high-level orchestration for the resumable
// classification run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/report-classifier/internal/classifier"
	"github.com/jonathan/report-classifier/internal/db"
	"github.com/jonathan/report-classifier/internal/llm"
	"github.com/jonathan/report-classifier/internal/observability"
	"github.com/jonathan/report-classifier/internal/store"
	"github.com/jonathan/report-classifier/internal/types"
)

// ProgressEvent represents a progress update during a classification run
type ProgressEvent struct {
	Stage    string `json:"stage"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Record   int    `json:"record,omitempty"`
	RunID    string `json:"run_id,omitempty"`
}

// Event stages and categories.
const (
	StageLoad       = "load"
	StageClassify   = "classify"
	StageCheckpoint = "checkpoint"
	StageDone       = "done"

	CategoryProgress = "progress"
	CategoryWarning  = "warning"
)

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for a classification run
type RunOptions struct {
	InputPath   string
	OutputPath  string
	Task        types.Task
	Provider    llm.Provider
	APIKey      string
	DatabaseURL string
	Verbose     bool

	// Client overrides the provider-constructed LLM client when set.
	Client llm.Client
	// Out receives console output; defaults to os.Stdout.
	Out        io.Writer
	OnProgress ProgressCallback
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, stage, category, message string, record int) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Stage:    stage,
			Category: category,
			Message:  message,
			Record:   record,
		})
	}
}

// Run drives the pipeline end to end: load, classify pending records in
// order, checkpoint at batch boundaries, and write a final checkpoint.
// Per-record failures resolve to defaulted results and never abort the run;
// only configuration errors (missing column, bad credentials, unwritable
// output) are returned.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	printer := observability.NewPrinter(opts.Out)

	client := opts.Client
	if client == nil {
		var err error
		client, err = llm.NewClient(ctx, opts.Provider, opts.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
	}
	defer func() { _ = client.Close() }()

	// Resume from the previous checkpoint when one exists; rows labeled by an
	// earlier interrupted run are then never re-sent.
	loadPath := opts.InputPath
	if _, err := os.Stat(opts.OutputPath); err == nil && opts.OutputPath != opts.InputPath {
		loadPath = opts.OutputPath
		printer.Progressf("Resuming from previous checkpoint: %s", loadPath)
	}

	table, err := store.Load(loadPath, opts.OutputPath, opts.Task)
	if err != nil {
		return err
	}

	total, pending := table.Counts()
	printer.PrintRunHeader(opts.Task.Name, opts.InputPath, opts.OutputPath, total, pending)
	emitProgress(&opts, StageLoad, CategoryProgress,
		fmt.Sprintf("loaded %d reports, %d pending", total, pending), 0)

	// Run history is best-effort: a missing database never blocks the run.
	var journal *db.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		journal, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			printer.Warnf("failed to connect to database: %v", err)
			printer.Progressf("Continuing without run history...")
			journal = nil
		} else {
			defer journal.Close()
			runID, err = journal.CreateRun(ctx, opts.Task.Name, opts.InputPath, opts.OutputPath)
			if err != nil {
				printer.Warnf("failed to create run record: %v", err)
				journal = nil
			}
		}
	}

	c := classifier.New(client, opts.Task)
	c.OnRetry(func(attempt int, reason string) {
		if opts.Verbose {
			printer.Warnf("attempt %d failed: %s", attempt, reason)
		}
	})

	batchSize := opts.Task.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	records := table.Pending()
	processed := 0
	for i, record := range records {
		if ctx.Err() != nil {
			return finish(ctx, &opts, printer, table, journal, runID, db.StatusInterrupted, ctx.Err())
		}

		result := classifyRecord(ctx, c, opts.Task, record)
		// A default produced by cancellation mid-call is not a real label;
		// leave the record pending so the next run re-does it.
		if ctx.Err() != nil && result.Failed {
			return finish(ctx, &opts, printer, table, journal, runID, db.StatusInterrupted, ctx.Err())
		}
		if result.Failed {
			printer.Warnf("report %d defaulted to uncertain: %s", record.ID, result.Explanation)
			emitProgress(&opts, StageClassify, CategoryWarning, result.Explanation, record.ID)
		} else if opts.Verbose {
			printer.Progressf("Report %d classified as %s", record.ID, result.Label.Token())
		}
		table.Write(record.ID, result)
		processed++
		emitProgress(&opts, StageClassify, CategoryProgress,
			fmt.Sprintf("classified %d/%d", processed, len(records)), record.ID)

		if processed%batchSize == 0 {
			printer.Progressf("Processed %d/%d reports. Saving...", processed, len(records))
			if err := checkpoint(ctx, &opts, printer, table, journal, runID, processed); err != nil {
				return err
			}
			// Pause between batches, but not after the final record.
			if i < len(records)-1 {
				if err := waitBetweenBatches(ctx, opts.Task.BatchDelay); err != nil {
					return finish(ctx, &opts, printer, table, journal, runID, db.StatusInterrupted, err)
				}
			}
		}
	}

	return finish(ctx, &opts, printer, table, journal, runID, db.StatusCompleted, nil)
}

// classifyRecord resolves one record: the empty-text shortcut never touches
// the external service.
func classifyRecord(ctx context.Context, c *classifier.Classifier, task types.Task, record types.Record) types.ClassificationResult {
	if strings.TrimSpace(record.Text) == "" {
		result := types.ClassificationResult{Label: types.LabelUncertain}
		if task.MultiField {
			result.Explanation = "No report text available"
		}
		return result
	}
	return c.Classify(ctx, record.Text)
}

// checkpoint persists the whole table and journals the batch boundary.
func checkpoint(ctx context.Context, opts *RunOptions, printer *observability.Printer, table *store.Store, journal *db.DB, runID uuid.UUID, processed int) error {
	if err := table.Checkpoint(); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	_, pending := table.Counts()
	emitProgress(opts, StageCheckpoint, CategoryProgress,
		fmt.Sprintf("checkpointed after %d records", processed), 0)
	if journal != nil {
		if err := journal.RecordCheckpoint(ctx, runID, processed, pending); err != nil {
			printer.Warnf("failed to journal checkpoint: %v", err)
		}
	}
	return nil
}

// finish performs the final checkpoint, closes out the run journal, and
// prints the completion summary.
func finish(ctx context.Context, opts *RunOptions, printer *observability.Printer, table *store.Store, journal *db.DB, runID uuid.UUID, status string, cause error) error {
	if err := table.Checkpoint(); err != nil {
		if cause != nil {
			return fmt.Errorf("final checkpoint failed after interruption: %w", err)
		}
		return fmt.Errorf("final checkpoint failed: %w", err)
	}

	if journal != nil {
		// The run context may already be cancelled; closing out the journal
		// row still deserves a short grace window.
		if err := journal.CompleteRun(context.WithoutCancel(ctx), runID, status); err != nil {
			printer.Warnf("failed to complete run record: %v", err)
		}
	}

	if cause != nil {
		printer.Progressf("Run interrupted; progress saved to %s", opts.OutputPath)
		return cause
	}

	printer.Progressf("Classification complete. Results saved to %s", opts.OutputPath)
	if opts.Task.MultiField {
		printer.PrintSummary(table.Summary())
	}
	emitProgress(opts, StageDone, CategoryProgress, "classification complete", 0)
	return nil
}

// waitBetweenBatches blocks for the task's inter-batch delay, honoring
// cancellation.
func waitBetweenBatches(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
