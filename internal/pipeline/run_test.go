package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/report-classifier/internal/llm"
	"github.com/jonathan/report-classifier/internal/store"
	"github.com/jonathan/report-classifier/internal/types"
)

// fakeClient returns a fixed reply and counts calls. An optional hook runs
// before each reply, letting tests simulate interruption mid-run.
type fakeClient struct {
	reply  string
	calls  int
	onCall func(call int)
}

func (f *fakeClient) Complete(_ context.Context, _ llm.Request) (string, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	return f.reply, nil
}

func (f *fakeClient) Close() error { return nil }

func fastChestTask() types.Task {
	task := types.ChestTask()
	task.CallDelay = 0
	task.RetryDelay = 0
	task.BatchDelay = 0
	return task
}

func fastLiverTask() types.Task {
	task := types.LiverTask()
	task.CallDelay = 0
	task.RetryDelay = 0
	task.BatchDelay = 0
	return task
}

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, csv.NewWriter(f).WriteAll(rows))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRun_LabelsAllPendingRecords(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	writeCSV(t, input, [][]string{
		{"REPORT"},
		{"clear lungs"},
		{"effusion"},
		{"catheter in place"},
	})

	client := &fakeClient{reply: "1"}
	err := Run(context.Background(), RunOptions{
		InputPath:  input,
		OutputPath: output,
		Task:       fastChestTask(),
		Client:     client,
		Out:        &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, client.calls)

	rows := readCSV(t, output)
	require.Len(t, rows, 4)
	for _, row := range rows[1:] {
		assert.Equal(t, "1", row[1])
	}
}

func TestRun_IdempotentResume(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	writeCSV(t, input, [][]string{
		{"REPORT", "normal_0_abnormal_1_others_2"},
		{"clear lungs", "0"},
		{"effusion", ""},
		{"pneumonia", "1"},
		{"lines and tubes", ""},
	})

	client := &fakeClient{reply: "2"}
	opts := RunOptions{
		InputPath:  input,
		OutputPath: output,
		Task:       fastChestTask(),
		Client:     client,
		Out:        &bytes.Buffer{},
	}
	require.NoError(t, Run(context.Background(), opts))

	// Only the two unlabeled rows were sent; pre-existing labels survive.
	assert.Equal(t, 2, client.calls)
	rows := readCSV(t, output)
	assert.Equal(t, "0", rows[1][1])
	assert.Equal(t, "2", rows[2][1])
	assert.Equal(t, "1", rows[3][1])
	assert.Equal(t, "2", rows[4][1])

	// Re-running on the fully labeled store is a no-op.
	second := &fakeClient{reply: "0"}
	opts.Client = second
	require.NoError(t, Run(context.Background(), opts))
	assert.Zero(t, second.calls)

	rows = readCSV(t, output)
	assert.Equal(t, "2", rows[2][1])
}

func TestRun_EmptyTextShortcut(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	writeCSV(t, input, [][]string{
		{"report", "extra"},
		{"", "x"},
		{"   ", "y"},
		{"liver lesion noted", "z"},
	})

	client := &fakeClient{reply: "1, metastasis present. 1 lesion seen."}
	err := Run(context.Background(), RunOptions{
		InputPath:  input,
		OutputPath: output,
		Task:       fastLiverTask(),
		Client:     client,
		Out:        &bytes.Buffer{},
	})
	require.NoError(t, err)

	// The external service was invoked only for the non-empty report.
	assert.Equal(t, 1, client.calls)

	rows := readCSV(t, output)
	assert.Equal(t, "2", rows[1][2])
	assert.Equal(t, "No report text available", rows[1][3])
	assert.Equal(t, "2", rows[2][2])
	assert.Equal(t, "1", rows[3][2])
}

func TestRun_CheckpointDurabilityOnInterruption(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	writeCSV(t, input, [][]string{
		{"REPORT"},
		{"r1"}, {"r2"}, {"r3"}, {"r4"}, {"r5"}, {"r6"}, {"r7"},
	})

	task := fastChestTask()
	task.BatchSize = 5

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Interrupt immediately after the first batch boundary.
	client := &fakeClient{reply: "0"}
	client.onCall = func(call int) {
		if call == task.BatchSize {
			cancel()
		}
	}

	err := Run(ctx, RunOptions{
		InputPath:  input,
		OutputPath: output,
		Task:       task,
		Client:     client,
		Out:        &bytes.Buffer{},
	})
	require.ErrorIs(t, err, context.Canceled)

	// Everything up to the batch boundary is durable; nothing reverts.
	rows := readCSV(t, output)
	for i := 1; i <= task.BatchSize; i++ {
		assert.Equal(t, "0", rows[i][1], "row %d", i)
	}
	for i := task.BatchSize + 1; i < len(rows); i++ {
		assert.Equal(t, "", rows[i][1], "row %d", i)
	}

	// Resuming finishes the remainder without re-sending labeled rows.
	resumed := &fakeClient{reply: "1"}
	require.NoError(t, Run(context.Background(), RunOptions{
		InputPath:  input,
		OutputPath: output,
		Task:       task,
		Client:     resumed,
		Out:        &bytes.Buffer{},
	}))
	assert.Equal(t, len(rows)-1-task.BatchSize, resumed.calls)

	rows = readCSV(t, output)
	for i := task.BatchSize + 1; i < len(rows); i++ {
		assert.Equal(t, "1", rows[i][1], "row %d", i)
	}
}

func TestRun_MissingColumnIsFatalBeforeAnyCall(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	writeCSV(t, input, [][]string{
		{"text"},
		{"some report"},
	})

	client := &fakeClient{reply: "0"}
	err := Run(context.Background(), RunOptions{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "out.csv"),
		Task:       fastChestTask(),
		Client:     client,
		Out:        &bytes.Buffer{},
	})
	require.Error(t, err)

	var missing *store.MissingColumnError
	assert.True(t, errors.As(err, &missing))
	assert.Zero(t, client.calls)
}

func TestRun_DefaultedRecordsEmitWarnings(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	writeCSV(t, input, [][]string{
		{"REPORT"},
		{"garbled"},
	})

	var warnings []ProgressEvent
	client := &fakeClient{reply: "no idea"}
	err := Run(context.Background(), RunOptions{
		InputPath:  input,
		OutputPath: output,
		Task:       fastChestTask(),
		Client:     client,
		Out:        &bytes.Buffer{},
		OnProgress: func(e ProgressEvent) {
			if e.Category == CategoryWarning {
				warnings = append(warnings, e)
			}
		},
	})
	require.NoError(t, err)

	// Retries were exhausted, the run continued, and the default was written.
	assert.Equal(t, 3, client.calls)
	require.Len(t, warnings, 1)
	rows := readCSV(t, output)
	assert.Equal(t, "2", rows[1][1])
}

func TestRun_LiverSummaryPrinted(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	writeCSV(t, input, [][]string{
		{"report"},
		{"mets in segment VII"},
	})

	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		InputPath:  input,
		OutputPath: output,
		Task:       fastLiverTask(),
		Client:     &fakeClient{reply: "1, hepatic metastasis. 3 lesions."},
		Out:        &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "CLASSIFICATION SUMMARY")
	assert.Contains(t, out.String(), "Liver metastasis present")
}
