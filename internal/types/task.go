package types

import (
	"fmt"
	"time"
)

// Task describes one classification task end to end: which columns it reads
// and writes, which prompts and model parameters it uses, and how the batch
// runner should pace itself.
type Task struct {
	Name string

	// Columns
	TextColumn        string
	LabelColumn       string
	ExplanationColumn string // multi-field tasks only
	CountColumn       string // multi-field tasks only

	// Prompts (keys into the embedded prompt files, see internal/prompts)
	PromptFile      string
	SystemPromptKey string
	UserPromptKey   string

	// Model parameters
	Model       string
	Temperature float32
	MaxTokens   int

	// Pacing and retry
	CallDelay   time.Duration // before every attempt
	RetryDelay  time.Duration // extra wait between attempts
	BatchDelay  time.Duration // between batches, not after the last
	BatchSize   int
	MaxAttempts int

	// MultiField tasks extract an explanation and a finding count alongside
	// the label.
	MultiField bool

	// LabelNames maps labels to the human-readable names used in the
	// completion summary.
	LabelNames map[Label]string
}

// ChestTask classifies chest X-ray reports as normal/abnormal/uncertain,
// writing a single integer column.
func ChestTask() Task {
	return Task{
		Name:            "chest",
		TextColumn:      "REPORT",
		LabelColumn:     "normal_0_abnormal_1_others_2",
		PromptFile:      "chest.json",
		SystemPromptKey: "system",
		UserPromptKey:   "classify-report",
		Model:           "gpt-3.5-turbo",
		Temperature:     0.2,
		MaxTokens:       10,
		CallDelay:       time.Second,
		RetryDelay:      2 * time.Second,
		BatchSize:       5,
		MaxAttempts:     3,
		LabelNames: map[Label]string{
			LabelNormal:    "Normal",
			LabelAbnormal:  "Abnormal",
			LabelUncertain: "Uncertain",
		},
	}
}

// LiverTask classifies radiology reports for liver metastasis, writing a
// label, a free-text explanation, and a lesion count.
func LiverTask() Task {
	return Task{
		Name:              "liver",
		TextColumn:        "report",
		LabelColumn:       "liver_met_classification",
		ExplanationColumn: "liver_met_explanation",
		CountColumn:       "liver_lesion_count",
		PromptFile:        "liver.json",
		SystemPromptKey:   "system",
		UserPromptKey:     "analyze-report",
		Model:             "gpt-4o-mini",
		Temperature:       0,
		MaxTokens:         200,
		CallDelay:         500 * time.Millisecond,
		RetryDelay:        2 * time.Second,
		BatchDelay:        5 * time.Second,
		BatchSize:         10,
		MaxAttempts:       3,
		MultiField:        true,
		LabelNames: map[Label]string{
			LabelNormal:    "No liver metastasis",
			LabelAbnormal:  "Liver metastasis present",
			LabelUncertain: "Uncertain",
		},
	}
}

// TaskByName resolves a task by its CLI name.
func TaskByName(name string) (Task, error) {
	switch name {
	case "chest":
		return ChestTask(), nil
	case "liver":
		return LiverTask(), nil
	}
	return Task{}, fmt.Errorf("unknown task %q (expected \"chest\" or \"liver\")", name)
}

// OutputColumns returns the columns this task adds to the table, in order.
func (t Task) OutputColumns() []string {
	cols := []string{t.LabelColumn}
	if t.MultiField {
		cols = append(cols, t.ExplanationColumn, t.CountColumn)
	}
	return cols
}
