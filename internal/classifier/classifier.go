// Package classifier produces one classification result per report text via
// the external LLM service, with a bounded retry policy. Classify is total:
// every failure path resolves to a defaulted result, never an error.
package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/report-classifier/internal/llm"
	"github.com/jonathan/report-classifier/internal/parsing"
	"github.com/jonathan/report-classifier/internal/prompts"
	"github.com/jonathan/report-classifier/internal/types"
)

// RetryCallback is invoked after each failed attempt, before any retry.
type RetryCallback func(attempt int, reason string)

// Classifier wraps one external classification call per report.
type Classifier struct {
	client  llm.Client
	task    types.Task
	system  string
	user    string
	onRetry RetryCallback
}

// New creates a Classifier for the given task. The prompts are resolved once
// at construction; a missing prompt key is a programming error and panics.
func New(client llm.Client, task types.Task) *Classifier {
	return &Classifier{
		client: client,
		task:   task,
		system: prompts.MustGet(task.PromptFile, task.SystemPromptKey),
		user:   prompts.MustGet(task.PromptFile, task.UserPromptKey),
	}
}

// OnRetry registers a callback observing failed attempts.
func (c *Classifier) OnRetry(fn RetryCallback) {
	c.onRetry = fn
}

// attemptOutcome is one attempt's resolution: either a parsed result or the
// reason the attempt failed. The retry loop branches on data, not on errors
// bubbling up through it.
type attemptOutcome struct {
	result types.ClassificationResult
	ok     bool
	reason string
}

// Classify labels one report text. It paces itself before every attempt,
// retries transport and label-parse failures up to the task's attempt budget
// with an extra backoff wait, and returns the defaulted UNCERTAIN result when
// the budget is exhausted.
func (c *Classifier) Classify(ctx context.Context, text string) types.ClassificationResult {
	var lastReason string

	for attempt := 1; attempt <= c.task.MaxAttempts; attempt++ {
		if err := wait(ctx, c.task.CallDelay); err != nil {
			return types.DefaultedResult(err.Error())
		}

		outcome := c.attempt(ctx, text)
		if outcome.ok {
			return outcome.result
		}

		lastReason = outcome.reason
		if c.onRetry != nil {
			c.onRetry(attempt, outcome.reason)
		}
		if attempt < c.task.MaxAttempts {
			if err := wait(ctx, c.task.RetryDelay); err != nil {
				return types.DefaultedResult(err.Error())
			}
		}
	}

	return types.DefaultedResult(lastReason)
}

// attempt issues one request and interprets the reply.
func (c *Classifier) attempt(ctx context.Context, text string) attemptOutcome {
	reply, err := c.client.Complete(ctx, llm.Request{
		Model:       c.task.Model,
		System:      c.system,
		User:        prompts.Format(c.user, map[string]string{"Report": text}),
		Temperature: c.task.Temperature,
		MaxTokens:   c.task.MaxTokens,
	})
	if err != nil {
		return attemptOutcome{reason: fmt.Sprintf("service call failed: %v", err)}
	}

	if c.task.MultiField {
		findings, err := parsing.ParseFindings(reply)
		if err != nil {
			return attemptOutcome{reason: err.Error()}
		}
		return attemptOutcome{
			ok: true,
			result: types.ClassificationResult{
				Label:       findings.Label,
				Explanation: findings.Explanation,
				Count:       findings.Count,
			},
		}
	}

	label, err := parsing.ParseLabel(reply)
	if err != nil {
		return attemptOutcome{reason: err.Error()}
	}
	return attemptOutcome{ok: true, result: types.ClassificationResult{Label: label}}
}

// wait blocks for d, returning early if the context is cancelled.
func wait(ctx context.Context, d time.Duration) error {
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
