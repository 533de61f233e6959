package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a classification run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Task        string     `json:"task"`
	InputPath   string     `json:"input_path"`
	OutputPath  string     `json:"output_path"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status constants
const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusInterrupted = "interrupted"
)
