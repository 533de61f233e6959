package store

import "fmt"

// MissingColumnError is a fatal configuration error: the input table lacks the
// column the task reads report text from. It is surfaced at load time, before
// any record is processed.
type MissingColumnError struct {
	Column string
	Path   string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found in %s", e.Column, e.Path)
}
