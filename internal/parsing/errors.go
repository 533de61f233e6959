package parsing

import "fmt"

// NoLabelError indicates the model reply contained no recognizable label token.
type NoLabelError struct {
	Reply string
}

func (e *NoLabelError) Error() string {
	return fmt.Sprintf("no label token found in reply %q", e.Reply)
}
