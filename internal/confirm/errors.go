package confirm

import (
	"errors"
	"fmt"
)

// ErrConfirmationDenied is matched by every denial returned from Gate.Authorize.
var ErrConfirmationDenied = errors.New("confirmation denied")

// DeniedError describes a denied tool invocation.
type DeniedError struct {
	ToolName  string
	RequestID string
	Reason    string
}

func (e *DeniedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.ToolName, ErrConfirmationDenied)
	}
	return fmt.Sprintf("%s: %s: %s", e.ToolName, ErrConfirmationDenied, e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return ErrConfirmationDenied
}
