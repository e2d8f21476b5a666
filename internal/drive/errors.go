package drive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNotFound means the file reference did not resolve to a file the user can see.
	// Callers should let the user pick or authorize the file and retry the same call.
	ErrNotFound = errors.New("requested entity was not found")

	// ErrPermissionDenied means the token lacks access to the file.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrFileTooLarge is returned when an upload source exceeds the upload limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFile is returned for Google Workspace documents, which have no binary content.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// classify maps Drive API errors onto the package sentinels. The original
// error stays in the chain so callers can still inspect *googleapi.Error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %w", op, ErrPermissionDenied, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRecoverable reports whether err asks for the user to re-select or re-authorize the file.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied)
}
