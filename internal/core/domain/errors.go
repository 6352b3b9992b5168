package domain

import (
	"errors"
	"fmt"
)

var (
	// Client-local validation failures. None of these involve a network call.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrNoFileSelected      = errors.New("no file selected")
	ErrNoUserSelected      = errors.New("no target user selected")
	ErrInvalidInput        = errors.New("invalid input")

	// ErrUploadInProgress guards the single-slot upload workflow: a second
	// submit while one is outstanding is rejected without side effects.
	ErrUploadInProgress = errors.New("an upload is already in progress")

	// ErrStaleResponse marks a response that arrived after the session it was
	// issued under stopped being current. It is dropped at merge time, never
	// surfaced to the user.
	ErrStaleResponse = errors.New("stale response for a superseded session")

	// ErrRequestFailed is the generic transport-level failure reason used when
	// the server produced no parseable detail message.
	ErrRequestFailed = errors.New("request failed")
)

// APIError is a non-2xx response from the remote service carrying the
// server-provided detail message, surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return e.Detail
}

// Reason extracts the human-readable failure reason from an operation error:
// the server detail when available, the generic fallback otherwise.
func Reason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrRequestFailed) {
		return ErrRequestFailed.Error()
	}
	return err.Error()
}
