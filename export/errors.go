package export

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal taxonomy. Object- and slide-scoped failures
// never surface as errors; they become warnings on the Result.
var (
	// ErrDocumentInit marks a failure to initialize the output document.
	ErrDocumentInit = errors.New("output document initialization failed")
	// ErrFinalize marks a serialization failure while finalizing the artifact.
	ErrFinalize = errors.New("artifact finalization failed")
	// ErrExportCancelled marks an export stopped by the caller's context.
	// Cancellation is a distinct termination, not an internal failure, but
	// no partial artifact is returned.
	ErrExportCancelled = errors.New("export cancelled")
)

// ExportError carries the backend and stage an error originated from.
type ExportError struct {
	Backend   string // backend name: deck, pages, outline
	Operation string // stage: init, slide, finalize
	Err       error  // original error
}

// Error returns the formatted message: [backend.operation] error.
func (e *ExportError) Error() string {
	return fmt.Sprintf("[%s.%s] %v", e.Backend, e.Operation, e.Err)
}

// Unwrap returns the original error for errors.Is/errors.As chains.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// wrapErr creates an ExportError with context. Returns nil for a nil err.
func wrapErr(backend, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ExportError{Backend: backend, Operation: operation, Err: err}
}
