package doc2pdf

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Sentinel errors for library operations.
var (
	// Worklist errors.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrIndexOutOfRange      = errors.New("worklist index out of range")

	// Conversion errors.
	ErrNotConvertible   = errors.New("item is not convertible")
	ErrNoBackend        = errors.New("no backend supports this file type")
	ErrArtifactMissing  = errors.New("output PDF missing or empty after export")
	ErrExhaustedRetries = errors.New("conversion failed after all attempts")

	// Application errors.
	ErrAppLaunch    = errors.New("failed to launch application")
	ErrDocumentOpen = errors.New("failed to open document")
	ErrExport       = errors.New("failed to export document")

	// Merge errors.
	ErrMerge         = errors.New("PDF merge failed")
	ErrNoMergeInputs = errors.New("no PDF left to merge")

	// Option validation errors.
	ErrInvalidAttempts     = errors.New("invalid attempt count")
	ErrInvalidPollInterval = errors.New("invalid poll interval")
	ErrInvalidOutputName   = errors.New("invalid merge output name")
)

// ConversionError reports an item that could not be converted within the
// attempt bound. It matches ErrExhaustedRetries via errors.Is.
type ConversionError struct {
	Item     WorkItem
	Attempts int
	Last     error // cause of the final attempt, may be nil
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: %s (%d attempts)", ErrExhaustedRetries, filepath.Base(e.Item.Path), e.Attempts)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the last attempt's cause.
func (e *ConversionError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrExhaustedRetries}
	}
	return []error{ErrExhaustedRetries, e.Last}
}
