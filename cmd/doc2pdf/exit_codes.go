package main

import (
	"errors"
	"os"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/browser"
	"github.com/alnah/go-doc2pdf/internal/config"
	"github.com/alnah/go-doc2pdf/internal/hints"
	"github.com/alnah/go-doc2pdf/internal/office"
)

// Exit codes for the doc2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every item resolved
	ExitGeneral = 1 // General/unexpected error, including cancellation
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, no input
	ExitBackend = 4 // soffice or browser could not start
	ExitAborted = 5 // A document failed every attempt; the run stopped
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// An exhausted item can wrap I/O or lock errors from its last attempt.
	if errors.Is(err, doc2pdf.ErrExhaustedRetries) {
		return ExitAborted
	}

	if errors.Is(err, doc2pdf.ErrAppLaunch) ||
		errors.Is(err, doc2pdf.ErrNoBackend) ||
		errors.Is(err, office.ErrSofficeNotFound) ||
		errors.Is(err, browser.ErrBrowserConnect) {
		return ExitBackend
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrInputTooLarge) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, doc2pdf.ErrInvalidAttempts) ||
		errors.Is(err, doc2pdf.ErrInvalidPollInterval) ||
		errors.Is(err, doc2pdf.ErrInvalidOutputName) ||
		errors.Is(err, doc2pdf.ErrUnsupportedExtension) ||
		errors.Is(err, browser.ErrUnknownEngine) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var cfgErr *configLoadError
	switch {
	case errors.Is(err, office.ErrLocked):
		return hints.ForLockedDocument()
	case errors.Is(err, doc2pdf.ErrExhaustedRetries) && errors.Is(err, doc2pdf.ErrArtifactMissing):
		return hints.ForExhaustedRetries() + hints.ForArtifactTimeout()
	case errors.Is(err, doc2pdf.ErrExhaustedRetries):
		return hints.ForExhaustedRetries()
	case errors.Is(err, office.ErrSofficeNotFound):
		return hints.ForSofficeNotFound()
	case errors.Is(err, browser.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.As(err, &cfgErr) && errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(cfgErr.name))
	}
	return ""
}

// configLoadError remembers which config name failed to load.
type configLoadError struct {
	name string
	err  error
}

func (e *configLoadError) Error() string { return "loading config: " + e.err.Error() }
func (e *configLoadError) Unwrap() error { return e.err }
