package doc2pdf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind classifies a work item.
type Kind int

const (
	KindPDF         Kind = iota // already a PDF, merged as is
	KindConvertible             // needs a backend to become a PDF
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindConvertible:
		return "convertible"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Extension sets. Keys are lower-case and include the leading dot.
var (
	// OfficeExtensions are converted through an office suite.
	OfficeExtensions = map[string]bool{
		".doc": true, ".docx": true, ".odt": true, ".rtf": true,
		".hwp": true, ".hwpx": true,
		".ppt": true, ".pptx": true, ".odp": true,
		".xls": true, ".xlsx": true, ".ods": true,
	}

	// MarkupExtensions are rendered by a headless browser.
	MarkupExtensions = map[string]bool{
		".html": true, ".htm": true, ".md": true, ".markdown": true,
	}
)

const pdfExt = ".pdf"

// DefaultOutputName is the merge output base name used when none is given.
const DefaultOutputName = "merged"

// IsSupported reports whether path has an extension doc2pdf accepts.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == pdfExt || OfficeExtensions[ext] || MarkupExtensions[ext]
}

// WorkItem is one input file and its classification.
// Path is absolute and clean; it is the item's identity.
type WorkItem struct {
	Path string
	Kind Kind
}

// NewWorkItem normalizes path and classifies it by extension.
func NewWorkItem(path string) (WorkItem, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return WorkItem{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	abs = filepath.Clean(abs)

	ext := strings.ToLower(filepath.Ext(abs))
	switch {
	case ext == pdfExt:
		return WorkItem{Path: abs, Kind: KindPDF}, nil
	case OfficeExtensions[ext], MarkupExtensions[ext]:
		return WorkItem{Path: abs, Kind: KindConvertible}, nil
	}
	return WorkItem{}, fmt.Errorf("%w: %q (%s)", ErrUnsupportedExtension, ext, filepath.Base(abs))
}

// Name returns the item's base file name.
func (w WorkItem) Name() string {
	return filepath.Base(w.Path)
}

// Ext returns the item's lower-case extension including the dot.
func (w WorkItem) Ext() string {
	return strings.ToLower(filepath.Ext(w.Path))
}

// PDFPath returns the sibling PDF path a conversion of w produces.
func (w WorkItem) PDFPath() string {
	return strings.TrimSuffix(w.Path, filepath.Ext(w.Path)) + pdfExt
}

// Outcome is the result of one conversion attempt.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ConversionAttempt describes one iteration of the retry loop.
type ConversionAttempt struct {
	Target  WorkItem
	Number  int // 1-based
	Max     int
	Outcome Outcome
	Err     error // set when Outcome is OutcomeFailure
}

// SkipReason explains why an item was dropped without conversion.
type SkipReason string

const (
	SkipSelfReference SkipReason = "merge output"
	SkipEmptyPDF      SkipReason = "missing or empty PDF"
)

// SkippedItem records a silently dropped item.
type SkippedItem struct {
	Item   WorkItem
	Reason SkipReason
}

// RunState is the state of a queue run.
type RunState int

const (
	RunStateRunning RunState = iota
	RunStateCompleted
	RunStateAborted
	RunStateCanceled
)

func (s RunState) String() string {
	switch s {
	case RunStateRunning:
		return "running"
	case RunStateCompleted:
		return "completed"
	case RunStateAborted:
		return "aborted"
	case RunStateCanceled:
		return "canceled"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// RunResult is built incrementally while the runner drains a worklist.
type RunResult struct {
	ProducedPDFs []string // worklist order
	Aborted      bool
	FailedItem   *WorkItem
	Cause        error // why the run stopped early, nil on completion
	Canceled     bool
	Skipped      []SkippedItem
	Deleted      []DeleteOutcome // source deletions after successful conversions
	done         bool
}

// State derives the run state from the result flags.
func (r *RunResult) State() RunState {
	switch {
	case r.Aborted:
		return RunStateAborted
	case r.Canceled:
		return RunStateCanceled
	case r.done:
		return RunStateCompleted
	}
	return RunStateRunning
}

// DeleteOutcome is the result of a best-effort file removal.
// Err is informational only and never escalated.
type DeleteOutcome struct {
	Path string
	Err  error
}

// OK reports whether the file was removed.
func (d DeleteOutcome) OK() bool { return d.Err == nil }

// RunOptions configures one pipeline run.
type RunOptions struct {
	OutputName                    string // merge output base name, without .pdf
	DeleteSourceOnSuccess         bool
	Merge                         bool
	DeleteIntermediatesAfterMerge bool
}

// outputFileName returns the merge output file name, applying the default.
func (o RunOptions) outputFileName() string {
	return o.name() + pdfExt
}

func (o RunOptions) name() string {
	if n := strings.TrimSpace(o.OutputName); n != "" {
		return n
	}
	return DefaultOutputName
}

// Validate rejects output names that would escape the output directory.
func (o RunOptions) Validate() error {
	n := o.name()
	if strings.ContainsAny(n, "/\\\x00") || n == "." || n == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidOutputName, o.OutputName)
	}
	return nil
}
