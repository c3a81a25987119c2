package doc2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// Merger concatenates PDFs into <outputName>.pdf and returns its path.
type Merger interface {
	Merge(ctx context.Context, paths []string, outputName string) (string, error)
}

// Compile-time interface implementation check.
var _ Merger = (*PDFMerger)(nil)

// PDFMerger merges PDFs with pdfcpu.
type PDFMerger struct {
	logger *zap.Logger
}

// NewPDFMerger creates a merger. Only WithLogger is relevant here.
func NewPDFMerger(opts ...Option) *PDFMerger {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return &PDFMerger{logger: s.logger}
}

// MergeOutputPath returns where a merge of paths named outputName is written:
// the directory of the first path.
func MergeOutputPath(paths []string, outputName string) string {
	if len(paths) == 0 {
		return ""
	}
	name := RunOptions{OutputName: outputName}.outputFileName()
	return filepath.Join(filepath.Dir(fileutil.Normalize(paths[0])), name)
}

// MergeInputs keeps the paths that still exist, are non-empty and are not
// the output itself, preserving order.
func MergeInputs(paths []string, output string) []string {
	var out []string
	for _, p := range paths {
		if fileutil.SamePath(p, output) || !fileutil.NonEmptyFile(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Merge appends the pages of every surviving input, in order, into one
// document. The output is written to a temporary file and renamed into
// place, so a failed merge never leaves a partial output behind.
// Every failure matches ErrMerge.
func (m *PDFMerger) Merge(ctx context.Context, paths []string, outputName string) (out string, err error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: %w", ErrMerge, ErrNoMergeInputs)
	}
	if err := (RunOptions{OutputName: outputName}).Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMerge, err)
	}

	output := MergeOutputPath(paths, outputName)
	inputs := MergeInputs(paths, output)
	if len(inputs) == 0 {
		return "", fmt.Errorf("%w: %w", ErrMerge, ErrNoMergeInputs)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), ".doc2pdf-merge-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: creating temp file: %v", ErrMerge, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	defer func() {
		// pdfcpu can panic on malformed input; a merge failure is never fatal.
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMerge, r)
		}
		if err != nil {
			_ = os.Remove(tmpPath)
			out = ""
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.MergeCreateFile(inputs, tmpPath, false, conf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMerge, err)
	}
	// CreateTemp files are private.
	if err := os.Chmod(tmpPath, fileutil.OutputPerm); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMerge, err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMerge, err)
	}

	m.logger.Info("merged PDFs", zap.String("output", output), zap.Int("inputs", len(inputs)))
	return output, nil
}

// DeleteIntermediates waits settle, then removes every path except output.
// Failures are reported per file and never escalated; only cancellation
// of the settle wait returns an error.
func DeleteIntermediates(ctx context.Context, paths []string, output string, settle time.Duration) ([]DeleteOutcome, error) {
	if err := fileutil.Sleep(ctx, settle); err != nil {
		return nil, err
	}

	outcomes := make([]DeleteOutcome, 0, len(paths))
	for _, p := range paths {
		if fileutil.SamePath(p, output) {
			continue
		}
		outcomes = append(outcomes, DeleteOutcome{Path: p, Err: fileutil.Remove(p)})
	}
	return outcomes, nil
}
