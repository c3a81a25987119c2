package doc2pdf

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// Runner drains a worklist front to back, converting what needs converting
// and collecting the PDFs to merge. It stops at the first item that
// exhausts its attempts.
type Runner struct {
	conv Converter
	s    settings
}

// NewRunner creates a Runner using conv for convertible items.
func NewRunner(conv Converter, opts ...Option) (*Runner, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return &Runner{conv: conv, s: s}, nil
}

// Run processes wl until it is empty, an item exhausts its attempts, ctx is
// canceled, or the converter fails unexpectedly. Resolved items are removed
// from wl; the failed item and everything after it stay queued.
//
// The returned error is nil for completed and aborted runs; it is set for
// cancellation and unexpected failures. The result is never nil.
// The converter is closed before Run returns.
func (r *Runner) Run(ctx context.Context, wl *Worklist, opts RunOptions) (res *RunResult, err error) {
	res = &RunResult{}
	defer func() {
		if cerr := r.conv.Close(); cerr != nil {
			r.s.logger.Warn("closing converter", zap.Error(cerr))
		}
	}()

	if err := opts.Validate(); err != nil {
		res.Cause = err
		return res, err
	}
	outName := opts.outputFileName()

	for {
		if err := ctx.Err(); err != nil {
			res.Canceled = true
			res.Cause = err
			return res, err
		}

		item, ok := wl.Front()
		if !ok {
			break
		}

		if item.Name() == outName {
			wl.removeItem(item)
			r.skip(res, item, SkipSelfReference)
			continue
		}

		if item.Kind == KindPDF {
			wl.removeItem(item)
			if !fileutil.NonEmptyFile(item.Path) {
				r.skip(res, item, SkipEmptyPDF)
				continue
			}
			res.ProducedPDFs = append(res.ProducedPDFs, item.Path)
			r.s.metrics.item("accepted")
			r.s.logger.Debug("accepted existing PDF", zap.String("item", item.Path))
			continue
		}

		pdf, err := r.conv.Convert(ctx, item)
		if err != nil {
			switch {
			case errors.Is(err, ErrExhaustedRetries):
				failed := item
				res.Aborted = true
				res.FailedItem = &failed
				res.Cause = err
				r.s.metrics.item("failed")
				r.s.logger.Error("run aborted", zap.String("item", item.Path), zap.Error(err))
				return res, nil
			case ctx.Err() != nil:
				res.Canceled = true
				res.Cause = ctx.Err()
				return res, ctx.Err()
			default:
				res.Cause = err
				r.s.logger.Error("run failed", zap.String("item", item.Path), zap.Error(err))
				return res, err
			}
		}

		wl.removeItem(item)
		res.ProducedPDFs = append(res.ProducedPDFs, pdf)
		r.s.metrics.item("converted")

		if opts.DeleteSourceOnSuccess {
			d := DeleteOutcome{Path: item.Path, Err: fileutil.Remove(item.Path)}
			res.Deleted = append(res.Deleted, d)
			r.s.metrics.deleted("source", d)
			if d.Err != nil {
				r.s.logger.Warn("could not delete source", zap.String("item", item.Path), zap.Error(d.Err))
			}
		}
	}

	res.done = true
	return res, nil
}

func (r *Runner) skip(res *RunResult, item WorkItem, reason SkipReason) {
	res.Skipped = append(res.Skipped, SkippedItem{Item: item, Reason: reason})
	r.s.metrics.item("skipped")
	r.s.logger.Debug("skipped item", zap.String("item", item.Path), zap.String("reason", string(reason)))
}
