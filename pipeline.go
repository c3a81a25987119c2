package doc2pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline runs a worklist through conversion and the merge stage.
type Pipeline struct {
	conv   Converter
	merger Merger
	s      settings
}

// NewPipeline creates a Pipeline driving backends through a Driver and
// merging with pdfcpu unless WithMerger is given.
func NewPipeline(backends []Backend, opts ...Option) (*Pipeline, error) {
	d, err := NewDriver(backends, opts...)
	if err != nil {
		return nil, err
	}
	return NewPipelineWithConverter(d, opts...)
}

// NewPipelineWithConverter creates a Pipeline around an existing Converter.
func NewPipelineWithConverter(conv Converter, opts ...Option) (*Pipeline, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	merger := s.merger
	if merger == nil {
		merger = NewPDFMerger(WithLogger(s.logger))
	}
	return &Pipeline{conv: conv, merger: merger, s: s}, nil
}

// Summary is the outcome of Execute.
type Summary struct {
	RunID      string
	Run        *RunResult
	MergedPath string
	MergeErr   error // merge failures are recovered, never returned by Execute
	Deleted    []DeleteOutcome
	Duration   time.Duration
}

// Succeeded reports whether the run completed (merge failures aside).
func (s *Summary) Succeeded() bool {
	return s.Run != nil && s.Run.State() == RunStateCompleted
}

// Message is the final one-paragraph report for users.
func (s *Summary) Message() string {
	if s.Run == nil {
		return "nothing was processed"
	}
	switch s.Run.State() {
	case RunStateAborted:
		name := ""
		if s.Run.FailedItem != nil {
			name = s.Run.FailedItem.Name()
		}
		return fmt.Sprintf("stopped: %s could not be converted after all attempts; check that it is not open in another program", name)
	case RunStateCanceled:
		return "canceled"
	case RunStateRunning:
		if s.Run.Cause != nil {
			return "failed: " + s.Run.Cause.Error()
		}
		return "incomplete"
	}

	msg := fmt.Sprintf("all done: %d PDF(s) ready", len(s.Run.ProducedPDFs))
	switch {
	case s.MergedPath != "":
		msg += ", merged into " + s.MergedPath
	case s.MergeErr != nil:
		msg += ", merge skipped: " + s.MergeErr.Error()
	}
	return msg
}

// Execute drains wl, then merges the produced PDFs when opts.Merge is set
// and the run was not aborted. The returned error is set only for
// cancellation and unexpected failures; the summary is never nil.
func (p *Pipeline) Execute(ctx context.Context, wl *Worklist, opts RunOptions) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	log := p.s.logger.With(zap.String("run_id", sum.RunID))

	p.s.report(Status{Phase: PhaseStart, Message: fmt.Sprintf("starting: %d item(s)", wl.Len())})
	log.Info("run started", zap.Int("items", wl.Len()), zap.String("output_name", opts.name()))

	runner := &Runner{conv: p.conv, s: p.s}
	runner.s.logger = log

	res, err := runner.Run(ctx, wl, opts)
	sum.Run = res
	defer func() { sum.Duration = time.Since(start) }()

	switch {
	case err != nil && errors.Is(err, context.Canceled), err != nil && errors.Is(err, context.DeadlineExceeded):
		p.s.report(Status{Phase: PhaseCanceled, Message: "canceled"})
		log.Warn("run canceled", zap.Error(err))
		return sum, err
	case err != nil:
		p.s.report(Status{Phase: PhaseFailed, Message: "error: " + err.Error()})
		return sum, err
	case res.Aborted:
		p.s.report(Status{Phase: PhaseAborted, Item: res.FailedItem, Message: "failed: " + res.FailedItem.Name()})
		return sum, nil
	}

	if opts.Merge && len(res.ProducedPDFs) > 0 {
		p.s.report(Status{Phase: PhaseMerging, Message: "merging PDFs..."})
		merged, mergeErr := p.merger.Merge(ctx, res.ProducedPDFs, opts.name())
		if mergeErr != nil {
			if ctx.Err() != nil {
				p.s.report(Status{Phase: PhaseCanceled, Message: "canceled"})
				return sum, ctx.Err()
			}
			sum.MergeErr = mergeErr
			p.s.metrics.merge("failed")
			log.Warn("merge skipped", zap.Error(mergeErr))
		} else {
			sum.MergedPath = merged
			p.s.metrics.merge("ok")
		}

		if merged != "" && opts.DeleteIntermediatesAfterMerge {
			deleted, err := DeleteIntermediates(ctx, res.ProducedPDFs, merged, p.s.settleDelay)
			sum.Deleted = deleted
			for _, d := range deleted {
				p.s.metrics.deleted("intermediate", d)
				if d.Err != nil {
					log.Warn("could not delete intermediate", zap.String("pdf", d.Path), zap.Error(d.Err))
				}
			}
			if err != nil {
				p.s.report(Status{Phase: PhaseCanceled, Message: "canceled"})
				return sum, err
			}
		}
	}

	p.s.report(Status{Phase: PhaseDone, Message: "done"})
	log.Info("run completed",
		zap.Int("pdfs", len(res.ProducedPDFs)),
		zap.Int("skipped", len(res.Skipped)),
		zap.String("merged", sum.MergedPath))
	return sum, nil
}
