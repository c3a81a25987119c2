package doc2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// Converter turns one convertible item into a PDF.
type Converter interface {
	Convert(ctx context.Context, item WorkItem) (string, error)
	Close() error
}

// Compile-time interface implementation check.
var _ Converter = (*Driver)(nil)

// Driver owns at most one external application at a time and converts
// items through it with a bounded number of attempts.
// A Driver is not safe for concurrent use.
type Driver struct {
	backends []Backend
	s        settings

	app     Application
	current Backend
}

// NewDriver creates a Driver choosing among backends by file extension.
// No application is launched until the first Convert.
func NewDriver(backends []Backend, opts ...Option) (*Driver, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return &Driver{backends: backends, s: s}, nil
}

// Convert produces item's sibling PDF and returns its path.
//
// Each attempt opens the document, exports it, and polls for a non-empty
// output file. The application is reset after every attempt. When all
// attempts fail the error is a *ConversionError matching ErrExhaustedRetries.
// Launch failures and cancellation are returned as is and are not retried.
//
// A PDF already at the destination is moved aside first and put back
// unless the conversion succeeds.
func (d *Driver) Convert(ctx context.Context, item WorkItem) (pdf string, err error) {
	if item.Kind != KindConvertible {
		return "", fmt.Errorf("%w: %s", ErrNotConvertible, item.Name())
	}

	dst := item.PDFPath()
	log := d.s.logger.With(zap.String("item", item.Path))
	start := time.Now()

	backup, err := stashExisting(dst)
	if err != nil {
		return "", fmt.Errorf("moving existing %s aside: %w", filepath.Base(dst), err)
	}
	if backup != "" {
		defer func() {
			if err == nil {
				_ = fileutil.Remove(backup)
				return
			}
			if rerr := restoreStashed(backup, dst); rerr != nil {
				log.Error("could not restore existing PDF", zap.String("pdf", dst), zap.String("backup", backup), zap.Error(rerr))
			}
		}()
	}

	var last error
	for n := 1; n <= d.s.attempts; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		app, err := d.ensureApp(ctx, item.Ext())
		if err != nil {
			return "", err
		}
		backend := d.current.Name()

		attempt := ConversionAttempt{Target: item, Number: n, Max: d.s.attempts, Outcome: OutcomePending}
		d.notify(backend, attempt)

		err = d.attempt(ctx, app, item.Path, dst)
		d.reset(ctx, app)

		if err == nil {
			attempt.Outcome = OutcomeSuccess
			d.notify(backend, attempt)
			d.s.metrics.converted(backend, start)
			log.Info("converted", zap.String("pdf", dst), zap.Int("attempt", n), zap.String("backend", backend))
			return dst, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		last = err
		attempt.Outcome = OutcomeFailure
		attempt.Err = err
		d.notify(backend, attempt)
		log.Warn("conversion attempt failed",
			zap.Int("attempt", n),
			zap.Int("max_attempts", d.s.attempts),
			zap.String("backend", backend),
			zap.Error(err))

		if n < d.s.attempts {
			if err := fileutil.Sleep(ctx, d.s.retryPause); err != nil {
				return "", err
			}
		}
	}

	log.Error("giving up on item", zap.Int("attempts", d.s.attempts), zap.Error(last))
	return "", &ConversionError{Item: item, Attempts: d.s.attempts, Last: last}
}

// attempt runs one open/export cycle and waits for the artifact.
func (d *Driver) attempt(ctx context.Context, app Application, src, dst string) error {
	// Output left by a previous attempt would satisfy the check below.
	if err := fileutil.Remove(dst); err != nil {
		d.s.logger.Debug("could not remove stale output", zap.String("pdf", dst), zap.Error(err))
	}

	if err := app.Open(ctx, src); err != nil {
		return wrapIfNot(err, ErrDocumentOpen)
	}
	if err := app.Export(ctx, dst); err != nil {
		return wrapIfNot(err, ErrExport)
	}

	ok, err := fileutil.WaitNonEmpty(ctx, dst, d.s.artifactTimeout, d.s.pollInterval)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrArtifactMissing, dst)
	}
	return nil
}

// ensureApp returns an application able to handle ext, launching it if
// needed. A running application for another backend is quit first so that
// no two instances ever coexist.
func (d *Driver) ensureApp(ctx context.Context, ext string) (Application, error) {
	if d.app != nil && d.current.Supports(ext) {
		return d.app, nil
	}

	b := backendFor(d.backends, ext)
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoBackend, ext)
	}

	if d.app != nil {
		d.s.logger.Debug("switching backend", zap.String("from", d.current.Name()), zap.String("to", b.Name()))
		if err := d.Close(); err != nil {
			d.s.logger.Warn("quitting application failed", zap.Error(err))
		}
	}

	app, err := b.Launch(ctx)
	d.s.metrics.launch(b.Name(), err)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrAppLaunch, b.Name(), err)
	}
	d.s.logger.Info("application launched", zap.String("backend", b.Name()))

	d.app = app
	d.current = b
	return app, nil
}

// reset returns the application to an idle state. If that fails the
// application is discarded so the next attempt starts from a fresh launch.
func (d *Driver) reset(ctx context.Context, app Application) {
	// Reset must run even when ctx is canceled.
	err := app.Reset(context.WithoutCancel(ctx))
	if err == nil {
		return
	}
	d.s.logger.Warn("reset failed, relaunching on next attempt", zap.Error(err))
	if err := d.Close(); err != nil {
		d.s.logger.Warn("quitting application failed", zap.Error(err))
	}
}

// Close quits the running application, if any. It is safe to call more
// than once; each launched application is quit exactly once.
func (d *Driver) Close() error {
	if d.app == nil {
		return nil
	}
	app, name := d.app, d.current.Name()
	d.app, d.current = nil, nil

	if err := app.Quit(); err != nil {
		return fmt.Errorf("quitting %s: %w", name, err)
	}
	d.s.logger.Info("application closed", zap.String("backend", name))
	return nil
}

// Running reports whether an application is currently open.
func (d *Driver) Running() bool {
	return d.app != nil
}

// notify reports a on behalf of backend; d.current may already be gone
// after a failed reset.
func (d *Driver) notify(backend string, a ConversionAttempt) {
	if a.Outcome != OutcomePending {
		d.s.metrics.attempt(backend, a.Outcome)
		return
	}
	item := a.Target
	d.s.report(Status{
		Phase:       PhaseConverting,
		Item:        &item,
		Attempt:     a.Number,
		MaxAttempts: a.Max,
	})
}

// stashExisting renames an existing file at path to a hidden sibling and
// returns the sibling's path, or "" when there is nothing at path.
func stashExisting(path string) (string, error) {
	if !fileutil.FileExists(path) {
		return "", nil
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.bak")
	if err != nil {
		return "", err
	}
	backup := f.Name()
	_ = f.Close()

	if err := os.Rename(path, backup); err != nil {
		_ = os.Remove(backup)
		return "", err
	}
	return backup, nil
}

// restoreStashed puts backup back at path, replacing any partial output.
func restoreStashed(backup, path string) error {
	if err := fileutil.Remove(path); err != nil {
		return err
	}
	return os.Rename(backup, path)
}

// wrapIfNot wraps err with sentinel unless it already matches it.
func wrapIfNot(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
