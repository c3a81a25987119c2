package browser

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// rodRenderer prints pages with go-rod. Rod downloads Chromium on first
// run when no browser is found.
type rodRenderer struct {
	browser *rod.Browser
	l       *launcher.Launcher
	cfg     Config
}

func launchRod(ctx context.Context, cfg Config) (renderer, error) {
	l := launcher.New()
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	// NoSandbox required for CI and containerized environments
	if cfg.NoSandbox || cfg.Bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	if err := ctx.Err(); err != nil {
		_ = b.Close()
		l.Kill()
		return nil, err
	}
	return &rodRenderer{browser: b, l: l, cfg: cfg}, nil
}

func (r *rodRenderer) render(ctx context.Context, target string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.cfg.PageTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.Timeout(timeout).PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(r.cfg.PaperWidth),
		PaperHeight:     floatPtr(r.cfg.PaperHeight),
		MarginTop:       floatPtr(r.cfg.Margin),
		MarginBottom:    floatPtr(r.cfg.Margin),
		MarginLeft:      floatPtr(r.cfg.Margin),
		MarginRight:     floatPtr(r.cfg.Margin),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return buf, nil
}

func (r *rodRenderer) close() error {
	err := r.browser.Close()
	r.l.Kill()
	r.l.Cleanup()
	return err
}

func lookPathRod() (string, bool) {
	return launcher.LookPath()
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
