package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// chromedpRenderer prints pages with chromedp. The browser lives under its
// own context tree; per-call contexts are bridged in with AfterFunc.
type chromedpRenderer struct {
	cfg           Config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func launchChromedp(ctx context.Context, cfg Config) (renderer, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
	)
	if cfg.Bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.Bin))
	}
	if cfg.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	// Start the browser eagerly so errors surface at launch.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &chromedpRenderer{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

func (r *chromedpRenderer) render(ctx context.Context, target string) ([]byte, error) {
	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, r.cfg.PageTimeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var buf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(r.cfg.PaperWidth).
				WithPaperHeight(r.cfg.PaperHeight).
				WithMarginTop(r.cfg.Margin).
				WithMarginBottom(r.cfg.Margin).
				WithMarginLeft(r.cfg.Margin).
				WithMarginRight(r.cfg.Margin).
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf, nil
}

func (r *chromedpRenderer) close() error {
	r.browserCancel()
	r.allocCancel()
	return nil
}
