package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Default capture parameters for the grid preview. The width matches a
// seven-column week at a comfortable cell size; the height covers the
// default 06:00-21:00 window at 80px/hour plus the bar section.
const (
	DefaultWidth      = 1400
	DefaultHeight     = 1320
	DefaultTimeoutSec = 30
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL is the grid page, e.g. "http://127.0.0.1:8080/grid".
	URL string

	// OutputPath is where the PNG is written, e.g.
	// "/var/lib/calgrid/preview.png".
	OutputPath string

	// Width / Height are the viewport size; zero uses the defaults.
	Width  int
	Height int

	// Timeout bounds the entire capture; zero uses DefaultTimeoutSec.
	Timeout time.Duration
}

// GridPNG drives a headless Chromium via chromedp: navigate to the /grid
// page, wait for the rendering-complete signal, and write a full-page PNG.
//
// Readiness condition: the page root carries data-grid-ready="true" once
// the layout has been rendered into the DOM.
func GridPNG(parentCtx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-grid-ready="true"]`, chromedp.ByQuery),
		// Small extra delay for final paints.
		chromedp.Sleep(250 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
