package evidence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

// CaptureOptions control the headless-browser capture.
type CaptureOptions struct {
	// Timeout bounds the whole navigate+render+capture sequence.
	Timeout time.Duration
	// ScreenshotDir is where the screenshot is written. Empty disables
	// writing; facts are still extracted.
	ScreenshotDir string
	// SettleDelay gives client-side rendering time to finish after the
	// body is ready.
	SettleDelay time.Duration
}

// DefaultCaptureOptions returns the capture defaults.
func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{
		Timeout:     30 * time.Second,
		SettleDelay: 2 * time.Second,
	}
}

// Capture renders url in a headless browser and returns the visual facts
// observed there. Any failure (unreachable server, missing Chrome, timeout)
// returns nil: the unavailable sentinel. Capture never makes validation
// fail on its own.
//
// Requires Chrome/Chromium on the system.
func Capture(ctx context.Context, url string, opts CaptureOptions) *VisualFacts {
	if url == "" {
		return nil
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var html string
	var shot []byte
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if opts.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(opts.SettleDelay))
	}
	actions = append(actions,
		chromedp.OuterHTML("html", &html),
		chromedp.CaptureScreenshot(&shot),
	)

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil
	}

	facts := ExtractFacts(html)
	if opts.ScreenshotDir != "" && len(shot) > 0 {
		if path, err := writeScreenshot(opts.ScreenshotDir, shot); err == nil {
			facts.ScreenshotPath = path
		}
	}
	return facts
}

// writeScreenshot stores the capture under a unique name.
func writeScreenshot(dir string, shot []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("capture-%s.png", uuid.NewString()))
	if err := os.WriteFile(path, shot, 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}
