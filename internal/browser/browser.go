package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"MoversScanner/internal/config"
)

// Session wraps the single headless-browser instance shared across all
// candidates in a run. Scrapers open short-lived tabs derived from it; the
// session itself is closed exactly once when the run ends.
type Session struct {
	cfg             config.BrowserConfig
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
}

// NewSession launches the browser process. A broken Chrome install fails
// here, before any scraping begins.
func NewSession(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	}
	if !cfg.Windowed {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Session{
		cfg:             cfg,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		allocatorCancel: allocatorCancel,
	}, nil
}

// NewTab opens a fresh tab with a bounded lifetime. The caller must invoke
// the cancel func on every exit path.
func (s *Session) NewTab(timeout time.Duration) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	timedCtx, timedCancel := context.WithTimeout(tabCtx, timeout)
	return timedCtx, func() {
		timedCancel()
		tabCancel()
	}
}

// Config exposes the browser tuning knobs to scrapers.
func (s *Session) Config() config.BrowserConfig {
	return s.cfg
}

// CaptureHTML navigates a fresh tab to url, waits for waitSelector to
// render, and returns the page's outer HTML. A selector that never appears
// within the bounded wait surfaces as a wrapped timeout error.
func (s *Session) CaptureHTML(url, waitSelector string) (string, error) {
	timeout := s.cfg.PageTimeout() + s.cfg.SettleDelay() + s.cfg.SelectorTimeout()
	tabCtx, cancel := s.NewTab(timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.cfg.SettleDelay()),
		chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("capture %s (wait %q): %w", url, waitSelector, err)
	}
	return html, nil
}

// Close releases the browser process and its allocator. Safe to call once
// on every exit path, including fatal early exits.
func (s *Session) Close() {
	s.browserCancel()
	s.allocatorCancel()
}
