package article

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher renders pages in headless Chromium for sites that build
// their content with JavaScript.
type BrowserFetcher struct {
	pw        *playwright.Playwright
	browser   playwright.Browser
	timeout   time.Duration
	userAgent string
}

// NewBrowserFetcher starts the Playwright driver and a shared browser.
func NewBrowserFetcher(timeout time.Duration, userAgent string) (*BrowserFetcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BrowserFetcher{pw: pw, browser: browser, timeout: timeout, userAgent: userAgent}, nil
}

// Close stops the browser and the Playwright driver.
func (f *BrowserFetcher) Close() {
	if f.browser != nil {
		f.browser.Close()
	}
	if f.pw != nil {
		f.pw.Stop()
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bctx, err := f.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(f.userAgent),
	})
	if err != nil {
		return nil, err
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, err
	}
	defer page.Close()

	// skip heavy assets, only the DOM matters
	if err := page.Route("**/*.{png,jpg,jpeg,gif,svg,woff,woff2}", func(route playwright.Route) {
		route.Abort()
	}); err != nil {
		return nil, err
	}

	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}
	resp, err := page.Goto(targetURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", targetURL, err)
	}
	if resp != nil && !resp.Ok() {
		return nil, fmt.Errorf("render %s: bad status %d", targetURL, resp.Status())
	}

	content, err := page.Content()
	if err != nil {
		return nil, err
	}
	return &Page{URL: page.URL(), HTML: content}, nil
}
