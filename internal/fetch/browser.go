package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// Shorter pages are usually rendered client-side and are retried in a browser.
const MinContentLength = 200

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// This is useful for JavaScript-heavy pages that don't render content on initial load.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, verbose bool) (string, error) {
	if verbose {
		log.Printf("[browser] Starting headless browser for: %s", url)
	}

	// Create browser context with timeout
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

	// Set timeout
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string

	// Navigate, wait for page to be ready, then extract HTML
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		// Wait for the page to load - use a combination of strategies
		chromedp.WaitReady("body"),
		// Additional wait for JavaScript to render content
		chromedp.Sleep(3*time.Second),
		// Try to dismiss common cookie banners
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Swedish sites mostly label the consent button "Godkänn" or "Acceptera".
			clickCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"], button[id*="godkann"], button[class*="consent"]`, chromedp.NodeVisible).Do(clickCtx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		// Extract the full HTML
		chromedp.OuterHTML("html", &html),
	)

	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if verbose {
		log.Printf("[browser] Rendered HTML: %d bytes", len(html))
	}

	return html, nil
}

// BrowserSimple is a simplified version that uses default timeout.
func BrowserSimple(ctx context.Context, url string, verbose bool) (string, error) {
	return WithBrowser(ctx, url, 30*time.Second, verbose)
}

// Page fetches a URL and fills in Result.Text from the given selectors.
// When useBrowser is set and the plain fetch yields too little text, the
// page is rendered in a headless browser instead.
func Page(ctx context.Context, urlStr string, selectors []string, opts *Options, useBrowser bool) (*Result, error) {
	result, err := URL(ctx, urlStr, opts)
	if err != nil && !useBrowser {
		return nil, err
	}

	if err == nil {
		text, extractErr := ExtractMainText(result.HTML, selectors)
		if extractErr == nil {
			result.Text = text
		}
		if !useBrowser || !ShouldUseBrowser(result.Text) {
			return result, nil
		}
	}

	html, browserErr := WithBrowser(ctx, urlStr, DefaultTimeout, false)
	if browserErr != nil {
		if result != nil && err == nil {
			return result, nil
		}
		return nil, &Error{URL: urlStr, Message: "browser fallback failed", Cause: browserErr}
	}

	text, extractErr := ExtractMainText(html, selectors)
	if extractErr != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract text", Cause: extractErr}
	}
	return &Result{URL: urlStr, HTML: html, Text: text, StatusCode: 200}, nil
}
