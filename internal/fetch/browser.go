package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/S3OD177/price-monitor-sub000/internal/browser"
	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher retrieves pages through a headless browser and returns the
// rendered DOM. It satisfies the same contract as HTTPFetcher so the
// extraction pipeline is unchanged either way.
type BrowserFetcher struct {
	browser *browser.Browser
}

func NewBrowserFetcher(b *browser.Browser) *BrowserFetcher {
	return &BrowserFetcher{browser: b}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := f.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	resp, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if resp != nil && (resp.Status() < 200 || resp.Status() >= 300) {
		return nil, &StatusError{
			StatusCode: resp.Status(),
			Status:     fmt.Sprintf("%d %s", resp.Status(), http.StatusText(resp.Status())),
			URL:        pageURL,
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}
	return []byte(html), nil
}

func (f *BrowserFetcher) Close() error {
	return f.browser.Close()
}
