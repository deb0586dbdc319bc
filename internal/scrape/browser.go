package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// RenderedFetcher fetches pages through a headless browser. The association
// site has intermittently served its tables from client-side rendering;
// when plain HTTP starts returning shells, this fetcher is switched in by
// configuration and satisfies the same contract as Fetcher.
type RenderedFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

// NewRenderedFetcher starts a headless Chrome allocator.
func NewRenderedFetcher(timeout time.Duration) *RenderedFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(browserHeaders["User-Agent"]),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &RenderedFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
	}
}

// Close releases the browser allocator.
func (f *RenderedFetcher) Close() {
	if f.cancel != nil {
		f.cancel()
	}
}

// Fetch tries each URL in order, rendering the page and returning its HTML.
// Mirror fallback and error semantics match Fetcher.Fetch.
func (f *RenderedFetcher) Fetch(ctx context.Context, urls []string) (string, error) {
	var lastErr error

	for _, url := range urls {
		html, err := f.render(ctx, url)
		if err != nil {
			lastErr = err
			log.Printf("  ⚠️  Rendered fetch failed for %s: %v", url, err)
			continue
		}

		log.Printf("  ✓ Rendered %d bytes from %s", len(html), url)
		return html, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no URLs configured")
	}
	return "", fmt.Errorf("%w: %v", ErrFetchExhausted, lastErr)
}

// render navigates to the URL and captures the document after scripts run.
func (f *RenderedFetcher) render(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(f.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, f.timeout)
	defer cancel()

	// Stop rendering if the caller's context dies first.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-browserCtx.Done():
		}
	}()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second), // Allow JS to render
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}

	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}
