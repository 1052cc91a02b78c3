package fetch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// extractTextJS strips non-content elements from the loaded DOM and returns
// the remaining visible text.
const extractTextJS = `(() => {
	for (const tag of ['script', 'style', 'nav', 'footer', 'aside', 'iframe', 'header']) {
		document.querySelectorAll(tag).forEach((el) => el.remove());
	}
	return document.body ? document.body.innerText : '';
})()`

// ChromeFetcher drives headless Chrome via chromedp. Each Fetch runs in an
// isolated browser context that is released on every exit path.
type ChromeFetcher struct {
	timeout  time.Duration
	maxChars int
}

// NewChromeFetcher creates a fetcher with the given navigation timeout and
// content cap. Zero values fall back to 60s and DefaultMaxContentChars.
func NewChromeFetcher(timeout time.Duration, maxChars int) *ChromeFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxContentChars
	}
	return &ChromeFetcher{timeout: timeout, maxChars: maxChars}
}

var _ Fetcher = (*ChromeFetcher)(nil)

// Fetch navigates to url, waits for the document to settle, and returns the
// cleaned visible text truncated to the configured cap.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	runCtx, runCancel := context.WithTimeout(tabCtx, f.timeout)
	defer runCancel()

	start := time.Now()
	var text string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(extractTextJS, &text),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", eris.Wrapf(ErrTimeout, "url %s after %s", url, f.timeout)
		}
		return "", eris.Wrapf(ErrScrape, "url %s: %v", url, err)
	}

	text = Truncate(strings.TrimSpace(text), f.maxChars)

	zap.L().Info("fetch: page scraped",
		zap.String("url", url),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return text, nil
}
