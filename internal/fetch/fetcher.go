// Package fetch retrieves the visible text of a web page with a headless
// browser, bounded in time and output size.
package fetch

import (
	"context"

	"github.com/rotisserie/eris"
)

// DefaultMaxContentChars caps extracted text to keep downstream prompts
// bounded.
const DefaultMaxContentChars = 15000

// ErrTimeout marks a navigation that exceeded the configured deadline.
var ErrTimeout = eris.New("fetch: navigation timed out")

// ErrScrape marks any other navigation or evaluation failure.
var ErrScrape = eris.New("fetch: scrape failed")

// Fetcher loads a URL and returns its cleaned visible text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Truncate bounds s to at most max runes. Truncation is deterministic by
// length and indistinguishable from a short page; it is never an error.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
