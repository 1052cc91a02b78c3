// Package llm defines the provider-neutral completion client used by the
// analysis pipeline, plan synthesis, and the streaming relay. Concrete
// providers live in pkg/anthropic and pkg/openai.
package llm

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrProvider is the base error for transport, quota, and API failures.
// Clients wrap it so callers can branch with eris/errors.Is. No retries are
// built into clients; retry is caller policy.
var ErrProvider = eris.New("llm: provider request failed")

// Request describes one completion call.
type Request struct {
	Prompt      string
	System      string
	Model       string
	Temperature *float64
	MaxTokens   int

	// ExpectJSON asks the client to strip a single wrapping code fence from
	// the response. The client never parses JSON itself.
	ExpectJSON bool
}

// Client sends prompts to a text-completion provider.
type Client interface {
	// Complete returns the full response text.
	Complete(ctx context.Context, req Request) (string, error)

	// CompleteStream returns a lazy, single-pass token stream. The caller
	// must drain C() or call Close(); abandoning the stream without Close
	// leaks the underlying provider call.
	CompleteStream(ctx context.Context, req Request) (*Stream, error)
}

// fenceRe matches a response that is entirely wrapped in one triple-backtick
// code block, with an optional language tag.
var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z0-9]*[ \t]*\n?(.*?)\n?[ \t]*```$")

// StripFence removes a single leading/trailing fenced code block when the
// whole response is wrapped in one. Anything else is returned unmodified.
func StripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	m := fenceRe.FindStringSubmatch(trimmed)
	if m == nil {
		return s
	}
	return strings.TrimSpace(m[1])
}
