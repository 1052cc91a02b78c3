// Package extract wraps completion calls whose output is expected to be
// JSON. Malformed responses are absorbed into a tagged fallback value rather
// than surfaced as errors, so a single bad AI response cannot abort a
// multi-stage pipeline.
package extract

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/internal/model"
	"github.com/marketsmith/marketsmith/internal/resilience"
	"github.com/marketsmith/marketsmith/pkg/llm"
)

// Extractor requests JSON-shaped completions from a fixed model.
type Extractor struct {
	client llm.Client
	model  string
	retry  resilience.RetryConfig
}

// New creates an Extractor bound to the given client and model.
func New(client llm.Client, model string) *Extractor {
	return &Extractor{
		client: client,
		model:  model,
		retry:  resilience.DefaultRetryConfig(),
	}
}

// ExtractJSON sends the prompt with ExpectJSON set and classifies the
// sanitized response. Parse failure is a recoverable outcome and yields
// Unparsed(raw); only provider failures return an error. Callers must branch
// on the result's tag, not assume a well-formed shape.
func (e *Extractor) ExtractJSON(ctx context.Context, prompt, system string) (model.StructuredResult, error) {
	text, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (string, error) {
		return e.client.Complete(ctx, llm.Request{
			Prompt:     prompt,
			System:     system,
			Model:      e.model,
			ExpectJSON: true,
		})
	})
	if err != nil {
		return model.StructuredResult{}, err
	}

	if !json.Valid([]byte(text)) {
		zap.L().Warn("extract: response is not valid JSON, storing raw",
			zap.String("model", e.model),
			zap.Int("chars", len(text)),
		)
		return model.Unparsed(text), nil
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, []byte(text)); err != nil {
		return model.Unparsed(text), nil
	}
	return model.Parsed(json.RawMessage(compacted.Bytes())), nil
}
