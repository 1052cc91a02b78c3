// Package anthropic implements llm.Client on top of the official
// anthropic-sdk-go, for both blocking completions and token streaming.
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/pkg/llm"
)

// defaultMaxTokens applies when the request leaves MaxTokens unset; the
// Messages API requires an explicit cap.
const defaultMaxTokens = 2048

// Client is an Anthropic-backed llm.Client.
type Client struct {
	client sdk.Client
}

var _ llm.Client = (*Client)(nil)

// NewClient creates a client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
	}
}

func (c *Client) params(req llm.Request) sdk.MessageNewParams {
	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}
	return params
}

// Complete sends a single message and returns the concatenated response text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	msg, err := c.client.Messages.New(ctx, c.params(req))
	if err != nil {
		return "", eris.Wrap(llm.ErrProvider, err.Error())
	}

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	text := b.String()

	zap.L().Debug("anthropic: completion",
		zap.String("model", req.Model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	if req.ExpectJSON {
		text = llm.StripFence(text)
	}
	return text, nil
}

// CompleteStream opens a streaming message and relays text deltas onto an
// llm.Stream. Closing the stream cancels the SDK call.
func (c *Client) CompleteStream(ctx context.Context, req llm.Request) (*llm.Stream, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	sdkStream := c.client.Messages.NewStreaming(streamCtx, c.params(req))
	if err := sdkStream.Err(); err != nil {
		cancel()
		return nil, eris.Wrap(llm.ErrProvider, err.Error())
	}

	out := llm.NewStream(cancel)

	go func() {
		defer sdkStream.Close()
		for sdkStream.Next() {
			event := sdkStream.Current()
			deltaEvent, ok := event.AsAny().(sdk.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			textDelta, ok := deltaEvent.Delta.AsAny().(sdk.TextDelta)
			if !ok || textDelta.Text == "" {
				continue
			}
			if !out.Emit(textDelta.Text) {
				// Consumer disconnected; cancellation already signaled.
				out.Finish(nil)
				return
			}
		}
		if err := sdkStream.Err(); err != nil && streamCtx.Err() == nil {
			out.Finish(eris.Wrap(llm.ErrProvider, err.Error()))
			return
		}
		out.Finish(nil)
	}()

	return out, nil
}
