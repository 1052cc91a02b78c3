// Package openai implements llm.Client on top of sashabaranov/go-openai,
// for both blocking completions and token streaming.
package openai

import (
	"context"
	"errors"
	"io"

	"github.com/rotisserie/eris"
	sdk "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/pkg/llm"
)

// Client is an OpenAI-backed llm.Client.
type Client struct {
	client *sdk.Client
}

var _ llm.Client = (*Client)(nil)

// NewClient creates a client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{client: sdk.NewClient(apiKey)}
}

func (c *Client) chatRequest(req llm.Request, stream bool) sdk.ChatCompletionRequest {
	var messages []sdk.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, sdk.ChatCompletionMessage{
			Role:    sdk.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, sdk.ChatCompletionMessage{
		Role:    sdk.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	out := sdk.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   stream,
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		out.MaxTokens = req.MaxTokens
	}
	return out
}

// Complete sends a chat completion and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.chatRequest(req, false))
	if err != nil {
		return "", eris.Wrap(llm.ErrProvider, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", eris.Wrap(llm.ErrProvider, "empty choices in response")
	}
	text := resp.Choices[0].Message.Content

	zap.L().Debug("openai: completion",
		zap.String("model", req.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	if req.ExpectJSON {
		text = llm.StripFence(text)
	}
	return text, nil
}

// CompleteStream opens a chat completion stream and relays content deltas
// onto an llm.Stream. Closing the stream cancels the SDK call.
func (c *Client) CompleteStream(ctx context.Context, req llm.Request) (*llm.Stream, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	sdkStream, err := c.client.CreateChatCompletionStream(streamCtx, c.chatRequest(req, true))
	if err != nil {
		cancel()
		return nil, eris.Wrap(llm.ErrProvider, err.Error())
	}

	out := llm.NewStream(cancel)

	go func() {
		defer sdkStream.Close()
		for {
			chunk, recvErr := sdkStream.Recv()
			if errors.Is(recvErr, io.EOF) {
				out.Finish(nil)
				return
			}
			if recvErr != nil {
				if streamCtx.Err() != nil {
					// Canceled by the consumer; not a provider failure.
					out.Finish(nil)
					return
				}
				out.Finish(eris.Wrap(llm.ErrProvider, recvErr.Error()))
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if !out.Emit(delta) {
				out.Finish(nil)
				return
			}
		}
	}()

	return out, nil
}
