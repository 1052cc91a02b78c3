package generate

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/internal/model"
	"github.com/marketsmith/marketsmith/internal/store"
	"github.com/marketsmith/marketsmith/pkg/llm"
)

// ErrInvalidContentType is returned for an unknown content type before any
// provider call.
var ErrInvalidContentType = eris.New("generate: invalid content type")

// Event is one server-sent event in the streaming protocol. Concrete types
// marshal to the wire JSON; the client dispatches on the "type" field.
type Event interface {
	event()
}

// MetadataEvent opens a stream with the chosen model and prompt size.
type MetadataEvent struct {
	Type        string `json:"type"`
	ModelUsed   string `json:"modelUsed"`
	PromptChars int    `json:"promptChars"`
}

// ChunkEvent carries one token-stream fragment.
type ChunkEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// DoneEvent closes a successful stream with the assembled full text, so the
// client can save the content without re-joining chunks.
type DoneEvent struct {
	Type        string            `json:"type"`
	FullText    string            `json:"fullText"`
	ModelUsed   string            `json:"modelUsed"`
	PromptUsed  string            `json:"promptUsed"`
	ContentType model.ContentType `json:"contentType"`
	BusinessID  string            `json:"businessId"`
	PlanID      string            `json:"marketingPlanId,omitempty"`
}

// ErrorEvent reports a failure after the stream has started.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (MetadataEvent) event() {}
func (ChunkEvent) event()    {}
func (DoneEvent) event()     {}
func (ErrorEvent) event()    {}

// Relay resolves generation requests against the store and forwards
// completion output, either whole or as a stream of events.
type Relay struct {
	store      store.Store
	client     llm.Client
	fastModel  string
	powerModel string
	maxTokens  int
}

// NewRelay creates a Relay. maxTokens <= 0 leaves the provider default.
func NewRelay(st store.Store, client llm.Client, fastModel, powerModel string, maxTokens int) *Relay {
	return &Relay{
		store:      st,
		client:     client,
		fastModel:  fastModel,
		powerModel: powerModel,
		maxTokens:  maxTokens,
	}
}

var generationTemperature = 0.7

// resolve loads the business plus the optional plan and persona, and builds
// the final prompt. A persona id that matches nothing degrades to the
// generic-audience prompt branch rather than failing the request.
func (r *Relay) resolve(ctx context.Context, p Params) (prompt, modelName string, err error) {
	if !p.ContentType.Valid() {
		return "", "", eris.Wrapf(ErrInvalidContentType, "%q", string(p.ContentType))
	}

	business, err := r.store.GetBusiness(ctx, p.BusinessID)
	if err != nil {
		return "", "", err
	}

	var plan *model.Plan
	if p.PlanID != "" {
		plan, err = r.store.GetPlan(ctx, p.PlanID)
		if err != nil {
			return "", "", err
		}
	}

	var persona *model.Persona
	if p.TargetPersonaID != "" {
		persona, err = r.store.GetPersona(ctx, p.TargetPersonaID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return "", "", err
			}
			persona = nil
		}
	}

	return BuildPrompt(p, business, plan, persona), SelectModel(p, r.fastModel, r.powerModel), nil
}

// Generate produces the content in one shot. Used by the non-streaming
// endpoint and the CLI.
func (r *Relay) Generate(ctx context.Context, p Params) (text, modelUsed, promptUsed string, err error) {
	prompt, modelName, err := r.resolve(ctx, p)
	if err != nil {
		return "", "", "", err
	}

	temp := generationTemperature
	text, err = r.client.Complete(ctx, llm.Request{
		Prompt:      prompt,
		System:      systemPrompt(p.ContentType),
		Model:       modelName,
		Temperature: &temp,
		MaxTokens:   r.maxTokens,
	})
	if err != nil {
		return "", "", "", eris.Wrap(err, "generate: request completion")
	}
	return text, modelName, prompt, nil
}

// Stream relays the token stream as events through send. Errors before the
// first event are returned so the caller can still answer with a plain HTTP
// error; once streaming has begun, failures are delivered as an ErrorEvent
// and Stream returns nil. A send failure means the consumer is gone: the
// provider stream is closed and the relay stops quietly.
func (r *Relay) Stream(ctx context.Context, p Params, send func(Event) error) error {
	log := zap.L().With(zap.String("business_id", p.BusinessID), zap.String("content_type", string(p.ContentType)))

	prompt, modelName, err := r.resolve(ctx, p)
	if err != nil {
		return err
	}

	stream, err := r.client.CompleteStream(ctx, llm.Request{
		Prompt:    prompt,
		System:    systemPrompt(p.ContentType),
		Model:     modelName,
		MaxTokens: r.maxTokens,
	})
	if err != nil {
		return eris.Wrap(err, "generate: open stream")
	}
	defer stream.Close()

	if err := send(MetadataEvent{Type: "metadata", ModelUsed: modelName, PromptChars: len(prompt)}); err != nil {
		log.Debug("generate: consumer went away before metadata", zap.Error(err))
		return nil
	}

	var fullText strings.Builder
	for chunk := range stream.C() {
		if chunk == "" {
			continue
		}
		fullText.WriteString(chunk)
		if err := send(ChunkEvent{Type: "chunk", Text: chunk}); err != nil {
			log.Debug("generate: consumer went away mid-stream", zap.Error(err))
			return nil
		}
	}

	if streamErr := stream.Err(); streamErr != nil {
		log.Error("generate: provider stream failed", zap.Error(streamErr))
		_ = send(ErrorEvent{Type: "error", Message: streamErr.Error()})
		return nil
	}

	_ = send(DoneEvent{
		Type:        "done",
		FullText:    fullText.String(),
		ModelUsed:   modelName,
		PromptUsed:  prompt,
		ContentType: p.ContentType,
		BusinessID:  p.BusinessID,
		PlanID:      p.PlanID,
	})
	log.Info("generate: stream complete", zap.String("model", modelName), zap.Int("chars", fullText.Len()))
	return nil
}
