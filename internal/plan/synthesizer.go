// Package plan synthesizes marketing plans from a finished analysis and a
// set of target personas. Unlike the analysis pipeline, a malformed AI
// response here is a hard error: a plan is only persisted when the model
// returns well-formed JSON.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/internal/model"
	"github.com/marketsmith/marketsmith/internal/resilience"
	"github.com/marketsmith/marketsmith/internal/store"
	"github.com/marketsmith/marketsmith/pkg/llm"
)

// Precondition failures. All are checked before any AI call is made.
var (
	ErrAnalysisNotReady = eris.New("plan: market analysis has not completed")
	ErrAnalysisMismatch = eris.New("plan: analysis does not belong to business")
	ErrNoPersonas       = eris.New("plan: no target personas found for business")
	ErrNoObjectives     = eris.New("plan: at least one campaign objective is required")
	ErrInvalidObjective = eris.New("plan: unknown campaign objective")
)

// InvalidJSONError reports a plan response that was not well-formed JSON.
// The raw model output is preserved for diagnostics; nothing is persisted.
type InvalidJSONError struct {
	Raw string
}

func (e *InvalidJSONError) Error() string {
	return "plan: model returned invalid JSON"
}

const (
	planSystem           = "You are an expert marketing strategist tasked with creating a detailed and actionable marketing plan."
	defaultPlanMaxTokens = 3000
)

var defaultPlanTemperature = 0.5

// Request carries the inputs for one plan synthesis.
type Request struct {
	BusinessID         string                    `json:"businessId"`
	AnalysisID         string                    `json:"marketAnalysisId"`
	TargetPersonaIDs   []string                  `json:"targetAudienceIds"`
	Objectives         []model.CampaignObjective `json:"objectives"`
	CustomInstructions string                    `json:"customInstructions,omitempty"`
}

// Synthesizer builds and persists marketing plans.
type Synthesizer struct {
	store       store.Store
	client      llm.Client
	model       string
	maxTokens   int
	temperature float64
	retry       resilience.RetryConfig
}

// Option tunes a Synthesizer.
type Option func(*Synthesizer)

// WithMaxTokens overrides the completion budget for the plan response.
func WithMaxTokens(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *Synthesizer) { s.temperature = t }
}

// NewSynthesizer creates a Synthesizer bound to the given client and model.
func NewSynthesizer(st store.Store, client llm.Client, modelName string, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		store:       st,
		client:      client,
		model:       modelName,
		maxTokens:   defaultPlanMaxTokens,
		temperature: defaultPlanTemperature,
		retry:       resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// planPayload is the shape the prompt asks the model to emit.
type planPayload struct {
	Title       string           `json:"title"`
	KeyMessages []string         `json:"keyMessages"`
	Strategies  []model.Strategy `json:"strategies"`
	Channels    []string         `json:"channels"`
	Timeline    string           `json:"timeline"`
	KPIs        []string         `json:"kpis"`
}

// Synthesize validates the request, builds the plan prompt from the stored
// analysis and personas, and persists the result. Nothing is written when
// any step fails.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (*model.Plan, error) {
	log := zap.L().With(
		zap.String("business_id", req.BusinessID),
		zap.String("analysis_id", req.AnalysisID),
	)

	if len(req.Objectives) == 0 {
		return nil, ErrNoObjectives
	}
	for _, o := range req.Objectives {
		if !o.Valid() {
			return nil, eris.Wrapf(ErrInvalidObjective, "%q", string(o))
		}
	}

	business, err := s.store.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	analysis, err := s.store.GetAnalysis(ctx, req.AnalysisID)
	if err != nil {
		return nil, err
	}
	if analysis.BusinessID != req.BusinessID {
		return nil, eris.Wrapf(ErrAnalysisMismatch, "analysis %s", req.AnalysisID)
	}
	if !analysis.Status.Succeeded() {
		return nil, eris.Wrapf(ErrAnalysisNotReady, "status %s", string(analysis.Status))
	}

	personas, err := s.store.ListPersonas(ctx, req.BusinessID, req.TargetPersonaIDs)
	if err != nil {
		return nil, err
	}
	if len(personas) == 0 {
		return nil, eris.Wrapf(ErrNoPersonas, "business %s", req.BusinessID)
	}

	prompt := buildPlanPrompt(business, analysis, personas, req.Objectives, req.CustomInstructions)

	temp := s.temperature
	text, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.client.Complete(ctx, llm.Request{
			Prompt:      prompt,
			System:      planSystem,
			Model:       s.model,
			Temperature: &temp,
			MaxTokens:   s.maxTokens,
			ExpectJSON:  true,
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "plan: request completion")
	}

	var payload planPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		log.Error("plan: response is not valid JSON", zap.Int("chars", len(text)))
		return nil, &InvalidJSONError{Raw: text}
	}

	if payload.Title == "" {
		payload.Title = fmt.Sprintf("Marketing Plan for %s", business.Name)
	}

	personaIDs := make([]string, 0, len(personas))
	for _, p := range personas {
		personaIDs = append(personaIDs, p.ID)
	}

	created, err := s.store.CreatePlan(ctx, model.Plan{
		BusinessID:       req.BusinessID,
		AnalysisID:       req.AnalysisID,
		Title:            payload.Title,
		Objectives:       req.Objectives,
		TargetPersonaIDs: personaIDs,
		KeyMessages:      payload.KeyMessages,
		Channels:         payload.Channels,
		KPIs:             payload.KPIs,
		Strategies:       payload.Strategies,
		Timeline:         payload.Timeline,
	})
	if err != nil {
		return nil, eris.Wrap(err, "plan: persist")
	}

	log.Info("plan: synthesized", zap.String("plan_id", created.ID), zap.String("title", created.Title))
	return created, nil
}

func buildPlanPrompt(business *model.Business, analysis *model.Analysis, personas []model.Persona, objectives []model.CampaignObjective, customInstructions string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a comprehensive marketing plan for the business %q.\n", business.Name)
	fmt.Fprintf(&b, "Industry: %s\n", orNotSpecified(business.Industry))
	fmt.Fprintf(&b, "Business Description: %s\n\n", orNotSpecified(business.Description))

	b.WriteString("Based on the following market analysis:\n")
	fmt.Fprintf(&b, "SWOT: %s\n", structuredJSON(analysis.SWOT))
	fmt.Fprintf(&b, "Competitors: %s\n\n", structuredJSON(analysis.Competitors))

	b.WriteString("Targeting these audience personas:\n")
	for _, p := range personas {
		fmt.Fprintf(&b, "- Persona Name: %s, Goals: %s, Pain Points: %s\n",
			p.Name, strings.Join(p.Goals, ", "), strings.Join(p.PainPoints, ", "))
	}
	b.WriteString("\n")

	names := make([]string, 0, len(objectives))
	for _, o := range objectives {
		names = append(names, string(o))
	}
	fmt.Fprintf(&b, "The primary objectives for this plan are: %s.\n\n", strings.Join(names, ", "))

	if customInstructions != "" {
		fmt.Fprintf(&b, "Additional Instructions: %s\n\n", customInstructions)
	}

	b.WriteString(`Please provide a marketing plan including:
1.  Title for the plan.
2.  Key Messages (3-5 concise messages).
3.  Strategies: For each objective, suggest 1-2 core strategies. For each strategy, list 2-3 specific tactics. Format as a JSON array of objects: { strategyName: string, description: string, tactics: string[] }.
4.  Recommended Channels (list of marketing channels, e.g., "Blog", "LinkedIn", "Email Marketing").
5.  Suggested Timeline (e.g., "3 months", "Q4 2026").
6.  Key Performance Indicators (KPIs) to track success for the given objectives (list of KPIs).

Output the entire plan as a single, well-formed JSON object. The main keys should be "title", "keyMessages" (array of strings), "strategies" (JSON array as described above), "channels" (array of strings), "timeline" (string), "kpis" (array of strings).
`)

	return b.String()
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func structuredJSON(r model.StructuredResult) string {
	if r.IsZero() {
		return "null"
	}
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "null"
	}
	return string(out)
}
