// Package analysis runs the multi-stage business-intelligence pipeline:
// scrape the business website, extract SWOT and competitor landscapes, and
// synthesize audience personas, persisting progress after each stage.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/internal/fetch"
	"github.com/marketsmith/marketsmith/internal/model"
	"github.com/marketsmith/marketsmith/internal/store"
)

// Extractor requests a JSON-shaped completion and classifies the outcome.
// Satisfied by extract.Extractor.
type Extractor interface {
	ExtractJSON(ctx context.Context, prompt, system string) (model.StructuredResult, error)
}

// DefaultPersonaCount is how many audience personas one run attempts.
const DefaultPersonaCount = 2

// Pipeline orchestrates one analysis run end to end.
type Pipeline struct {
	store        store.Store
	fetcher      fetch.Fetcher
	extractor    Extractor
	personaCount int
}

// New creates a Pipeline. personaCount <= 0 falls back to DefaultPersonaCount.
func New(st store.Store, fetcher fetch.Fetcher, extractor Extractor, personaCount int) *Pipeline {
	if personaCount <= 0 {
		personaCount = DefaultPersonaCount
	}
	return &Pipeline{
		store:        st,
		fetcher:      fetcher,
		extractor:    extractor,
		personaCount: personaCount,
	}
}

// Run executes the full pipeline for one business. The analysis record is
// created PENDING and advanced to IN_PROGRESS before any external call, so a
// caller polling the record always sees a live status. Fatal stage errors
// mark the record FAILED with the cause and are returned to the caller;
// persona-stage failures are absorbed per persona. A run that finishes with
// zero personas ends COMPLETED_PARTIAL rather than COMPLETED.
func (p *Pipeline) Run(ctx context.Context, businessID, sourceURL string) (*model.Analysis, error) {
	log := zap.L().With(zap.String("business_id", businessID), zap.String("url", sourceURL))
	log.Info("analysis: starting run")

	a, err := p.store.CreateAnalysis(ctx, businessID, sourceURL)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: create record")
	}
	log = log.With(zap.String("analysis_id", a.ID))

	if err := p.store.UpdateAnalysisStatus(ctx, a.ID, model.StatusInProgress); err != nil {
		return nil, eris.Wrap(err, "analysis: advance to in_progress")
	}

	content, err := p.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, p.fail(ctx, log, a.ID, eris.Wrap(err, "analysis: scrape website"))
	}
	if strings.TrimSpace(content) == "" {
		return nil, p.fail(ctx, log, a.ID, eris.New("analysis: scraped content is empty"))
	}
	log.Info("analysis: scrape complete", zap.Int("content_chars", len(content)))

	swot, err := p.extractor.ExtractJSON(ctx, swotPrompt(content), swotSystem)
	if err != nil {
		return nil, p.fail(ctx, log, a.ID, eris.Wrap(err, "analysis: swot extraction"))
	}

	competitors, err := p.extractor.ExtractJSON(ctx, competitorPrompt(content), competitorSystem)
	if err != nil {
		return nil, p.fail(ctx, log, a.ID, eris.Wrap(err, "analysis: competitor extraction"))
	}

	if err := p.store.UpdateAnalysisResults(ctx, a.ID, swot, competitors); err != nil {
		return nil, p.fail(ctx, log, a.ID, eris.Wrap(err, "analysis: persist results"))
	}

	created := p.runPersonaStage(ctx, log, businessID, content)
	log.Info("analysis: persona stage finished",
		zap.Int("requested", p.personaCount),
		zap.Int("created", created),
	)

	status := model.StatusCompleted
	if created == 0 {
		status = model.StatusCompletedPartial
	}
	if err := p.store.UpdateAnalysisStatus(ctx, a.ID, status); err != nil {
		return nil, p.fail(ctx, log, a.ID, eris.Wrap(err, "analysis: finalize status"))
	}

	final, err := p.store.GetAnalysis(ctx, a.ID)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: reload record")
	}
	log.Info("analysis: run finished", zap.String("status", string(final.Status)))
	return final, nil
}

// fail marks the analysis FAILED with the cause and returns it. The failure
// write is best effort; a store error here must not mask the original cause.
func (p *Pipeline) fail(ctx context.Context, log *zap.Logger, analysisID string, cause error) error {
	log.Error("analysis: run failed", zap.Error(cause))
	if err := p.store.FailAnalysis(ctx, analysisID, cause.Error()); err != nil {
		log.Warn("analysis: could not persist failure", zap.Error(err))
	}
	return cause
}

// personaPayload is the shape the persona prompt asks the model to emit.
type personaPayload struct {
	Name              string   `json:"name"`
	AgeRange          string   `json:"ageRange"`
	Gender            string   `json:"gender"`
	Location          string   `json:"location"`
	Occupation        string   `json:"occupation"`
	IncomeLevel       string   `json:"incomeLevel"`
	Goals             []string `json:"goals"`
	PainPoints        []string `json:"painPoints"`
	Motivations       []string `json:"motivations"`
	PreferredChannels []string `json:"preferredChannels"`
	Description       string   `json:"description"`
}

// runPersonaStage attempts personaCount extractions and persists whatever
// parses. Individual failures, including provider errors, skip that persona
// only; the run continues.
func (p *Pipeline) runPersonaStage(ctx context.Context, log *zap.Logger, businessID, content string) int {
	created := 0
	for i := 1; i <= p.personaCount; i++ {
		plog := log.With(zap.Int("persona", i))

		result, err := p.extractor.ExtractJSON(ctx, personaPrompt(i, p.personaCount, content), personaSystem)
		if err != nil {
			plog.Warn("analysis: persona extraction failed, skipping", zap.Error(err))
			continue
		}
		if !result.IsParsed() {
			plog.Warn("analysis: persona response unparseable, skipping")
			continue
		}

		var payload personaPayload
		if err := json.Unmarshal(result.Value(), &payload); err != nil {
			plog.Warn("analysis: persona shape mismatch, skipping", zap.Error(err))
			continue
		}

		persona := model.Persona{
			BusinessID:        businessID,
			Name:              payload.Name,
			AgeRange:          payload.AgeRange,
			Gender:            payload.Gender,
			Location:          payload.Location,
			Occupation:        payload.Occupation,
			IncomeLevel:       payload.IncomeLevel,
			Goals:             payload.Goals,
			PainPoints:        payload.PainPoints,
			Motivations:       payload.Motivations,
			PreferredChannels: payload.PreferredChannels,
			Description:       payload.Description,
		}
		if persona.Name == "" {
			persona.Name = fmt.Sprintf("Persona %d", i)
		}
		if persona.Description == "" {
			persona.Description = fmt.Sprintf("Generated persona %d for business %s", i, businessID)
		}

		if _, err := p.store.CreatePersona(ctx, persona); err != nil {
			plog.Warn("analysis: persona persist failed, skipping", zap.Error(err))
			continue
		}
		created++
	}
	return created
}
