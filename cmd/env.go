package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/internal/analysis"
	"github.com/marketsmith/marketsmith/internal/extract"
	"github.com/marketsmith/marketsmith/internal/fetch"
	"github.com/marketsmith/marketsmith/internal/generate"
	"github.com/marketsmith/marketsmith/internal/plan"
	"github.com/marketsmith/marketsmith/internal/store"
	"github.com/marketsmith/marketsmith/pkg/anthropic"
	"github.com/marketsmith/marketsmith/pkg/openai"
)

// appEnv bundles the wired application components shared by the commands.
type appEnv struct {
	store    store.Store
	pipeline *analysis.Pipeline
	planner  *plan.Synthesizer
	relay    *generate.Relay
}

func (e *appEnv) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres", "":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// initApp validates provider credentials and wires the store, pipeline,
// synthesizer, and relay. Missing API keys are fatal at startup rather than
// surfacing as provider errors mid-request.
func initApp(ctx context.Context) (*appEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("MARKETSMITH_ANTHROPIC_KEY is required")
	}
	if cfg.OpenAI.Key == "" {
		return nil, eris.New("MARKETSMITH_OPENAI_KEY is required")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropic.NewClient(cfg.Anthropic.Key)
	openaiClient := openai.NewClient(cfg.OpenAI.Key)

	fetcher := fetch.NewChromeFetcher(
		time.Duration(cfg.Fetch.TimeoutSecs)*time.Second,
		cfg.Fetch.MaxContentChars,
	)
	extractor := extract.New(anthropicClient, cfg.Anthropic.Model)

	env := &appEnv{
		store:    st,
		pipeline: analysis.New(st, fetcher, extractor, cfg.Pipeline.PersonaCount),
		planner: plan.NewSynthesizer(st, openaiClient, cfg.OpenAI.PowerModel,
			plan.WithMaxTokens(cfg.Generation.PlanMaxTokens),
			plan.WithTemperature(cfg.Generation.PlanTemperature),
		),
		relay: generate.NewRelay(st, openaiClient, cfg.OpenAI.FastModel, cfg.OpenAI.PowerModel, cfg.Generation.StreamMaxTokens),
	}

	zap.L().Info("app initialized",
		zap.String("store", cfg.Store.Driver),
		zap.String("analysis_model", cfg.Anthropic.Model),
		zap.String("fast_model", cfg.OpenAI.FastModel),
		zap.String("power_model", cfg.OpenAI.PowerModel),
	)
	return env, nil
}
