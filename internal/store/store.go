// Package store persists businesses, analyses, personas, plans, and
// generated content. Two implementations exist: Postgres (pgxpool) for
// server deployments and SQLite for local single-binary use.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/marketsmith/marketsmith/internal/model"
)

// ErrNotFound is returned when a record does not exist. Callers translate
// it to a 404 at the API boundary.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface shared by the analysis pipeline,
// plan synthesis, and content generation.
type Store interface {
	// Businesses
	CreateBusiness(ctx context.Context, b model.Business) (*model.Business, error)
	GetBusiness(ctx context.Context, id string) (*model.Business, error)
	ListBusinesses(ctx context.Context, userID string) ([]model.Business, error)

	// Analyses. CreateAnalysis inserts the record in PENDING; the pipeline
	// advances it via UpdateAnalysisStatus before any external call.
	CreateAnalysis(ctx context.Context, businessID, sourceURL string) (*model.Analysis, error)
	UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error
	UpdateAnalysisResults(ctx context.Context, id string, swot, competitors model.StructuredResult) error
	FailAnalysis(ctx context.Context, id, message string) error
	GetAnalysis(ctx context.Context, id string) (*model.Analysis, error)
	ListAnalyses(ctx context.Context, businessID string) ([]model.Analysis, error)

	// Personas. ListPersonas with a nil or empty ids slice returns every
	// persona under the business.
	CreatePersona(ctx context.Context, p model.Persona) (*model.Persona, error)
	GetPersona(ctx context.Context, id string) (*model.Persona, error)
	ListPersonas(ctx context.Context, businessID string, ids []string) ([]model.Persona, error)

	// Plans
	CreatePlan(ctx context.Context, p model.Plan) (*model.Plan, error)
	GetPlan(ctx context.Context, id string) (*model.Plan, error)
	ListPlans(ctx context.Context, businessID string) ([]model.Plan, error)

	// Content
	CreateContent(ctx context.Context, c model.Content) (*model.Content, error)
	ListContent(ctx context.Context, businessID string) ([]model.Content, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
