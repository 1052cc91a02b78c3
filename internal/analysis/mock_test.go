package analysis

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/marketsmith/marketsmith/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateBusiness(ctx context.Context, b model.Business) (*model.Business, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Business), args.Error(1)
}

func (m *mockStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Business), args.Error(1)
}

func (m *mockStore) ListBusinesses(ctx context.Context, userID string) ([]model.Business, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Business), args.Error(1)
}

func (m *mockStore) CreateAnalysis(ctx context.Context, businessID, sourceURL string) (*model.Analysis, error) {
	args := m.Called(ctx, businessID, sourceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analysis), args.Error(1)
}

func (m *mockStore) UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockStore) UpdateAnalysisResults(ctx context.Context, id string, swot, competitors model.StructuredResult) error {
	args := m.Called(ctx, id, swot, competitors)
	return args.Error(0)
}

func (m *mockStore) FailAnalysis(ctx context.Context, id, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *mockStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analysis), args.Error(1)
}

func (m *mockStore) ListAnalyses(ctx context.Context, businessID string) ([]model.Analysis, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Analysis), args.Error(1)
}

func (m *mockStore) CreatePersona(ctx context.Context, p model.Persona) (*model.Persona, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Persona), args.Error(1)
}

func (m *mockStore) GetPersona(ctx context.Context, id string) (*model.Persona, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Persona), args.Error(1)
}

func (m *mockStore) ListPersonas(ctx context.Context, businessID string, ids []string) ([]model.Persona, error) {
	args := m.Called(ctx, businessID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Persona), args.Error(1)
}

func (m *mockStore) CreatePlan(ctx context.Context, p model.Plan) (*model.Plan, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *mockStore) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plan), args.Error(1)
}

func (m *mockStore) ListPlans(ctx context.Context, businessID string) ([]model.Plan, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Plan), args.Error(1)
}

func (m *mockStore) CreateContent(ctx context.Context, c model.Content) (*model.Content, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Content), args.Error(1)
}

func (m *mockStore) ListContent(ctx context.Context, businessID string) ([]model.Content, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Content), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractJSON(ctx context.Context, prompt, system string) (model.StructuredResult, error) {
	args := m.Called(ctx, prompt, system)
	return args.Get(0).(model.StructuredResult), args.Error(1)
}
