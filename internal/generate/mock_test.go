package generate

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/marketsmith/marketsmith/internal/model"
	"github.com/marketsmith/marketsmith/pkg/llm"
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

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockLLMClient) CompleteStream(ctx context.Context, req llm.Request) (*llm.Stream, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Stream), args.Error(1)
}
