package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsmith/marketsmith/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateAnalysis_StartsPending(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs(pgxmock.AnyArg(), "biz-1", "PENDING", "https://acme.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	a, err := s.CreateAnalysis(context.Background(), "biz-1", "https://acme.com")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, model.StatusPending, a.Status)
	assert.Equal(t, "https://acme.com", a.SourceURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, business_id, status, source_url, swot, competitors, error_message, created_at, updated_at FROM analyses WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAnalysis(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis_UnparsedSwot(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "business_id", "status", "source_url", "swot", "competitors", "error_message", "created_at", "updated_at"}).
		AddRow("an-1", "biz-1", model.StatusCompleted, "https://acme.com",
			[]byte(`{"error":"parse-failed","raw":"not json"}`), []byte(`{"competitors":[]}`), nil, now, now)

	mock.ExpectQuery(`SELECT .+ FROM analyses WHERE id = \$1`).
		WithArgs("an-1").
		WillReturnRows(rows)

	a, err := s.GetAnalysis(context.Background(), "an-1")
	require.NoError(t, err)
	assert.False(t, a.SWOT.IsParsed())
	assert.Equal(t, "not json", a.SWOT.Raw())
	assert.True(t, a.Competitors.IsParsed())
	assert.JSONEq(t, `{"competitors":[]}`, string(a.Competitors.Value()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateAnalysisStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE analyses SET status`).
		WithArgs("IN_PROGRESS", pgxmock.AnyArg(), "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateAnalysisStatus(context.Background(), "gone", model.StatusInProgress)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateAnalysisResults_NullForAbsent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	swot := model.Parsed(json.RawMessage(`{"strengths":["fast"]}`))

	mock.ExpectExec(`UPDATE analyses SET swot`).
		WithArgs([]byte(`{"strengths":["fast"]}`), nil, pgxmock.AnyArg(), "an-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateAnalysisResults(context.Background(), "an-1", swot, model.StructuredResult{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE analyses SET status`).
		WithArgs("FAILED", "scrape timeout", pgxmock.AnyArg(), "an-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.FailAnalysis(context.Background(), "an-1", "scrape timeout")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreatePersona_NormalizesLists(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO personas`).
		WithArgs(pgxmock.AnyArg(), "biz-1", "Maya", "", "", "", "", "",
			[]byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := s.CreatePersona(context.Background(), model.Persona{BusinessID: "biz-1", Name: "Maya"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, []string{}, p.Goals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPersonas_FiltersByIDs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "business_id", "name", "age_range", "gender", "location", "occupation", "income_level",
		"goals", "pain_points", "motivations", "preferred_channels", "description", "created_at", "updated_at"})

	mock.ExpectQuery(`SELECT .+ FROM personas WHERE business_id = \$1 AND id = ANY\(\$2\)`).
		WithArgs("biz-1", []string{"p1", "p2"}).
		WillReturnRows(rows)

	out, err := s.ListPersonas(context.Background(), "biz-1", []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateContent_NullPlanID(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO content`).
		WithArgs(pgxmock.AnyArg(), "biz-1", nil, "BLOG_POST", "Launch post", "body text", "", "", "DRAFT", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	c, err := s.CreateContent(context.Background(), model.Content{
		BusinessID:  "biz-1",
		ContentType: model.ContentBlogPost,
		Title:       "Launch post",
		Body:        "body text",
	})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", c.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
