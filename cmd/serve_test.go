package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsmith/marketsmith/internal/analysis"
	"github.com/marketsmith/marketsmith/internal/generate"
	"github.com/marketsmith/marketsmith/internal/model"
	"github.com/marketsmith/marketsmith/internal/plan"
	"github.com/marketsmith/marketsmith/internal/store"
	"github.com/marketsmith/marketsmith/pkg/llm"
)

type fakeFetcher struct {
	content string
	err     error
}

func (f *fakeFetcher) Fetch(context.Context, string) (string, error) {
	return f.content, f.err
}

type fakeExtractor struct {
	result model.StructuredResult
	err    error
}

func (f *fakeExtractor) ExtractJSON(context.Context, string, string) (model.StructuredResult, error) {
	return f.result, f.err
}

// fakeLLM answers every completion with fixed text and every stream with
// fixed chunks.
type fakeLLM struct {
	completeText string
	completeErr  error
	chunks       []string
	streamErr    error
}

func (f *fakeLLM) Complete(context.Context, llm.Request) (string, error) {
	return f.completeText, f.completeErr
}

func (f *fakeLLM) CompleteStream(context.Context, llm.Request) (*llm.Stream, error) {
	s := llm.NewStream(nil)
	go func() {
		for _, c := range f.chunks {
			if !s.Emit(c) {
				return
			}
		}
		s.Finish(f.streamErr)
	}()
	return s, nil
}

const planResponseJSON = `{
	"title": "Q4 Growth Plan",
	"keyMessages": ["Fresh beans, faster"],
	"strategies": [{"strategyName": "Content-led SEO", "description": "Own the category terms", "tactics": ["Publish weekly", "Refresh top pages"]}],
	"channels": ["Blog", "Email Marketing"],
	"timeline": "3 months",
	"kpis": ["Organic sessions"]
}`

// newServerEnv wires a handler around a real SQLite store and fake providers.
func newServerEnv(t *testing.T, client llm.Client) (http.Handler, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	extractor := &fakeExtractor{result: model.Parsed(json.RawMessage(`{"name":"Maya","description":"Early adopter"}`))}
	env := &appEnv{
		store:    st,
		pipeline: analysis.New(st, &fakeFetcher{content: "Acme Coffee roasts single-origin beans."}, extractor, 2),
		planner:  plan.NewSynthesizer(st, client, "gpt-4o"),
		relay:    generate.NewRelay(st, client, "gpt-4o-mini", "gpt-4o", 0),
	}
	return newRouter(context.Background(), env), st
}

func doJSON(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func seedBusiness(t *testing.T, st store.Store, userID string) *model.Business {
	t.Helper()
	b, err := st.CreateBusiness(context.Background(), model.Business{
		UserID:     userID,
		Name:       "Acme Coffee",
		Industry:   "Food & Beverage",
		WebsiteURL: "https://acme.example",
	})
	require.NoError(t, err)
	return b
}

func TestServeHealth(t *testing.T) {
	h, _ := newServerEnv(t, &fakeLLM{})

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeRequiresUserHeader(t *testing.T) {
	h, _ := newServerEnv(t, &fakeLLM{})

	rec := doJSON(t, h, http.MethodGet, "/api/businesses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServeBusinessLifecycle(t *testing.T) {
	h, _ := newServerEnv(t, &fakeLLM{})

	rec := doJSON(t, h, http.MethodPost, "/api/businesses", "user-1", map[string]string{
		"name":       "Acme Coffee",
		"industry":   "Food & Beverage",
		"websiteUrl": "https://acme.example",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[model.Business](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)

	rec = doJSON(t, h, http.MethodGet, "/api/businesses", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]model.Business](t, rec)
	require.Len(t, list, 1)

	rec = doJSON(t, h, http.MethodGet, "/api/businesses/"+created.ID, "user-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/businesses/"+created.ID, "user-2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/businesses", "user-1", map[string]string{"industry": "none"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeStartAnalysisRunsPipeline(t *testing.T) {
	h, st := newServerEnv(t, &fakeLLM{})
	b := seedBusiness(t, st, "user-1")

	rec := doJSON(t, h, http.MethodPost, "/api/businesses/"+b.ID+"/analyses", "user-1", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	// The run is asynchronous; poll until it reaches a terminal state.
	var final model.Analysis
	require.Eventually(t, func() bool {
		list, err := st.ListAnalyses(context.Background(), b.ID)
		if err != nil || len(list) == 0 || !list[0].Status.Terminal() {
			return false
		}
		final = list[0]
		return true
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, model.StatusCompleted, final.Status)
	assert.Equal(t, b.WebsiteURL, final.SourceURL)
	assert.True(t, final.SWOT.IsParsed())

	personas, err := st.ListPersonas(context.Background(), b.ID, nil)
	require.NoError(t, err)
	assert.Len(t, personas, 2)
}

func TestServeStartAnalysisRequiresSourceURL(t *testing.T) {
	h, st := newServerEnv(t, &fakeLLM{})
	b, err := st.CreateBusiness(context.Background(), model.Business{UserID: "user-1", Name: "No Site"})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/api/businesses/"+b.ID+"/analyses", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeCreatePlan(t *testing.T) {
	h, st := newServerEnv(t, &fakeLLM{completeText: planResponseJSON})
	b := seedBusiness(t, st, "user-1")

	a, err := st.CreateAnalysis(context.Background(), b.ID, b.WebsiteURL)
	require.NoError(t, err)
	require.NoError(t, st.UpdateAnalysisStatus(context.Background(), a.ID, model.StatusInProgress))
	require.NoError(t, st.UpdateAnalysisStatus(context.Background(), a.ID, model.StatusCompleted))

	_, err = st.CreatePersona(context.Background(), model.Persona{BusinessID: b.ID, Name: "Maya", Description: "Early adopter"})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/api/plans", "user-1", map[string]any{
		"businessId":       b.ID,
		"marketAnalysisId": a.ID,
		"objectives":       []string{"BRAND_AWARENESS"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.Plan](t, rec)
	assert.Equal(t, "Q4 Growth Plan", created.Title)
	assert.Equal(t, []model.CampaignObjective{model.ObjectiveBrandAwareness}, created.Objectives)

	rec = doJSON(t, h, http.MethodGet, "/api/plans/"+created.ID, "user-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeCreatePlanErrorMapping(t *testing.T) {
	h, st := newServerEnv(t, &fakeLLM{completeText: planResponseJSON})
	b := seedBusiness(t, st, "user-1")

	// Unknown objective is rejected before any provider call.
	rec := doJSON(t, h, http.MethodPost, "/api/plans", "user-1", map[string]any{
		"businessId":       b.ID,
		"marketAnalysisId": "an-1",
		"objectives":       []string{"GO_VIRAL"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// An analysis that has not finished yet conflicts.
	a, err := st.CreateAnalysis(context.Background(), b.ID, b.WebsiteURL)
	require.NoError(t, err)

	rec = doJSON(t, h, http.MethodPost, "/api/plans", "user-1", map[string]any{
		"businessId":       b.ID,
		"marketAnalysisId": a.ID,
		"objectives":       []string{"BRAND_AWARENESS"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServeContentStreamSSE(t *testing.T) {
	h, st := newServerEnv(t, &fakeLLM{chunks: []string{"Hel", "lo ", "world"}})
	b := seedBusiness(t, st, "user-1")

	rec := doJSON(t, h, http.MethodPost, "/api/content/stream", "user-1", map[string]any{
		"businessId":  b.ID,
		"contentType": "BLOG_POST",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var events []map[string]any
	for _, frame := range strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n") {
		payload := strings.TrimPrefix(frame, "data: ")
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		events = append(events, ev)
	}

	require.Len(t, events, 5)
	assert.Equal(t, "metadata", events[0]["type"])
	assert.Equal(t, "gpt-4o-mini", events[0]["modelUsed"])
	assert.Equal(t, "chunk", events[1]["type"])

	done := events[len(events)-1]
	assert.Equal(t, "done", done["type"])
	assert.Equal(t, "Hello world", done["fullText"])
	assert.Equal(t, b.ID, done["businessId"])
}

func TestServeContentStreamUnknownBusinessIsPlainError(t *testing.T) {
	h, _ := newServerEnv(t, &fakeLLM{chunks: []string{"never"}})

	rec := doJSON(t, h, http.MethodPost, "/api/content/stream", "user-1", map[string]any{
		"businessId":  "missing",
		"contentType": "BLOG_POST",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestServeSaveContentDefaultsTitle(t *testing.T) {
	h, st := newServerEnv(t, &fakeLLM{})
	b := seedBusiness(t, st, "user-1")

	rec := doJSON(t, h, http.MethodPost, "/api/content", "user-1", map[string]any{
		"businessId":  b.ID,
		"contentType": "BLOG_POST",
		"body":        "Some generated text.",
		"aiModelUsed": "gpt-4o-mini",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[model.Content](t, rec)
	assert.Contains(t, created.Title, "Generated blog post")
	assert.Equal(t, "DRAFT", created.Status)

	rec = doJSON(t, h, http.MethodGet, "/api/businesses/"+b.ID+"/content", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]model.Content](t, rec)
	require.Len(t, list, 1)
}

func TestServeSaveContentRejectsBadType(t *testing.T) {
	h, st := newServerEnv(t, &fakeLLM{})
	b := seedBusiness(t, st, "user-1")

	rec := doJSON(t, h, http.MethodPost, "/api/content", "user-1", map[string]any{
		"businessId":  b.ID,
		"contentType": "HAIKU",
		"body":        "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
