package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/internal/generate"
	"github.com/marketsmith/marketsmith/internal/model"
	"github.com/marketsmith/marketsmith/internal/plan"
	"github.com/marketsmith/marketsmith/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctx, env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the API router. runCtx outlives individual requests and
// scopes the asynchronous analysis runs kicked off by the API.
func newRouter(runCtx context.Context, env *appEnv) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		r.Post("/businesses", createBusinessHandler(env))
		r.Get("/businesses", listBusinessesHandler(env))
		r.Get("/businesses/{businessID}", getBusinessHandler(env))
		r.Post("/businesses/{businessID}/analyses", startAnalysisHandler(runCtx, env))
		r.Get("/businesses/{businessID}/analyses", listAnalysesHandler(env))
		r.Get("/businesses/{businessID}/personas", listPersonasHandler(env))
		r.Get("/businesses/{businessID}/plans", listPlansHandler(env))
		r.Get("/businesses/{businessID}/content", listContentHandler(env))
		r.Get("/analyses/{analysisID}", getAnalysisHandler(env))
		r.Post("/plans", createPlanHandler(env))
		r.Get("/plans/{planID}", getPlanHandler(env))
		r.Post("/content", saveContentHandler(env))
		r.Post("/content/stream", streamContentHandler(env))
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// requireUser enforces the caller identity header. Authentication proper
// sits in front of this service; the header carries the resolved user.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ownedBusiness loads the business and verifies the caller owns it, writing
// the error response itself when the check fails.
func ownedBusiness(w http.ResponseWriter, r *http.Request, env *appEnv, businessID string) (*model.Business, bool) {
	b, err := env.store.GetBusiness(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "business not found")
		} else {
			zap.L().Error("api: get business", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return nil, false
	}
	if b.UserID != userID(r) {
		writeError(w, http.StatusForbidden, "business does not belong to user")
		return nil, false
	}
	return b, true
}

func createBusinessHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Industry    string `json:"industry"`
			WebsiteURL  string `json:"websiteUrl"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		b, err := env.store.CreateBusiness(r.Context(), model.Business{
			UserID:      userID(r),
			Name:        req.Name,
			Industry:    req.Industry,
			WebsiteURL:  req.WebsiteURL,
			Description: req.Description,
		})
		if err != nil {
			zap.L().Error("api: create business", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func listBusinessesHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := env.store.ListBusinesses(r.Context(), userID(r))
		if err != nil {
			zap.L().Error("api: list businesses", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if list == nil {
			list = []model.Business{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func getBusinessHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := ownedBusiness(w, r, env, chi.URLParam(r, "businessID"))
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func startAnalysisHandler(runCtx context.Context, env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := ownedBusiness(w, r, env, chi.URLParam(r, "businessID"))
		if !ok {
			return
		}

		var req struct {
			SourceURL string `json:"sourceUrl"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		sourceURL := req.SourceURL
		if sourceURL == "" {
			sourceURL = b.WebsiteURL
		}
		if sourceURL == "" {
			writeError(w, http.StatusBadRequest, "sourceUrl is required when the business has no website")
			return
		}

		// The run outlives the request; poll the analyses list for status.
		go func() {
			if _, err := env.pipeline.Run(runCtx, b.ID, sourceURL); err != nil {
				zap.L().Error("api: analysis run failed",
					zap.String("business_id", b.ID),
					zap.Error(err),
				)
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":    "accepted",
			"sourceUrl": sourceURL,
		})
	}
}

func listAnalysesHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := ownedBusiness(w, r, env, chi.URLParam(r, "businessID"))
		if !ok {
			return
		}
		list, err := env.store.ListAnalyses(r.Context(), b.ID)
		if err != nil {
			zap.L().Error("api: list analyses", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if list == nil {
			list = []model.Analysis{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func getAnalysisHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := env.store.GetAnalysis(r.Context(), chi.URLParam(r, "analysisID"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "analysis not found")
			} else {
				zap.L().Error("api: get analysis", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}
		if _, ok := ownedBusiness(w, r, env, a.BusinessID); !ok {
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func listPersonasHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := ownedBusiness(w, r, env, chi.URLParam(r, "businessID"))
		if !ok {
			return
		}
		list, err := env.store.ListPersonas(r.Context(), b.ID, nil)
		if err != nil {
			zap.L().Error("api: list personas", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if list == nil {
			list = []model.Persona{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func listPlansHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := ownedBusiness(w, r, env, chi.URLParam(r, "businessID"))
		if !ok {
			return
		}
		list, err := env.store.ListPlans(r.Context(), b.ID)
		if err != nil {
			zap.L().Error("api: list plans", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if list == nil {
			list = []model.Plan{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func createPlanHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req plan.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.BusinessID == "" {
			writeError(w, http.StatusBadRequest, "businessId is required")
			return
		}
		if _, ok := ownedBusiness(w, r, env, req.BusinessID); !ok {
			return
		}

		created, err := env.planner.Synthesize(r.Context(), req)
		if err != nil {
			writePlanError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func writePlanError(w http.ResponseWriter, err error) {
	var invalid *plan.InvalidJSONError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "referenced record not found")
	case errors.Is(err, plan.ErrAnalysisNotReady):
		writeError(w, http.StatusConflict, "market analysis has not completed")
	case errors.Is(err, plan.ErrAnalysisMismatch),
		errors.Is(err, plan.ErrNoPersonas),
		errors.Is(err, plan.ErrNoObjectives),
		errors.Is(err, plan.ErrInvalidObjective):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadGateway, "model returned an invalid plan format")
	default:
		zap.L().Error("api: synthesize plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func getPlanHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := env.store.GetPlan(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "plan not found")
			} else {
				zap.L().Error("api: get plan", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}
		if _, ok := ownedBusiness(w, r, env, p.BusinessID); !ok {
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func saveContentHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BusinessID  string            `json:"businessId"`
			ContentType model.ContentType `json:"contentType"`
			Title       string            `json:"title"`
			Body        string            `json:"body"`
			PromptUsed  string            `json:"promptUsed"`
			ModelUsed   string            `json:"aiModelUsed"`
			PlanID      string            `json:"marketingPlanId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !req.ContentType.Valid() {
			writeError(w, http.StatusBadRequest, "invalid contentType")
			return
		}
		if req.Body == "" {
			writeError(w, http.StatusBadRequest, "body is required")
			return
		}
		if _, ok := ownedBusiness(w, r, env, req.BusinessID); !ok {
			return
		}

		title := req.Title
		if title == "" {
			title = fmt.Sprintf("Generated %s - %s", req.ContentType.Label(), time.Now().UTC().Format("2006-01-02"))
		}

		c, err := env.store.CreateContent(r.Context(), model.Content{
			BusinessID:  req.BusinessID,
			PlanID:      req.PlanID,
			ContentType: req.ContentType,
			Title:       title,
			Body:        req.Body,
			PromptUsed:  req.PromptUsed,
			ModelUsed:   req.ModelUsed,
		})
		if err != nil {
			zap.L().Error("api: save content", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func listContentHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := ownedBusiness(w, r, env, chi.URLParam(r, "businessID"))
		if !ok {
			return
		}
		list, err := env.store.ListContent(r.Context(), b.ID)
		if err != nil {
			zap.L().Error("api: list content", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if list == nil {
			list = []model.Content{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// streamContentHandler relays generated content as server-sent events. SSE
// headers are only written once the first event is ready, so failures that
// precede streaming still produce a plain JSON error response.
func streamContentHandler(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params generate.Params
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if params.BusinessID == "" {
			writeError(w, http.StatusBadRequest, "businessId is required")
			return
		}
		if _, ok := ownedBusiness(w, r, env, params.BusinessID); !ok {
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		started := false
		send := func(ev generate.Event) error {
			if !started {
				w.Header().Set("Content-Type", "text/event-stream")
				w.Header().Set("Cache-Control", "no-cache")
				w.Header().Set("Connection", "keep-alive")
				w.WriteHeader(http.StatusOK)
				started = true
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}

		if err := env.relay.Stream(r.Context(), params, send); err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				writeError(w, http.StatusNotFound, "referenced record not found")
			case errors.Is(err, generate.ErrInvalidContentType):
				writeError(w, http.StatusBadRequest, "invalid contentType")
			default:
				zap.L().Error("api: open content stream", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}
	}
}
