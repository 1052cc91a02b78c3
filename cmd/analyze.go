package main

import (
	"context"
	"net/url"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marketsmith/marketsmith/internal/model"
)

var (
	analyzeUser        string
	analyzeBusinessID  string
	analyzeConcurrency int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url...]",
	Short: "Run the market-analysis pipeline over one or more websites",
	Long: "Runs scrape, SWOT, competitor, and persona extraction for each URL. " +
		"Without --business, a business record is created per URL, owned by --user.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if analyzeBusinessID == "" && analyzeUser == "" {
			return eris.New("either --business or --user is required")
		}

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return analyzeBatch(ctx, env, args)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "owner for businesses created from URLs")
	analyzeCmd.Flags().StringVar(&analyzeBusinessID, "business", "", "existing business to attach analyses to")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 3, "max analyses running at once")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeBatch runs the pipeline for each URL concurrently. Individual
// failures are counted and logged without aborting the batch.
func analyzeBatch(ctx context.Context, env *appEnv, urls []string) error {
	zap.L().Info("analyzing websites",
		zap.Int("urls", len(urls)),
		zap.Int("concurrency", analyzeConcurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyzeConcurrency)

	var succeeded, failed atomic.Int64

	for _, sourceURL := range urls {
		sourceURL := sourceURL
		g.Go(func() error {
			log := zap.L().With(zap.String("url", sourceURL))

			businessID := analyzeBusinessID
			if businessID == "" {
				b, err := env.store.CreateBusiness(gctx, model.Business{
					UserID:     analyzeUser,
					Name:       businessNameFromURL(sourceURL),
					WebsiteURL: sourceURL,
				})
				if err != nil {
					failed.Add(1)
					log.Error("create business failed", zap.Error(err))
					return nil
				}
				businessID = b.ID
			}

			a, err := env.pipeline.Run(gctx, businessID, sourceURL)
			if err != nil {
				failed.Add(1)
				log.Error("analysis failed", zap.Error(err))
				return nil
			}

			succeeded.Add(1)
			log.Info("analysis complete",
				zap.String("analysis_id", a.ID),
				zap.String("status", string(a.Status)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "analyze batch")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

func businessNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}
