package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketsmith/marketsmith/internal/generate"
	"github.com/marketsmith/marketsmith/internal/model"
)

var (
	genBusinessID   string
	genContentType  string
	genPlanID       string
	genPersonaID    string
	genTone         string
	genStyle        string
	genKeywords     []string
	genLength       string
	genCustomPrompt string
	genModel        string
	genSave         bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a piece of marketing content in one shot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		params := generate.Params{
			BusinessID:      genBusinessID,
			ContentType:     model.ContentType(genContentType),
			Tone:            genTone,
			Style:           genStyle,
			Keywords:        genKeywords,
			TargetPersonaID: genPersonaID,
			PlanID:          genPlanID,
			CustomPrompt:    genCustomPrompt,
			Length:          genLength,
			Model:           genModel,
		}

		text, modelUsed, promptUsed, err := env.relay.Generate(ctx, params)
		if err != nil {
			return err
		}

		zap.L().Info("content generated",
			zap.String("model", modelUsed),
			zap.Int("chars", len(text)),
		)

		if genSave {
			c, err := env.store.CreateContent(ctx, model.Content{
				BusinessID:  genBusinessID,
				PlanID:      genPlanID,
				ContentType: params.ContentType,
				Title:       fmt.Sprintf("Generated %s", params.ContentType.Label()),
				Body:        text,
				PromptUsed:  promptUsed,
				ModelUsed:   modelUsed,
			})
			if err != nil {
				return err
			}
			zap.L().Info("content saved", zap.String("content_id", c.ID))
		}

		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genBusinessID, "business", "", "business to generate for")
	generateCmd.Flags().StringVar(&genContentType, "type", string(model.ContentBlogPost), "content type, e.g. BLOG_POST, AD_COPY")
	generateCmd.Flags().StringVar(&genPlanID, "plan", "", "marketing plan to align with")
	generateCmd.Flags().StringVar(&genPersonaID, "persona", "", "target persona")
	generateCmd.Flags().StringVar(&genTone, "tone", "", "tone of voice")
	generateCmd.Flags().StringVar(&genStyle, "style", "", "writing style")
	generateCmd.Flags().StringSliceVar(&genKeywords, "keywords", nil, "keywords to include")
	generateCmd.Flags().StringVar(&genLength, "length", "", "short, medium, or long")
	generateCmd.Flags().StringVar(&genCustomPrompt, "prompt", "", "custom instructions")
	generateCmd.Flags().StringVar(&genModel, "model", "", "override the completion model")
	generateCmd.Flags().BoolVar(&genSave, "save", false, "persist the generated content")
	_ = generateCmd.MarkFlagRequired("business")
	rootCmd.AddCommand(generateCmd)
}
