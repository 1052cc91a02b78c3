package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marketsmith/marketsmith/internal/model"
	"github.com/marketsmith/marketsmith/internal/plan"
)

var (
	planBusinessID   string
	planAnalysisID   string
	planPersonaIDs   []string
	planObjectives   []string
	planInstructions string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Synthesize a marketing plan from a completed analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		objectives := make([]model.CampaignObjective, 0, len(planObjectives))
		for _, o := range planObjectives {
			objectives = append(objectives, model.CampaignObjective(o))
		}

		created, err := env.planner.Synthesize(ctx, plan.Request{
			BusinessID:         planBusinessID,
			AnalysisID:         planAnalysisID,
			TargetPersonaIDs:   planPersonaIDs,
			Objectives:         objectives,
			CustomInstructions: planInstructions,
		})
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(created, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planBusinessID, "business", "", "business the plan belongs to")
	planCmd.Flags().StringVar(&planAnalysisID, "analysis", "", "completed analysis to build on")
	planCmd.Flags().StringSliceVar(&planPersonaIDs, "personas", nil, "persona ids to target (default: all for the business)")
	planCmd.Flags().StringSliceVar(&planObjectives, "objectives", nil, "campaign objectives, e.g. BRAND_AWARENESS,LEAD_GENERATION")
	planCmd.Flags().StringVar(&planInstructions, "instructions", "", "extra instructions for the synthesizer")
	_ = planCmd.MarkFlagRequired("business")
	_ = planCmd.MarkFlagRequired("analysis")
	_ = planCmd.MarkFlagRequired("objectives")
	rootCmd.AddCommand(planCmd)
}
