package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benvon/interview-tracker/internal/app"
	"github.com/benvon/interview-tracker/internal/workers"
)

func newSeedCmd(run envRunner) *cobra.Command {
	var policy, source string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Merge the bundled project questions",
		Long:  "Merge project_questions.json from SEED_SOURCE (a directory or http(s) base URL) into the store",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, env *Env) error {
			if source == "" {
				source = env.Config.SeedSource
			}
			if policy == "" {
				policy = env.Config.SeedPolicy
			}
			result, err := app.ApplySeed(cmd.Context(), env.Stores, source, policy, env.Logger)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d questions, skipped %d\n", result.Imported, result.Skipped)
			return nil
		}),
	}

	cmd.Flags().StringVar(&policy, "policy", "", "if_empty or always (default from SEED_POLICY)")
	cmd.Flags().StringVar(&source, "source", "", "Seed directory or base URL (default from SEED_SOURCE)")
	return cmd
}

func newBackfillCmd(run envRunner) *cobra.Command {
	var spacing time.Duration

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Queue answer generation for unanswered questions",
		Long:  "Enqueue an answer_generation job for every question without an answer. Requires RABBITMQ_URL so a worker can process the jobs.",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, env *Env) error {
			if !env.Config.UseBroker() {
				return fmt.Errorf("backfill requires RABBITMQ_URL; jobs queued in-process would be lost when this command exits")
			}

			ctx := cmd.Context()
			jobQueue, err := app.ConnectQueue(ctx, env.Config, env.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = jobQueue.Close() }()

			n, err := workers.NewBackfiller(jobQueue, env.Stores.Questions, spacing, env.Logger).ScheduleMissingAnswers(ctx)
			if err != nil {
				return fmt.Errorf("backfill failed after %d jobs: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %d answer jobs\n", n)
			return nil
		}),
	}

	cmd.Flags().DurationVar(&spacing, "spacing", 2*time.Second, "Delay between consecutive jobs")
	return cmd
}
