package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/spendfolio/spendfolio/internal/llm"
	"github.com/spendfolio/spendfolio/internal/stats"
)

func aggregateCmd() *cobra.Command {
	var user string
	var month string

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate a user's spending into monthly category stats",
		Long: `Aggregate computes the category spending breakdown for the previous
calendar month (or the month given with --month). Stats are computed once
per month; re-running is a no-op.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			client, err := initLLMClient(ctx)
			if err != nil {
				return err
			}

			classifier := llm.NewClassifier(client, store, llmClientConfig(), nil)
			aggregator := stats.NewAggregator(store, classifier, nil, nil)

			// The aggregator derives its window from the month preceding
			// the target, so aggregating month M means targeting M+1.
			var target *time.Time
			if month != "" {
				m, err := parseMonth(month)
				if err != nil {
					return err
				}
				next := m.AddDate(0, 1, 0)
				target = &next
			}

			if err := aggregator.Aggregate(ctx, user, target); err != nil {
				return err
			}

			cmd.Printf("Aggregated spending stats for user %s\n", user)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "external user id")
	cmd.Flags().StringVar(&month, "month", "", "month to aggregate (YYYY-MM, default previous month)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
