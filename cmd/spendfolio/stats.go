package main

import (
	"github.com/spf13/cobra"

	"github.com/spendfolio/spendfolio/internal/llm"
	"github.com/spendfolio/spendfolio/internal/stats"
)

func statsCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's spending breakdown for last month",
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

			breakdown, err := aggregator.GetStats(ctx, user)
			if err != nil {
				return err
			}

			cmd.Printf("Spending for %s:\n", breakdown.PeriodStart.Format("2006-01"))
			if len(breakdown.Stats) == 0 {
				cmd.Println("  (no data)")
				return nil
			}
			for _, s := range breakdown.Stats {
				cmd.Printf("  %-24s %6.2f%%\n", s.Category, s.Percentage)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "external user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
