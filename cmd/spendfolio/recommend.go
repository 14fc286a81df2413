package main

import (
	"github.com/spf13/cobra"

	"github.com/spendfolio/spendfolio/internal/llm"
	"github.com/spendfolio/spendfolio/internal/recommend"
	"github.com/spendfolio/spendfolio/internal/stats"
)

func recommendCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Get this month's stock recommendations for a user",
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
			engine := recommend.NewEngine(store, client, aggregator, nil, nil)

			set, err := engine.GetRecommendations(ctx, user)
			if err != nil {
				return err
			}

			if len(set.Stocks) == 0 {
				cmd.Println("No recommendations available yet. Try again after importing spending data.")
				return nil
			}

			cmd.Printf("Recommendations for %s:\n", set.Date.Format("2006-01"))
			for i, stock := range set.Stocks {
				cmd.Printf("  %d. %s\n", i+1, stock)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "external user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
