package main

import (
	"github.com/spf13/cobra"

	"github.com/spendfolio/spendfolio/internal/llm"
	"github.com/spendfolio/spendfolio/internal/recommend"
	"github.com/spendfolio/spendfolio/internal/stats"
)

func briefingCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "briefing <stock>",
		Short: "Get a briefing on a recommended stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stockName := args[0]

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

			briefing, err := engine.GetBriefing(ctx, user, stockName)
			if err != nil {
				return err
			}

			cmd.Printf("%s (score %d)\n\n", stockName, briefing.Score)
			cmd.Printf("Why: %s\n\n", briefing.Reason)
			cmd.Printf("Market summary (%s):\n%s\n", briefing.Summary.Date.Format("2006-01-02"), briefing.Summary.Contents)
			if len(briefing.News) > 0 {
				cmd.Println("\nNews:")
				for _, item := range briefing.News {
					cmd.Printf("  - %s\n    %s\n", item.Summary, item.Link)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "external user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
