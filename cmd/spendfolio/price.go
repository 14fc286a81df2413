package main

import (
	"github.com/spf13/cobra"

	"github.com/spendfolio/spendfolio/internal/stockapi"
)

func priceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price <stock>",
		Short: "Look up the latest market quote for a stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stockName := args[0]

			client, err := initStockClient()
			if err != nil {
				return err
			}

			resolver := stockapi.NewResolver(client, nil, nil)
			quote, err := resolver.GetPrice(ctx, stockName)
			if err != nil {
				return err
			}
			if quote == nil {
				cmd.Printf("No recent quote found for %s\n", stockName)
				return nil
			}

			cmd.Printf("%s (%s)\n", quote.Name, quote.Date.Format("2006-01-02"))
			cmd.Printf("  Price:  %.0f\n", quote.Current)
			cmd.Printf("  Change: %+.0f (%+.2f%%)\n", quote.VsAmount, quote.FluctuationRate)
			return nil
		},
	}

	return cmd
}
