package main

import (
	"context"
	"fmt"

	"prediction_market/internal/app/bootstrap"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Stablecoin balance, approval and test minting",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show balance and allowance for the market contract",
			RunE: withApp(func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.Markets.TokenStatus(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Balance:   %s\n", st.FormattedBalance)
				fmt.Printf("Allowance: %s\n", st.FormattedAllowance)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "approve",
			Short: "Approve the market contract to spend the stablecoin",
			RunE: withApp(func(ctx context.Context, app *bootstrap.App) error {
				return printReceipt(app.Markets.ApproveToken(ctx))
			}),
		},
		&cobra.Command{
			Use:   "mint",
			Short: "Mint test stablecoins to the connected account",
			RunE: withApp(func(ctx context.Context, app *bootstrap.App) error {
				return printReceipt(app.Markets.MintToken(ctx))
			}),
		},
	)
	return cmd
}
