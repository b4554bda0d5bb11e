package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"prediction_market/internal/app/bootstrap"
	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMarketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "markets",
		Aliases: []string{"market", "m"},
		Short:   "List, trade and administer markets",
	}
	cmd.AddCommand(
		newMarketsListCmd(),
		newMarketsShowCmd(),
		newMarketsPositionsCmd(),
		newMarketsBuyCmd(),
		newMarketsResolveCmd(),
		newMarketsClaimCmd(),
		newMarketsCreateCmd(),
	)
	return cmd
}

func parseMarketID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid market id %q", s)
	}
	return id, nil
}

func newMarketsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every market",
		RunE: withApp(func(ctx context.Context, app *bootstrap.App) error {
			markets, err := app.Markets.ListMarkets(ctx)
			if err != nil {
				return err
			}
			if len(markets) == 0 {
				dimColor.Println("No markets yet")
				return nil
			}

			now := time.Now()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tENDS\tQUESTION")
			for _, m := range markets {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Status(now), m.EndTime.Local().Format(time.DateTime), m.Question)
			}
			return w.Flush()
		}),
	}
}

func newMarketsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a market with share totals and your shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMarketID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				detail, err := app.Markets.GetMarket(ctx, id)
				if err != nil {
					return err
				}
				printMarket(detail)
				return nil
			})(cmd, args)
		},
	}
}

func printMarket(d entity.MarketDetail) {
	decimals := cfg.Contracts.TokenDecimals
	winner, resolved := d.WinningOutcome()

	fmt.Printf("#%d %s\n", d.ID, d.Question)
	dimColor.Printf("Status: %s, ends %s\n", d.Status(time.Now()), d.EndTime.Local().Format(time.DateTime))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTION\tTEXT\tTOTAL SHARES\tYOUR SHARES\t")
	for i, text := range d.Options {
		o := entity.Outcome(i)
		mine := "-"
		if d.UserShares[i] != nil {
			mine = utils.FormatBigInt(d.UserShares[i], decimals)
		}
		marker := ""
		if resolved && o == winner {
			marker = color.GreenString("winner")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o, text, utils.FormatBigInt(d.Shares[i], decimals), mine, marker)
	}
	_ = w.Flush()
}

func newMarketsPositionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List markets in which the connected account holds shares",
		RunE: withApp(func(ctx context.Context, app *bootstrap.App) error {
			positions, err := app.Markets.Positions(ctx)
			if err != nil {
				return err
			}
			if len(positions) == 0 {
				dimColor.Println("No positions")
				return nil
			}

			decimals := cfg.Contracts.TokenDecimals
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tA\tB\tC\tD\tCLAIMABLE\tQUESTION")
			for _, p := range positions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n", p.Market.ID,
					utils.FormatBigInt(p.Shares[0], decimals), utils.FormatBigInt(p.Shares[1], decimals),
					utils.FormatBigInt(p.Shares[2], decimals), utils.FormatBigInt(p.Shares[3], decimals),
					p.Claimable, p.Market.Question)
			}
			return w.Flush()
		}),
	}
}

func newMarketsBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <id> <option A-D> <amount>",
		Short: "Buy shares of an option",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMarketID(args[0])
			if err != nil {
				return err
			}
			outcome, err := entity.ParseOutcome(args[1])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				return printReceipt(app.Markets.BuyShares(ctx, id, outcome, args[2]))
			})(cmd, args)
		},
	}
}

func newMarketsResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve a market (contract owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMarketID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				return printReceipt(app.Markets.ResolveMarket(ctx, id))
			})(cmd, args)
		},
	}
}

func newMarketsClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <id>",
		Short: "Claim winnings from a resolved market",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMarketID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				return printReceipt(app.Markets.ClaimWinnings(ctx, id))
			})(cmd, args)
		},
	}
}

func newMarketsCreateCmd() *cobra.Command {
	var (
		question string
		options  []string
		minutes  int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a market (contract owner only)",
		Example: `  marketctl markets create --question "Who wins?" \
    --option Alice --option Bob --option Carol --option Dave --duration 90`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(options) != 4 {
				return fmt.Errorf("exactly four --option values are required, got %d", len(options))
			}
			req := entity.CreateMarketRequest{
				Question: question,
				Options:  [4]string{options[0], options[1], options[2], options[3]},
				Duration: time.Duration(minutes) * time.Minute,
			}
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				return printReceipt(app.Markets.CreateMarket(ctx, req))
			})(cmd, args)
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "Market question")
	cmd.Flags().StringArrayVarP(&options, "option", "o", nil, "Option text, repeat four times (A to D)")
	cmd.Flags().IntVarP(&minutes, "duration", "d", 60, "Trading duration in minutes")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

// printReceipt prints the mined transaction. The pipeline has already shown
// the outcome toast, so only details are printed here.
func printReceipt(r *types.Receipt, err error) error {
	if err != nil {
		return err
	}
	if r != nil {
		dimColor.Printf("tx %s mined in block %s\n", r.TxHash.Hex(), r.BlockNumber)
	}
	return nil
}
