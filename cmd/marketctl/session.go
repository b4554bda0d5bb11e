package main

import (
	"context"
	"fmt"

	"prediction_market/internal/app/bootstrap"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage the wallet session",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the current wallet session",
			RunE: withApp(func(ctx context.Context, app *bootstrap.App) error {
				printSession(app)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "connect",
			Short: "Request account access from the wallet",
			RunE: withApp(func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Session.Connect(ctx); err != nil {
					return err
				}
				printSession(app)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "switch",
			Short: "Switch the wallet to the required network, adding it if needed",
			RunE: withApp(func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Session.SwitchNetwork(ctx); err != nil {
					return err
				}
				printSession(app)
				return nil
			}),
		},
	)
	return cmd
}

func printSession(app *bootstrap.App) {
	s := app.Session.Snapshot()
	required := app.Network.Required()

	if !s.Connected {
		color.Yellow("Wallet not connected")
		dimColor.Printf("Required network: %s (ChainID: %d)\n", required.Name, required.ChainID)
		return
	}

	fmt.Printf("Account:  %s\n", s.Account)
	fmt.Printf("Network:  %s (ChainID: %d)\n", app.Network.NameOf(s.ChainID), s.ChainID)
	if s.NetworkMatches {
		color.Green("Network matches %s", required.Name)
	} else {
		color.Red("Wrong network, %s (ChainID: %d) required. Run `marketctl session switch`.", required.Name, required.ChainID)
	}
	if s.IsOwner {
		color.Cyan("Connected account owns the market contract")
	}
}
