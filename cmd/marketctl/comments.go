package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"prediction_market/internal/domain/entity"
	"prediction_market/internal/infrastructure/commentsclient"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and post market comments through a running marketd",
	}

	var address string
	post := &cobra.Command{
		Use:   "post <market id> <text...>",
		Short: "Post a comment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid market id %q", args[0])
			}
			c, err := newCommentsClient().Create(cmd.Context(), entity.CommentInput{
				MarketID:      &id,
				WalletAddress: address,
				Content:       strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			color.Green("Comment %s posted", c.ID)
			return nil
		},
	}
	post.Flags().StringVarP(&address, "address", "a", "", "Wallet address to post as")
	_ = post.MarkFlagRequired("address")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <market id>",
			Short: "List comments on a market, newest first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid market id %q", args[0])
				}
				comments, err := newCommentsClient().List(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(comments) == 0 {
					dimColor.Println("No comments yet")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				for _, c := range comments {
					fmt.Fprintf(w, "%s\t%s\t%s\n", c.CreatedAt.Local().Format(time.DateTime), c.WalletAddress, c.Content)
				}
				return w.Flush()
			},
		},
		post,
	)
	return cmd
}

func newCommentsClient() *commentsclient.Client {
	timeout := time.Duration(cfg.CommentsClient.RequestTimeoutMillis) * time.Millisecond
	return commentsclient.New(cfg.CommentsClient.BaseURL, timeout, zapLogger)
}
