package main

import (
	"context"
	"fmt"
	"strings"

	"docqa"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask a question against the ingested corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine()
			if err != nil {
				return fmt.Errorf("building engine: %w", err)
			}

			resp, err := eng.Chat(context.Background(), docqa.ChatRequest{
				SessionID: "docqactl",
				Query:     strings.Join(args, " "),
			})
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}

			color.Cyan("[%s]", resp.Meta.Intent)
			fmt.Println(resp.Answer)
			for _, ref := range resp.Meta.References {
				color.New(color.Faint).Printf("  - %s (score %.2f): %s\n", ref.Filename, ref.RelevanceScore, ref.Excerpt)
			}
			return nil
		},
	}
}
