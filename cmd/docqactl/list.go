package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every document in the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine()
			if err != nil {
				return fmt.Errorf("building engine: %w", err)
			}

			docs := eng.Store().List()
			if len(docs) == 0 {
				color.Yellow("corpus is empty")
				return nil
			}
			for _, d := range docs {
				review := ""
				if d.NeedsHumanReview {
					review = color.YellowString(" [needs_human_review]")
				}
				fmt.Printf("%-10s %-40s %s%s\n", d.Type, d.Filename, d.ID, review)
			}
			return nil
		},
	}
}
