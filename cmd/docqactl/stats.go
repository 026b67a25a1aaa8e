package main

import (
	"fmt"

	"docqa/docstore"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print corpus and recent-query statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine()
			if err != nil {
				return fmt.Errorf("building engine: %w", err)
			}

			docs := eng.Store().List()
			byType := make(map[docstore.DocType]int)
			needsReview := 0
			for _, d := range docs {
				byType[d.Type]++
				if d.NeedsHumanReview {
					needsReview++
				}
			}

			color.Cyan("corpus_version=%d documents=%d needs_review=%d", eng.Store().Version(), len(docs), needsReview)
			for t, n := range byType {
				fmt.Printf("  %-10s %d\n", t, n)
			}

			entries := eng.QueryLog()
			fmt.Printf("recent queries: %d\n", len(entries))
			for _, e := range entries {
				hit := "miss"
				if e.CacheHit {
					hit = "hit"
				}
				fmt.Printf("  [%s] %dms cache=%s %q\n", e.Intent, e.LatencyMs, hit, e.Query)
			}
			return nil
		},
	}
}
