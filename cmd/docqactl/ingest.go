package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"docqa/docstore"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <directory>",
		Short: "Ingest every *.json RawDocument fixture in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return fmt.Errorf("reading directory: %w", err)
			}

			var raws []docstore.RawDocument
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
					continue
				}
				path := filepath.Join(args[0], entry.Name())
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				var raw docstore.RawDocument
				if err := json.Unmarshal(data, &raw); err != nil {
					return fmt.Errorf("parsing %s: %w", path, err)
				}
				if raw.ID == "" {
					raw.ID = uuid.NewString()
				}
				raws = append(raws, raw)
			}
			if len(raws) == 0 {
				color.Yellow("no *.json fixtures found in %s", args[0])
				return nil
			}

			eng, err := buildEngine()
			if err != nil {
				return fmt.Errorf("building engine: %w", err)
			}

			results, err := eng.IngestBatch(context.Background(), raws)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			for _, r := range results {
				if r.NeedsHumanReview {
					color.Yellow("! %s needs_human_review", r.DocumentID)
				} else {
					color.Green("✓ %s", r.DocumentID)
				}
			}

			if err := eng.SaveSnapshot(); err != nil {
				return fmt.Errorf("saving snapshot: %w", err)
			}
			fmt.Printf("ingested %d document(s) into %s\n", len(results), flagSnapshotPath)
			return nil
		},
	}
}
