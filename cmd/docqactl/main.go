// Command docqactl is a terminal entrypoint alongside the HTTP API:
// ingest a directory of pre-parsed RawDocument JSON fixtures, ask a
// question, list the corpus, or print corpus stats.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagSnapshotPath string
	flagDBPath       string
	flagGenerateURL  string
	flagEmbedURL     string
	flagModel        string
	flagSkipLLM      bool
)

func main() {
	root := &cobra.Command{
		Use:   "docqactl",
		Short: "Operator CLI for the document question-answering engine",
	}

	root.PersistentFlags().StringVar(&flagSnapshotPath, "snapshot", "docqa-snapshot.json", "corpus snapshot file")
	root.PersistentFlags().StringVar(&flagDBPath, "db", "", "sqlite-vec sidecar path (empty disables semantic retrieval)")
	root.PersistentFlags().StringVar(&flagGenerateURL, "generate-url", "http://localhost:11434/generate", "LLM generate endpoint")
	root.PersistentFlags().StringVar(&flagEmbedURL, "embed-url", "http://localhost:11434/embed", "LLM embed endpoint")
	root.PersistentFlags().StringVar(&flagModel, "model", "llama3.1:8b", "LLM model name")
	root.PersistentFlags().BoolVar(&flagSkipLLM, "skip-llm", false, "force the heuristic/extractive fallback path")

	root.AddCommand(newIngestCmd(), newChatCmd(), newListCmd(), newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
