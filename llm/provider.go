// Package llm implements the two external HTTP collaborators the
// engine depends on (spec §6): the LLM generation service
// (POST /generate) and the embedding service (POST /embed). Both are
// contracted external services; the engine never embeds a model
// runtime itself.
package llm

import "context"

// Provider is the interface the rest of the engine depends on.
// Implementations must honor ctx's deadline. Client wraps ErrTimeout
// when ctx ends the call and ErrUnavailable when the service cannot be
// reached or answers with a 5xx status; other failures (a 4xx status,
// an undecodable body) are plain errors. Callers apply the degrade
// rules of spec §4.15/§7 to any error.
type Provider interface {
	// Generate sends prompt to the LLM service and returns its raw text
	// response.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Embed returns one embedding vector per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateOptions mirrors the /generate request's "options" object.
type GenerateOptions struct {
	Temperature float64
	NumPredict  int
}

// Config configures an HTTP-backed Provider.
type Config struct {
	Model       string
	GenerateURL string // full URL of the POST /generate endpoint
	EmbedURL    string // full URL of the POST /embed endpoint
	Normalize   bool   // passed through as /embed's "normalize" flag
}
