package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTimeout is returned when a request exceeds ctx's deadline.
var ErrTimeout = errors.New("llm: request timed out")

// ErrUnavailable is returned when the service could not be reached or
// responded with a server error.
var ErrUnavailable = errors.New("llm: service unavailable")

// Client is the default HTTP-backed Provider implementation, shaped
// around the native Ollama-style API the teacher's client used: plain
// JSON request/response, no chat history, a single prompt string.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a Client. The supplied http.Client should already
// carry whatever per-request timeout the caller wants enforced; ctx
// deadlines are honored in addition.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate implements Provider.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	body := generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.NumPredict,
		},
	}
	var resp generateResponse
	if err := c.post(ctx, c.cfg.GenerateURL, body, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Normalize bool     `json:"normalize"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	ModelInfo  string      `json:"model_info"`
}

// Embed implements Provider.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := embedRequest{Texts: texts, Normalize: c.cfg.Normalize}
	var resp embedResponse
	if err := c.post(ctx, c.cfg.EmbedURL, body, &resp); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

func (c *Client) post(ctx context.Context, url string, reqBody, respBody any) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("llm: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(raw))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm: status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, respBody); err != nil {
		return fmt.Errorf("llm: decode response: %w", err)
	}
	return nil
}
