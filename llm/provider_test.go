package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if req.Prompt != "classify this document" {
			t.Errorf("unexpected prompt %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "invoice 0.91"})
	}))
	defer srv.Close()

	c := NewClient(Config{Model: "test-model", GenerateURL: srv.URL}, nil)
	out, err := c.Generate(context.Background(), "classify this document", GenerateOptions{Temperature: 0.1, NumPredict: 64})
	if err != nil {
		t.Fatal(err)
	}
	if out != "invoice 0.91" {
		t.Errorf("response = %q, want %q", out, "invoice 0.91")
	}
}

func TestClientEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Texts) != 2 {
			t.Fatalf("expected 2 texts, got %d", len(req.Texts))
		}
		json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
			ModelInfo:  "test-embed-model",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{EmbedURL: srv.URL, Normalize: true}, nil)
	out, err := c.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(out))
	}
}

func TestClientGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewClient(Config{GenerateURL: srv.URL}, nil)
	_, err := c.Generate(context.Background(), "p", GenerateOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestClientGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		json.NewEncoder(w).Encode(generateResponse{Response: "late"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	c := NewClient(Config{GenerateURL: srv.URL}, nil)
	_, err := c.Generate(ctx, "p", GenerateOptions{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
