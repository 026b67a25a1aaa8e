package docqa

import "docqa/llm"

// Config holds the engine's process-wide operational knobs (spec §6).
type Config struct {
	// LLM configures the single HTTP collaborator that serves both
	// POST /generate and POST /embed.
	LLM llm.Config `json:"llm" yaml:"llm"`

	// MaxRefs bounds how many retrieval results back one answer.
	MaxRefs int `json:"max_refs" yaml:"max_refs"`

	// MinScore is the retrieval relevance floor.
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// CacheSize and CacheTTLSeconds bound the Retrieval Cache.
	CacheSize       int `json:"cache_size" yaml:"cache_size"`
	CacheTTLSeconds int `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`

	// EmbeddingDim must match the embedding model's output width.
	EmbeddingDim int `json:"embedding_dim" yaml:"embedding_dim"`

	// LLMTimeoutMS and EmbedTimeoutMS bound external calls.
	LLMTimeoutMS   int `json:"llm_timeout_ms" yaml:"llm_timeout_ms"`
	EmbedTimeoutMS int `json:"embed_timeout_ms" yaml:"embed_timeout_ms"`

	// ConversationMemory bounds how many turns a session retains.
	ConversationMemory int `json:"conversation_memory" yaml:"conversation_memory"`

	// DBPath is the sqlite-vec sidecar database file (docstore.VecIndex)
	// behind the semantic score boost the Engine applies to keyword
	// retrieval results; the sidecar never adds candidates of its own.
	// Empty disables the sidecar; retrieval is then keyword-only.
	DBPath string `json:"db_path" yaml:"db_path"`

	// SnapshotPath is the JSON corpus snapshot's path (spec §6). A
	// missing file starts the engine with an empty corpus; an empty
	// path disables persistence entirely (in-memory only).
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path"`

	// IngestConcurrency bounds IngestBatch's per-document fan-out.
	IngestConcurrency int `json:"ingest_concurrency" yaml:"ingest_concurrency"`

	// SkipLLM disables every LLM-backed stage (classification
	// semantic pass, summarization, answer formatting), forcing the
	// heuristic/extractive/templated fallback path everywhere. Useful
	// for offline or cost-constrained deployments.
	SkipLLM bool `json:"skip_llm" yaml:"skip_llm"`
}

// DefaultConfig returns the defaults of spec §6's operational controls.
func DefaultConfig() Config {
	return Config{
		LLM: llm.Config{
			Model:       "llama3.1:8b",
			GenerateURL: "http://localhost:11434/generate",
			EmbedURL:    "http://localhost:11434/embed",
			Normalize:   true,
		},
		MaxRefs:            3,
		MinScore:           0.15,
		CacheSize:          100,
		CacheTTLSeconds:    600,
		EmbeddingDim:       1024,
		LLMTimeoutMS:       15000,
		EmbedTimeoutMS:     10000,
		ConversationMemory: 10,
		IngestConcurrency:  4,
	}
}
