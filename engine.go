// Package docqa wires the Text Normalizer, Numeric Extractor, Table
// Extractor, Classifier, Canonicalizer, Summarizer, Document Store,
// Inverted Index, Retriever, Re-ranker, Aggregator, Retrieval Cache,
// Intent Router, Conversation Memory, and Answer Composer into the
// single Engine handle spec §9 calls for: one value owning every
// piece of shared state, with external-service clients as its only
// edge dependency.
package docqa

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"docqa/aggregate"
	"docqa/answer"
	"docqa/canon"
	"docqa/classify"
	"docqa/convo"
	"docqa/docstore"
	"docqa/extract"
	"docqa/index"
	"docqa/intent"
	"docqa/llm"
	"docqa/metrics"
	"docqa/rcache"
	"docqa/retrieval"
	"docqa/tableextract"

	"golang.org/x/sync/errgroup"
)

// QueryLogEntry records one Chat call for operator inspection (adapted
// from the teacher's query_log table, kept in memory as a bounded ring
// rather than a SQLite table since CORE has no relational store).
type QueryLogEntry struct {
	Query         string
	Intent        string
	CorpusVersion int64
	LatencyMs     int64
	CacheHit      bool
}

const queryLogCapacity = 200

// IngestResult reports one document's ingest outcome (spec §6).
type IngestResult struct {
	DocumentID      string   `json:"document_id"`
	NeedsHumanReview bool     `json:"needs_human_review"`
	ProcessingLog   []string `json:"processing_log"`
}

// ChatRequest is one user turn (spec §6).
type ChatRequest struct {
	SessionID           string   `json:"session_id"`
	Query               string   `json:"query"`
	ConversationHistory []string `json:"conversation_history,omitempty"`
}

// Reference is one answer-backing retrieval hit surfaced to the caller.
type Reference struct {
	Filename       string  `json:"filename"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float64 `json:"relevance_score"`
	Page           *int    `json:"page,omitempty"`
}

// ChatMeta carries the structured metadata the engine assembles
// before composition (spec §9: the LLM's free text is never parsed
// for anything but display).
type ChatMeta struct {
	Intent        string            `json:"intent"`
	QueryType     string            `json:"query_type"`
	References    []Reference       `json:"references,omitempty"`
	NumericValues []string          `json:"numeric_values,omitempty"`
	Aggregates    map[string]string `json:"aggregates,omitempty"`
	Confidence    float64           `json:"confidence"`
}

// ModelMeta reports which model answered and how long it took.
type ModelMeta struct {
	Model     string `json:"model"`
	LatencyMs int64  `json:"latency_ms"`
}

// ChatResponse is the engine's answer to one ChatRequest (spec §6).
type ChatResponse struct {
	Answer    string    `json:"answer"`
	Meta      ChatMeta  `json:"meta"`
	ModelMeta ModelMeta `json:"model_meta"`
}

// Engine owns the Document Store, Inverted Index, Retrieval Cache,
// per-session Conversation Memory, and the external LLM client.
type Engine struct {
	cfg      Config
	store    *docstore.Store
	idx      *index.Index
	cache    *rcache.Cache
	provider llm.Provider
	vecIndex *docstore.VecIndex

	sessMu   sync.Mutex
	sessions map[string]*convo.Memory

	logMu sync.Mutex
	log   []QueryLogEntry
}

// New builds an Engine from cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.MaxRefs == 0 {
		cfg.MaxRefs = 3
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = 0.15
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = 100
	}
	if cfg.CacheTTLSeconds == 0 {
		cfg.CacheTTLSeconds = 600
	}
	if cfg.ConversationMemory == 0 {
		cfg.ConversationMemory = 10
	}
	if cfg.LLMTimeoutMS == 0 {
		cfg.LLMTimeoutMS = 15000
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.LLMTimeoutMS) * time.Millisecond}
	var provider llm.Provider
	if !cfg.SkipLLM && cfg.LLM.GenerateURL != "" {
		provider = llm.NewClient(cfg.LLM, httpClient)
	}

	var vecIndex *docstore.VecIndex
	if cfg.DBPath != "" {
		dim := cfg.EmbeddingDim
		if dim == 0 {
			dim = 1024
		}
		vi, err := docstore.OpenVecIndex(cfg.DBPath, dim)
		if err != nil {
			slog.Warn("semantic candidate sidecar unavailable, falling back to keyword-only retrieval", "error", err)
		} else {
			vecIndex = vi
		}
	}

	store := docstore.New()
	if cfg.SnapshotPath != "" {
		loaded, err := docstore.LoadSnapshot(cfg.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("%w: loading snapshot: %v", ErrFatal, err)
		}
		store = loaded
	}

	idx := index.New()
	idx.Rebuild(store.List())

	return &Engine{
		cfg:      cfg,
		store:    store,
		idx:      idx,
		cache:    rcache.New(cfg.CacheSize, time.Duration(cfg.CacheTTLSeconds)*time.Second),
		provider: provider,
		vecIndex: vecIndex,
		sessions: make(map[string]*convo.Memory),
	}, nil
}

// SaveSnapshot persists the corpus to cfg.SnapshotPath. A no-op if no
// path is configured.
func (e *Engine) SaveSnapshot() error {
	if e.cfg.SnapshotPath == "" {
		return nil
	}
	return e.store.SaveSnapshot(e.cfg.SnapshotPath)
}

// QueryLog returns the most recent Chat calls, oldest first.
func (e *Engine) QueryLog() []QueryLogEntry {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	out := make([]QueryLogEntry, len(e.log))
	copy(out, e.log)
	return out
}

func (e *Engine) recordQueryLog(entry QueryLogEntry) {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	e.log = append(e.log, entry)
	if len(e.log) > queryLogCapacity {
		e.log = e.log[len(e.log)-queryLogCapacity:]
	}
}

// Store returns the underlying Document Store for diagnostic access.
func (e *Engine) Store() *docstore.Store { return e.store }

// Ingest runs one RawDocument through Extraction → Table Extraction →
// Classification → Canonicalization, inserts the result, and rebuilds
// the Inverted Index.
func (e *Engine) Ingest(ctx context.Context, raw docstore.RawDocument) (*IngestResult, error) {
	start := time.Now()
	doc, log, err := e.canonicalize(ctx, raw)
	if err != nil {
		metrics.RecordIngest(err, false, time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	e.embedDocument(ctx, doc)

	if _, err := e.store.Insert(doc); err != nil {
		metrics.RecordIngest(err, false, time.Since(start).Seconds())
		return nil, err
	}
	e.idx.Rebuild(e.store.List())
	e.cache.Clear()
	metrics.SetCacheSize(0)
	metrics.RecordIngest(nil, doc.NeedsHumanReview, time.Since(start).Seconds())

	return &IngestResult{
		DocumentID:       doc.ID,
		NeedsHumanReview: doc.NeedsHumanReview,
		ProcessingLog:    log,
	}, nil
}

// IngestBatch runs a set of independent RawDocuments concurrently
// (spec §5: the ingest path is CPU-parallel over distinct documents)
// then applies every insert and a single index rebuild.
func (e *Engine) IngestBatch(ctx context.Context, raws []docstore.RawDocument) ([]*IngestResult, error) {
	docs := make([]*docstore.NormalizedDocument, len(raws))
	logs := make([][]string, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.IngestConcurrency > 0 {
		g.SetLimit(e.cfg.IngestConcurrency)
	}
	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			doc, log, err := e.canonicalize(gctx, raw)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidInput, raw.Filename, err)
			}
			docs[i] = doc
			logs[i] = log
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]*IngestResult, len(docs))
	for i, doc := range docs {
		start := time.Now()
		e.embedDocument(ctx, doc)
		if _, err := e.store.Insert(doc); err != nil {
			metrics.RecordIngest(err, false, time.Since(start).Seconds())
			return nil, err
		}
		metrics.RecordIngest(nil, doc.NeedsHumanReview, time.Since(start).Seconds())
		results[i] = &IngestResult{
			DocumentID:       doc.ID,
			NeedsHumanReview: doc.NeedsHumanReview,
			ProcessingLog:    logs[i],
		}
	}
	e.idx.Rebuild(e.store.List())
	e.cache.Clear()
	return results, nil
}

// canonicalize runs the deterministic extractors, the classifier, and
// the canonicalizer over one raw document (spec §4.2–§4.5).
func (e *Engine) canonicalize(ctx context.Context, raw docstore.RawDocument) (*docstore.NormalizedDocument, []string, error) {
	var log []string
	var amounts []extract.Amount
	var dates []extract.Date
	var ids []extract.ID
	for i, sec := range raw.Sections {
		sid := sectionID(raw.ID, i, sec.ID)
		amounts = append(amounts, extract.ExtractAmounts(sid, sec.Content)...)
		dates = append(dates, extract.ExtractDates(sid, sec.Content)...)
		ids = append(ids, extract.ExtractInvoiceIDs(sid, sec.Content)...)
	}
	if len(amounts) == 0 {
		log = append(log, "extraction: no amounts found in document body")
	}

	tables := tableextract.Extract(raw)

	class := classify.Classify(ctx, raw, ids, e.provider)
	log = append(log, fmt.Sprintf("classify: type=%s confidence=%.2f method=%s", class.Type, class.Confidence, class.Method))

	doc, err := canon.Canonicalize(canon.Input{
		Raw:        raw,
		Class:      class,
		Amounts:    amounts,
		Dates:      dates,
		IDs:        ids,
		TableItems: tables,
	})
	if err != nil {
		return nil, log, err
	}
	if doc.NeedsHumanReview {
		log = append(log, "canonicalize: flagged needs_human_review")
	}
	return doc, log, nil
}

// embedDocument populates doc's embedding and mirrors it into the
// semantic sidecar. Best-effort: an embedding failure never fails
// ingest, since the Retriever still works keyword-only.
func (e *Engine) embedDocument(ctx context.Context, doc *docstore.NormalizedDocument) {
	if e.provider == nil {
		return
	}
	text := doc.SourceSample
	if doc.Summary != nil && doc.Summary.Text != "" {
		text = doc.Summary.Text
	}
	if text == "" {
		return
	}
	if e.cfg.EmbedTimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.EmbedTimeoutMS)*time.Millisecond)
		defer cancel()
	}
	vecs, err := e.provider.Embed(ctx, []string{text})
	if err != nil || len(vecs) == 0 {
		slog.Warn("embedding failed, document will be retrieved keyword-only", "document_id", doc.ID, "error", err)
		return
	}
	doc.Embedding = vecs[0]
	doc.EmbeddingModel = e.cfg.LLM.Model

	if e.vecIndex != nil {
		if err := e.vecIndex.Upsert(ctx, doc.ID, vecs[0]); err != nil {
			slog.Warn("semantic sidecar upsert failed", "document_id", doc.ID, "error", err)
		}
	}
}

// sectionID mirrors canon's section-id derivation so extractor output
// keys line up with the Section ids the Canonicalizer later builds.
func sectionID(docID string, ordinal int, raw string) string {
	if raw != "" {
		return raw
	}
	return fmt.Sprintf("%s#%d", docID, ordinal)
}

// Chat runs one conversation turn: reference resolution, intent
// routing, a cache lookup, retrieval on miss, and answer composition.
func (e *Engine) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	mem := e.session(req.SessionID)

	now := time.Now()
	query := req.Query
	if rewritten, ok := mem.ResolveReference(req.Query, e.filenames()); ok {
		query = rewritten
	}

	route := intent.Route(query, now)

	var results []retrieval.Result
	cacheHit := false
	if route.Kind == intent.Document || route.Kind == intent.Aggregate {
		key := rcache.NewKey(query, e.store.Version())
		if cached, ok := e.cache.Get(key); ok {
			metrics.RecordCacheHit()
			cacheHit = true
			results = cached.([]retrieval.Result)
		} else {
			metrics.RecordCacheMiss()
			results = retrieval.Retrieve(query, e.store.List(), e.idx, retrieval.Options{
				MaxRefs:  e.cfg.MaxRefs,
				MinScore: e.cfg.MinScore,
				Intent:   string(route.Kind),
			})
			results = e.boostSemanticMatches(ctx, query, results)
			e.cache.Put(key, results)
			metrics.SetCacheSize(float64(e.cache.Stats().Size))
		}
	}

	history := mem.Recent(3)
	resp, err := answer.Compose(ctx, answer.Request{
		Intent:    route,
		Query:     query,
		Store:     e.store,
		Retrieval: results,
		History:   history,
		Provider:  e.provider,
	})
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)
	metrics.RecordQuery(string(route.Kind), latency.Seconds())
	e.recordQueryLog(QueryLogEntry{
		Query:         req.Query,
		Intent:        string(route.Kind),
		CorpusVersion: e.store.Version(),
		LatencyMs:     latency.Milliseconds(),
		CacheHit:      cacheHit,
	})

	mem.Add(convo.Turn{Role: "user", Content: req.Query})
	mem.Add(convo.Turn{Role: "assistant", Content: resp.Text})

	chatResp := &ChatResponse{
		Answer: resp.Text,
		Meta: ChatMeta{
			Intent:     string(route.Kind),
			QueryType:  string(route.Kind),
			Confidence: resp.Confidence,
		},
		ModelMeta: ModelMeta{
			LatencyMs: time.Since(start).Milliseconds(),
		},
	}
	if e.provider != nil {
		chatResp.ModelMeta.Model = e.cfg.LLM.Model
	}
	for _, r := range results {
		chatResp.Meta.References = append(chatResp.Meta.References, Reference{
			Filename:       r.Filename,
			Excerpt:        r.Excerpt,
			RelevanceScore: r.Score,
		})
	}
	if len(resp.DuplicateInvoices) > 0 || len(resp.Outliers) > 0 {
		chatResp.Meta.Aggregates = map[string]string{}
		if len(resp.DuplicateInvoices) > 0 {
			chatResp.Meta.Aggregates["duplicates"] = fmt.Sprint(resp.DuplicateInvoices)
		}
		if len(resp.Outliers) > 0 {
			chatResp.Meta.Aggregates["outliers"] = fmt.Sprint(resp.Outliers)
		}
	}
	return chatResp, nil
}

// boostSemanticMatches runs the query through the embedding sidecar and
// nudges the score of any already-retrieved result whose document also
// shows up among the nearest neighbors, then re-sorts. It never adds
// documents the keyword cascade missed entirely: the sidecar is a
// re-ranking signal, not an independent candidate source, since spec
// §4.9/§4.10 define retrieval as a deterministic cascade.
func (e *Engine) boostSemanticMatches(ctx context.Context, query string, results []retrieval.Result) []retrieval.Result {
	if e.provider == nil || e.vecIndex == nil || len(results) == 0 {
		return results
	}
	vecs, err := e.provider.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		return results
	}
	matches, err := e.vecIndex.Search(ctx, vecs[0], len(results)*2)
	if err != nil {
		slog.Warn("semantic candidate search failed, scoring stays keyword-only", "error", err)
		return results
	}
	semantic := make(map[string]float64, len(matches))
	for _, m := range matches {
		semantic[m.DocumentID] = m.Similarity
	}
	for i := range results {
		if sim, ok := semantic[results[i].DocumentID]; ok {
			results[i].Score += 0.1 * sim
			if results[i].Score > 1 {
				results[i].Score = 1
			}
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

func (e *Engine) session(id string) *convo.Memory {
	e.sessMu.Lock()
	defer e.sessMu.Unlock()
	mem, ok := e.sessions[id]
	if !ok {
		mem = convo.New(e.cfg.ConversationMemory)
		e.sessions[id] = mem
	}
	return mem
}

func (e *Engine) filenames() []string {
	docs := e.store.List()
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Filename
	}
	return out
}

// Aggregate runs the Aggregator directly, bypassing intent routing,
// for callers that already have a parsed Plan.
func (e *Engine) Aggregate(plan aggregate.Plan) (*aggregate.Result, error) {
	return aggregate.Aggregate(e.store.List(), plan)
}
