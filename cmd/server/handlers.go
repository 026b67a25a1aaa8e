package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docqa"
	"docqa/docstore"
)

type handler struct {
	engine *docqa.Engine
}

func newHandler(e *docqa.Engine) *handler {
	return &handler{engine: e}
}

// POST /ingest
// Accepts a single docstore.RawDocument as JSON.
func (h *handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var raw docstore.RawDocument
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if raw.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	result, err := h.engine.Ingest(ctx, raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		slog.Error("ingest error", "filename", raw.Filename, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /ingest/batch
// Accepts a JSON array of docstore.RawDocument, ingested concurrently.
func (h *handler) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	var raws []docstore.RawDocument
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(raws) == 0 {
		writeError(w, http.StatusBadRequest, "at least one document is required")
		return
	}

	results, err := h.engine.IngestBatch(ctx, raws)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		slog.Error("ingest batch error", "count", len(raws), "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// POST /chat
func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req docqa.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.RemoteAddr
	}

	resp, err := h.engine.Chat(ctx, req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "chat failed")
		slog.Error("chat error", "session_id", req.SessionID, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /documents
func (h *handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.engine.Store().List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"version":   h.engine.Store().Version(),
	})
}

// GET /query-log
func (h *handler) handleQueryLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": h.engine.QueryLog(),
	})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%s", msg)})
}
