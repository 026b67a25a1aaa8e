package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docqa"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := docqa.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("opening config", "error", err)
			os.Exit(1)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			slog.Error("parsing config", "error", err)
			os.Exit(1)
		}
		f.Close()
	}

	// Override from environment variables.
	if v := os.Getenv("DOCQA_LLM_GENERATE_URL"); v != "" {
		cfg.LLM.GenerateURL = v
	}
	if v := os.Getenv("DOCQA_LLM_EMBED_URL"); v != "" {
		cfg.LLM.EmbedURL = v
	}
	if v := os.Getenv("DOCQA_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if os.Getenv("DOCQA_SKIP_LLM") == "1" {
		cfg.SkipLLM = true
	}
	if v := os.Getenv("DOCQA_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DOCQA_SNAPSHOT_PATH"); v != "" {
		cfg.SnapshotPath = v
	}

	apiKey := os.Getenv("DOCQA_API_KEY")
	corsOrigins := os.Getenv("DOCQA_CORS_ORIGINS")
	metricsAddr := os.Getenv("DOCQA_METRICS_ADDR")

	engine, err := docqa.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}

	h := newHandler(engine)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /ingest", h.handleIngest)
	mux.HandleFunc("POST /ingest/batch", h.handleIngestBatch)
	mux.HandleFunc("POST /chat", h.handleChat)
	mux.HandleFunc("GET /documents", h.handleListDocuments)
	mux.HandleFunc("GET /query-log", h.handleQueryLog)
	mux.HandleFunc("GET /health", h.handleHealth)

	// /metrics is served on a dedicated listener when DOCQA_METRICS_ADDR is
	// set, so scraping never passes through the auth/cors chain guarding the
	// API routes. Otherwise it falls back onto the main mux.
	if metricsAddr != "" {
		go func() {
			slog.Info("metrics server starting", "addr", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, promhttp.Handler()); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	} else {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Middleware chain: recovery -> cors -> auth -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = authMiddleware(apiKey, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := engine.SaveSnapshot(); err != nil {
		slog.Error("saving snapshot", "error", err)
	}

	slog.Info("server stopped")
}
