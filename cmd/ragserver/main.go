package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"devopsrag/internal/azure"
	"devopsrag/internal/config"
	"devopsrag/internal/ingest"
	"devopsrag/internal/rag"
	"devopsrag/internal/server"
	"devopsrag/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	corpus, err := ingest.LoadDir(cfg.Server.DataDir, logger)
	if err != nil {
		logger.Error("failed to read corpus directory", "dir", cfg.Server.DataDir, "error", err)
		os.Exit(1)
	}
	logger.Info("corpus loaded", "dir", cfg.Server.DataDir, "documents", len(corpus))

	client := azure.New(azure.Config{
		EmbeddingURL: cfg.Azure.EmbeddingURL,
		ChatURL:      cfg.Azure.ChatURL,
		APIKey:       cfg.Azure.APIKey,
		Timeout:      time.Duration(cfg.Azure.TimeoutSecs) * time.Second,
	})
	defer client.Close()

	store := memory.NewStore()
	engine := rag.NewEngine(client, client, store, rag.Options{
		TopK:        cfg.Retrieval.TopK,
		MaxTokens:   cfg.Completion.MaxTokens,
		Temperature: cfg.Completion.Temperature,
	})
	svc := rag.NewService(engine, client, store, corpus, logger)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(svc, cfg.Azure, logger).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
