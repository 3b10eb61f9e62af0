package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"devopsrag/internal/domain"
)

// Service wraps an Engine with one-time corpus indexing. The corpus files are
// read at startup, but embedding them needs the external API, so the index is
// built on first use. Concurrent first requests build it exactly once; a
// failed build is retried on the next request.
type Service struct {
	engine   *Engine
	embedder domain.Embedder
	store    domain.Store
	corpus   []domain.Document
	logger   *slog.Logger

	mu      sync.Mutex
	indexed bool
}

// NewService creates a service over an unembedded corpus.
func NewService(engine *Engine, embedder domain.Embedder, store domain.Store, corpus []domain.Document, logger *slog.Logger) *Service {
	return &Service{engine: engine, embedder: embedder, store: store, corpus: corpus, logger: logger}
}

// Answer indexes the corpus if needed, then answers the question.
func (s *Service) Answer(ctx context.Context, query string) (domain.Answer, error) {
	if err := s.ensureIndexed(ctx); err != nil {
		return domain.Answer{}, err
	}
	return s.engine.Answer(ctx, query)
}

// DocumentCount returns the number of indexed documents.
func (s *Service) DocumentCount() int {
	return s.store.Len()
}

func (s *Service) ensureIndexed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexed {
		return nil
	}
	docs := make([]domain.Document, 0, len(s.corpus))
	for _, d := range s.corpus {
		embedding, err := s.embedder.Embed(ctx, d.Text)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", d.ID, err)
		}
		d.Embedding = embedding
		docs = append(docs, d)
	}
	if err := s.store.Add(docs...); err != nil {
		return err
	}
	s.indexed = true
	s.logger.Info("corpus indexed", "documents", len(docs))
	return nil
}
