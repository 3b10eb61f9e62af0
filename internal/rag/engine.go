// Package rag implements the answering flow: embed the question, retrieve
// evidence from the vector store, and ask the chat deployment for an answer
// constrained to that evidence.
package rag

import (
	"context"
	"fmt"
	"strings"

	"devopsrag/internal/domain"
)

const systemPrompt = "You are a helpful assistant for DevOps and Azure cloud operations. " +
	"Answer questions using ONLY the provided context about deployment, CI/CD, security, and operations. " +
	"If the question is outside the scope of the provided context (e.g., unrelated topics, personal questions, general knowledge), " +
	"politely respond: 'I can only answer questions related to DevOps, deployments, CI/CD pipelines, and Azure operations based on our documentation. " +
	"Please ask questions within this domain.' " +
	"For in-scope questions, provide short, actionable answers and cite which source(s) you used."

const sourceSeparator = "\n\n---\n\n"

// Options holds the generation and retrieval parameters for one engine.
type Options struct {
	TopK        int
	MaxTokens   int
	Temperature float64
}

// Engine answers a single question per call and keeps no per-request state.
type Engine struct {
	embedder  domain.Embedder
	completer domain.Completer
	store     domain.Store
	opts      Options
}

// NewEngine wires the engine to its collaborators.
func NewEngine(embedder domain.Embedder, completer domain.Completer, store domain.Store, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	return &Engine{embedder: embedder, completer: completer, store: store, opts: opts}
}

// Answer runs the full flow for one question. Failures in the external calls
// or the store abort the request; no partial answer is returned.
func (e *Engine) Answer(ctx context.Context, query string) (domain.Answer, error) {
	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed query: %w", err)
	}
	retrieved, err := e.store.Search(queryEmbedding, e.opts.TopK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve context: %w", err)
	}
	messages := buildMessages(query, retrieved)
	completion, err := e.completer.Complete(ctx, messages, e.opts.MaxTokens, e.opts.Temperature)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("chat completion: %w", err)
	}
	return domain.Answer{Answer: completion, Retrieved: retrieved}, nil
}

func buildMessages(query string, retrieved []domain.RetrievedDoc) []domain.Message {
	fragments := make([]string, 0, len(retrieved))
	for _, d := range retrieved {
		fragments = append(fragments, fmt.Sprintf("Source (score=%.3f):\n%s", d.Score, d.Text))
	}
	contextBlob := strings.Join(fragments, sourceSeparator)
	userPrompt := fmt.Sprintf(
		"Context:\n%s\n\nUser question: %s\n\n"+
			"Answer the question if it relates to DevOps, CI/CD, deployment, security, or Azure operations. "+
			"If not related to these topics, politely decline. Include citations for sources used.",
		contextBlob, query,
	)
	return []domain.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
}
