package domain

import "context"

// Document is the unit stored in and retrieved from the vector store.
type Document struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float64      `json:"-"`
}

// RetrievedDoc is a read-only projection of a stored document plus its
// cosine similarity against one specific query embedding. The raw embedding
// is never exposed.
type RetrievedDoc struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Answer is the result of one question: the completion text and the
// evidence it was grounded on.
type Answer struct {
	Answer    string         `json:"answer"`
	Retrieved []RetrievedDoc `json:"retrieved"`
}

// Message is a single chat message sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completer produces a chat completion for a sequence of messages.
type Completer interface {
	Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error)
}

// Store holds embedded documents and answers similarity queries.
type Store interface {
	Add(docs ...Document) error
	Search(query []float64, topK int) ([]RetrievedDoc, error)
	Len() int
}
