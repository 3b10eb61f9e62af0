// Package memory provides an in-memory vector store using brute-force cosine
// similarity. The corpus is small enough that an exhaustive scan is the
// intended algorithm, not a placeholder for an index.
package memory

import (
	"math"
	"sort"
	"sync"

	"devopsrag/internal/apperr"
	"devopsrag/internal/domain"
)

// epsilon keeps the norm denominator non-zero for degenerate zero vectors.
const epsilon = 1e-12

type record struct {
	doc  domain.Document
	unit []float64 // L2-normalized copy of the embedding
}

// Store holds document records in insertion order.
type Store struct {
	mu        sync.RWMutex
	dimension int
	records   []record
}

// NewStore creates an empty store.
func NewStore() *Store { return &Store{} }

// Add appends documents to the store. Every document must carry an embedding
// of the same dimensionality as the rest of the store; the whole batch fails
// atomically otherwise and nothing is inserted.
func (s *Store) Add(docs ...domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dim := s.dimension
	for _, d := range docs {
		if len(d.Embedding) == 0 {
			return apperr.VectorStore(nil, "document %q has no embedding", d.ID)
		}
		if dim == 0 {
			dim = len(d.Embedding)
		} else if len(d.Embedding) != dim {
			return apperr.VectorStore(nil, "document %q embedding dimension %d, want %d", d.ID, len(d.Embedding), dim)
		}
	}
	for _, d := range docs {
		s.records = append(s.records, record{doc: d, unit: normalize(d.Embedding)})
	}
	s.dimension = dim
	return nil
}

// Search returns up to topK documents ranked by cosine similarity against the
// query embedding, best first. Ties keep insertion order. An empty store
// returns an empty result, not an error.
func (s *Store) Search(query []float64, topK int) ([]domain.RetrievedDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 3
	}
	if len(s.records) == 0 {
		return []domain.RetrievedDoc{}, nil
	}
	if len(query) != s.dimension {
		return nil, apperr.VectorStore(nil, "query embedding dimension %d, store dimension %d", len(query), s.dimension)
	}
	q := normalize(query)
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(s.records))
	for i, r := range s.records {
		scores[i] = scored{idx: i, score: dot(r.unit, q)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK > len(scores) {
		topK = len(scores)
	}
	results := make([]domain.RetrievedDoc, 0, topK)
	for _, sc := range scores[:topK] {
		d := s.records[sc.idx].doc
		results = append(results, domain.RetrievedDoc{
			ID:       d.ID,
			Text:     d.Text,
			Metadata: cloneMetadata(d.Metadata),
			Score:    sc.score,
		})
	}
	return results, nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum) + epsilon
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
