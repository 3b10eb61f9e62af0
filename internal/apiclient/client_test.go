package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/query" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "use blue-green",
			"retrieved": []map[string]any{
				{"id": "doc-0", "text": "Deploy via blue-green", "metadata": map[string]any{"title": "Deploy Guide"}, "score": 0.9},
			},
		})
	}))
	defer srv.Close()

	answer, err := New(srv.URL).Query(context.Background(), "How do we deploy?")
	if err != nil {
		t.Fatal(err)
	}
	if answer.Answer != "use blue-green" {
		t.Errorf("answer = %q", answer.Answer)
	}
	if len(answer.Retrieved) != 1 || answer.Retrieved[0].ID != "doc-0" {
		t.Errorf("retrieved = %+v", answer.Retrieved)
	}
}

func TestQueryBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "call embeddings: connection refused"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Query(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error should surface the backend message, got: %v", err)
	}
}

func TestQueryBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	_, err := New(srv.URL).Query(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for unreachable backend")
	}
	if !strings.Contains(err.Error(), "backend unreachable") {
		t.Errorf("error = %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"documents": 3,
			"azure":     map[string]bool{"embedding_url_configured": true},
		})
	}))
	defer srv.Close()

	h, err := New(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Documents != 3 || !h.Azure.EmbeddingURLConfigured {
		t.Errorf("health = %+v", h)
	}
}
