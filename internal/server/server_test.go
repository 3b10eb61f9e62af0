package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devopsrag/internal/apperr"
	"devopsrag/internal/config"
	"devopsrag/internal/domain"
)

type fakeService struct {
	answer domain.Answer
	err    error
	docs   int
}

func (f *fakeService) Answer(ctx context.Context, query string) (domain.Answer, error) {
	if f.err != nil {
		return domain.Answer{}, f.err
	}
	return f.answer, nil
}

func (f *fakeService) DocumentCount() int { return f.docs }

func newTestServer(svc Answerer, azure config.AzureConfig) http.Handler {
	return New(svc, azure, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler()
}

func postQuery(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestQueryEndpoint(t *testing.T) {
	svc := &fakeService{answer: domain.Answer{
		Answer: "the answer",
		Retrieved: []domain.RetrievedDoc{{
			ID:       "doc-0",
			Text:     "Deploy via blue-green",
			Metadata: map[string]any{"title": "Deploy Guide"},
			Score:    0.91,
		}},
	}}
	w := postQuery(t, newTestServer(svc, config.AzureConfig{}), `{"query":"How do we deploy?"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Answer    string `json:"answer"`
		Retrieved []struct {
			ID       string         `json:"id"`
			Text     string         `json:"text"`
			Metadata map[string]any `json:"metadata"`
			Score    float64        `json:"score"`
		} `json:"retrieved"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "the answer" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.Retrieved) != 1 || resp.Retrieved[0].ID != "doc-0" || resp.Retrieved[0].Score != 0.91 {
		t.Errorf("retrieved = %+v", resp.Retrieved)
	}
	if resp.Retrieved[0].Metadata["title"] != "Deploy Guide" {
		t.Errorf("metadata = %v", resp.Retrieved[0].Metadata)
	}
}

func TestQueryErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"config", apperr.Config("API key is not configured"), http.StatusInternalServerError},
		{"external", apperr.ExternalAPI(errors.New("timeout"), "call chat"), http.StatusBadGateway},
		{"vector store", apperr.VectorStore(nil, "dimension mismatch"), http.StatusInternalServerError},
		{"not found", apperr.NotFound("no such document"), http.StatusNotFound},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postQuery(t, newTestServer(&fakeService{err: tc.err}, config.AzureConfig{}), `{"query":"q"}`)
			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			var resp struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error == "" {
				t.Error("error body missing")
			}
		})
	}
}

func TestQueryRejectsBadRequests(t *testing.T) {
	h := newTestServer(&fakeService{}, config.AzureConfig{})
	for _, body := range []string{"", "not json", `{"query":""}`, `{"query":"   "}`} {
		w := postQuery(t, h, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	azure := config.AzureConfig{EmbeddingURL: "https://x/embeddings", APIKey: "k"}
	h := newTestServer(&fakeService{docs: 4}, azure)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Status    string `json:"status"`
		Documents int    `json:"documents"`
		Azure     struct {
			EmbeddingURLConfigured bool `json:"embedding_url_configured"`
			ChatURLConfigured      bool `json:"chat_url_configured"`
			APIKeyConfigured       bool `json:"api_key_configured"`
		} `json:"azure"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Documents != 4 {
		t.Errorf("unexpected health: %+v", resp)
	}
	if !resp.Azure.EmbeddingURLConfigured || resp.Azure.ChatURLConfigured || !resp.Azure.APIKeyConfigured {
		t.Errorf("unexpected azure flags: %+v", resp.Azure)
	}
}
