// Package apiclient is the thin HTTP client the interactive front end uses
// to talk to the answering service.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"devopsrag/internal/domain"
)

// Client calls the answering service.
type Client struct {
	baseURL string
	client  *http.Client
}

// Health mirrors the service health response.
type Health struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Azure     struct {
		EmbeddingURLConfigured bool `json:"embedding_url_configured"`
		ChatURLConfigured      bool `json:"chat_url_configured"`
		APIKeyConfigured       bool `json:"api_key_configured"`
	} `json:"azure"`
}

// New creates a client for the service at baseURL. The timeout is generous
// because one query spans two upstream model calls.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Query asks the service a question.
func (c *Client) Query(ctx context.Context, query string) (domain.Answer, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return domain.Answer{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(body))
	if err != nil {
		return domain.Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return domain.Answer{}, fmt.Errorf("backend error (status %d): %s", resp.StatusCode, e.Error)
		}
		return domain.Answer{}, fmt.Errorf("backend error: status %d", resp.StatusCode)
	}
	var answer domain.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return domain.Answer{}, fmt.Errorf("decode answer: %w", err)
	}
	return answer, nil
}

// Health probes the service health endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return Health{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}
