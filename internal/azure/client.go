// Package azure implements a lightweight client for Azure OpenAI deployment
// endpoints. The configured URLs are the full deployment URLs, e.g.
//
//	https://<instance>.openai.azure.com/openai/deployments/<dep>/embeddings?api-version=2023-05-15
//	https://<instance>.openai.azure.com/openai/deployments/<dep>/chat/completions?api-version=2025-01-01-preview
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"devopsrag/internal/apperr"
	"devopsrag/internal/domain"
)

// Config holds the client settings. Missing required values are reported by
// the first call that needs them, not at construction.
type Config struct {
	EmbeddingURL string
	ChatURL      string
	APIKey       string
	Timeout      time.Duration
}

// Client calls the embedding and chat-completion deployments.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a client. Construction never fails; configuration is validated
// lazily so the service can start without secrets.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.cfg.EmbeddingURL == "" {
		return nil, apperr.Config("embedding URL is not configured (AZURE_OPENAI_EMBEDDING_URL)")
	}
	if c.cfg.APIKey == "" {
		return nil, apperr.Config("API key is not configured (AZURE_OPENAI_KEY)")
	}
	body, err := c.post(ctx, c.cfg.EmbeddingURL, map[string]any{"input": text})
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperr.ExternalAPI(err, "decode embedding response")
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, apperr.ExternalAPI(nil, "embedding response has no data[0].embedding")
	}
	return out.Data[0].Embedding, nil
}

// Complete sends messages to the chat deployment and returns the answer text.
func (c *Client) Complete(ctx context.Context, messages []domain.Message, maxTokens int, temperature float64) (string, error) {
	if c.cfg.ChatURL == "" {
		return "", apperr.Config("chat URL is not configured (AZURE_OPENAI_CHAT_URL)")
	}
	if c.cfg.APIKey == "" {
		return "", apperr.Config("API key is not configured (AZURE_OPENAI_KEY)")
	}
	payload := map[string]any{
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	body, err := c.post(ctx, c.cfg.ChatURL, payload)
	if err != nil {
		return "", err
	}
	var out struct {
		Choices []json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", apperr.ExternalAPI(err, "decode chat response")
	}
	if len(out.Choices) == 0 {
		return "", apperr.ExternalAPI(nil, "no choices in chat completion response")
	}
	return decodeChoice(out.Choices[0])
}

// decodeChoice extracts the answer text from a chat choice, trying the known
// response shapes in a fixed order: a nested message object first, then a raw
// content string.
func decodeChoice(raw json.RawMessage) (string, error) {
	var withMessage struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &withMessage); err == nil && withMessage.Message != nil {
		return withMessage.Message.Content, nil
	}
	var withContent struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(raw, &withContent); err == nil && withContent.Content != nil {
		return *withContent.Content, nil
	}
	return "", apperr.ExternalAPI(nil, "chat choice matches neither {message:{content}} nor {content} shape")
}

func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.ExternalAPI(err, "marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, apperr.ExternalAPI(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.ExternalAPI(err, "call %s", url)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.ExternalAPI(err, "read response")
	}
	if resp.StatusCode >= 300 {
		return nil, apperr.ExternalAPI(fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200)), "call %s", url)
	}
	return body, nil
}

// Close releases the underlying transport connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
