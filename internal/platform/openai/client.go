// Package openai is a hand-rolled HTTP client against OpenAI's Responses
// and Embeddings APIs — the same pattern the rest of this codebase uses for
// every outbound HTTP dependency (no vendor SDK), trimmed to exactly the
// three capabilities the article pipeline needs: structured/plain text
// generation, embeddings, and image generation.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultChatModel   = "gpt-4.1"
	defaultEmbedModel  = "text-embedding-3-small"
	defaultImageModel  = "gpt-image-1"
)

// Client is a thin wrapper around net/http configured for OpenAI's APIs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	chatModel  string
	embedModel string
	imageModel string
}

// New builds a Client from environment configuration. apiKey must be
// non-empty; the rest fall back to sane defaults.
func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 150 * time.Second},
		baseURL:    envOrDefault("OPENAI_BASE_URL", defaultBaseURL),
		apiKey:     apiKey,
		chatModel:  envOrDefault("OPENAI_CHAT_MODEL", defaultChatModel),
		embedModel: envOrDefault("OPENAI_EMBED_MODEL", defaultEmbedModel),
		imageModel: envOrDefault("OPENAI_IMAGE_MODEL", defaultImageModel),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
