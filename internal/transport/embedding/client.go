// Package embedding is the HTTP gateway to the text embedding service.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lexhub/contractqa/internal/domain"
	"github.com/lexhub/contractqa/internal/metrics"
)

// Client calls the embedding HTTP endpoint.
type Client struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
	logger *zap.Logger
}

// Config holds the embedding service settings.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates an embedding service client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		http:   &http.Client{Timeout: timeout},
		logger: cfg.Logger,
	}
}

type embedRequest struct {
	ModelName string   `json:"model_name"`
	Texts     []string `json:"texts"`
}

// The service has two response shapes: a wrapped envelope where body is a
// JSON-encoded string containing the payload, and the payload directly.
type wrappedResponse struct {
	Body string `json:"body"`
}

type embedPayload struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedBatch embeds each text independently. A failed text yields a nil
// vector at its position; the batch itself only errors when every text fails.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	failed := 0
	for i, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			c.logger.Warn("embedding failed", zap.Int("position", i), zap.Error(err))
			failed++
			continue
		}
		vectors[i] = vec
	}
	if len(texts) > 0 && failed == len(texts) {
		return vectors, fmt.Errorf("all %d embeddings failed: %w", failed, domain.ErrEmbeddingProviderError)
	}
	return vectors, nil
}

// Embed embeds a single text with transport-level metrics.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()

	vec, err := c.embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, err
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	return vec, nil
}

func (c *Client) embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embedRequest{ModelName: c.model, Texts: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", domain.ErrEmbeddingProviderError)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("embedding API error %d: %s: %w",
			resp.StatusCode, truncate(body, 256), domain.ErrEmbeddingProviderError)
	}

	embeddings, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	return embeddings[0], nil
}

// parseEnvelope tries the wrapped shape first, then the flat one.
func parseEnvelope(body []byte) ([][]float32, error) {
	var wrapped wrappedResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Body != "" {
		var inner embedPayload
		if err := json.Unmarshal([]byte(wrapped.Body), &inner); err != nil {
			return nil, fmt.Errorf("parse wrapped embedding body: %v", err)
		}
		return inner.Embeddings, nil
	}

	var flat embedPayload
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("parse embedding response: %v", err)
	}
	return flat.Embeddings, nil
}

// HealthCheck issues a minimal embedding request to verify availability.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.embed(ctx, "ping"); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
