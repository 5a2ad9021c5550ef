// Package rerank is an HTTP client for a Cohere-compatible /v1/rerank
// cross-encoder scoring backend.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
	"github.com/oriole-ai/oriole/internal/metrics"
)

// maxDocuments bounds one rerank request (Cohere API limit).
const maxDocuments = 1000

// Client scores (query, document) pairs via the rerank API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the rerank backend settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a rerank API client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Score sends one batch of (query, text) pairs and returns scores aligned
// with the input texts. Any failure is wrapped with
// domain.ErrRerankProviderError; the caller decides the fallback.
func (c *Client) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	// Truncating would misalign the score slice with the caller's input,
	// so oversized batches fail outright.
	if len(texts) > maxDocuments {
		return nil, fmt.Errorf("batch of %d exceeds the %d document limit: %w",
			len(texts), maxDocuments, domain.ErrRerankProviderError)
	}

	body, err := json.Marshal(rerankRequest{
		Query:     query,
		Documents: texts,
		Model:     c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RerankRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, fmt.Errorf("rerank request: %w: %w", err, domain.ErrRerankProviderError)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RerankRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, fmt.Errorf("read rerank response: %w: %w", err, domain.ErrRerankProviderError)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RerankRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, fmt.Errorf("rerank API status %d: %s: %w",
			resp.StatusCode, string(raw), domain.ErrRerankProviderError)
	}

	var parsed rerankResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.RerankRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return nil, fmt.Errorf("parse rerank response: %w: %w", err, domain.ErrRerankProviderError)
	}

	metrics.RerankRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.RerankRequestDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())

	// The API returns results sorted by relevance with original indices;
	// re-align scores to input order.
	scores := make([]float64, len(texts))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(scores) {
			return nil, fmt.Errorf("rerank result index %d out of range: %w",
				r.Index, domain.ErrRerankProviderError)
		}
		scores[r.Index] = r.RelevanceScore
	}

	return scores, nil
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string { return c.model }
