// Package reranker implements the cross-encoder scoring port against an
// HTTP reranking service (a BGE-style model behind a /v1/rerank endpoint).
package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultModel is the cross-encoder served by the default deployment.
	DefaultModel = "BAAI/bge-reranker-v2-m3"

	defaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response gets read for the
	// error message.
	maxErrorBody = 4 << 10
)

// Client scores query-document pairs over HTTP. Safe for concurrent use.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithModel overrides the model identifier sent with each request.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the reranking service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("reranker base URL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Scores []float32 `json:"scores"`
}

// Score returns one relevance score per document, aligned with the input
// order. An empty document list short-circuits without a network call.
func (c *Client) Score(ctx context.Context, query string, contents []string) ([]float32, error) {
	if len(contents) == 0 {
		return []float32{}, nil
	}

	payload, err := json.Marshal(rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: contents,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding rerank request: %w", err)
	}

	url := c.baseURL + "/v1/rerank"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling reranking service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("reranking service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding rerank response: %w", err)
	}
	if len(parsed.Scores) != len(contents) {
		return nil, fmt.Errorf("reranking service returned %d scores for %d documents", len(parsed.Scores), len(contents))
	}

	c.logger.Debug("rerank scored",
		"documents", len(contents),
		"duration", time.Since(start))
	return parsed.Scores, nil
}
