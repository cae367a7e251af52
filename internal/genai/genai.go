// Package genai implements the embedding and generation ports on Google
// Gemini through Genkit. The GoogleAI plugin reads GEMINI_API_KEY from the
// environment.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
)

const (
	// DefaultEmbedModel produces Matryoshka embeddings that stay meaningful
	// after truncation to smaller widths.
	DefaultEmbedModel = "gemini-embedding-001"

	// DefaultGenModel is the generation model.
	DefaultGenModel = "googleai/gemini-2.5-flash"

	// DefaultEmbedDim matches the vector(768) column the fragment index is
	// declared with.
	DefaultEmbedDim = 768

	embedTimeout    = 15 * time.Second
	generateTimeout = 60 * time.Second
)

// Client talks to Gemini for both embedding and generation. Safe for
// concurrent use.
type Client struct {
	g          *genkit.Genkit
	embedder   ai.Embedder
	embedModel string
	genModel   string
	embedDim   int
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithEmbedModel overrides the embedding model.
func WithEmbedModel(model string) Option {
	return func(c *Client) { c.embedModel = model }
}

// WithGenModel overrides the generation model.
func WithGenModel(model string) Option {
	return func(c *Client) { c.genModel = model }
}

// WithEmbedDim sets the embedding width vectors are truncated to. Must match
// the width of the vector column being searched.
func WithEmbedDim(dim int) Option {
	return func(c *Client) { c.embedDim = dim }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New initializes Genkit with the Google AI plugin and resolves the embedder.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		embedModel: DefaultEmbedModel,
		genModel:   DefaultGenModel,
		embedDim:   DefaultEmbedDim,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.embedDim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", c.embedDim)
	}

	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{}),
	)
	if g == nil {
		return nil, fmt.Errorf("failed to initialize Genkit")
	}
	c.g = g

	c.embedder = googlegenai.GoogleAIEmbedder(g, c.embedModel)
	if c.embedder == nil {
		return nil, fmt.Errorf("embedder %q not available", c.embedModel)
	}
	return c, nil
}

// Embed returns the query embedding truncated to the configured width.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	resp, err := c.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			ai.DocumentFromText(text, nil),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("embedder returned no embeddings")
	}

	vec := resp.Embeddings[0].Embedding
	if len(vec) < c.embedDim {
		return nil, fmt.Errorf("embedder returned %d dimensions, need %d", len(vec), c.embedDim)
	}
	return truncateAndNormalize(vec, c.embedDim), nil
}

// Generate produces a completion for the prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	start := time.Now()
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.genModel),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	c.logger.Debug("generation completed",
		"model", c.genModel,
		"duration", time.Since(start))
	return text, nil
}

// truncateAndNormalize cuts the vector to dim and rescales to unit length.
// Matryoshka embeddings keep their semantics under truncation but lose unit
// norm, and cosine distance in the index assumes normalized vectors.
func truncateAndNormalize(vec []float32, dim int) []float32 {
	out := make([]float32, dim)
	copy(out, vec[:dim])

	var sum float64
	for _, v := range out {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return out
	}
	norm := float32(math.Sqrt(sum))
	for i := range out {
		out[i] /= norm
	}
	return out
}
