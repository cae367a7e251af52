package rag

import "context"

// Metadata keys every indexed fragment is expected to carry. Missing values
// fall back to the defaults used when building Source records.
const (
	MetaDocType  = "doc_type"
	MetaFileName = "file_name"
	MetaFileURL  = "file_url"
)

// Fallbacks for absent fragment metadata.
const (
	defaultDocType  = "unclassified"
	defaultFileName = "Unknown"
	defaultFileURL  = "#"
)

// Fragment is one retrievable unit of source text as returned by the vector
// index: content, the index's own similarity score, and open-ended metadata.
// Fragments are immutable once retrieved.
type Fragment struct {
	Content  string
	Score    float32
	Metadata map[string]string
}

// RankedFragment is a Fragment annotated with a cross-encoder relevance
// score. Slices of RankedFragment are always ordered by Relevance descending,
// ties keeping original retrieval order.
type RankedFragment struct {
	Fragment
	Relevance float32
}

// Embedder turns text into a fixed-length dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index returns the topK stored fragments nearest to a query vector.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Fragment, error)
}

// Scorer computes a pairwise relevance score for (query, content) pairs.
// It returns one score per content, in input order.
type Scorer interface {
	Score(ctx context.Context, query string, contents []string) ([]float32, error)
}

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Source annotates one in-context fragment for the external result.
type Source struct {
	SourceID string  `json:"source_id"`
	Content  string  `json:"content"`
	Type     string  `json:"type"`
	Score    float32 `json:"score"`
	FileName string  `json:"file_name"`
	FileURL  string  `json:"file_url"`
}

// Result is the external-facing outcome of one pipeline run.
type Result struct {
	Analysis string
	Sources  []Source
	Contexts []string // raw in-context fragment contents, in rank order
}
