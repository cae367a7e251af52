package rag

import "errors"

// Sentinel errors for pipeline stages. Every stage failure is terminal for
// its request: the orchestrator wraps the underlying cause with the stage
// sentinel and never falls back to partial output. Check with errors.Is.
var (
	// ErrInvalidInput indicates a missing or empty query/session id,
	// detected before any external call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingFailed indicates the embedding port errored or returned
	// an empty vector.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrRetrievalFailed indicates the vector index query failed.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrRerankingFailed indicates cross-encoder scoring failed; no partial
	// reranking is ever returned.
	ErrRerankingFailed = errors.New("reranking failed")

	// ErrGenerationFailed indicates the generation port errored or returned
	// empty text.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrSuggestionFailed indicates the suggestion path produced no usable
	// follow-up questions.
	ErrSuggestionFailed = errors.New("suggestion generation failed")
)
