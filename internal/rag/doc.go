// Package rag implements the retrieval-rerank-assemble-generate pipeline
// behind the chat API.
//
// A request flows through fixed stages:
//
//	Embedding → Retrieval → Reranking → Assembly → Generation → Persist
//
// Each stage depends on the previous one's output; any failure short-circuits
// the request with a stage-specific sentinel error (see errors.go) and leaves
// session state untouched. Reranked fragments that do not fit the context
// budget become the session's reserve, which the suggestion engine later
// mines for follow-up questions.
//
// The external collaborators (embedding model, vector index, cross-encoder
// scorer, generation model) are consumed through the small interfaces in
// types.go; implementations live in internal/genai, internal/knowledge and
// internal/reranker.
package rag
