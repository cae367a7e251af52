package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tatweerlabs/tahlil/internal/rag"
)

// maxBodyBytes bounds request bodies; analyst questions are short.
const maxBodyBytes = 64 << 10

// Analyst answers questions and mines follow-up suggestions.
// *rag.Pipeline satisfies it.
type Analyst interface {
	Answer(ctx context.Context, sessionID, query string) (*rag.Result, error)
	Suggest(ctx context.Context, sessionID string) ([]string, error)
}

type chatHandler struct {
	analyst Analyst
	logger  *slog.Logger
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// chatResponse keeps the field names the existing frontend consumes.
type chatResponse struct {
	SessionID string       `json:"session_id"`
	Analysis  string       `json:"response"`
	Sources   []rag.Source `json:"sources"`
	Contexts  []string     `json:"reranked_chunk_contents"`
}

// send handles POST /api/chat. A missing session_id starts a new session.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := h.analyst.Answer(r.Context(), sessionID, req.Message)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: sessionID,
		Analysis:  result.Analysis,
		Sources:   result.Sources,
		Contexts:  result.Contexts,
	})
}

type suggestionsRequest struct {
	SessionID string `json:"session_id"`
}

type suggestionsResponse struct {
	SessionID   string   `json:"session_id"`
	Suggestions []string `json:"suggestions"`
}

// suggest handles POST /api/suggestions.
func (h *chatHandler) suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	suggestions, err := h.analyst.Suggest(r.Context(), req.SessionID)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{
		SessionID:   req.SessionID,
		Suggestions: suggestions,
	})
}

// writePipelineError maps pipeline sentinels onto HTTP statuses. Upstream
// failures surface as 502 so callers can distinguish them from our own bugs;
// the underlying error detail stays in the logs.
func (h *chatHandler) writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rag.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", "message and session_id must be non-empty", h.logger)
	case errors.Is(err, rag.ErrEmbeddingFailed):
		h.logger.Error("embedding stage failed", "error", err)
		writeError(w, http.StatusBadGateway, "embedding_failed", "embedding service unavailable", h.logger)
	case errors.Is(err, rag.ErrRetrievalFailed):
		h.logger.Error("retrieval stage failed", "error", err)
		writeError(w, http.StatusBadGateway, "retrieval_failed", "knowledge index unavailable", h.logger)
	case errors.Is(err, rag.ErrRerankingFailed):
		h.logger.Error("reranking stage failed", "error", err)
		writeError(w, http.StatusBadGateway, "reranking_failed", "reranking service unavailable", h.logger)
	case errors.Is(err, rag.ErrGenerationFailed):
		h.logger.Error("generation stage failed", "error", err)
		writeError(w, http.StatusBadGateway, "generation_failed", "generation service unavailable", h.logger)
	case errors.Is(err, rag.ErrSuggestionFailed):
		h.logger.Error("suggestion mining failed", "error", err)
		writeError(w, http.StatusBadGateway, "suggestion_failed", "suggestion service unavailable", h.logger)
	default:
		h.logger.Error("unexpected pipeline error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
	}
}

// decodeBody decodes a JSON body with a size cap, writing the error response
// itself. Returns false when the request was rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger *slog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", logger)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", logger)
		return false
	}
	return true
}
