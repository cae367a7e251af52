package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tatweerlabs/tahlil/internal/session"
)

// Config holds the pipeline's sizing knobs. The original design repeated
// these as magic numbers across call sites; here they are named, validated
// once, and passed explicitly.
type Config struct {
	// FetchK is the over-fetch size for the vector index, larger than the
	// final context so the reranker has a meaningful pool.
	FetchK int

	// RerankK is how many fragments survive reranking. Set above ContextK
	// so a reserve remains for suggestion mining.
	RerankK int

	// ContextK is the context budget: fragments allowed into the prompt.
	ContextK int

	// ReserveOffset is the rank index where the reserve starts. Kept
	// separate from ContextK; the two need not coincide.
	ReserveOffset int

	// HistoryWindow is how many exchanges are rendered into a prompt.
	HistoryWindow int
}

// Validate checks individual ranges and the ordering relation between knobs.
func (c Config) Validate() error {
	switch {
	case c.FetchK <= 0:
		return fmt.Errorf("fetch_k must be positive, got %d", c.FetchK)
	case c.RerankK <= 0 || c.RerankK > c.FetchK:
		return fmt.Errorf("rerank_k must be in [1, fetch_k=%d], got %d", c.FetchK, c.RerankK)
	case c.ContextK <= 0 || c.ContextK > c.RerankK:
		return fmt.Errorf("context_k must be in [1, rerank_k=%d], got %d", c.RerankK, c.ContextK)
	case c.ReserveOffset < 0 || c.ReserveOffset > c.RerankK:
		return fmt.Errorf("reserve_offset must be in [0, rerank_k=%d], got %d", c.RerankK, c.ReserveOffset)
	case c.HistoryWindow <= 0:
		return fmt.Errorf("history_window must be positive, got %d", c.HistoryWindow)
	}
	return nil
}

// Pipeline orchestrates one chat turn across the external ports and the
// session store. Stages run strictly in order with no retries; the first
// failure wins and nothing is persisted for that turn.
type Pipeline struct {
	embedder  Embedder
	index     Index
	reranker  *Reranker
	assembler *Assembler
	generator Generator
	suggester *SuggestionEngine
	sessions  *session.Store
	cfg       Config
	logger    *slog.Logger
}

// Options bundles the pipeline's collaborators.
type Options struct {
	Embedder  Embedder
	Index     Index
	Scorer    Scorer
	Generator Generator
	Sessions  *session.Store
	Config    Config
	Logger    *slog.Logger // nil = slog.Default()
}

// New creates a Pipeline after validating the configuration.
func New(opts Options) (*Pipeline, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	if opts.Embedder == nil || opts.Index == nil || opts.Scorer == nil || opts.Generator == nil {
		return nil, errors.New("pipeline: all four ports are required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("pipeline: session store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		embedder:  opts.Embedder,
		index:     opts.Index,
		reranker:  NewReranker(opts.Scorer),
		assembler: NewAssembler(opts.Config.ContextK, opts.Config.ReserveOffset, opts.Config.HistoryWindow),
		generator: opts.Generator,
		suggester: NewSuggestionEngine(opts.Generator, logger),
		sessions:  opts.Sessions,
		cfg:       opts.Config,
		logger:    logger,
	}, nil
}

// Answer runs one full turn for the session: embed the query, retrieve and
// rerank fragments, assemble the bounded prompt, generate the analysis, then
// persist the exchange and the new reserve. Failed turns are not persisted.
func (p *Pipeline) Answer(ctx context.Context, sessionID, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidInput)
	}
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidInput)
	}

	// History snapshot is taken up front; a concurrent turn on the same
	// session cannot change what this prompt renders.
	sess := p.sessions.Get(sessionID)

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedder returned an empty vector", ErrEmbeddingFailed)
	}

	candidates, err := p.index.Query(ctx, vector, p.cfg.FetchK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}

	ranked, err := p.reranker.Rerank(ctx, query, candidates, p.cfg.RerankK)
	if err != nil {
		return nil, err // already wrapped in ErrRerankingFailed
	}

	asm := p.assembler.Assemble(query, ranked, sess.History)

	analysis, err := p.generator.Generate(ctx, asm.Prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(analysis) == "" {
		return nil, fmt.Errorf("%w: model returned empty text", ErrGenerationFailed)
	}

	p.sessions.AppendExchange(sessionID, session.Exchange{User: query, Bot: analysis})
	p.sessions.SetReserve(sessionID, asm.Reserve)

	p.logger.Debug("turn completed",
		"sessionId", sessionID,
		"retrieved", len(candidates),
		"reranked", len(ranked),
		"inContext", len(asm.InContext),
		"reserve", len(asm.Reserve))

	return buildResult(analysis, asm), nil
}

// Suggest mines the session's current reserve for follow-up questions. It
// reads session state but never mutates it.
func (p *Pipeline) Suggest(ctx context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidInput)
	}
	sess := p.sessions.Get(sessionID)
	return p.suggester.Suggest(ctx, sess.Reserve, sess.History)
}

// buildResult shapes the external record: the analysis, per-fragment source
// annotations in rank order, and the raw in-context contents.
func buildResult(analysis string, asm Assembly) *Result {
	sources := make([]Source, len(asm.InContext))
	contexts := make([]string, len(asm.InContext))
	for i, f := range asm.InContext {
		sources[i] = Source{
			SourceID: fmt.Sprintf("Source %d", i+1),
			Content:  f.Content,
			Type:     metaOr(f.Metadata, MetaDocType, defaultDocType),
			Score:    f.Relevance,
			FileName: metaOr(f.Metadata, MetaFileName, defaultFileName),
			FileURL:  metaOr(f.Metadata, MetaFileURL, defaultFileURL),
		}
		contexts[i] = f.Content
	}
	return &Result{Analysis: analysis, Sources: sources, Contexts: contexts}
}

func metaOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}
