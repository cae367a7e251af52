// Package knowledge implements the vector index port on PostgreSQL with
// pgvector. The fragments table is populated by an external ingestion
// process; this package only reads it.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/tatweerlabs/tahlil/internal/rag"
)

// VectorDim is the embedding width the fragments table is declared with.
// gemini-embedding-001 supports truncation to 768 dimensions; the migration
// in db/migrations matches this value.
const VectorDim = 768

// searchTimeout bounds a single vector search so a slow index cannot stall
// the pipeline past its own stage.
const searchTimeout = 10 * time.Second

// Querier is the slice of pgx the store needs. *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store performs nearest-neighbor fragment lookups. Safe for concurrent use.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// New creates a Store. A nil logger falls back to slog.Default().
func New(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Cosine distance ordering; score is reported as 1-distance so callers see a
// similarity in [0,1] for normalized embeddings.
const searchSQL = `
SELECT content, metadata, 1 - (embedding <=> $1) AS score
FROM fragments
ORDER BY embedding <=> $1
LIMIT $2`

// Query returns the topK fragments nearest to the query vector, most similar
// first, with their metadata decoded.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]rag.Fragment, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if len(vector) == 0 {
		return nil, errors.New("empty query vector")
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vec := pgvector.NewVector(vector)
	rows, err := s.db.Query(queryCtx, searchSQL, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var fragments []rag.Fragment
	for rows.Next() {
		var (
			content string
			rawMeta []byte
			score   float64
		)
		if err := rows.Scan(&content, &rawMeta, &score); err != nil {
			return nil, fmt.Errorf("scanning fragment row: %w", err)
		}

		meta, err := decodeMetadata(rawMeta)
		if err != nil {
			// A malformed metadata blob should not sink the whole
			// retrieval; the fragment still carries its content.
			s.logger.Warn("undecodable fragment metadata", "error", err)
			meta = map[string]string{}
		}

		fragments = append(fragments, rag.Fragment{
			Content:  content,
			Score:    float32(score),
			Metadata: meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fragment rows: %w", err)
	}

	s.logger.Debug("vector search completed", "topK", topK, "returned", len(fragments))
	return fragments, nil
}

// Count reports how many fragments are indexed. Used by the readiness probe.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM fragments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting fragments: %w", err)
	}
	return count, nil
}

// decodeMetadata parses the JSONB metadata column. Non-string values are
// stringified through their JSON form so open-ended metadata survives.
func decodeMetadata(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}

	meta := make(map[string]string, len(generic))
	for k, v := range generic {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			meta[k] = str
			continue
		}
		meta[k] = string(v)
	}
	return meta, nil
}
