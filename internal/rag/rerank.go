package rag

import (
	"context"
	"fmt"
	"sort"
)

// Reranker reorders retrieved candidates by pairwise (query, fragment)
// relevance. Vector search is fast but imprecise; the cross-encoder behind
// Scorer is precise but expensive, so it only ever sees the small candidate
// pool already fetched from the index, never the full corpus.
type Reranker struct {
	scorer Scorer
}

// NewReranker creates a Reranker backed by the given scorer.
func NewReranker(scorer Scorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Rerank scores every candidate against the query, sorts descending by
// relevance (stable, so equal scores keep retrieval order) and truncates to
// topK. Empty candidates yield an empty result without calling the scorer.
//
// If scoring fails, or the scorer returns the wrong number of scores, the
// whole call fails wrapped in ErrRerankingFailed — there is no partial
// reranking.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []Fragment, topK int) ([]RankedFragment, error) {
	if len(candidates) == 0 {
		return []RankedFragment{}, nil
	}

	contents := make([]string, len(candidates))
	for i, c := range candidates {
		contents[i] = c.Content
	}

	scores, err := r.scorer.Score(ctx, query, contents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRerankingFailed, err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: scorer returned %d scores for %d candidates",
			ErrRerankingFailed, len(scores), len(candidates))
	}

	ranked := make([]RankedFragment, len(candidates))
	for i, c := range candidates {
		ranked[i] = RankedFragment{Fragment: c, Relevance: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})

	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked, nil
}
