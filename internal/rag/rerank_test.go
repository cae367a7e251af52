package rag

import (
	"context"
	"errors"
	"testing"
)

// fakeScorer scores contents via a lookup table; unknown contents score 0.
type fakeScorer struct {
	scores map[string]float32
	err    error
	calls  int
}

func (f *fakeScorer) Score(_ context.Context, _ string, contents []string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float32, len(contents))
	for i, c := range contents {
		out[i] = f.scores[c]
	}
	return out, nil
}

func fragments(contents ...string) []Fragment {
	out := make([]Fragment, len(contents))
	for i, c := range contents {
		out[i] = Fragment{Content: c, Score: 0.5}
	}
	return out
}

func TestRerankOrdersByRelevanceDescending(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float32{"a": 0.1, "b": 0.9, "c": 0.5}}
	r := NewReranker(scorer)

	got, err := r.Rerank(context.Background(), "q", fragments("a", "b", "c"), 3)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}

	want := []string{"b", "c", "a"}
	for i, rf := range got {
		if rf.Content != want[i] {
			t.Errorf("rank %d = %q, want %q", i, rf.Content, want[i])
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Relevance > got[i-1].Relevance {
			t.Errorf("relevance not descending at %d", i)
		}
	}
}

func TestRerankTruncatesToTopK(t *testing.T) {
	tests := []struct {
		name string
		n    int
		topK int
		want int
	}{
		{"truncates", 5, 2, 2},
		{"topK above input", 3, 10, 3},
		{"topK equals input", 3, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &fakeScorer{scores: map[string]float32{}}
			r := NewReranker(scorer)
			cands := make([]Fragment, tt.n)
			for i := range cands {
				cands[i] = Fragment{Content: string(rune('a' + i))}
			}

			got, err := r.Rerank(context.Background(), "q", cands, tt.topK)
			if err != nil {
				t.Fatalf("Rerank() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRerankStableOnTies(t *testing.T) {
	// All scores equal: retrieval order must survive.
	scorer := &fakeScorer{scores: map[string]float32{"a": 0.5, "b": 0.5, "c": 0.5}}
	r := NewReranker(scorer)

	got, err := r.Rerank(context.Background(), "q", fragments("a", "b", "c"), 3)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, rf := range got {
		if rf.Content != want[i] {
			t.Errorf("tie order broken: rank %d = %q, want %q", i, rf.Content, want[i])
		}
	}
}

func TestRerankEmptyCandidates(t *testing.T) {
	scorer := &fakeScorer{}
	r := NewReranker(scorer)

	got, err := r.Rerank(context.Background(), "q", nil, 5)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("want empty result, got %d", len(got))
	}
	if scorer.calls != 0 {
		t.Errorf("scorer called %d times for empty input", scorer.calls)
	}
}

func TestRerankScorerFailureIsTerminal(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("model offline")}
	r := NewReranker(scorer)

	_, err := r.Rerank(context.Background(), "q", fragments("a", "b"), 2)
	if !errors.Is(err, ErrRerankingFailed) {
		t.Errorf("error = %v, want ErrRerankingFailed", err)
	}
}

type countMismatchScorer struct{}

func (countMismatchScorer) Score(context.Context, string, []string) ([]float32, error) {
	return []float32{0.5}, nil
}

func TestRerankScoreCountMismatch(t *testing.T) {
	r := NewReranker(countMismatchScorer{})

	_, err := r.Rerank(context.Background(), "q", fragments("a", "b", "c"), 3)
	if !errors.Is(err, ErrRerankingFailed) {
		t.Errorf("error = %v, want ErrRerankingFailed", err)
	}
}
