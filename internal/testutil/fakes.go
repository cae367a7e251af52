package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/tatweerlabs/tahlil/internal/rag"
)

// StaticEmbedder returns the same vector for every input.
type StaticEmbedder struct {
	Vector []float32
	Err    error
}

func (e *StaticEmbedder) Embed(context.Context, string) ([]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Vector, nil
}

// StaticIndex returns a fixed fragment list truncated to topK.
type StaticIndex struct {
	Fragments []rag.Fragment
	Err       error
}

func (i *StaticIndex) Query(_ context.Context, _ []float32, topK int) ([]rag.Fragment, error) {
	if i.Err != nil {
		return nil, i.Err
	}
	if topK < len(i.Fragments) {
		return i.Fragments[:topK], nil
	}
	return i.Fragments, nil
}

// MapScorer scores contents from a lookup table; unknown contents score 0.
type MapScorer struct {
	Scores map[string]float32
	Err    error
}

func (s *MapScorer) Score(_ context.Context, _ string, contents []string) ([]float32, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]float32, len(contents))
	for i, c := range contents {
		out[i] = s.Scores[c]
	}
	return out, nil
}

// ScriptedGenerator matches prompt substrings against registered patterns
// and replies with the paired text; the fallback covers everything else.
// It records every prompt it sees. Safe for concurrent use.
type ScriptedGenerator struct {
	mu       sync.Mutex
	rules    []generatorRule
	fallback string
	Err      error
	prompts  []string
}

type generatorRule struct {
	pattern string
	reply   string
}

// NewScriptedGenerator creates a generator with the given fallback reply.
func NewScriptedGenerator(fallback string) *ScriptedGenerator {
	return &ScriptedGenerator{fallback: fallback}
}

// AddReply registers a pattern-reply pair; first registered match wins.
func (g *ScriptedGenerator) AddReply(pattern, reply string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, generatorRule{pattern: pattern, reply: reply})
}

func (g *ScriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	for _, r := range g.rules {
		if strings.Contains(prompt, r.pattern) {
			return r.reply, nil
		}
	}
	return g.fallback, nil
}

// Prompts returns a copy of every prompt seen so far.
func (g *ScriptedGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := make([]string, len(g.prompts))
	copy(cp, g.prompts)
	return cp
}
