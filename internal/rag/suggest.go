package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tatweerlabs/tahlil/internal/session"
)

// maxSuggestions caps the parsed follow-up list. The prompt asks for exactly
// three, but the model's reply is free text, so anything beyond the cap is
// dropped rather than trusted.
const maxSuggestions = 3

// suggestionHistoryWindow is how many exchanges the suggestion prompt sees.
const suggestionHistoryWindow = 3

// SuggestionEngine mines a session's reserve fragments for follow-up
// questions via the generation port. It is read-only with respect to session
// state.
type SuggestionEngine struct {
	generator Generator
	logger    *slog.Logger
}

// NewSuggestionEngine creates a SuggestionEngine. A nil logger falls back to
// slog.Default().
func NewSuggestionEngine(generator Generator, logger *slog.Logger) *SuggestionEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionEngine{generator: generator, logger: logger}
}

// Suggest proposes up to three follow-up questions derivable from the
// reserve fragments and recent history. The generation port is invoked
// exactly once, even when the reserve is empty (the prompt then carries the
// fixed no-unused-information marker).
//
// The model's reply is parsed best-effort into lines; if nothing usable
// remains, Suggest fails with ErrSuggestionFailed. It never returns a stale
// or cached list.
func (e *SuggestionEngine) Suggest(ctx context.Context, reserve []string, history []session.Exchange) ([]string, error) {
	prompt := buildSuggestionPrompt(reserve, history)

	reply, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSuggestionFailed, err)
	}

	suggestions := parseSuggestions(reply)
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: model returned no usable lines", ErrSuggestionFailed)
	}

	e.logger.Debug("suggestions generated",
		"reserveSize", len(reserve),
		"count", len(suggestions))
	return suggestions, nil
}

// buildSuggestionPrompt renders the suggestion prompt: instructions, the
// unused fragments (or marker), then the recent conversation (or marker).
func buildSuggestionPrompt(reserve []string, history []session.Exchange) string {
	unused := NoReserveMarker
	if len(reserve) > 0 {
		unused = strings.Join(reserve, "\n")
	}

	var b strings.Builder
	b.WriteString(suggestionInstructions)
	b.WriteString("\n\nUnused information:\n")
	b.WriteString(unused)
	b.WriteString("\n\nRecent conversation:\n")
	b.WriteString(renderHistory(history, suggestionHistoryWindow))
	return b.String()
}

// parseSuggestions splits the model reply into discrete suggestions: one per
// non-blank line, leading bullet glyphs stripped, capped at maxSuggestions.
func parseSuggestions(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
