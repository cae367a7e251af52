package rag

import (
	"strings"

	"github.com/tatweerlabs/tahlil/internal/session"
)

// Assembler partitions reranked fragments into the in-context set used for
// the generation prompt and the reserve kept for suggestion mining, and
// renders the single prompt text. Assemble is a pure projection: it never
// mutates its inputs and identical inputs yield an identical prompt.
type Assembler struct {
	contextK      int // fragments allowed into the prompt
	reserveOffset int // rank index where the reserve starts
	historyWindow int // exchanges rendered into the prompt
}

// Assembly is the outcome of one Assemble call. InContext and Reserve are
// disjoint partitions of the input ranked sequence.
type Assembly struct {
	Prompt    string
	InContext []RankedFragment
	Reserve   []string
}

// NewAssembler creates an Assembler.
//
// contextK and reserveOffset are independent tunables: the reserve starts at
// reserveOffset regardless of where the context budget ends, so the two
// cutoffs may deliberately overlap or leave a gap.
func NewAssembler(contextK, reserveOffset, historyWindow int) *Assembler {
	return &Assembler{
		contextK:      contextK,
		reserveOffset: reserveOffset,
		historyWindow: historyWindow,
	}
}

// Assemble builds the generation prompt from the query, the reranked
// fragments and the session history. Template order is fixed:
// history → instructions → context → query (→ worked example).
func (a *Assembler) Assemble(query string, ranked []RankedFragment, history []session.Exchange) Assembly {
	inContext := ranked
	if a.contextK < len(ranked) {
		inContext = ranked[:a.contextK]
	}

	var reserve []string
	if a.reserveOffset < len(ranked) {
		rest := ranked[a.reserveOffset:]
		reserve = make([]string, len(rest))
		for i, f := range rest {
			reserve[i] = f.Content
		}
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	b.WriteString(renderHistory(history, a.historyWindow))
	b.WriteString("\n\n")
	b.WriteString(analystInstructions)
	b.WriteString("\n\nContext:\n")
	b.WriteString(renderContext(inContext))
	b.WriteString("\n\nQuery: ")
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(analystExample)

	return Assembly{
		Prompt:    b.String(),
		InContext: inContext,
		Reserve:   reserve,
	}
}

// renderHistory renders at most the last window exchanges as alternating
// User:/Bot: lines, oldest first. An empty history renders the fixed marker,
// never an empty string.
func renderHistory(history []session.Exchange, window int) string {
	if len(history) == 0 {
		return NoHistoryMarker
	}
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	lines := make([]string, 0, len(history)*2)
	for _, ex := range history {
		lines = append(lines, "User: "+ex.User, "Bot: "+ex.Bot)
	}
	return strings.Join(lines, "\n")
}

// renderContext concatenates in-context fragment contents, one per line.
func renderContext(inContext []RankedFragment) string {
	if len(inContext) == 0 {
		return NoContextMarker
	}
	contents := make([]string, len(inContext))
	for i, f := range inContext {
		contents[i] = f.Content
	}
	return strings.Join(contents, "\n")
}
