package rag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tatweerlabs/tahlil/internal/session"
)

func rankedSet(n int) []RankedFragment {
	out := make([]RankedFragment, n)
	for i := range out {
		out[i] = RankedFragment{
			Fragment:  Fragment{Content: fmt.Sprintf("fragment-%d", i)},
			Relevance: float32(n-i) / float32(n),
		}
	}
	return out
}

func TestAssemblePartitionsContextAndReserve(t *testing.T) {
	a := NewAssembler(6, 6, 3)
	ranked := rankedSet(8)

	asm := a.Assemble("q", ranked, nil)

	if len(asm.InContext) != 6 {
		t.Fatalf("in-context size = %d, want 6", len(asm.InContext))
	}
	if len(asm.Reserve) != 2 {
		t.Fatalf("reserve size = %d, want 2", len(asm.Reserve))
	}

	// Disjoint partitions of the ranked sequence.
	inContext := make(map[string]bool, len(asm.InContext))
	for _, f := range asm.InContext {
		inContext[f.Content] = true
	}
	for _, content := range asm.Reserve {
		if inContext[content] {
			t.Errorf("fragment %q in both context and reserve", content)
		}
	}
}

func TestAssembleReserveOffsetIndependentOfContextK(t *testing.T) {
	// Offset above the budget leaves a gap; fragment-6 belongs to neither set.
	a := NewAssembler(6, 7, 3)
	asm := a.Assemble("q", rankedSet(10), nil)

	if len(asm.InContext) != 6 {
		t.Errorf("in-context size = %d, want 6", len(asm.InContext))
	}
	if len(asm.Reserve) != 3 {
		t.Errorf("reserve size = %d, want 3", len(asm.Reserve))
	}
	if asm.Reserve[0] != "fragment-7" {
		t.Errorf("reserve starts at %q, want fragment-7", asm.Reserve[0])
	}
}

func TestAssembleIsPure(t *testing.T) {
	a := NewAssembler(2, 2, 3)
	ranked := rankedSet(4)
	history := []session.Exchange{{User: "hi", Bot: "hello"}}

	first := a.Assemble("q", ranked, history)
	second := a.Assemble("q", ranked, history)

	if first.Prompt != second.Prompt {
		t.Error("identical inputs produced different prompts")
	}
	if ranked[0].Content != "fragment-0" || history[0].User != "hi" {
		t.Error("Assemble mutated its inputs")
	}
}

func TestAssembleSectionOrder(t *testing.T) {
	a := NewAssembler(2, 2, 3)
	history := []session.Exchange{{User: "سؤال سابق", Bot: "جواب سابق"}}

	asm := a.Assemble("ما هو الناتج المحلي الإجمالي؟", rankedSet(4), history)

	idxHistory := strings.Index(asm.Prompt, "User: سؤال سابق")
	idxContext := strings.Index(asm.Prompt, "fragment-0")
	idxQuery := strings.Index(asm.Prompt, "Query: ما هو الناتج المحلي الإجمالي؟")
	if idxHistory < 0 || idxContext < 0 || idxQuery < 0 {
		t.Fatalf("prompt missing sections: history=%d context=%d query=%d", idxHistory, idxContext, idxQuery)
	}
	if !(idxHistory < idxContext && idxContext < idxQuery) {
		t.Errorf("sections out of order: history=%d context=%d query=%d", idxHistory, idxContext, idxQuery)
	}
}

func TestAssembleEmptyHistoryRendersMarker(t *testing.T) {
	a := NewAssembler(2, 2, 3)

	asm := a.Assemble("q", rankedSet(2), nil)

	if !strings.Contains(asm.Prompt, NoHistoryMarker) {
		t.Error("empty history must render the no-history marker verbatim")
	}
}

func TestAssembleHistoryWindow(t *testing.T) {
	a := NewAssembler(2, 2, 3)
	history := make([]session.Exchange, 5)
	for i := range history {
		history[i] = session.Exchange{User: fmt.Sprintf("q%d", i), Bot: fmt.Sprintf("a%d", i)}
	}

	asm := a.Assemble("q", rankedSet(2), history)

	if strings.Contains(asm.Prompt, "User: q1") {
		t.Error("prompt renders exchanges beyond the window")
	}
	for _, want := range []string{"User: q2", "User: q3", "User: q4"} {
		if !strings.Contains(asm.Prompt, want) {
			t.Errorf("prompt missing windowed exchange %q", want)
		}
	}
}

func TestAssembleEmptyRetrieval(t *testing.T) {
	a := NewAssembler(6, 6, 3)

	asm := a.Assemble("q", nil, nil)

	if len(asm.InContext) != 0 || len(asm.Reserve) != 0 {
		t.Error("empty input must yield empty partitions")
	}
	if !strings.Contains(asm.Prompt, NoContextMarker) {
		t.Error("empty context section must carry the marker")
	}
	if !strings.Contains(asm.Prompt, "Query: q") {
		t.Error("prompt must stay well formed with empty context")
	}
}
