package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tatweerlabs/tahlil/internal/log"
	"github.com/tatweerlabs/tahlil/internal/session"
)

// fakeGenerator replies with a fixed text and records every prompt.
type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestSuggestParsesLines(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "plain lines",
			reply: "ما هو العجز؟\nما هي نسبة الدين؟\nما هو معدل التضخم؟",
			want:  []string{"ما هو العجز؟", "ما هي نسبة الدين؟", "ما هو معدل التضخم؟"},
		},
		{
			name:  "bullets and blanks stripped",
			reply: "- الأول\n\n• الثاني\n* الثالث\n",
			want:  []string{"الأول", "الثاني", "الثالث"},
		},
		{
			name:  "capped at three",
			reply: "a\nb\nc\nd\ne",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "fewer than three tolerated",
			reply: "الوحيد",
			want:  []string{"الوحيد"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: tt.reply}
			e := NewSuggestionEngine(gen, log.NewNop())

			got, err := e.Suggest(context.Background(), []string{"unused fragment"}, nil)
			if err != nil {
				t.Fatalf("Suggest() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d suggestions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("suggestion %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSuggestEmptyReserveUsesMarker(t *testing.T) {
	gen := &fakeGenerator{reply: "سؤال"}
	e := NewSuggestionEngine(gen, log.NewNop())

	if _, err := e.Suggest(context.Background(), nil, nil); err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want exactly 1", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], NoReserveMarker) {
		t.Error("prompt must carry the no-unused-information marker")
	}
}

func TestSuggestReserveInPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: "سؤال"}
	e := NewSuggestionEngine(gen, log.NewNop())

	reserve := []string{"حقيقة أولى", "حقيقة ثانية"}
	history := []session.Exchange{{User: "سؤال المستخدم", Bot: "رد"}}
	if _, err := e.Suggest(context.Background(), reserve, history); err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{"حقيقة أولى", "حقيقة ثانية", "User: سؤال المستخدم"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSuggestFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"generator error", &fakeGenerator{err: errors.New("quota exceeded")}},
		{"empty reply", &fakeGenerator{reply: ""}},
		{"whitespace reply", &fakeGenerator{reply: "  \n\t\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewSuggestionEngine(tt.gen, log.NewNop())
			_, err := e.Suggest(context.Background(), []string{"x"}, nil)
			if !errors.Is(err, ErrSuggestionFailed) {
				t.Errorf("error = %v, want ErrSuggestionFailed", err)
			}
		})
	}
}
