package knowledge

import (
	"context"
	"testing"

	"github.com/tatweerlabs/tahlil/internal/log"
)

func TestDecodeMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "string values",
			raw:  `{"doc_type":"budget","file_name":"a.pdf","file_url":"https://x/a"}`,
			want: map[string]string{"doc_type": "budget", "file_name": "a.pdf", "file_url": "https://x/a"},
		},
		{
			name: "empty blob",
			raw:  "",
			want: map[string]string{},
		},
		{
			name: "non-string values stringified",
			raw:  `{"page":7,"final":true}`,
			want: map[string]string{"page": "7", "final": "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeMetadata([]byte(tt.raw))
			if err != nil {
				t.Fatalf("decodeMetadata() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("key %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestDecodeMetadataMalformed(t *testing.T) {
	if _, err := decodeMetadata([]byte(`not json`)); err == nil {
		t.Error("malformed metadata must error")
	}
}

func TestQueryRejectsBadArguments(t *testing.T) {
	s := New(nil, log.NewNop())

	if _, err := s.Query(context.Background(), []float32{1}, 0); err == nil {
		t.Error("topK=0 must error before touching the database")
	}
	if _, err := s.Query(context.Background(), nil, 5); err == nil {
		t.Error("empty vector must error before touching the database")
	}
}
