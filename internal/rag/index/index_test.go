package index

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"
)

// fakeEmbedder produces deterministic vectors from marker-word counts so
// similarity ordering is known in advance.
type fakeEmbedder struct{}

var axes = []string{"sick", "remote", "password", "expense"}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(axes))
		lower := strings.ToLower(t)
		for j, a := range axes {
			v[j] = float32(strings.Count(lower, a))
		}
		// keep zero-free vectors so cosine is defined everywhere
		for j := range v {
			v[j] += 0.01
		}
		out[i] = v
	}
	return out, nil
}

func testChunks() []chunker.Chunk {
	texts := []string{
		"[Leave Policy]\nEmployees are entitled to 12 sick leave days per year.",
		"[Remote Work Policy]\nEmployees must complete 6 months probation before remote work.",
		"[IT Security Policy]\nPasswords must be at least 14 characters long.",
		"[Expense Policy]\nExpense claims require receipts within 30 days.",
	}
	chunks := make([]chunker.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = chunker.Chunk{Text: t, Source: "doc" + string(rune('A'+i)), ChunkIndex: 0, TotalChunks: 1, CharCount: len(t)}
	}
	return chunks
}

func TestBuildAndSearch(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, fakeEmbedder{}, testChunks(), false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := ix.Search(ctx, "how many sick leave days", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if !strings.Contains(got[0].Text, "12 sick leave days") {
		t.Fatalf("expected the sick leave chunk first, got %q", got[0].Text)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, fakeEmbedder{}, testChunks(), false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a, err := ix.Search(ctx, "remote work eligibility", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	b, err := ix.Search(ctx, "remote work eligibility", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("repeated searches must return identical ordered results")
	}
}

// constEmbedder gives every text the same vector, forcing ties everywhere.
type constEmbedder struct{}

func (constEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 1}
	}
	return out, nil
}

func TestSearch_TiesBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	chunks := testChunks()
	ix, err := Build(ctx, constEmbedder{}, chunks, false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := ix.Search(ctx, "anything", 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := range got {
		if got[i].Source != chunks[i].Source {
			t.Fatalf("tie at rank %d broken out of insertion order: %s", i, got[i].Source)
		}
	}
}

func TestManager_UnbuiltReturnsNoEvidence(t *testing.T) {
	m := NewManager()
	got, err := m.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("unbuilt manager must not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unbuilt manager must return no chunks, got %d", len(got))
	}
	if m.Size() != 0 {
		t.Fatalf("unbuilt manager size should be 0, got %d", m.Size())
	}
}

func TestManager_Swap(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	ix, err := Build(ctx, fakeEmbedder{}, testChunks(), false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m.Swap(ix)
	if m.Size() != 4 {
		t.Fatalf("expected 4 chunks after swap, got %d", m.Size())
	}
	got, err := m.Search(ctx, "password length", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || !strings.Contains(got[0].Text, "14 characters") {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestHybridSearch(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, fakeEmbedder{}, testChunks(), true, nil)
	if err != nil {
		t.Fatalf("Build hybrid: %v", err)
	}
	got, err := ix.Search(ctx, "sick leave days", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("hybrid search returned nothing")
	}
	if !strings.Contains(got[0].Text, "sick leave") {
		t.Fatalf("expected the sick leave chunk first, got %q", got[0].Text)
	}
}

func TestBuild_EmptyCorpusRejected(t *testing.T) {
	if _, err := Build(context.Background(), fakeEmbedder{}, nil, false, nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}
