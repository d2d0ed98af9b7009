package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"space runs", "a  \t b", "a b"},
		{"hyphen break", "reim-\nbursement", "reimbursement"},
		{"newline runs", "a\n\n\n\nb", "a\n\nb"},
		{"punct spacing", "days.Employees must", "days. Employees must"},
		{"line strip", "  a  \n  b  ", "a\nb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSplitDocument_ShortDocSingleChunk(t *testing.T) {
	s := NewSplitter(800, 150)
	chunks := s.SplitDocument("Employees are entitled to 12 sick leave days per year.", "leave_policy.txt", "Leave Policy")
	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.ChunkIndex != 0 || c.TotalChunks != 1 {
		t.Fatalf("unexpected chunk metadata: %+v", c)
	}
	if !strings.HasPrefix(c.Text, "[Leave Policy]\n") {
		t.Fatalf("missing title prefix: %q", c.Text)
	}
	if c.CharCount != len(c.Text) {
		t.Fatalf("char count mismatch: %d vs %d", c.CharCount, len(c.Text))
	}
}

func TestSplitDocument_TitleAlreadyPresent(t *testing.T) {
	s := NewSplitter(800, 150)
	chunks := s.SplitDocument("Leave Policy\nEmployees get leave.", "leave_policy.txt", "Leave Policy")
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if strings.HasPrefix(chunks[0].Text, "[Leave Policy]") {
		t.Fatalf("title should not be prefixed twice: %q", chunks[0].Text)
	}
}

func longDoc() string {
	var b strings.Builder
	b.WriteString("Leave Policy\n\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "Section %d covers entitlement band %d. Employees in band %d accrue annual leave monthly and may carry over up to %d days into the next calendar year subject to manager approval.\n\n", i, i, i, i+2)
	}
	return b.String()
}

func TestSplitDocument_Idempotent(t *testing.T) {
	s := NewSplitter(800, 150)
	a := s.SplitDocument(longDoc(), "leave_policy.txt", "Leave Policy")
	b := s.SplitDocument(longDoc(), "leave_policy.txt", "Leave Policy")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("chunking identical input twice produced different chunks")
	}
}

func TestSplitDocument_BoundsAndMetadata(t *testing.T) {
	s := NewSplitter(800, 150)
	doc := longDoc()
	chunks := s.SplitDocument(doc, "leave_policy.txt", "Leave Policy")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for a long document, got %d", len(chunks))
	}
	prefix := "[Leave Policy]\n"
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Fatalf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.TotalChunks != len(chunks) {
			t.Fatalf("chunk %d total %d, want %d", i, c.TotalChunks, len(chunks))
		}
		core := strings.TrimPrefix(c.Text, prefix)
		if len(core) > 800 {
			t.Fatalf("chunk %d core exceeds chunk size: %d chars", i, len(core))
		}
		if core == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestSplitDocument_Coverage(t *testing.T) {
	s := NewSplitter(800, 150)
	doc := longDoc()
	normalized := Normalize(doc)
	chunks := s.SplitDocument(doc, "leave_policy.txt", "Leave Policy")

	// Every chunk core must appear in the normalized document, and the cores
	// must cover the document with nothing but separator whitespace between
	// consecutive windows.
	prefix := "[Leave Policy]\n"
	covered := 0
	for i, c := range chunks {
		core := strings.TrimPrefix(c.Text, prefix)
		pos := strings.Index(normalized, core)
		if pos < 0 {
			t.Fatalf("chunk %d core not found in normalized document", i)
		}
		if pos > covered && strings.TrimSpace(normalized[covered:pos]) != "" {
			t.Fatalf("gap before chunk %d: %q", i, normalized[covered:pos])
		}
		if end := pos + len(core); end > covered {
			covered = end
		}
	}
	if strings.TrimSpace(normalized[covered:]) != "" {
		t.Fatalf("document tail not covered: %q", normalized[covered:])
	}
}

func TestSplitDocument_Overlap(t *testing.T) {
	s := NewSplitter(200, 60)
	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "Sentence %d describes a leave rule. ", i)
	}
	chunks := s.SplitDocument(b.String(), "leave_policy.txt", "Leave Policy")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	prefix := "[Leave Policy]\n"
	shared := 0
	for i := 1; i < len(chunks); i++ {
		prev := strings.TrimPrefix(chunks[i-1].Text, prefix)
		cur := strings.TrimPrefix(chunks[i].Text, prefix)
		if overlapLen(prev, cur) > 0 {
			shared++
		}
	}
	if shared == 0 {
		t.Fatal("no consecutive chunks share trailing/leading context")
	}
}

func overlapLen(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return n
		}
	}
	return 0
}

func TestHardCut(t *testing.T) {
	s := NewSplitter(4, 2)
	chunks := s.hardCut("abcdefghij")
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 windows, got %d", len(chunks))
	}
	if chunks[0] != "abcd" {
		t.Fatalf("unexpected first window: %s", chunks[0])
	}
	if chunks[1] != "cdef" {
		t.Fatalf("windows must share trailing context: %s", chunks[1])
	}
}
