package agent

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"
)

// scriptedLLM answers Generate calls by matching prompt fragments to canned
// replies, recording every prompt it sees.
type scriptedLLM struct {
	replies []scriptedReply
	err     error
	prompts []string
}

type scriptedReply struct {
	contains string
	reply    string
}

func (s *scriptedLLM) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	for _, r := range s.replies {
		if strings.Contains(prompt, r.contains) {
			return r.reply, nil
		}
	}
	return "", fmt.Errorf("no scripted reply for prompt: %.80s", prompt)
}

func (s *scriptedLLM) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

// fixedRetriever returns the same evidence for every query.
type fixedRetriever struct {
	chunks  []chunker.Chunk
	err     error
	queries []string
}

func (f *fixedRetriever) Search(_ context.Context, query string, _ int) ([]chunker.Chunk, error) {
	f.queries = append(f.queries, query)
	return f.chunks, f.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func policyChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{Text: "[Leave Policy]\nEmployees receive 12 sick days per calendar year.", Source: "leave_policy.txt"},
		{Text: "[Leave Policy]\nSick leave beyond 3 consecutive days requires a medical certificate.", Source: "leave_policy.txt"},
		{Text: "[Benefits]\nHealth insurance covers dependents after 6 months of employment.", Source: "benefits.txt"},
	}
}
