package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/hrdesk/internal/llm"
	"github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"
)

const policyPrompt = `You are an HR Policy Assistant. You answer questions using the retrieved HR policy context.

RULES:
1. Use ONLY information from the retrieved context below
2. If the context contains RELEVANT information that can help answer the question, provide a clear and helpful answer
3. When the user asks "can I..." questions, check the context for eligibility requirements and explain them
4. Quote specific numbers, durations, and details from the context (e.g., "6 months", "12 days", "14 characters")
5. If the user provides personal details (e.g., "I joined 3 months ago"), apply the policy rules to their situation
6. Only say "I don't have that information" if the context truly has NO relevant policy information
7. Consider the conversation history for follow-up questions
8. Be helpful - if the policy states requirements, explain whether the user meets them based on what they've shared

Retrieved Context:
%s

Conversation History:
%s

Current Question: %s

Provide a helpful answer based on the context above:`

// insufficientInfoMessage is the deterministic refusal used when retrieval
// produced no evidence at all. It is returned without consulting the model:
// with nothing to ground on, any generated answer would be fabrication.
const insufficientInfoMessage = "I don't have enough information in the HR policies to answer that question accurately. Please contact HR directly for clarification."

const contextDelimiter = "\n\n---\n\n"

const (
	searchHistoryMessages = 4   // messages mixed into the retrieval query
	searchExcerptChars    = 200 // per-message excerpt budget for retrieval
	promptHistoryMessages = 6   // messages shown to the model
	assistantExcerptChars = 300 // assistant entries are truncated in history
)

// Retriever is the evidence lookup the answerer depends on. A nil result
// with a nil error means "no evidence available".
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]chunker.Chunk, error)
}

// PolicyAnswerer produces answers grounded in retrieved policy evidence.
type PolicyAnswerer struct {
	llm       llm.Provider
	retriever Retriever
	topK      int
}

func NewPolicyAnswerer(provider llm.Provider, retriever Retriever, topK int) *PolicyAnswerer {
	if topK <= 0 {
		topK = 5
	}
	return &PolicyAnswerer{llm: provider, retriever: retriever, topK: topK}
}

// Answer retrieves evidence for the query and generates an answer constrained
// to it. The returned chunks are exactly the evidence shown to the model; an
// empty slice means the answer is the deterministic refusal.
func (p *PolicyAnswerer) Answer(ctx context.Context, query string, history []Message) (string, []chunker.Chunk, error) {
	evidence, err := p.retriever.Search(ctx, buildSearchQuery(query, history), p.topK)
	if err != nil {
		// Retrieval transport failure degrades to "no evidence": the
		// answerer must decline rather than answer ungrounded.
		evidence = nil
	}

	if len(evidence) == 0 {
		return insufficientInfoMessage, nil, nil
	}

	parts := make([]string, len(evidence))
	for i, c := range evidence {
		parts[i] = c.Text
	}
	contextBlock := strings.Join(parts, contextDelimiter)

	prompt := fmt.Sprintf(policyPrompt, contextBlock, formatHistory(history), query)
	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return "", evidence, fmt.Errorf("answer generation: %w", err)
	}
	return strings.TrimSpace(answer), evidence, nil
}

// buildSearchQuery widens the retrieval query with bounded excerpts of recent
// history so follow-up questions retrieve against their context without
// unbounded growth.
func buildSearchQuery(query string, history []Message) string {
	if len(history) < 2 {
		return query
	}
	recent := history
	if len(recent) > searchHistoryMessages {
		recent = recent[len(recent)-searchHistoryMessages:]
	}
	parts := make([]string, 0, len(recent)+1)
	parts = append(parts, query)
	for _, msg := range recent {
		parts = append(parts, truncate(msg.Content, searchExcerptChars))
	}
	return strings.Join(parts, " ")
}

func formatHistory(history []Message) string {
	if len(history) == 0 {
		return "No previous conversation."
	}
	recent := history
	if len(recent) > promptHistoryMessages {
		recent = recent[len(recent)-promptHistoryMessages:]
	}
	var lines []string
	for _, msg := range recent {
		switch msg.Role {
		case RoleUser:
			lines = append(lines, "User: "+msg.Content)
		case RoleAssistant:
			lines = append(lines, "Assistant: "+truncate(msg.Content, assistantExcerptChars))
		}
	}
	if len(lines) == 0 {
		return "No previous conversation."
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
