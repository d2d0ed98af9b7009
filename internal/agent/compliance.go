package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/hrdesk/internal/llm"
)

const compliancePrompt = `You are a Compliance Validator. Your job is to verify that the answer is grounded in facts.

Original Question: %s

Retrieved Context: %s

Proposed Answer: %s

RULES:
1. If the answer is grounded in the retrieved context, mark it as APPROVED
2. If the answer contains information NOT in the context, mark it as REJECTED
3. If rejected, provide a safe fallback response

Respond in this format:
STATUS: APPROVED or REJECTED
REASON: brief explanation
FINAL: the final answer to give to the user (either the original answer if approved, or a safe fallback if rejected)`

// Verdict records the outcome of one compliance check.
type Verdict struct {
	Approved bool
	Reason   string
	Answer   string
}

// Validator re-checks a generated answer against the evidence it was
// supposedly grounded in. Parsing is total: a response the validator cannot
// interpret approves the original answer rather than blocking the turn.
type Validator struct {
	llm llm.Provider
}

func NewValidator(provider llm.Provider) *Validator {
	return &Validator{llm: provider}
}

// Validate issues one grounding check. A transport failure approves the
// original answer with the error recorded in the verdict reason.
func (v *Validator) Validate(ctx context.Context, question, contextBlock, answer string) Verdict {
	raw, err := v.llm.Generate(ctx, fmt.Sprintf(compliancePrompt, question, contextBlock, answer))
	if err != nil {
		return Verdict{Approved: true, Reason: "validator unavailable: " + err.Error(), Answer: answer}
	}
	return parseVerdict(raw, answer)
}

// parseVerdict interprets the STATUS/REASON/FINAL contract. A rejection with
// no usable replacement falls back to the deterministic refusal so a rejected
// answer is never shown.
func parseVerdict(raw, original string) Verdict {
	raw = strings.TrimSpace(raw)

	final := original
	if idx := strings.LastIndex(raw, "FINAL:"); idx >= 0 {
		if replacement := strings.TrimSpace(raw[idx+len("FINAL:"):]); replacement != "" {
			final = replacement
		}
	}

	reason := ""
	if m := reasonLine(raw); m != "" {
		reason = m
	}

	if strings.Contains(raw, "STATUS: REJECTED") {
		if final == original {
			final = insufficientInfoMessage
		}
		return Verdict{Approved: false, Reason: reason, Answer: final}
	}
	return Verdict{Approved: true, Reason: reason, Answer: final}
}

func reasonLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "REASON:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
