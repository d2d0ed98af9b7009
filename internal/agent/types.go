// Package agent contains the turn pipeline: intent classification, the
// retrieval-grounded policy answerer, the isolated action executor, the
// compliance validator and the orchestrating engine.
package agent

import "github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"

// Intent is the closed classification of a user query's purpose.
type Intent string

const (
	IntentPolicyQuery   Intent = "POLICY_QUERY"
	IntentActionRequest Intent = "ACTION_REQUEST"
	IntentUnknown       Intent = "UNKNOWN"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OutcomeKind tags the result of the action path.
type OutcomeKind string

const (
	ToolSucceeded   OutcomeKind = "tool_succeeded"
	ToolFailed      OutcomeKind = "tool_failed"
	NoToolRequested OutcomeKind = "no_tool_requested"
)

// ToolOutcome records what the action executor did.
type ToolOutcome struct {
	Kind      OutcomeKind `json:"kind"`
	Tool      string      `json:"tool,omitempty"`
	Parameter string      `json:"parameter,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// TurnResult is the finalized output of one user turn. FinalAnswer is always
// non-empty; AssistantMessage is the delta the caller appends to its stored
// history (the engine never mutates the caller's list).
type TurnResult struct {
	FinalAnswer      string          `json:"final_answer"`
	Intent           Intent          `json:"intent"`
	Evidence         []chunker.Chunk `json:"-"`
	EvidenceSources  []string        `json:"evidence_sources,omitempty"`
	Tool             *ToolOutcome    `json:"tool,omitempty"`
	Trace            []string        `json:"trace,omitempty"`
	AssistantMessage Message         `json:"-"`
}
