package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/hrdesk/internal/llm"
	"github.com/mohammad-safakhou/hrdesk/internal/tools"
)

const actionPrompt = `You are an HR Action Assistant. You ONLY execute specific HR tools when explicitly requested.

AVAILABLE TOOLS:
1. create_hr_ticket(issue: str) - Creates an HR support ticket
2. check_leave_balance(employee_id: str) - Checks remaining leave days

STRICT RULES:
1. You can ONLY use the tools listed above
2. Do NOT answer policy questions - those are not your job
3. Do NOT create tickets unless explicitly asked to "create a ticket" or "raise a ticket"
4. Do NOT hallucinate tool results
5. If required information is missing (e.g., an employee ID), ask a clarifying question in plain language instead of emitting a tool call

TO USE A TOOL, respond in this EXACT format:
TOOL: tool_name
PARAM: parameter_value

EXAMPLES:
User: "Check my leave balance for EMP001"
Response:
TOOL: check_leave_balance
PARAM: EMP001

User: "Create a ticket for laptop not working"
Response:
TOOL: create_hr_ticket
PARAM: laptop not working

User: "Check my leave balance" (no employee ID provided)
Response: I need your employee ID to check your leave balance. Please provide it (e.g., EMP001).

Current request: %s

Your response:`

// ActionExecutor owns the tool registry; no other component may invoke
// tools. One LLM call decides which tool to run, and its output is parsed
// defensively: no parseable directive means no tool runs.
type ActionExecutor struct {
	llm      llm.Provider
	registry tools.Registry
}

func NewActionExecutor(provider llm.Provider, registry tools.Registry) *ActionExecutor {
	return &ActionExecutor{llm: provider, registry: registry}
}

var (
	toolLineRE  = regexp.MustCompile(`(?i)TOOL:\s*(\w+)`)
	paramLineRE = regexp.MustCompile(`(?i)PARAM:\s*(.+)`)
)

// ParseToolDirective extracts a (tool, parameter) pair from raw model
// output. ok is false when either line is absent; the raw text is then the
// model's free-form reply (a clarification or a refusal).
func ParseToolDirective(raw string) (tool, param string, ok bool) {
	toolMatch := toolLineRE.FindStringSubmatch(raw)
	paramMatch := paramLineRE.FindStringSubmatch(raw)
	if toolMatch == nil || paramMatch == nil {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(toolMatch[1])), strings.TrimSpace(paramMatch[1]), true
}

// Execute runs the action path for one request. Tool failures are reported
// in the outcome, never propagated; the returned error covers only the LLM
// transport.
func (a *ActionExecutor) Execute(ctx context.Context, query string) (ToolOutcome, error) {
	raw, err := a.llm.Generate(ctx, fmt.Sprintf(actionPrompt, query))
	if err != nil {
		return ToolOutcome{}, fmt.Errorf("action call: %w", err)
	}
	raw = strings.TrimSpace(raw)

	tool, param, ok := ParseToolDirective(raw)
	if !ok {
		return ToolOutcome{Kind: NoToolRequested, Message: raw}, nil
	}
	return a.invoke(tool, param), nil
}

// invoke runs one registered tool, converting errors and panics into a
// ToolFailed outcome. An unknown tool name is never attempted.
func (a *ActionExecutor) invoke(tool, param string) (outcome ToolOutcome) {
	outcome = ToolOutcome{Tool: tool, Parameter: param}

	fn, known := a.registry[tool]
	if !known {
		outcome.Kind = ToolFailed
		outcome.Error = fmt.Sprintf("unknown tool: %s", tool)
		return outcome
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Kind = ToolFailed
			outcome.Error = fmt.Sprintf("tool %s panicked: %v", tool, r)
		}
	}()

	result, err := fn(param)
	if err != nil {
		outcome.Kind = ToolFailed
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Kind = ToolSucceeded
	outcome.Message = result.Message
	return outcome
}
