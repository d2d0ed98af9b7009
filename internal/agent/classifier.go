package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/hrdesk/internal/llm"
)

const classifierPrompt = `You are an intent classifier for an HR system. Your ONLY job is to classify user intent.

CLASSIFICATION RULES:
- POLICY_QUERY: User is asking INFORMATIONAL questions about policies, rules, procedures, entitlements, benefits, or guidelines. This includes questions about leave policies, sick leave, password policies, remote work, benefits, etc.
- ACTION_REQUEST: User EXPLICITLY wants to PERFORM an action. They must use action words like "check my balance", "create a ticket", "submit a request", "book", "register", etc.
- UNKNOWN: Query is unrelated to HR (e.g., weather, flights, restaurants) or completely unclear.

CRITICAL DISTINCTIONS:
- "What is the password policy?" -> POLICY_QUERY (asking about a policy)
- "How many sick days do I get?" -> POLICY_QUERY (asking about entitlement)
- "I have fever, can I take leave?" -> POLICY_QUERY (asking about leave rules)
- "Check my leave balance" -> ACTION_REQUEST (explicit action verb)
- "Create a ticket for laptop issue" -> ACTION_REQUEST (explicit action verb)
- "Book flight tickets" -> UNKNOWN (not HR related)
- "What's the weather?" -> UNKNOWN (not HR related)

You MUST respond with ONLY valid JSON in this exact format:
{"intent": "POLICY_QUERY"}
or
{"intent": "ACTION_REQUEST"}
or
{"intent": "UNKNOWN"}

Do NOT include any other text, explanation, or markdown. ONLY the JSON object.`

// Classifier maps free-text user input to one of the three intents through a
// constrained LLM call. Classification is stateless and idempotent for
// identical input.
type Classifier struct {
	llm llm.Provider
}

func NewClassifier(provider llm.Provider) *Classifier {
	return &Classifier{llm: provider}
}

// Classify issues one classification call. A transport failure is treated
// like unparseable output: the intent degrades to UNKNOWN and the error is
// returned for tracing only, never surfaced to the user.
func (c *Classifier) Classify(ctx context.Context, query string) (Intent, string, error) {
	prompt := fmt.Sprintf("%s\n\nClassify this query: %s", classifierPrompt, query)
	raw, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return IntentUnknown, "", fmt.Errorf("classification call: %w", err)
	}
	return ParseIntent(raw), raw, nil
}

var braceObjectRE = regexp.MustCompile(`\{[^}]+\}`)

// ParseIntent recovers an intent from raw model output. Attempts, in order:
// strict JSON parse, first brace-delimited object, case-insensitive token
// search. Anything else is UNKNOWN: an unrecognized response must never
// trigger the side-effecting tool path, so ACTION_REQUEST is never a default.
func ParseIntent(raw string) Intent {
	if intent, ok := intentFromJSON(strings.TrimSpace(raw)); ok {
		return intent
	}
	if match := braceObjectRE.FindString(raw); match != "" {
		if intent, ok := intentFromJSON(match); ok {
			return intent
		}
	}
	upper := strings.ToUpper(raw)
	if strings.Contains(upper, string(IntentPolicyQuery)) {
		return IntentPolicyQuery
	}
	if strings.Contains(upper, string(IntentActionRequest)) {
		return IntentActionRequest
	}
	return IntentUnknown
}

func intentFromJSON(s string) (Intent, bool) {
	var parsed struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return IntentUnknown, false
	}
	switch Intent(strings.ToUpper(strings.TrimSpace(parsed.Intent))) {
	case IntentPolicyQuery:
		return IntentPolicyQuery, true
	case IntentActionRequest:
		return IntentActionRequest, true
	case IntentUnknown:
		return IntentUnknown, true
	}
	return IntentUnknown, false
}
