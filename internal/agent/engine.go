package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"
	"github.com/mohammad-safakhou/hrdesk/internal/telemetry"
)

// fallbackMessage is returned verbatim for queries outside the HR domain.
const fallbackMessage = `I'm only able to assist with HR policies and specific HR actions like creating tickets or checking leave balance.

For HR policy questions, you can ask about:
- Leave policies (annual, sick, parental)
- Remote work policies
- Benefits and compensation
- IT security and password policies
- Expense reimbursement
- Code of conduct

For HR actions, you can:
- Check your leave balance (requires employee ID)
- Create an HR support ticket`

// apologyMessage covers the terminal guard: a turn must never finalize with
// an empty answer.
const apologyMessage = "I apologize, but I couldn't process your request. Please try asking about HR policies or specific actions."

// Engine runs one user turn through classification, exactly one handler, and
// finalization. It holds no conversation state: history is supplied by the
// caller and the assistant delta is returned, never appended in place.
type Engine struct {
	classifier *Classifier
	policy     *PolicyAnswerer
	action     *ActionExecutor
	validator  *Validator
	metrics    *telemetry.Metrics
	logger     *log.Logger
}

func NewEngine(classifier *Classifier, policy *PolicyAnswerer, action *ActionExecutor, validator *Validator, metrics *telemetry.Metrics, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.Writer(), "[ENGINE] ", log.LstdFlags)
	}
	return &Engine{
		classifier: classifier,
		policy:     policy,
		action:     action,
		validator:  validator,
		metrics:    metrics,
		logger:     logger,
	}
}

// ProcessTurn handles one user input against the supplied history. It always
// returns a result with a non-empty FinalAnswer; the error return covers only
// programming-level misuse (empty input), never model or tool trouble.
func (e *Engine) ProcessTurn(ctx context.Context, input string, history []Message) (TurnResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return TurnResult{}, fmt.Errorf("empty input")
	}
	started := time.Now()

	result := TurnResult{}
	result.Trace = append(result.Trace, "classify")

	intent, raw, err := e.classifier.Classify(ctx, input)
	if err != nil {
		e.logger.Printf("classification failed, treating as UNKNOWN: %v", err)
		result.Trace = append(result.Trace, "classify: transport error, defaulted to UNKNOWN")
	} else {
		result.Trace = append(result.Trace, fmt.Sprintf("classify: %s (raw %d bytes)", intent, len(raw)))
	}
	result.Intent = intent

	switch intent {
	case IntentPolicyQuery:
		e.runPolicy(ctx, input, history, &result)
	case IntentActionRequest:
		e.runAction(ctx, input, &result)
	default:
		result.Trace = append(result.Trace, "fallback: out-of-domain query")
		result.FinalAnswer = fallbackMessage
	}

	e.finalize(&result)
	e.metrics.ObserveTurn(string(result.Intent), started)
	e.logger.Printf("turn done: intent=%s evidence=%d answer=%d chars", result.Intent, len(result.Evidence), len(result.FinalAnswer))
	return result, nil
}

func (e *Engine) runPolicy(ctx context.Context, input string, history []Message, result *TurnResult) {
	result.Trace = append(result.Trace, "policy: retrieving evidence")
	answer, evidence, err := e.policy.Answer(ctx, input, history)
	if err != nil {
		e.logger.Printf("policy answer failed: %v", err)
		result.Trace = append(result.Trace, "policy: generation error")
		result.FinalAnswer = insufficientInfoMessage
		result.Evidence = evidence
		result.EvidenceSources = dedupeSources(evidence)
		return
	}
	result.Evidence = evidence
	result.EvidenceSources = dedupeSources(evidence)
	result.Trace = append(result.Trace, fmt.Sprintf("policy: %d evidence chunks from %v", len(evidence), result.EvidenceSources))
	e.metrics.ObserveEvidence(len(evidence))

	// The deterministic no-evidence refusal is already maximally safe, and an
	// answer with no evidence gives the validator nothing to check against.
	if e.validator != nil && len(evidence) > 0 {
		contextBlock := joinEvidence(evidence)
		verdict := e.validator.Validate(ctx, input, contextBlock, answer)
		if !verdict.Approved {
			e.logger.Printf("compliance rejected answer: %s", verdict.Reason)
			result.Trace = append(result.Trace, "compliance: rejected, answer replaced")
			e.metrics.ObserveRejection()
		} else {
			result.Trace = append(result.Trace, "compliance: approved")
		}
		answer = verdict.Answer
	}

	result.FinalAnswer = answer
}

func (e *Engine) runAction(ctx context.Context, input string, result *TurnResult) {
	result.Trace = append(result.Trace, "action: requesting tool directive")
	outcome, err := e.action.Execute(ctx, input)
	if err != nil {
		e.logger.Printf("action path failed: %v", err)
		result.Trace = append(result.Trace, "action: transport error")
		result.FinalAnswer = apologyMessage
		return
	}
	result.Tool = &outcome
	e.metrics.ObserveTool(outcome.Tool, string(outcome.Kind))

	switch outcome.Kind {
	case ToolSucceeded:
		result.Trace = append(result.Trace, fmt.Sprintf("action: %s succeeded", outcome.Tool))
		result.FinalAnswer = outcome.Message
	case ToolFailed:
		result.Trace = append(result.Trace, fmt.Sprintf("action: %s failed: %s", outcome.Tool, outcome.Error))
		result.FinalAnswer = fmt.Sprintf("I couldn't complete that action: %s. Please try again or contact HR support.", outcome.Error)
	case NoToolRequested:
		// Clarification or refusal from the model, passed through verbatim.
		result.Trace = append(result.Trace, "action: no tool requested")
		result.FinalAnswer = outcome.Message
	}
}

// finalize enforces the non-empty answer guarantee and produces the history
// delta for the caller.
func (e *Engine) finalize(result *TurnResult) {
	result.FinalAnswer = strings.TrimSpace(result.FinalAnswer)
	if result.FinalAnswer == "" {
		result.Trace = append(result.Trace, "finalize: empty answer replaced")
		result.FinalAnswer = apologyMessage
	}
	result.Trace = append(result.Trace, "finalize")
	result.AssistantMessage = Message{Role: RoleAssistant, Content: result.FinalAnswer}
}

// dedupeSources lists the distinct source documents behind the evidence, in
// retrieval-rank order.
func dedupeSources(evidence []chunker.Chunk) []string {
	seen := make(map[string]struct{}, len(evidence))
	var sources []string
	for _, c := range evidence {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		sources = append(sources, c.Source)
	}
	return sources
}

func joinEvidence(evidence []chunker.Chunk) string {
	parts := make([]string, len(evidence))
	for i, c := range evidence {
		parts[i] = c.Text
	}
	return strings.Join(parts, contextDelimiter)
}
