// Package llm wraps the chat-completion and embedding backend behind a
// narrow interface. All structure in model output (JSON intents, TOOL/PARAM
// lines) is enforced only by prompt instruction: callers must parse
// defensively and never trust the shape of what comes back.
package llm

import "context"

// Provider is the surface the agents consume.
type Provider interface {
	// Generate issues one prompt and returns the raw model text.
	Generate(ctx context.Context, prompt string) (string, error)
	// Embed turns texts into fixed-length vectors, deterministically for
	// identical input.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
