// Package conversation persists per-session history windows. The engine
// never touches a store directly: callers load the window, run the turn, and
// append the user/assistant pair afterwards.
package conversation

import (
	"context"

	"github.com/mohammad-safakhou/hrdesk/internal/agent"
)

// DefaultWindow caps stored history when no window is configured.
const DefaultWindow = 10

// Store holds bounded conversation windows keyed by session ID.
type Store interface {
	// History returns the stored window, oldest first. An unknown session
	// yields an empty slice, not an error.
	History(ctx context.Context, sessionID string) ([]agent.Message, error)
	// Append adds messages to the session, trimming the window to its cap
	// from the oldest end.
	Append(ctx context.Context, sessionID string, messages ...agent.Message) error
}
