// Package store persists the turn audit log in Postgres. Persistence is
// optional: when no DSN is configured the server runs without it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Store wraps the Postgres connection for turn auditing.
type Store struct {
	DB *sql.DB
}

// TurnRecord is one finalized turn as written to the audit log.
type TurnRecord struct {
	ID              int64
	SessionID       string
	Input           string
	Intent          string
	FinalAnswer     string
	EvidenceSources []string
	ToolName        string
	ToolOutcome     string
	CreatedAt       time.Time
}

// NewWithDSN opens and pings a Postgres connection.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

// SaveTurn appends one turn to the audit log and returns its assigned ID.
func (s *Store) SaveTurn(ctx context.Context, rec TurnRecord) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO turns (session_id, input, intent, final_answer, evidence_sources, tool_name, tool_outcome, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
RETURNING id
`, rec.SessionID, rec.Input, rec.Intent, rec.FinalAnswer, pq.Array(rec.EvidenceSources), rec.ToolName, rec.ToolOutcome).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save turn: %w", err)
	}
	return id, nil
}

// RecentTurns lists a session's latest turns, newest first.
func (s *Store) RecentTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, session_id, input, intent, final_answer, evidence_sources, tool_name, tool_outcome, created_at
FROM turns
WHERE session_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		var sources pq.StringArray
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Input, &rec.Intent, &rec.FinalAnswer, &sources, &rec.ToolName, &rec.ToolOutcome, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		rec.EvidenceSources = sources
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
