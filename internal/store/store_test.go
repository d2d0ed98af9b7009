package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestSaveTurn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}

	query := regexp.QuoteMeta(`
INSERT INTO turns (session_id, input, intent, final_answer, evidence_sources, tool_name, tool_outcome, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
RETURNING id
`)
	mock.ExpectQuery(query).
		WithArgs("sess-1", "how many sick days?", "POLICY_QUERY", "12 days.", sqlmock.AnyArg(), "", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := st.SaveTurn(context.Background(), TurnRecord{
		SessionID:       "sess-1",
		Input:           "how many sick days?",
		Intent:          "POLICY_QUERY",
		FinalAnswer:     "12 days.",
		EvidenceSources: []string{"leave_policy.txt"},
	})
	if err != nil {
		t.Fatalf("SaveTurn: %v", err)
	}
	if id != 7 {
		t.Fatalf("id = %d, want 7", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecentTurns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	now := time.Now()

	query := regexp.QuoteMeta(`
SELECT id, session_id, input, intent, final_answer, evidence_sources, tool_name, tool_outcome, created_at
FROM turns
WHERE session_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2
`)
	mock.ExpectQuery(query).
		WithArgs("sess-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "input", "intent", "final_answer", "evidence_sources", "tool_name", "tool_outcome", "created_at"}).
			AddRow(int64(2), "sess-1", "check my balance for EMP001", "ACTION_REQUEST", "8 days remaining.", pq.StringArray(nil), "check_leave_balance", "tool_succeeded", now).
			AddRow(int64(1), "sess-1", "sick days?", "POLICY_QUERY", "12 days.", pq.StringArray{"leave_policy.txt"}, "", "", now.Add(-time.Minute)))

	records, err := st.RecentTurns(context.Background(), "sess-1", 0)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ToolName != "check_leave_balance" || records[0].Intent != "ACTION_REQUEST" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if len(records[1].EvidenceSources) != 1 || records[1].EvidenceSources[0] != "leave_policy.txt" {
		t.Fatalf("sources not decoded: %+v", records[1].EvidenceSources)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
