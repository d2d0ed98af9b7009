package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mohammad-safakhou/hrdesk/internal/agent"
)

func TestInMemoryStore_UnknownSessionIsEmpty(t *testing.T) {
	s := NewInMemoryStore(10)
	history, err := s.History(context.Background(), "nope")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(history))
	}
}

func TestInMemoryStore_AppendAndWindow(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(4)

	for i := 0; i < 5; i++ {
		err := s.Append(ctx, "sess",
			agent.Message{Role: agent.RoleUser, Content: fmt.Sprintf("q%d", i)},
			agent.Message{Role: agent.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	history, err := s.History(ctx, "sess")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("window = %d messages, want 4", len(history))
	}
	// Oldest entries trimmed, newest pair last.
	if history[0].Content != "q3" || history[3].Content != "a4" {
		t.Fatalf("unexpected window contents: %+v", history)
	}
}

func TestInMemoryStore_HistoryReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(10)
	if err := s.Append(ctx, "sess", agent.Message{Role: agent.RoleUser, Content: "original"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	history, _ := s.History(ctx, "sess")
	history[0].Content = "mutated"

	again, _ := s.History(ctx, "sess")
	if again[0].Content != "original" {
		t.Fatal("History must return a copy, not the backing slice")
	}
}

func TestInMemoryStore_SessionsIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(10)
	if err := s.Append(ctx, "a", agent.Message{Role: agent.RoleUser, Content: "for a"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	history, _ := s.History(ctx, "b")
	if len(history) != 0 {
		t.Fatalf("session b must be empty, got %+v", history)
	}
}

func TestInMemoryStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Append(ctx, "sess", agent.Message{Role: agent.RoleUser, Content: fmt.Sprintf("m%d", n)})
		}(i)
	}
	wg.Wait()

	history, err := s.History(ctx, "sess")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 20 {
		t.Fatalf("expected 20 messages, got %d", len(history))
	}
}
