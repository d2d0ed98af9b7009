package main

import (
	"context"
	"fmt"
	"log"

	"github.com/mohammad-safakhou/hrdesk/config"
	"github.com/mohammad-safakhou/hrdesk/internal/agent"
	"github.com/mohammad-safakhou/hrdesk/internal/conversation"
	"github.com/mohammad-safakhou/hrdesk/internal/llm"
	"github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"
	"github.com/mohammad-safakhou/hrdesk/internal/rag/corpus"
	"github.com/mohammad-safakhou/hrdesk/internal/rag/index"
	"github.com/mohammad-safakhou/hrdesk/internal/server"
	"github.com/mohammad-safakhou/hrdesk/internal/store"
	"github.com/mohammad-safakhou/hrdesk/internal/telemetry"
	"github.com/mohammad-safakhou/hrdesk/internal/tools"
)

// system is the fully wired assistant: index built, engine assembled,
// stores connected.
type system struct {
	engine        *agent.Engine
	manager       *index.Manager
	conversations conversation.Store
	audit         *store.Store
	metrics       *telemetry.Metrics
	chunks        int
	docs          int
}

// buildSystem loads the corpus, rebuilds the evidence index from scratch and
// assembles the turn pipeline. The index rebuild is unconditional: startup
// cost buys freedom from staleness.
func buildSystem(ctx context.Context, cfg *config.Config, logger *log.Logger) (*system, error) {
	docs, err := corpus.Load(cfg.Corpus.DocsDir, cfg.Corpus.Required, logger)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	splitter := chunker.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	var chunks []chunker.Chunk
	for _, doc := range docs {
		chunks = append(chunks, splitter.SplitDocument(doc.Text, doc.Source, doc.Title)...)
	}
	logger.Printf("corpus: %d documents, %d chunks", len(docs), len(chunks))

	provider := llm.NewOpenAIProvider(cfg.LLM)
	idx, err := index.Build(ctx, provider, chunks, cfg.Retrieval.Hybrid, logger)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	manager := index.NewManager()
	manager.Swap(idx)

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		metrics = telemetry.New()
	}

	var validator *agent.Validator
	if cfg.Compliance.Enabled {
		validator = agent.NewValidator(provider)
	}

	engine := agent.NewEngine(
		agent.NewClassifier(provider),
		agent.NewPolicyAnswerer(provider, manager, cfg.Retrieval.TopK),
		agent.NewActionExecutor(provider, tools.DefaultRegistry()),
		validator,
		metrics,
		log.New(log.Writer(), "[ENGINE] ", log.LstdFlags),
	)

	conversations, err := buildConversationStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var audit *store.Store
	if cfg.Storage.Postgres.Configured() {
		dsn, err := cfg.Storage.Postgres.DSN()
		if err != nil {
			return nil, err
		}
		audit, err = store.NewWithDSN(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("audit store: %w", err)
		}
		logger.Printf("turn audit store connected")
	}

	return &system{
		engine:        engine,
		manager:       manager,
		conversations: conversations,
		audit:         audit,
		metrics:       metrics,
		chunks:        len(chunks),
		docs:          len(docs),
	}, nil
}

func buildConversationStore(ctx context.Context, cfg *config.Config) (conversation.Store, error) {
	switch cfg.Conversation.Store {
	case "", "inmemory":
		return conversation.NewInMemoryStore(cfg.Conversation.Window), nil
	case "redis":
		r := cfg.Conversation.Redis
		client, err := conversation.Conn(ctx, r.Host, r.Port, r.Password, r.DB)
		if err != nil {
			return nil, fmt.Errorf("conversation store: %w", err)
		}
		return conversation.NewRedisStore(client, cfg.Conversation.Window, cfg.Conversation.TTL), nil
	default:
		return nil, fmt.Errorf("unknown conversation store: %s", cfg.Conversation.Store)
	}
}

func (s *system) serverDeps() server.Deps {
	return server.Deps{
		Engine:        s.engine,
		Conversations: s.conversations,
		Index:         s.manager,
		Audit:         s.audit,
		Metrics:       s.metrics,
	}
}
