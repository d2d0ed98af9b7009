package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/hrdesk/internal/agent"
	"github.com/mohammad-safakhou/hrdesk/internal/conversation"
	"github.com/mohammad-safakhou/hrdesk/internal/store"
)

// TurnProcessor is the engine surface the handlers depend on.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, input string, history []agent.Message) (agent.TurnResult, error)
}

type ChatHandler struct {
	Engine        TurnProcessor
	Conversations conversation.Store
	Audit         *store.Store
	Logger        *log.Logger
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
	g.GET("/sessions/:id/history", h.history)
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID       string             `json:"session_id"`
	Answer          string             `json:"answer"`
	Intent          string             `json:"intent"`
	EvidenceSources []string           `json:"evidence_sources,omitempty"`
	Tool            *agent.ToolOutcome `json:"tool,omitempty"`
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	ctx := c.Request().Context()

	history, err := h.Conversations.History(ctx, req.SessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result, err := h.Engine.ProcessTurn(ctx, req.Message, history)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Conversations.Append(ctx, req.SessionID,
		agent.Message{Role: agent.RoleUser, Content: strings.TrimSpace(req.Message)},
		result.AssistantMessage,
	); err != nil {
		// The turn already produced an answer; losing one history append is
		// preferable to failing the request.
		h.Logger.Printf("history append failed for %s: %v", req.SessionID, err)
	}

	if h.Audit != nil {
		rec := store.TurnRecord{
			SessionID:       req.SessionID,
			Input:           strings.TrimSpace(req.Message),
			Intent:          string(result.Intent),
			FinalAnswer:     result.FinalAnswer,
			EvidenceSources: result.EvidenceSources,
		}
		if result.Tool != nil {
			rec.ToolName = result.Tool.Tool
			rec.ToolOutcome = string(result.Tool.Kind)
		}
		if _, err := h.Audit.SaveTurn(ctx, rec); err != nil {
			h.Logger.Printf("audit write failed for %s: %v", req.SessionID, err)
		}
	}

	return c.JSON(http.StatusOK, ChatResponse{
		SessionID:       req.SessionID,
		Answer:          result.FinalAnswer,
		Intent:          string(result.Intent),
		EvidenceSources: result.EvidenceSources,
		Tool:            result.Tool,
	})
}

type HistoryResponse struct {
	SessionID string          `json:"session_id"`
	Messages  []agent.Message `json:"messages"`
}

func (h *ChatHandler) history(c echo.Context) error {
	sessionID := c.Param("id")
	messages, err := h.Conversations.History(c.Request().Context(), sessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, HistoryResponse{SessionID: sessionID, Messages: messages})
}
