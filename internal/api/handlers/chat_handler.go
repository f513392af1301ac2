package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	middleware "github.com/markdave123-py/parley/internal/api/middlewares"
	"github.com/markdave123-py/parley/internal/core"
	"github.com/markdave123-py/parley/internal/core/chat"
	"github.com/markdave123-py/parley/internal/core/thinking"
	"github.com/markdave123-py/parley/internal/models"
)

type ChatHandler struct {
	orchestrator *chat.Orchestrator
}

func NewChatHandler(orchestrator *chat.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

type chatRequest struct {
	Message      string `json:"message"`
	UseSearch    bool   `json:"use_search"`
	SearchQuery  string `json:"search_query"`
	ThinkingMode string `json:"thinking_mode"`
}

type chatResponse struct {
	Response      string                `json:"response"`
	MessageID     string                `json:"message_id"`
	Timestamp     string                `json:"timestamp"`
	SearchResults []models.SearchResult `json:"search_results"`
	ThinkingMode  string                `json:"thinking_mode"`
	TokenUsage    int                   `json:"token_usage"`
}

// Chat runs one conversational turn for the request's session.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := thinking.Mode(req.ThinkingMode)
	if req.ThinkingMode == "" {
		mode = thinking.ModeNormal
	}

	result, err := h.orchestrator.HandleTurn(r.Context(), sessionID, chat.TurnRequest{
		Message:      req.Message,
		UseSearch:    req.UseSearch,
		SearchQuery:  req.SearchQuery,
		ThinkingMode: mode,
	})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "Message cannot be empty")
		case errors.Is(err, core.ErrModelAPI):
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Model API error: %v", err))
		default:
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Unexpected error: %v", err))
		}
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:      result.Reply,
		MessageID:     result.MessageID,
		Timestamp:     result.Timestamp,
		SearchResults: result.SearchResults,
		ThinkingMode:  string(result.ThinkingMode),
		TokenUsage:    result.TokenUsage,
	})
}
