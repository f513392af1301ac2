// Package chat runs a single conversational turn: validate, augment
// with search context, apply a thinking template, persist, call the
// model, persist the reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markdave123-py/parley/internal/core"
	"github.com/markdave123-py/parley/internal/core/conversation"
	"github.com/markdave123-py/parley/internal/core/thinking"
	"github.com/markdave123-py/parley/internal/models"
)

// ErrEmptyMessage rejects a turn whose message is blank after trimming.
var ErrEmptyMessage = errors.New("message cannot be empty")

const (
	// How many results we ask the search provider for, and how many of
	// them end up quoted in the prompt.
	defaultSearchResults = 5
	quotedSearchResults  = 3

	// Thinking templates need extra headroom in the reply budget.
	maxTokensNormal   = 4000
	maxTokensThinking = 6000
)

// TurnRequest is one inbound chat message plus its augmentation flags.
type TurnRequest struct {
	Message      string
	UseSearch    bool
	SearchQuery  string
	ThinkingMode thinking.Mode
}

// TurnResult is what the handler returns to the client after a turn.
type TurnResult struct {
	Reply         string
	MessageID     string
	Timestamp     string
	SearchResults []models.SearchResult
	ThinkingMode  thinking.Mode
	TokenUsage    int
}

// Orchestrator owns no state of its own; everything lives in the store.
type Orchestrator struct {
	store    *conversation.Store
	searcher core.Searcher
	llm      core.LLMProvider
}

func NewOrchestrator(store *conversation.Store, searcher core.Searcher, llm core.LLMProvider) *Orchestrator {
	return &Orchestrator{store: store, searcher: searcher, llm: llm}
}

// HandleTurn executes one chat turn for the session. The stored user
// message is always the original trimmed text; search context and
// thinking templates only ever reach the outbound model payload. Once
// the user message is appended it stays in history even if the model
// call afterwards fails.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID string, req TurnRequest) (TurnResult, error) {
	original := strings.TrimSpace(req.Message)
	if original == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	mode := req.ThinkingMode
	if mode == "" {
		mode = thinking.ModeNormal
	}

	outbound := original
	searchResults := []models.SearchResult{}
	researchContext := ""

	if req.UseSearch && req.SearchQuery != "" {
		searchResults = o.searcher.Search(ctx, req.SearchQuery, defaultSearchResults)
		o.store.AppendSearch(sessionID, req.SearchQuery, searchResults)

		if len(searchResults) > 0 {
			block := formatSearchContext(searchResults)
			outbound += block
			researchContext = block
		}
	}

	if mode != thinking.ModeNormal {
		outbound = thinking.Compose(outbound, mode, researchContext)
	}

	o.store.AppendMessage(sessionID, models.RoleUser, original, models.MessageTypeText, map[string]any{
		"thinking_mode":        string(mode),
		"enhanced_prompt_used": mode != thinking.ModeNormal,
	})

	messages := o.store.MessagesForModel(sessionID)
	// The stored message holds the original text; swap in the augmented
	// variant for the payload only.
	if outbound != original && len(messages) > 0 {
		messages[len(messages)-1].Content = outbound
	}

	maxTokens := maxTokensNormal
	if mode != thinking.ModeNormal {
		maxTokens = maxTokensThinking
	}

	reply, tokens, err := o.llm.GenerateChat(ctx, messages, maxTokens)
	if err != nil {
		// No rollback: the user message above stays in history.
		return TurnResult{}, err
	}

	assistantMsg := o.store.AppendMessage(sessionID, models.RoleAssistant, reply, models.MessageTypeText, map[string]any{
		"search_used":    req.UseSearch,
		"search_results": searchResults,
		"thinking_mode":  string(mode),
		"token_usage":    tokens,
	})

	result := TurnResult{
		Reply:         reply,
		MessageID:     assistantMsg.ID,
		Timestamp:     assistantMsg.Timestamp,
		SearchResults: []models.SearchResult{},
		ThinkingMode:  mode,
		TokenUsage:    tokens,
	}
	if req.UseSearch {
		result.SearchResults = searchResults
	}
	return result, nil
}

// formatSearchContext renders the top hits into the block appended to
// the outbound message.
func formatSearchContext(results []models.SearchResult) string {
	var b strings.Builder
	b.WriteString("\n\nWeb search results:\n")
	for i, r := range results {
		if i >= quotedSearchResults {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n%s\nURL: %s\n\n", i+1, r.Title, r.Snippet, r.URL)
	}
	return b.String()
}
