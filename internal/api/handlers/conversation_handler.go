package handlers

import (
	"net/http"

	middleware "github.com/markdave123-py/parley/internal/api/middlewares"
	"github.com/markdave123-py/parley/internal/core/conversation"
)

type ConversationHandler struct {
	store *conversation.Store
}

func NewConversationHandler(store *conversation.Store) *ConversationHandler {
	return &ConversationHandler{store: store}
}

// Get returns the live conversation view. A brand-new session just sees
// empty sequences.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	writeJSON(w, http.StatusOK, h.store.Snapshot(sessionID))
}

// Export returns the full conversation snapshot including timestamps.
// Without an established session there is nothing to export.
func (h *ConversationHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID, established := middleware.SessionID(r.Context())
	if !established {
		writeError(w, http.StatusNotFound, "No conversation found")
		return
	}
	writeJSON(w, http.StatusOK, h.store.Export(sessionID))
}

// Clear resets the session's conversation to empty.
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())
	h.store.Clear(sessionID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
