package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	middleware "github.com/markdave123-py/parley/internal/api/middlewares"
	"github.com/markdave123-py/parley/internal/core"
	"github.com/markdave123-py/parley/internal/core/conversation"
	"github.com/markdave123-py/parley/internal/models"
)

const defaultSearchResults = 5

type SearchHandler struct {
	store    *conversation.Store
	searcher core.Searcher
	fetcher  core.Fetcher
}

func NewSearchHandler(store *conversation.Store, searcher core.Searcher, fetcher core.Fetcher) *SearchHandler {
	return &SearchHandler{store: store, searcher: searcher, fetcher: fetcher}
}

// Search runs a standalone web search and logs it against the session.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query cannot be empty")
		return
	}

	results := h.searcher.Search(r.Context(), query, defaultSearchResults)

	if sessionID, _ := middleware.SessionID(r.Context()); sessionID != "" {
		h.store.AppendSearch(sessionID, query, results)
	}

	writeJSON(w, http.StatusOK, map[string][]models.SearchResult{"results": results})
}

// Fetch pulls the visible text of a single web page.
func (h *SearchHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pageURL := strings.TrimSpace(req.URL)
	if pageURL == "" {
		writeError(w, http.StatusBadRequest, "URL cannot be empty")
		return
	}

	content := h.fetcher.FetchPage(r.Context(), pageURL)

	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}
