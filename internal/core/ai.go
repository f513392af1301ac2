package core

import (
	"context"
	"errors"

	"github.com/markdave123-py/parley/internal/models"
)

// ErrModelAPI marks failures reported by the upstream model API, so
// handlers can tell them apart from unexpected internal errors. Both
// abort the turn; neither is retried.
var ErrModelAPI = errors.New("model API error")

// LLMProvider generates a reply from the full conversation so far.
// outputTokens is the usage reported by the provider, 0 when unknown.
type LLMProvider interface {
	GenerateChat(ctx context.Context, messages []models.ChatMessage, maxTokens int) (reply string, outputTokens int, err error)
}

// Searcher runs a web search. Implementations never return an error:
// any provider failure degrades to an empty result list.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) []models.SearchResult
}

// Fetcher pulls the visible text of a web page. Failures come back as a
// descriptive string in place of content, never as an error.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) string
}

// Extractor converts an uploaded binary into a bounded-text FileRecord.
// Extraction failures degrade into a record with Error set; the only
// hard errors are I/O problems reading the upload itself.
type Extractor interface {
	Process(filename string, data []byte) models.FileRecord
}
