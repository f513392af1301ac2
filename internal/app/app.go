package app

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/parley/internal/config"
	"github.com/markdave123-py/parley/internal/core/chat"
	"github.com/markdave123-py/parley/internal/core/conversation"
	"github.com/markdave123-py/parley/internal/core/extract"
	"github.com/markdave123-py/parley/internal/core/llm"
	"github.com/markdave123-py/parley/internal/core/search"
)

// Outbound search and fetch calls share one bounded timeout.
const outboundTimeout = 10 * time.Second

type App struct {
	Store  *conversation.Store
	LLM    *llm.GeminiLLM
	Server *Server
}

// NewApp constructs every collaborator once and injects it where it is
// needed; nothing in the process reaches for ambient globals.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store := conversation.NewStore()

	llmProvider, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, err
	}
	log.Println("Model provider initialized and ready.")

	searcher := search.NewWebSearcher(cfg.BraveAPIKey, outboundTimeout)
	if cfg.BraveAPIKey == "" {
		log.Println("BRAVE_API_KEY not set; falling back to DuckDuckGo search.")
	}

	extractor := extract.NewDocconvExtractor()
	orchestrator := chat.NewOrchestrator(store, searcher, llmProvider)

	server := NewServer(cfg, store, orchestrator, searcher, searcher, extractor)

	return &App{Store: store, LLM: llmProvider, Server: server}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
}
