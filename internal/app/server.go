package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/parley/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/parley/internal/api/middlewares"
	"github.com/markdave123-py/parley/internal/config"
	"github.com/markdave123-py/parley/internal/core"
	"github.com/markdave123-py/parley/internal/core/chat"
	"github.com/markdave123-py/parley/internal/core/conversation"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, store *conversation.Store, orchestrator *chat.Orchestrator, searcher core.Searcher, fetcher core.Fetcher, extractor core.Extractor) *Server {
	maxUploadBytes := int64(cfg.MaxUploadMB) << 20

	chatHandler := handlers.NewChatHandler(orchestrator)
	uploadHandler := handlers.NewUploadHandler(store, extractor, maxUploadBytes)
	searchHandler := handlers.NewSearchHandler(store, searcher, fetcher)
	convHandler := handlers.NewConversationHandler(store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	// Every route runs with a session id; the middleware assigns one on
	// first contact via a signed cookie.
	r.Use(appMiddleware.Session(cfg.SecretKey))

	// Serve the chat UI from the web directory
	fileServer := http.FileServer(http.Dir(cfg.WebDir))
	r.Handle("/*", fileServer)

	// API routes
	r.Route("/api", func(api chi.Router) {
		api.Post("/chat", chatHandler.Chat)
		api.Post("/upload", uploadHandler.Upload)
		api.Post("/search", searchHandler.Search)
		api.Post("/fetch", searchHandler.Fetch)
		api.Get("/conversation", convHandler.Get)
		api.Get("/conversation/export", convHandler.Export)
		api.Post("/clear", convHandler.Clear)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Handler exposes the wired router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server until shutdown.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
