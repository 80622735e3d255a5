package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pdfchat/internal/config"
	"pdfchat/internal/handlers"
	"pdfchat/internal/rag"
	"pdfchat/internal/service"
	"pdfchat/internal/session"
	"pdfchat/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Config      *config.Config
	DocService  *service.DocumentService
	RAGEngine   rag.Engine
	Sessions    *session.Store
	VectorStore vectorstore.VectorStore
	Embedder    handlers.HealthChecker
	Generator   handlers.HealthChecker
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	uploadHandler := handlers.NewUploadHandler(deps.DocService, deps.Config.MaxUploadBytes)
	documentsHandler := handlers.NewDocumentsHandler(deps.DocService)
	tagsHandler := handlers.NewTagsHandler(deps.DocService)
	chatHandler := handlers.NewChatHandler(
		deps.RAGEngine,
		deps.Sessions,
		deps.Config.HistoryMaxTurns,
		deps.Config.GenTemperature,
		deps.Config.GenMaxTokens,
	)
	statusHandler := handlers.NewStatusHandler(deps.Config, deps.DocService, deps.VectorStore)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Embedder, deps.Generator, deps.Config.QdrantCollection)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/documents", uploadHandler)
		r.Get("/documents", documentsHandler.List)
		r.Get("/documents/{id}", documentsHandler.Get)
		r.Delete("/documents/{id}", documentsHandler.Delete)

		r.Put("/documents/{id}/tags/{tagID}", tagsHandler.Assign)
		r.Delete("/documents/{id}/tags/{tagID}", tagsHandler.Unassign)
		r.Get("/tags", tagsHandler.List)
		r.Post("/tags", tagsHandler.Create)
		r.Delete("/tags/{id}", tagsHandler.Delete)

		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodGet, "/status", statusHandler)
	})

	r.Method(http.MethodGet, "/api/health", healthHandler)

	return r
}
