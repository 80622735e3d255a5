package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"pdfchat/internal/chunker"
	"pdfchat/internal/config"
	"pdfchat/internal/http"
	"pdfchat/internal/llm"
	"pdfchat/internal/rag"
	"pdfchat/internal/service"
	"pdfchat/internal/session"
	"pdfchat/internal/storage"
	"pdfchat/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)
	tagRepo := storage.NewTagRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(
		cfg.EmbeddingBaseURL,
		cfg.LLMAPIKey,
		cfg.EmbeddingModelName,
		cfg.EmbeddingVectorSize,
		cfg.EmbeddingBatchSize,
		cfg.RequestTimeout,
	)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingVectorSize)

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Invalid chunking configuration: %v", err)
	}

	// Create document lifecycle service
	docService := service.NewDocumentService(
		docRepo,
		chunkRepo,
		tagRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		splitter,
	)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.RequestTimeout)

	// Create RAG engine
	ragEngine := rag.NewEngine(
		embedder,
		llmClient,
		vectorStore,
		chunkRepo,
		docRepo,
		rag.Options{
			Collection:          cfg.QdrantCollection,
			K:                   cfg.RetrievalK,
			SimilarityThreshold: cfg.SimilarityThreshold,
			HistoryMaxTurns:     cfg.HistoryMaxTurns,
		},
	)
	slog.Info("RAG engine initialized")

	// Create router with dependencies
	deps := &http.Deps{
		Config:      cfg,
		DocService:  docService,
		RAGEngine:   ragEngine,
		Sessions:    session.NewStore(),
		VectorStore: vectorStore,
		Embedder:    embedder,
		Generator:   llmClient,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
