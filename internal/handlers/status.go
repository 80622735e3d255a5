package handlers

import (
	"net/http"

	"pdfchat/internal/config"
	"pdfchat/internal/contextutil"
	"pdfchat/internal/service"
	"pdfchat/internal/storage"
	"pdfchat/internal/vectorstore"
)

// StatusHandler reports the effective pipeline configuration and index stats.
type StatusHandler struct {
	cfg         *config.Config
	docService  *service.DocumentService
	vectorStore vectorstore.VectorStore
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(cfg *config.Config, docService *service.DocumentService, vectorStore vectorstore.VectorStore) *StatusHandler {
	return &StatusHandler{
		cfg:         cfg,
		docService:  docService,
		vectorStore: vectorStore,
	}
}

// StatusResponse represents the system status payload.
type StatusResponse struct {
	Collection          string  `json:"collection"`
	IndexedPoints       uint64  `json:"indexed_points"`
	Documents           int     `json:"documents"`
	DocumentsIndexed    int     `json:"documents_indexed"`
	DocumentsFailed     int     `json:"documents_failed"`
	ChunkSize           int     `json:"chunk_size"`
	ChunkOverlap        int     `json:"chunk_overlap"`
	RetrievalK          int     `json:"retrieval_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	EmbeddingModel      string  `json:"embedding_model"`
	EmbeddingVectorSize int     `json:"embedding_vector_size"`
	LLMModel            string  `json:"llm_model"`
}

// ServeHTTP handles system status requests.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "", "Method not allowed")
		return
	}

	count, err := h.vectorStore.Count(ctx, h.cfg.QdrantCollection)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to count indexed points")
		return
	}

	infos, err := h.docService.List(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}
	var indexed, failed int
	for _, info := range infos {
		switch info.Status {
		case storage.StatusIndexed:
			indexed++
		case storage.StatusFailed:
			failed++
		}
	}

	writeJSON(ctx, w, http.StatusOK, StatusResponse{
		Collection:          h.cfg.QdrantCollection,
		IndexedPoints:       count,
		Documents:           len(infos),
		DocumentsIndexed:    indexed,
		DocumentsFailed:     failed,
		ChunkSize:           h.cfg.ChunkSize,
		ChunkOverlap:        h.cfg.ChunkOverlap,
		RetrievalK:          h.cfg.RetrievalK,
		SimilarityThreshold: h.cfg.SimilarityThreshold,
		EmbeddingModel:      h.cfg.EmbeddingModelName,
		EmbeddingVectorSize: h.cfg.EmbeddingVectorSize,
		LLMModel:            h.cfg.LLMModelName,
	})
}
