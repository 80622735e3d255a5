package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pdfchat/internal/contextutil"
	"pdfchat/internal/service"
)

// DocumentsHandler handles HTTP requests for document listing and deletion.
type DocumentsHandler struct {
	docService *service.DocumentService
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(docService *service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{docService: docService}
}

// DocumentResponse represents one document in HTTP responses.
type DocumentResponse struct {
	ID         string        `json:"id"`
	Filename   string        `json:"filename"`
	MediaType  string        `json:"media_type"`
	Status     string        `json:"status"`
	FailReason string        `json:"fail_reason,omitempty"`
	PageCount  int           `json:"page_count"`
	ChunkCount int           `json:"chunk_count"`
	UploadedAt string        `json:"uploaded_at"`
	Tags       []TagResponse `json:"tags"`
}

// ListDocumentsResponse represents the document listing payload.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// List handles GET requests for the document listing.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	infos, err := h.docService.List(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}

	docs := make([]DocumentResponse, 0, len(infos))
	for _, info := range infos {
		docs = append(docs, toDocumentResponse(info))
	}
	writeJSON(ctx, w, http.StatusOK, ListDocumentsResponse{Documents: docs})
}

// Get handles GET requests for a single document.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "id")

	info, err := h.docService.Get(ctx, documentID)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load document")
		return
	}
	writeJSON(ctx, w, http.StatusOK, toDocumentResponse(*info))
}

// Delete handles DELETE requests for a document. Vectors are removed before
// metadata; a partial vector delete leaves the record in place for retry.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	documentID := chi.URLParam(r, "id")

	if err := h.docService.Delete(ctx, documentID); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete document")
		return
	}

	logger.InfoContext(ctx, "document deleted via API", "document_id", documentID)
	w.WriteHeader(http.StatusNoContent)
}

func toDocumentResponse(info service.DocumentInfo) DocumentResponse {
	tags := make([]TagResponse, 0, len(info.Tags))
	for _, tag := range info.Tags {
		tags = append(tags, TagResponse{ID: tag.ID, Name: tag.Name})
	}
	return DocumentResponse{
		ID:         info.ID,
		Filename:   info.Filename,
		MediaType:  info.MediaType,
		Status:     info.Status,
		FailReason: info.FailReason,
		PageCount:  info.PageCount,
		ChunkCount: info.ChunkCount,
		UploadedAt: info.UploadedAt.UTC().Format(time.RFC3339),
		Tags:       tags,
	}
}
