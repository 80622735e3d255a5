package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pdfchat/internal/contextutil"
	"pdfchat/internal/domain"
	"pdfchat/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := contextutil.LoggerFromContext(ctx)
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(ctx context.Context, w http.ResponseWriter, statusCode int, kind, message string) {
	writeJSON(ctx, w, statusCode, ErrorResponse{Error: message, Kind: kind})
}

// handleServiceError maps service and engine errors to HTTP status codes.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "service error", "error", err)

	kind := service.ErrorKind(err)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", validationErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrCorruptDocument),
		errors.Is(err, domain.ErrEmptyDocument),
		errors.Is(err, domain.ErrInvalidChunkConfig):
		writeError(ctx, w, http.StatusBadRequest, kind, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, kind, err.Error())
	case errors.Is(err, domain.ErrDocumentBusy),
		errors.Is(err, domain.ErrDocumentNotReady),
		errors.Is(err, domain.ErrNoDocumentsIndexed):
		writeError(ctx, w, http.StatusConflict, kind, err.Error())
	case errors.Is(err, domain.ErrEmbeddingService),
		errors.Is(err, domain.ErrGenerationService),
		errors.Is(err, domain.ErrTimeout),
		errors.Is(err, domain.ErrQuotaExceeded):
		writeError(ctx, w, http.StatusBadGateway, kind, "External service error")
	case errors.Is(err, domain.ErrPartialDelete):
		writeError(ctx, w, http.StatusInternalServerError, kind, err.Error())
	case isVectorStoreError(err):
		writeError(ctx, w, http.StatusServiceUnavailable, "vector_store_unavailable", "Vector store unavailable")
	default:
		writeError(ctx, w, http.StatusInternalServerError, kind, defaultMsg)
	}
}

// isVectorStoreError recognizes vector store failures that carry no sentinel.
func isVectorStoreError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "vector store") ||
		strings.Contains(msg, "qdrant") ||
		strings.Contains(msg, "collection")
}
