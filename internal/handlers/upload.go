package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"pdfchat/internal/contextutil"
	"pdfchat/internal/service"
)

// UploadHandler handles multipart document uploads.
type UploadHandler struct {
	docService     *service.DocumentService
	maxUploadBytes int64
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(docService *service.DocumentService, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		docService:     docService,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadResponse represents the HTTP response payload for a processed upload.
type UploadResponse struct {
	DocumentID     string `json:"document_id"`
	Filename       string `json:"filename"`
	PagesProcessed int    `json:"pages_processed"`
	ChunksCreated  int    `json:"chunks_created"`
}

// ServeHTTP handles document upload requests.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "", "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if isBodyTooLarge(err) {
			logger.WarnContext(ctx, "upload exceeds size limit", "limit", h.maxUploadBytes)
			writeError(ctx, w, http.StatusRequestEntityTooLarge, "payload_too_large", "Uploaded file is too large")
			return
		}
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file field", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", "A \"file\" form field is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			writeError(ctx, w, http.StatusRequestEntityTooLarge, "payload_too_large", "Uploaded file is too large")
			return
		}
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", "Failed to read uploaded file")
		return
	}

	mediaType := uploadMediaType(header.Header.Get("Content-Type"), header.Filename)

	result, err := h.docService.Process(ctx, data, mediaType, header.Filename, r.FormValue("document_id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process document")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, UploadResponse{
		DocumentID:     result.DocumentID,
		Filename:       result.Filename,
		PagesProcessed: result.PagesProcessed,
		ChunksCreated:  result.ChunksCreated,
	})
}

// uploadMediaType resolves the document media type from the part header,
// falling back to the filename extension when the header is absent or generic.
func uploadMediaType(contentType, filename string) string {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType != "application/octet-stream" {
			return mediaType
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return contentType
	}
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	// The multipart reader can swallow the typed error.
	return err != nil && strings.Contains(err.Error(), "request body too large")
}
