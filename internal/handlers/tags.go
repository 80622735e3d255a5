package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pdfchat/internal/contextutil"
	"pdfchat/internal/service"
)

// TagsHandler handles HTTP requests for tag management.
type TagsHandler struct {
	docService *service.DocumentService
}

// NewTagsHandler creates a new TagsHandler.
func NewTagsHandler(docService *service.DocumentService) *TagsHandler {
	return &TagsHandler{docService: docService}
}

// TagResponse represents one tag in HTTP responses.
type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateTagRequest represents the payload for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// ListTagsResponse represents the tag listing payload.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags"`
}

// List handles GET requests for all tags.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.docService.ListTags(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list tags")
		return
	}

	tags := make([]TagResponse, 0, len(records))
	for _, tag := range records {
		tags = append(tags, TagResponse{ID: tag.ID, Name: tag.Name})
	}
	writeJSON(ctx, w, http.StatusOK, ListTagsResponse{Tags: tags})
}

// Create handles POST requests creating a tag. Creating an existing name
// returns the existing tag.
func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", "Invalid request body")
		return
	}

	tag, err := h.docService.CreateTag(ctx, req.Name)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create tag")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, TagResponse{ID: tag.ID, Name: tag.Name})
}

// Delete handles DELETE requests for a tag. Its document links go with it.
func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tagID, ok := h.parseTagID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.docService.DeleteTag(ctx, tagID); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Assign handles PUT requests linking a tag to a document.
func (h *TagsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "id")

	tagID, ok := h.parseTagID(w, r, chi.URLParam(r, "tagID"))
	if !ok {
		return
	}
	if err := h.docService.AssignTag(ctx, documentID, tagID); err != nil {
		handleServiceError(ctx, w, err, "Failed to assign tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unassign handles DELETE requests removing a tag link from a document.
func (h *TagsHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "id")

	tagID, ok := h.parseTagID(w, r, chi.URLParam(r, "tagID"))
	if !ok {
		return
	}
	if err := h.docService.UnassignTag(ctx, documentID, tagID); err != nil {
		handleServiceError(ctx, w, err, "Failed to unassign tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TagsHandler) parseTagID(w http.ResponseWriter, r *http.Request, raw string) (int64, bool) {
	tagID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid_input", "Tag ID must be an integer")
		return 0, false
	}
	return tagID, true
}
