package handlers

import (
	"encoding/json"
	"net/http"

	"pdfchat/internal/contextutil"
	"pdfchat/internal/domain"
	"pdfchat/internal/rag"
	"pdfchat/internal/session"
)

// ChatHandler handles HTTP requests for document chat.
type ChatHandler struct {
	ragEngine rag.Engine
	sessions  *session.Store

	historyMaxTurns    int
	defaultTemperature float64
	defaultMaxTokens   int
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(ragEngine rag.Engine, sessions *session.Store, historyMaxTurns int, defaultTemperature float64, defaultMaxTokens int) *ChatHandler {
	return &ChatHandler{
		ragEngine:          ragEngine,
		sessions:           sessions,
		historyMaxTurns:    historyMaxTurns,
		defaultTemperature: defaultTemperature,
		defaultMaxTokens:   defaultMaxTokens,
	}
}

// ChatRequest represents the HTTP request payload for chat. Temperature and
// MaxTokens are pointers so that zero values can be told apart from absent
// fields.
type ChatRequest struct {
	Question    string   `json:"question"`
	DocumentID  string   `json:"document_id,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// SourceResponse represents one cited chunk in the chat response.
type SourceResponse struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Page       int     `json:"page,omitempty"`
	Score      float64 `json:"score"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Answer     string           `json:"answer"`
	Sources    []SourceResponse `json:"sources"`
	Confidence float64          `json:"confidence"`
	SessionID  string           `json:"session_id"`
}

// ServeHTTP handles chat requests. Conversation history is kept server-side
// per session; the client only carries the session ID.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "", "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", "Invalid request body")
		return
	}
	if req.Question == "" {
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", "Question is required")
		return
	}

	temperature := h.defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 2 {
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", "Temperature must be between 0 and 2")
		return
	}
	maxTokens := h.defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	if maxTokens <= 0 {
		writeError(ctx, w, http.StatusBadRequest, "invalid_input", "max_tokens must be greater than 0")
		return
	}

	sess := h.sessions.Get(req.SessionID)
	history := sess.Recent(h.historyMaxTurns)

	ragResp, err := h.ragEngine.Answer(ctx, rag.AnswerRequest{
		Question:    req.Question,
		DocumentID:  req.DocumentID,
		History:     history,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to answer question")
		return
	}

	sess.Append(domain.Message{Role: domain.RoleUser, Content: req.Question})
	sess.Append(domain.Message{
		Role:       domain.RoleAssistant,
		Content:    ragResp.Answer,
		Sources:    ragResp.Sources,
		Confidence: ragResp.Confidence,
	})

	sources := make([]SourceResponse, 0, len(ragResp.Sources))
	for _, src := range ragResp.Sources {
		sources = append(sources, SourceResponse{
			DocumentID: src.DocumentID,
			Filename:   src.Filename,
			ChunkIndex: src.ChunkIndex,
			Page:       src.Page,
			Score:      src.Score,
		})
	}

	writeJSON(ctx, w, http.StatusOK, ChatResponse{
		Answer:     ragResp.Answer,
		Sources:    sources,
		Confidence: ragResp.Confidence,
		SessionID:  sess.ID,
	})
}
