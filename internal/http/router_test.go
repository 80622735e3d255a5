package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"pdfchat/internal/chunker"
	"pdfchat/internal/config"
	"pdfchat/internal/domain"
	"pdfchat/internal/rag"
	"pdfchat/internal/service"
	"pdfchat/internal/session"
	"pdfchat/internal/storage"
	"pdfchat/internal/vectorstore"
)

type staticEngine struct {
	resp rag.AnswerResponse
	err  error
}

func (e *staticEngine) Answer(_ context.Context, _ rag.AnswerRequest) (rag.AnswerResponse, error) {
	return e.resp, e.err
}

type staticEmbedder struct{}

func (staticEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{1, 0}
	}
	return vecs, nil
}

type okChecker struct{}

func (okChecker) Healthy(_ context.Context) error { return nil }

func testRouter(t *testing.T, engine rag.Engine) http.Handler {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "router_test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	store := vectorstore.NewMemoryStore()
	if err := store.EnsureCollection(context.Background(), "docs", 2); err != nil {
		t.Fatalf("EnsureCollection() error: %v", err)
	}

	splitter, err := chunker.New(100, 20)
	if err != nil {
		t.Fatalf("chunker.New() error: %v", err)
	}
	docService := service.NewDocumentService(
		storage.NewDocumentRepo(db),
		storage.NewChunkRepo(db),
		storage.NewTagRepo(db),
		staticEmbedder{},
		store,
		"docs",
		splitter,
	)

	return NewRouter(&Deps{
		Config: &config.Config{
			QdrantCollection: "docs",
			HistoryMaxTurns:  3,
			GenTemperature:   0.7,
			GenMaxTokens:     500,
			MaxUploadBytes:   1 << 20,
		},
		DocService:  docService,
		RAGEngine:   engine,
		Sessions:    session.NewStore(),
		VectorStore: store,
		Embedder:    okChecker{},
		Generator:   okChecker{},
	})
}

func TestRouter_Health(t *testing.T) {
	router := testRouter(t, &staticEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/health status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestRouter_Chat(t *testing.T) {
	router := testRouter(t, &staticEngine{
		resp: rag.AnswerResponse{Answer: "routed", Sources: []domain.Source{}, Confidence: 0.5},
	})

	body, _ := json.Marshal(map[string]string{"question": "does routing work?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/v1/chat status = %d (body %s)", w.Code, w.Body.String())
	}
	var resp struct {
		Answer    string `json:"answer"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "routed" || resp.SessionID == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRouter_DocumentsAndTags(t *testing.T) {
	router := testRouter(t, &staticEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /api/v1/documents status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET missing document status = %d, want 404", w.Code)
	}

	body, _ := json.Marshal(map[string]string{"name": "routing"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/tags", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("POST /api/v1/tags status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
}

func TestRouter_Status(t *testing.T) {
	router := testRouter(t, &staticEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/status status = %d (body %s)", w.Code, w.Body.String())
	}
	var resp struct {
		Collection string `json:"collection"`
		Documents  int    `json:"documents"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Collection != "docs" || resp.Documents != 0 {
		t.Errorf("status = %+v", resp)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := testRouter(t, &staticEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", w.Code)
	}
}
