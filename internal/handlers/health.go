package handlers

import (
	"context"
	"net/http"
	"time"

	"pdfchat/internal/contextutil"
	"pdfchat/internal/vectorstore"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks. Each dependency is
// checked independently so one outage does not mask another.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	embedder           HealthChecker
	generator          HealthChecker
	collectionName     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(vectorStore vectorstore.VectorStore, embedder, generator HealthChecker, collectionName string) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		embedder:           embedder,
		generator:          generator,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP handles health check requests. Returns 200 when every check
// passes, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	var issues []string

	run := func(name string, check func(ctx context.Context) error) {
		checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
		defer cancel()
		if err := check(checkCtx); err != nil {
			logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			checks[name] = "error"
			issues = append(issues, name+"_unavailable")
			return
		}
		checks[name] = "ok"
	}

	run("vector_store", h.checkVectorStore)
	run("embedding_service", h.embedder.Healthy)
	run("generation_service", h.generator.Healthy)

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}

func (h *HealthHandler) checkVectorStore(ctx context.Context) error {
	_, err := h.vectorStore.CollectionExists(ctx, h.collectionName)
	return err
}
