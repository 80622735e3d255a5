package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pdfchat/internal/domain"
)

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size for validation
	BatchSize    int // Max texts per request
	client       *http.Client
	retry        RetryPolicy
}

// NewEmbeddingsClient creates a new embeddings client. expectedSize is the
// configured vector dimensionality; all returned embeddings are validated
// against it. batchSize caps how many texts go into a single request so that
// large documents are embedded in as few calls as practical.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize, batchSize int, timeout time.Duration) *EmbeddingsClient {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		BatchSize:    batchSize,
		client:       &http.Client{Timeout: timeout},
		retry:        DefaultRetryPolicy(),
	}
}

// EmbeddingsRequest represents the request payload for the embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedTexts generates embeddings for the given texts, one fixed-dimension
// vector per input in the same order. Inputs are batched to amortize latency.
// Transient failures get the bounded retry policy; exhausted or permanent
// failures surface as ErrEmbeddingService (or ErrTimeout / ErrQuotaExceeded).
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty input array", domain.ErrInvalidInput)
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.BatchSize {
		end := start + c.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		var batch [][]float32
		err := c.retry.Do(ctx, func() error {
			var opErr error
			batch, opErr = c.embedBatch(ctx, texts[start:end])
			return opErr
		})
		if err != nil {
			return nil, classify(err, domain.ErrEmbeddingService)
		}
		result = append(result, batch...)
	}

	return result, nil
}

func (c *EmbeddingsClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	payload := EmbeddingsRequest{
		Model: c.Model,
		Input: texts,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize)
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}

// Healthy reports whether the embedding service is reachable and produces
// vectors of the expected dimensionality.
func (c *EmbeddingsClient) Healthy(ctx context.Context) error {
	vectors, err := c.EmbedTexts(ctx, []string{"health check"})
	if err != nil {
		return err
	}
	if len(vectors) == 0 || len(vectors[0]) != c.ExpectedSize {
		return fmt.Errorf("embedding vector size mismatch: expected %d", c.ExpectedSize)
	}
	return nil
}
