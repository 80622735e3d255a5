package domain

import "errors"

var (
	// ErrUnsupportedFormat is returned when a document's media type is neither PDF nor text.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCorruptDocument is returned when a document's byte stream cannot be parsed.
	ErrCorruptDocument = errors.New("corrupt document")
	// ErrEmptyDocument is returned when extraction yields no non-whitespace text.
	ErrEmptyDocument = errors.New("empty document")
	// ErrInvalidChunkConfig is returned for an invalid chunk size / overlap combination.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")
	// ErrEmbeddingService is returned when the embedding service fails after retries.
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrGenerationService is returned when the generation service fails after retries.
	ErrGenerationService = errors.New("generation service error")
	// ErrPartialDelete is returned when deleting a document's vectors left orphans behind.
	ErrPartialDelete = errors.New("partial delete: orphaned vectors may remain")
	// ErrNoDocumentsIndexed is returned when a question is asked with nothing indexed.
	ErrNoDocumentsIndexed = errors.New("no documents indexed")
	// ErrDocumentNotReady is returned when querying a document that is not yet indexed.
	ErrDocumentNotReady = errors.New("document not ready")
	// ErrTimeout is returned when an external call exceeds the configured timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrQuotaExceeded is returned when an external service reports rate limiting.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrDocumentBusy is returned when a document is already being processed.
	ErrDocumentBusy = errors.New("document is already being processed")
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
