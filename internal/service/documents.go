package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks pdfchat/internal/service Embedder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"pdfchat/internal/chunker"
	"pdfchat/internal/contextutil"
	"pdfchat/internal/domain"
	"pdfchat/internal/extractor"
	"pdfchat/internal/storage"
	"pdfchat/internal/vectorstore"
)

// Embedder maps texts to fixed-dimension vectors. Defined from the service
// layer's perspective (consumer-first).
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ProcessResult reports what a successful processing run produced.
type ProcessResult struct {
	DocumentID     string
	Filename       string
	PagesProcessed int
	ChunksCreated  int
}

// DocumentInfo is a document record together with its tags.
type DocumentInfo struct {
	storage.DocumentRecord
	Tags []storage.TagRecord
}

// DocumentService drives the document lifecycle:
// uploaded → extracting → chunking → embedding → indexed, with failed
// reachable from every non-terminal state. Processing of a single document ID
// is serialized: a second concurrent request for the same ID is rejected with
// ErrDocumentBusy rather than interleaved.
type DocumentService struct {
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
	tagRepo     storage.TagStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	splitter    *chunker.Chunker

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	tagRepo storage.TagStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	splitter *chunker.Chunker,
) *DocumentService {
	return &DocumentService{
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		tagRepo:     tagRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		splitter:    splitter,
		inflight:    make(map[string]struct{}),
	}
}

// Process runs the full pipeline for an uploaded document. documentID may be
// empty, in which case a new ID is generated. Reprocessing an existing
// document replaces its chunk set atomically from the caller's point of view:
// on any failure the document is left in the failed state with no partial
// chunk set persisted.
func (s *DocumentService) Process(ctx context.Context, data []byte, mediaType, filename, documentID string) (ProcessResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(data) == 0 {
		return ProcessResult{}, fmt.Errorf("%w: empty upload", domain.ErrInvalidInput)
	}
	if documentID == "" {
		documentID = uuid.New().String()
	}

	if !s.acquire(documentID) {
		return ProcessResult{}, fmt.Errorf("%w: %s", domain.ErrDocumentBusy, documentID)
	}
	defer s.release(documentID)

	existing, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil && err != storage.ErrNotFound {
		return ProcessResult{}, fmt.Errorf("failed to check existing document: %w", err)
	}
	reprocess := existing != nil
	if reprocess && !terminalStatus(existing.Status) {
		return ProcessResult{}, fmt.Errorf("%w: %s is %s", domain.ErrDocumentBusy, documentID, existing.Status)
	}

	if !reprocess {
		record := &storage.DocumentRecord{
			ID:        documentID,
			Filename:  filename,
			MediaType: mediaType,
			Status:    storage.StatusUploaded,
		}
		if err := s.docRepo.Insert(ctx, record); err != nil {
			return ProcessResult{}, fmt.Errorf("failed to insert document: %w", err)
		}
	}

	if err := s.docRepo.UpdateStatus(ctx, documentID, storage.StatusExtracting, ""); err != nil {
		return ProcessResult{}, fmt.Errorf("failed to update status: %w", err)
	}
	extraction, err := extractor.Extract(data, mediaType)
	if err != nil {
		s.markFailed(ctx, documentID, err)
		return ProcessResult{}, err
	}

	if err := s.docRepo.UpdateStatus(ctx, documentID, storage.StatusChunking, ""); err != nil {
		return ProcessResult{}, fmt.Errorf("failed to update status: %w", err)
	}
	chunks := s.splitter.Split(extraction.Text)
	if len(chunks) == 0 {
		s.markFailed(ctx, documentID, domain.ErrEmptyDocument)
		return ProcessResult{}, domain.ErrEmptyDocument
	}

	if err := s.docRepo.UpdateStatus(ctx, documentID, storage.StatusEmbedding, ""); err != nil {
		return ProcessResult{}, fmt.Errorf("failed to update status: %w", err)
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		s.markFailed(ctx, documentID, err)
		return ProcessResult{}, err
	}
	if len(embeddings) != len(chunks) {
		err := fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrEmbeddingService, len(chunks), len(embeddings))
		s.markFailed(ctx, documentID, err)
		return ProcessResult{}, err
	}

	// Reprocessing replaces the prior chunk set before the new one is written.
	if reprocess {
		if err := s.vectorStore.DeleteByDocument(ctx, s.collection, documentID); err != nil {
			s.markFailed(ctx, documentID, err)
			return ProcessResult{}, err
		}
		if err := s.chunkRepo.DeleteByDocument(ctx, documentID); err != nil {
			s.markFailed(ctx, documentID, err)
			return ProcessResult{}, fmt.Errorf("failed to delete old chunks: %w", err)
		}
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		chunkID := uuid.New().String()
		page := extraction.PageAt(chunk.Start)

		records[i] = &storage.ChunkRecord{
			ID:          chunkID,
			DocumentID:  documentID,
			ChunkIndex:  chunk.Index,
			Text:        chunk.Text,
			StartOffset: chunk.Start,
			EndOffset:   chunk.End,
			Page:        page,
		}
		points[i] = vectorstore.Point{
			ID:  chunkID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"document_id": documentID,
				"chunk_index": chunk.Index,
				"filename":    filename,
				"page":        page,
			},
		}
	}

	if err := s.chunkRepo.InsertBatch(ctx, records); err != nil {
		s.markFailed(ctx, documentID, err)
		return ProcessResult{}, fmt.Errorf("failed to insert chunks: %w", err)
	}
	if err := s.vectorStore.Upsert(ctx, s.collection, points); err != nil {
		// Roll both sides back so no partial set remains. An aborted batch may
		// have committed some points before failing.
		if cleanupErr := s.vectorStore.DeleteByDocument(ctx, s.collection, documentID); cleanupErr != nil {
			logger.ErrorContext(ctx, "failed to clean up vectors after upsert failure", "document_id", documentID, "error", cleanupErr)
		}
		if cleanupErr := s.chunkRepo.DeleteByDocument(ctx, documentID); cleanupErr != nil {
			logger.ErrorContext(ctx, "failed to clean up chunks after upsert failure", "document_id", documentID, "error", cleanupErr)
		}
		s.markFailed(ctx, documentID, err)
		return ProcessResult{}, fmt.Errorf("failed to upsert vectors: %w", err)
	}

	if err := s.docRepo.SetCounts(ctx, documentID, extraction.PageCount, len(chunks)); err != nil {
		return ProcessResult{}, fmt.Errorf("failed to set document counts: %w", err)
	}
	if err := s.docRepo.UpdateStatus(ctx, documentID, storage.StatusIndexed, ""); err != nil {
		return ProcessResult{}, fmt.Errorf("failed to update status: %w", err)
	}

	logger.InfoContext(ctx, "document indexed",
		"document_id", documentID,
		"filename", filename,
		"pages", extraction.PageCount,
		"chunks", len(chunks),
	)

	return ProcessResult{
		DocumentID:     documentID,
		Filename:       filename,
		PagesProcessed: extraction.PageCount,
		ChunksCreated:  len(chunks),
	}, nil
}

// Delete removes a document's vectors and metadata. Vectors go first; a
// partial vector delete is reported as ErrPartialDelete and the metadata is
// kept so the caller can retry. Past conversation citations become
// unresolvable, never corrupted.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if !s.acquire(documentID) {
		return fmt.Errorf("%w: %s", domain.ErrDocumentBusy, documentID)
	}
	defer s.release(documentID)

	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		if err == storage.ErrNotFound {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
		}
		return fmt.Errorf("failed to load document: %w", err)
	}

	if err := s.vectorStore.DeleteByDocument(ctx, s.collection, documentID); err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document metadata: %w", err)
	}

	logger.InfoContext(ctx, "document deleted", "document_id", documentID)
	return nil
}

// Get returns a document with its tags.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*DocumentInfo, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	tags, err := s.tagRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document tags: %w", err)
	}
	return &DocumentInfo{DocumentRecord: *doc, Tags: tags}, nil
}

// List returns all documents with their tags, newest first.
func (s *DocumentService) List(ctx context.Context) ([]DocumentInfo, error) {
	docs, err := s.docRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	infos := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		tags, err := s.tagRepo.ListByDocument(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load document tags: %w", err)
		}
		infos = append(infos, DocumentInfo{DocumentRecord: doc, Tags: tags})
	}
	return infos, nil
}

// AssignTag links a tag to a document.
func (s *DocumentService) AssignTag(ctx context.Context, documentID string, tagID int64) error {
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		if err == storage.ErrNotFound {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
		}
		return fmt.Errorf("failed to load document: %w", err)
	}
	if err := s.tagRepo.Assign(ctx, documentID, tagID); err != nil {
		return fmt.Errorf("failed to assign tag: %w", err)
	}
	return nil
}

// UnassignTag removes a tag link from a document.
func (s *DocumentService) UnassignTag(ctx context.Context, documentID string, tagID int64) error {
	if err := s.tagRepo.Unassign(ctx, documentID, tagID); err != nil {
		return fmt.Errorf("failed to unassign tag: %w", err)
	}
	return nil
}

// acquire marks a document as being processed. It returns false when another
// request already holds the document.
func (s *DocumentService) acquire(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[documentID]; busy {
		return false
	}
	s.inflight[documentID] = struct{}{}
	return true
}

func (s *DocumentService) release(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, documentID)
}

// markFailed transitions the document to the failed state carrying the error
// kind that caused it.
func (s *DocumentService) markFailed(ctx context.Context, documentID string, cause error) {
	logger := contextutil.LoggerFromContext(ctx)
	if err := s.docRepo.UpdateStatus(ctx, documentID, storage.StatusFailed, ErrorKind(cause)); err != nil {
		logger.ErrorContext(ctx, "failed to mark document failed", "document_id", documentID, "error", err)
	}
}

func terminalStatus(status string) bool {
	return status == storage.StatusIndexed || status == storage.StatusFailed
}

// ErrorKind maps an error to its stable kind name for storage and API
// responses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, domain.ErrCorruptDocument):
		return "corrupt_document"
	case errors.Is(err, domain.ErrEmptyDocument):
		return "empty_document"
	case errors.Is(err, domain.ErrInvalidChunkConfig):
		return "invalid_chunk_config"
	case errors.Is(err, domain.ErrEmbeddingService):
		return "embedding_service_error"
	case errors.Is(err, domain.ErrGenerationService):
		return "generation_service_error"
	case errors.Is(err, domain.ErrPartialDelete):
		return "partial_delete"
	case errors.Is(err, domain.ErrNoDocumentsIndexed):
		return "no_documents_indexed"
	case errors.Is(err, domain.ErrDocumentNotReady):
		return "document_not_ready"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, domain.ErrDocumentBusy):
		return "document_busy"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal_error"
	}
}
