package storage

import "time"

// Document processing statuses. A document moves
// uploaded → extracting → chunking → embedding → indexed, with failed
// reachable from every non-terminal state. Only indexed documents may be
// queried.
const (
	StatusUploaded   = "uploaded"
	StatusExtracting = "extracting"
	StatusChunking   = "chunking"
	StatusEmbedding  = "embedding"
	StatusIndexed    = "indexed"
	StatusFailed     = "failed"
)

// DocumentRecord represents an uploaded document in the database.
type DocumentRecord struct {
	ID         string // UUID
	Filename   string // Original filename
	MediaType  string
	Status     string
	FailReason string // Error kind that caused a failed status, empty otherwise
	PageCount  int
	ChunkCount int
	UploadedAt time.Time
}

// ChunkRecord represents a chunk of extracted text, indexed for vector search.
// The ID doubles as the vector store point ID.
type ChunkRecord struct {
	ID          string // UUID (same as vector store point ID)
	DocumentID  string // UUID (foreign key to documents.id)
	ChunkIndex  int    // Index within document (starts at 0)
	Text        string
	StartOffset int // Rune offset into the extracted text, inclusive
	EndOffset   int // Rune offset into the extracted text, exclusive
	Page        int // 1-based source page, 0 when the source has no pages
}

// TagRecord represents a user-defined tag that can be attached to documents.
type TagRecord struct {
	ID   int64
	Name string
}
