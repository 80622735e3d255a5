package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks pdfchat/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a single result from a similarity search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// Filter restricts a search to a subset of points. A zero filter matches
// everything.
type Filter struct {
	// DocumentID restricts results to chunks of a single document.
	DocumentID string
}

// VectorStore defines the interface for vector storage operations.
// Upsert is idempotent on point ID: re-inserting an ID replaces the prior
// entry. Search never returns more than k results, ordered by descending
// similarity.
type VectorStore interface {
	// EnsureCollection creates the collection if missing and validates its
	// vector size otherwise. A size mismatch is a fatal configuration error.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search with an optional filter.
	Search(ctx context.Context, collection string, query []float32, k int, filter *Filter) ([]SearchResult, error)

	// DeleteByDocument removes every point belonging to a document. If any
	// points remain afterwards it returns ErrPartialDelete rather than
	// silently leaving orphans.
	DeleteByDocument(ctx context.Context, collection, documentID string) error

	// Count returns the total number of points in the collection.
	Count(ctx context.Context, collection string) (uint64, error)
}
