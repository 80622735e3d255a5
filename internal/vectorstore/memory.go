package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"pdfchat/internal/domain"
)

// MemoryStore is an in-memory VectorStore using brute-force cosine similarity.
// It is used by tests and for local runs without a Qdrant instance. Ties in
// similarity break by insertion order, earliest first.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	vectorSize int
	order      []string // point IDs in insertion order
	points     map[string]Point
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// EnsureCollection creates the collection if missing and validates its vector
// size otherwise.
func (s *MemoryStore) EnsureCollection(_ context.Context, collection string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.collections[collection]; ok {
		if existing.vectorSize != vectorSize {
			return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, existing.vectorSize)
		}
		return nil
	}
	s.collections[collection] = &memoryCollection{
		vectorSize: vectorSize,
		points:     make(map[string]Point),
	}
	return nil
}

// CollectionExists checks if a collection exists.
func (s *MemoryStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

// Upsert inserts or updates points. Re-inserting an existing ID replaces the
// prior entry but keeps its original insertion position for tie-breaking.
func (s *MemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection not found: %s", collection)
	}
	for _, point := range points {
		if len(point.Vec) != col.vectorSize {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", col.vectorSize, len(point.Vec))
		}
	}
	for _, point := range points {
		if _, exists := col.points[point.ID]; !exists {
			col.order = append(col.order, point.ID)
		}
		col.points[point.ID] = point
	}
	return nil
}

// Search returns up to k results ordered by descending cosine similarity,
// ties broken by insertion order.
func (s *MemoryStore) Search(_ context.Context, collection string, query []float32, k int, filter *Filter) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection not found: %s", collection)
	}

	type scored struct {
		id    string
		score float32
		meta  map[string]any
	}

	candidates := make([]scored, 0, len(col.order))
	for _, id := range col.order {
		point := col.points[id]
		if filter != nil && filter.DocumentID != "" {
			docID, _ := point.Meta["document_id"].(string)
			if docID != filter.DocumentID {
				continue
			}
		}
		candidates = append(candidates, scored{
			id:    id,
			score: cosineSimilarity(query, point.Vec),
			meta:  point.Meta,
		})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, SearchResult{PointID: c.id, Score: c.score, Meta: c.meta})
	}
	return results, nil
}

// DeleteByDocument removes every point belonging to a document.
func (s *MemoryStore) DeleteByDocument(_ context.Context, collection, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: collection not found: %s", domain.ErrPartialDelete, collection)
	}

	remaining := col.order[:0]
	for _, id := range col.order {
		point := col.points[id]
		docID, _ := point.Meta["document_id"].(string)
		if docID == documentID {
			delete(col.points, id)
			continue
		}
		remaining = append(remaining, id)
	}
	col.order = remaining
	return nil
}

// Count returns the total number of points in the collection.
func (s *MemoryStore) Count(_ context.Context, collection string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	return uint64(len(col.points)), nil
}

// cosineSimilarity computes the cosine similarity of two vectors. Mismatched
// lengths score zero.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
