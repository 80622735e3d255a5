package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks pdfchat/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document metadata operations.
type DocumentStore interface {
	// Insert inserts a new document record. The record's ID must be set.
	Insert(ctx context.Context, doc *DocumentRecord) error
	// UpdateStatus transitions a document's status. failReason should be
	// empty unless the new status is StatusFailed.
	UpdateStatus(ctx context.Context, id, status, failReason string) error
	// SetCounts records the page and chunk counts after successful indexing.
	SetCounts(ctx context.Context, id string, pageCount, chunkCount int) error
	// GetByID gets a document by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// ListAll returns all documents ordered by upload time, newest first.
	ListAll(ctx context.Context) ([]DocumentRecord, error)
	// Delete removes a document and, via cascade, its chunks and tag links.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert inserts a new document record.
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, filename, media_type, status) VALUES (?, ?, ?, ?)",
		doc.ID, doc.Filename, doc.MediaType, doc.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// UpdateStatus transitions a document's status.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id, status, failReason string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET status = ?, fail_reason = ? WHERE id = ?",
		status, failReason, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCounts records the page and chunk counts after successful indexing.
func (r *DocumentRepo) SetCounts(ctx context.Context, id string, pageCount, chunkCount int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE documents SET page_count = ?, chunk_count = ? WHERE id = ?",
		pageCount, chunkCount, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set document counts: %w", err)
	}
	return nil
}

// GetByID gets a document by ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, filename, media_type, status, fail_reason, page_count, chunk_count, uploaded_at FROM documents WHERE id = ?",
		id,
	).Scan(&doc.ID, &doc.Filename, &doc.MediaType, &doc.Status, &doc.FailReason, &doc.PageCount, &doc.ChunkCount, &doc.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// ListAll returns all documents ordered by upload time, newest first.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, filename, media_type, status, fail_reason, page_count, chunk_count, uploaded_at FROM documents ORDER BY uploaded_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.MediaType, &doc.Status, &doc.FailReason, &doc.PageCount, &doc.ChunkCount, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}

// Delete removes a document. Chunks and tag links cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
