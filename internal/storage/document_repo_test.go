package storage

import (
	"context"
	"testing"
)

func insertTestDocument(t *testing.T, repo *DocumentRepo, id string) {
	t.Helper()
	err := repo.Insert(context.Background(), &DocumentRecord{
		ID:        id,
		Filename:  id + ".pdf",
		MediaType: "application/pdf",
		Status:    StatusUploaded,
	})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
}

func TestDocumentRepo_InsertAndGet(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))
	ctx := context.Background()

	insertTestDocument(t, repo, "doc-1")

	doc, err := repo.GetByID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if doc.Filename != "doc-1.pdf" || doc.MediaType != "application/pdf" {
		t.Errorf("document = %+v", doc)
	}
	if doc.Status != StatusUploaded {
		t.Errorf("status = %s, want uploaded", doc.Status)
	}
	if doc.UploadedAt.IsZero() {
		t.Error("uploaded_at not set by insert")
	}
}

func TestDocumentRepo_GetByID_NotFound(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))
	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_UpdateStatus(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))
	ctx := context.Background()
	insertTestDocument(t, repo, "doc-1")

	if err := repo.UpdateStatus(ctx, "doc-1", StatusFailed, "corrupt_document"); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}

	doc, _ := repo.GetByID(ctx, "doc-1")
	if doc.Status != StatusFailed {
		t.Errorf("status = %s, want failed", doc.Status)
	}
	if doc.FailReason != "corrupt_document" {
		t.Errorf("fail_reason = %q", doc.FailReason)
	}

	// Recovering clears the reason.
	if err := repo.UpdateStatus(ctx, "doc-1", StatusExtracting, ""); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}
	doc, _ = repo.GetByID(ctx, "doc-1")
	if doc.FailReason != "" {
		t.Errorf("fail_reason = %q after recovery, want empty", doc.FailReason)
	}

	if err := repo.UpdateStatus(ctx, "missing", StatusIndexed, ""); err != ErrNotFound {
		t.Errorf("UpdateStatus() on missing = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_SetCounts(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))
	ctx := context.Background()
	insertTestDocument(t, repo, "doc-1")

	if err := repo.SetCounts(ctx, "doc-1", 12, 47); err != nil {
		t.Fatalf("SetCounts() error: %v", err)
	}
	doc, _ := repo.GetByID(ctx, "doc-1")
	if doc.PageCount != 12 || doc.ChunkCount != 47 {
		t.Errorf("counts = %d/%d, want 12/47", doc.PageCount, doc.ChunkCount)
	}
}

func TestDocumentRepo_ListAll(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))
	ctx := context.Background()

	docs, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ListAll() on empty db = %d documents", len(docs))
	}

	insertTestDocument(t, repo, "doc-1")
	insertTestDocument(t, repo, "doc-2")

	docs, err = repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("ListAll() = %d documents, want 2", len(docs))
	}
}

func TestDocumentRepo_Delete(t *testing.T) {
	db := testDB(t)
	repo := NewDocumentRepo(db)
	chunkRepo := NewChunkRepo(db)
	ctx := context.Background()

	insertTestDocument(t, repo, "doc-1")
	err := chunkRepo.InsertBatch(ctx, []*ChunkRecord{
		{ID: "c1", DocumentID: "doc-1", ChunkIndex: 0, Text: "text", StartOffset: 0, EndOffset: 4},
	})
	if err != nil {
		t.Fatalf("InsertBatch() error: %v", err)
	}

	if err := repo.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.GetByID(ctx, "doc-1"); err != ErrNotFound {
		t.Errorf("document still present after delete")
	}
	// Chunks cascade with the document.
	if _, err := chunkRepo.GetByID(ctx, "c1"); err != ErrNotFound {
		t.Errorf("chunk survived document delete: %v", err)
	}

	if err := repo.Delete(ctx, "doc-1"); err != ErrNotFound {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
}
