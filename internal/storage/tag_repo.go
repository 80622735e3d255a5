package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_tag_store.go -package=mocks pdfchat/internal/storage TagStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// TagStore defines the interface for tag operations.
type TagStore interface {
	// Create creates a tag with the given name. Creating an existing name
	// returns the existing tag.
	Create(ctx context.Context, name string) (*TagRecord, error)
	// ListAll returns all tags ordered by name.
	ListAll(ctx context.Context) ([]TagRecord, error)
	// Delete removes a tag and its document links.
	Delete(ctx context.Context, id int64) error
	// Assign links a tag to a document. Assigning twice is a no-op.
	Assign(ctx context.Context, documentID string, tagID int64) error
	// Unassign removes a tag link from a document.
	Unassign(ctx context.Context, documentID string, tagID int64) error
	// ListByDocument returns the tags attached to a document, ordered by name.
	ListByDocument(ctx context.Context, documentID string) ([]TagRecord, error)
}

// TagRepo provides methods for tag operations.
// It implements the TagStore interface.
type TagRepo struct {
	db *sql.DB
}

// NewTagRepo creates a new TagRepo.
func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{db: db}
}

// Create creates a tag, returning the existing record when the name is taken.
func (r *TagRepo) Create(ctx context.Context, name string) (*TagRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name cannot be empty")
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING",
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil && id > 0 {
		if affected, err := res.RowsAffected(); err == nil && affected > 0 {
			return &TagRecord{ID: id, Name: name}, nil
		}
	}

	// Conflict path: fetch the existing tag.
	var tag TagRecord
	err = r.db.QueryRowContext(ctx, "SELECT id, name FROM tags WHERE name = ?", name).Scan(&tag.ID, &tag.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}
	return &tag, nil
}

// ListAll returns all tags ordered by name.
func (r *TagRepo) ListAll(ctx context.Context) ([]TagRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tags []TagRecord
	for rows.Next() {
		var tag TagRecord
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tags, nil
}

// Delete removes a tag. Document links cascade.
func (r *TagRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
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

// Assign links a tag to a document.
func (r *TagRepo) Assign(ctx context.Context, documentID string, tagID int64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO document_tags (document_id, tag_id) VALUES (?, ?) ON CONFLICT(document_id, tag_id) DO NOTHING",
		documentID, tagID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign tag: %w", err)
	}
	return nil
}

// Unassign removes a tag link from a document.
func (r *TagRepo) Unassign(ctx context.Context, documentID string, tagID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM document_tags WHERE document_id = ? AND tag_id = ?",
		documentID, tagID,
	)
	if err != nil {
		return fmt.Errorf("failed to unassign tag: %w", err)
	}
	return nil
}

// ListByDocument returns the tags attached to a document, ordered by name.
func (r *TagRepo) ListByDocument(ctx context.Context, documentID string) ([]TagRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name FROM tags t
		 JOIN document_tags dt ON dt.tag_id = t.id
		 WHERE dt.document_id = ? ORDER BY t.name`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query document tags: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tags []TagRecord
	for rows.Next() {
		var tag TagRecord
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tags, nil
}
