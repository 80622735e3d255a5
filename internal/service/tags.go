package service

import (
	"context"
	"fmt"
	"strings"

	"pdfchat/internal/domain"
	"pdfchat/internal/storage"
)

// CreateTag creates a tag by name, returning the existing tag when the name
// is already taken.
func (s *DocumentService) CreateTag(ctx context.Context, name string) (*storage.TagRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "tag name is required"}
	}
	tag, err := s.tagRepo.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// ListTags returns all tags ordered by name.
func (s *DocumentService) ListTags(ctx context.Context) ([]storage.TagRecord, error) {
	tags, err := s.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes a tag. Its document links are removed with it.
func (s *DocumentService) DeleteTag(ctx context.Context, id int64) error {
	if err := s.tagRepo.Delete(ctx, id); err != nil {
		if err == storage.ErrNotFound {
			return fmt.Errorf("%w: tag %d", domain.ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}
