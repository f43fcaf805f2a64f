package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
)

// TagReader 标签为只读参考数据
type TagReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
}

type TagService struct {
	tagRepo TagReader
}

func NewTagService(tagRepo TagReader) *TagService {
	return &TagService{tagRepo: tagRepo}
}

func (s *TagService) GetByID(ctx context.Context, tagID string) (*models.Tag, error) {
	id, err := uuid.Parse(tagID)
	if err != nil {
		return nil, fmt.Errorf("invalid tag ID: %w", err)
	}

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	return tag, nil
}

func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}
