package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
)

// IngredientReader 配料为只读参考数据，通过 cmd/seed 批量导入
type IngredientReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	Search(ctx context.Context, name string) ([]*models.Ingredient, error)
}

type IngredientService struct {
	ingredientRepo IngredientReader
}

func NewIngredientService(ingredientRepo IngredientReader) *IngredientService {
	return &IngredientService{ingredientRepo: ingredientRepo}
}

func (s *IngredientService) GetByID(ctx context.Context, ingredientID string) (*models.Ingredient, error) {
	id, err := uuid.Parse(ingredientID)
	if err != nil {
		return nil, fmt.Errorf("invalid ingredient ID: %w", err)
	}

	ingredient, err := s.ingredientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	if ingredient == nil {
		return nil, ErrNotFound
	}
	return ingredient, nil
}

// Search 按名称前缀过滤，空字符串返回全部
func (s *IngredientService) Search(ctx context.Context, name string) ([]*models.Ingredient, error) {
	ingredients, err := s.ingredientRepo.Search(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return ingredients, nil
}
