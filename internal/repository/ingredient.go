package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"gorm.io/gorm"
)

type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

func (r *IngredientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ingredient, nil
}

func (r *IngredientRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Ingredient, error) {
	var ingredients []*models.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to get ingredients: %w", err)
	}
	return ingredients, nil
}

func (r *IngredientRepository) Search(ctx context.Context, name string) ([]*models.Ingredient, error) {
	var ingredients []*models.Ingredient
	query := r.db.WithContext(ctx).Order("name ASC")
	if name != "" {
		query = query.Where("name ILIKE ?", name+"%")
	}
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return ingredients, nil
}

func (r *IngredientRepository) CreateBatch(ctx context.Context, ingredients []*models.Ingredient) error {
	if err := r.db.WithContext(ctx).Create(ingredients).Error; err != nil {
		return fmt.Errorf("failed to create ingredients: %w", err)
	}
	return nil
}
