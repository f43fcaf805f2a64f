package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"gorm.io/gorm"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Create(ctx context.Context, favorite *models.Favorite) error {
	if err := r.db.WithContext(ctx).Omit("User", "Recipe").Create(favorite).Error; err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete favorite: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *FavoriteRepository) ListRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorite recipe ids: %w", err)
	}
	return ids, nil
}

func (r *FavoriteRepository) CountByRecipeID(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("recipe_id = ?", recipeID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}
