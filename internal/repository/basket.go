package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"gorm.io/gorm"
)

type BasketRepository struct {
	db *gorm.DB
}

func NewBasketRepository(db *gorm.DB) *BasketRepository {
	return &BasketRepository{db: db}
}

func (r *BasketRepository) Create(ctx context.Context, entry *models.BasketEntry) error {
	if err := r.db.WithContext(ctx).Omit("User", "Recipe").Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create basket entry: %w", err)
	}
	return nil
}

func (r *BasketRepository) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.BasketEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete basket entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete basket entry: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// ListUserIDsByRecipe 返回购物篮里含有该菜谱的所有用户
func (r *BasketRepository) ListUserIDsByRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.BasketEntry{}).
		Where("recipe_id = ?", recipeID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list basket users: %w", err)
	}
	return ids, nil
}

func (r *BasketRepository) ListRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.BasketEntry{}).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list basket recipe ids: %w", err)
	}
	return ids, nil
}

// ListIngredients 返回购物篮里所有菜谱的配料明细行，汇总由服务层完成
func (r *BasketRepository) ListIngredients(ctx context.Context, userID uuid.UUID) ([]models.BasketIngredientRow, error) {
	var rows []models.BasketIngredientRow
	if err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN basket_entries ON basket_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("basket_entries.user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list basket ingredients: %w", err)
	}
	return rows, nil
}
