package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"gorm.io/gorm"
)

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// RecipeFilter 列表过滤条件
type RecipeFilter struct {
	AuthorID     *uuid.UUID
	TagSlugs     []string
	FavoritedBy  *uuid.UUID
	InBasketOf   *uuid.UUID
	SubscribedBy *uuid.UUID
}

// Create 在一个事务里写入菜谱、配料数量和标签关联
func (r *RecipeRepository) Create(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients", "Tags", "Author").Create(recipe).Error; err != nil {
			return err
		}
		for i := range ingredients {
			ingredients[i].RecipeID = recipe.ID
		}
		if err := tx.Omit("Ingredient", "Recipe").Create(&ingredients).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Append(tags); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// Update 清空后重建配料和标签集合，整体在一个事务里
func (r *RecipeRepository) Update(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients", "Tags", "Author").Save(recipe).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range ingredients {
			ingredients[i].RecipeID = recipe.ID
		}
		if err := tx.Omit("Ingredient", "Recipe").Create(&ingredients).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	return nil
}

// Delete 删除菜谱及其全部关联行
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.BasketEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", id).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

func (r *RecipeRepository) GetByShortLink(ctx context.Context, token string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).
		Where("short_link = ?", token).
		First(&recipe).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by short link: %w", err)
	}
	return &recipe, nil
}

func (r *RecipeRepository) List(ctx context.Context, filter *RecipeFilter, offset, limit int) ([]*models.Recipe, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.pub_date DESC")

	if filter != nil {
		if filter.AuthorID != nil {
			query = query.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			query = query.
				Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs).
				Distinct()
		}
		if filter.FavoritedBy != nil {
			query = query.
				Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
				Where("favorites.user_id = ?", *filter.FavoritedBy)
		}
		if filter.InBasketOf != nil {
			query = query.
				Joins("JOIN basket_entries ON basket_entries.recipe_id = recipes.id").
				Where("basket_entries.user_id = ?", *filter.InBasketOf)
		}
		if filter.SubscribedBy != nil {
			query = query.
				Joins("JOIN subscriptions ON subscriptions.author_id = recipes.author_id").
				Where("subscriptions.subscriber_id = ?", *filter.SubscribedBy)
		}
	}

	var recipes []*models.Recipe
	if err := query.Offset(offset).Limit(limit).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

func (r *RecipeRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}
