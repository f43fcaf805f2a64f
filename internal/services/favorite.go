package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/queue"
)

// FavoriteStore 收藏关系的仓库能力，唯一约束由存储层保证
type FavoriteStore interface {
	Create(ctx context.Context, favorite *models.Favorite) error
	Delete(ctx context.Context, userID, recipeID uuid.UUID) error
	ListRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountByRecipeID(ctx context.Context, recipeID uuid.UUID) (int64, error)
}

// RecipeGetter 关系操作用来确认目标菜谱存在
type RecipeGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
}

// ShortRecipeResponse 关系操作返回的菜谱简要信息
type ShortRecipeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
	PubDate     time.Time `json:"pub_date"`
}

func shortRecipe(recipe *models.Recipe) *ShortRecipeResponse {
	return &ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
		PubDate:     recipe.PubDate,
	}
}

type FavoriteService struct {
	favoriteRepo FavoriteStore
	recipeRepo   RecipeGetter
	producer     EventPublisher
	logger       *logger.Logger
}

func NewFavoriteService(favoriteRepo FavoriteStore, recipeRepo RecipeGetter, producer EventPublisher, logger *logger.Logger) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		recipeRepo:   recipeRepo,
		producer:     producer,
		logger:       logger,
	}
}

// Add 把菜谱加入用户收藏，重复添加返回 ErrAlreadyExists。
// 不做先查后插：并发下唯一约束冲突是唯一可靠的判定。
func (s *FavoriteService) Add(ctx context.Context, userID, recipeID string) (*ShortRecipeResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return nil, fmt.Errorf("invalid recipe ID: %w", err)
	}

	recipe, err := s.recipeRepo.GetByID(ctx, recipeUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe == nil {
		return nil, ErrNotFound
	}

	favorite := &models.Favorite{
		UserID:   userUUID,
		RecipeID: recipeUUID,
	}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: recipe is already in favorites", ErrAlreadyExists)
		}
		return nil, err
	}

	event, err := queue.NewEvent(queue.EventFavoriteAdded, queue.RelationEventData{
		UserID:   userID,
		RecipeID: recipeID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish favorite added event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	}).Info("Recipe added to favorites")

	return shortRecipe(recipe), nil
}

// Remove 把菜谱从收藏中移除，关系不存在返回 ErrNotFound
func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return fmt.Errorf("invalid recipe ID: %w", err)
	}

	if err := s.favoriteRepo.Delete(ctx, userUUID, recipeUUID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: recipe is not in favorites", ErrNotFound)
		}
		return err
	}

	event, err := queue.NewEvent(queue.EventFavoriteRemoved, queue.RelationEventData{
		UserID:   userID,
		RecipeID: recipeID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish favorite removed event")
		}
	}

	return nil
}
