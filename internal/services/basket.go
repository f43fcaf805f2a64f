package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/queue"
)

// BasketStore 购物篮关系的仓库能力
type BasketStore interface {
	Create(ctx context.Context, entry *models.BasketEntry) error
	Delete(ctx context.Context, userID, recipeID uuid.UUID) error
	ListRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListUserIDsByRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error)
}

type BasketService struct {
	basketRepo BasketStore
	recipeRepo RecipeGetter
	producer   EventPublisher
	logger     *logger.Logger
}

func NewBasketService(basketRepo BasketStore, recipeRepo RecipeGetter, producer EventPublisher, logger *logger.Logger) *BasketService {
	return &BasketService{
		basketRepo: basketRepo,
		recipeRepo: recipeRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Add 把菜谱加入购物篮，重复添加返回 ErrAlreadyExists
func (s *BasketService) Add(ctx context.Context, userID, recipeID string) (*ShortRecipeResponse, error) {
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

	entry := &models.BasketEntry{
		UserID:   userUUID,
		RecipeID: recipeUUID,
	}
	if err := s.basketRepo.Create(ctx, entry); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: recipe is already in the basket", ErrAlreadyExists)
		}
		return nil, err
	}

	event, err := queue.NewEvent(queue.EventBasketAdded, queue.RelationEventData{
		UserID:   userID,
		RecipeID: recipeID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish basket added event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	}).Info("Recipe added to basket")

	return shortRecipe(recipe), nil
}

// Remove 把菜谱移出购物篮，关系不存在返回 ErrNotFound
func (s *BasketService) Remove(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return fmt.Errorf("invalid recipe ID: %w", err)
	}

	if err := s.basketRepo.Delete(ctx, userUUID, recipeUUID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: recipe is not in the basket", ErrNotFound)
		}
		return err
	}

	event, err := queue.NewEvent(queue.EventBasketRemoved, queue.RelationEventData{
		UserID:   userID,
		RecipeID: recipeID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, userID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish basket removed event")
		}
	}

	return nil
}
