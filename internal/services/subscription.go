package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/queue"
)

const defaultSubscriptionRecipes = 6

// SubscriptionStore 订阅关系的仓库能力
type SubscriptionStore interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	Delete(ctx context.Context, subscriberID, authorID uuid.UUID) error
	Exists(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error)
	ListAuthors(ctx context.Context, subscriberID uuid.UUID, offset, limit int) ([]*models.User, error)
	CountSubscribers(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthorRecipeStore 订阅响应里作者菜谱摘要所需的仓库能力
type AuthorRecipeStore interface {
	List(ctx context.Context, filter *repository.RecipeFilter, offset, limit int) ([]*models.Recipe, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

// AuthorResponse 订阅操作和订阅列表返回的作者信息
type AuthorResponse struct {
	ID           uuid.UUID              `json:"id"`
	Username     string                 `json:"username"`
	Email        string                 `json:"email"`
	FirstName    string                 `json:"first_name"`
	LastName     string                 `json:"last_name"`
	Avatar       string                 `json:"avatar"`
	IsSubscribed     bool                   `json:"is_subscribed"`
	Recipes          []*ShortRecipeResponse `json:"recipes"`
	RecipesCount     int64                  `json:"recipes_count"`
	SubscribersCount int64                  `json:"subscribers_count"`
}

type SubscriptionService struct {
	subscriptionRepo SubscriptionStore
	userRepo         UserGetter
	recipeRepo       AuthorRecipeStore
	producer         EventPublisher
	logger           *logger.Logger
}

func NewSubscriptionService(
	subscriptionRepo SubscriptionStore,
	userRepo UserGetter,
	recipeRepo AuthorRecipeStore,
	producer EventPublisher,
	logger *logger.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		recipeRepo:       recipeRepo,
		producer:         producer,
		logger:           logger,
	}
}

// Subscribe 订阅一个作者。订阅自己返回 ErrSelfSubscription，
// 重复订阅返回 ErrAlreadyExists。
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID string) (*AuthorResponse, error) {
	subscriberUUID, err := uuid.Parse(subscriberID)
	if err != nil {
		return nil, fmt.Errorf("invalid subscriber ID: %w", err)
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %w", err)
	}

	if subscriberUUID == authorUUID {
		return nil, ErrSelfSubscription
	}

	author, err := s.userRepo.GetByID(ctx, authorUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	if author == nil {
		return nil, ErrNotFound
	}

	subscription := &models.Subscription{
		SubscriberID: subscriberUUID,
		AuthorID:     authorUUID,
	}
	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: already subscribed to this author", ErrAlreadyExists)
		}
		return nil, err
	}

	event, err := queue.NewEvent(queue.EventSubscriptionAdded, queue.RelationEventData{
		UserID:   subscriberID,
		AuthorID: authorID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, subscriberID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish subscription added event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
		"author_id":     authorID,
	}).Info("Subscribed to author")

	return s.buildAuthorResponse(ctx, author, defaultSubscriptionRecipes)
}

// Unsubscribe 取消订阅，关系不存在返回 ErrNotFound
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	subscriberUUID, err := uuid.Parse(subscriberID)
	if err != nil {
		return fmt.Errorf("invalid subscriber ID: %w", err)
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return fmt.Errorf("invalid author ID: %w", err)
	}

	if err := s.subscriptionRepo.Delete(ctx, subscriberUUID, authorUUID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: no subscription to this author", ErrNotFound)
		}
		return err
	}

	event, err := queue.NewEvent(queue.EventSubscriptionEnded, queue.RelationEventData{
		UserID:   subscriberID,
		AuthorID: authorID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, subscriberID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish subscription ended event")
		}
	}

	return nil
}

// ListSubscriptions 返回当前用户订阅的作者及其菜谱摘要
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID string, offset, limit, recipesLimit int) ([]*AuthorResponse, error) {
	subscriberUUID, err := uuid.Parse(subscriberID)
	if err != nil {
		return nil, fmt.Errorf("invalid subscriber ID: %w", err)
	}
	if recipesLimit < 1 {
		recipesLimit = defaultSubscriptionRecipes
	}

	authors, err := s.subscriptionRepo.ListAuthors(ctx, subscriberUUID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	responses := make([]*AuthorResponse, 0, len(authors))
	for _, author := range authors {
		response, err := s.buildAuthorResponse(ctx, author, recipesLimit)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// IsSubscribed 查询当前用户是否订阅了该作者，匿名返回 false
func (s *SubscriptionService) IsSubscribed(ctx context.Context, viewerID, authorID string) (bool, error) {
	if viewerID == "" {
		return false, nil
	}

	viewerUUID, err := uuid.Parse(viewerID)
	if err != nil {
		return false, fmt.Errorf("invalid viewer ID: %w", err)
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return false, fmt.Errorf("invalid author ID: %w", err)
	}

	return s.subscriptionRepo.Exists(ctx, viewerUUID, authorUUID)
}

func (s *SubscriptionService) buildAuthorResponse(ctx context.Context, author *models.User, recipesLimit int) (*AuthorResponse, error) {
	recipes, err := s.recipeRepo.List(ctx, &repository.RecipeFilter{AuthorID: &author.ID}, 0, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list author recipes: %w", err)
	}
	count, err := s.recipeRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count author recipes: %w", err)
	}
	subscribers, err := s.subscriptionRepo.CountSubscribers(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscribers: %w", err)
	}

	short := make([]*ShortRecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		short = append(short, shortRecipe(recipe))
	}

	return &AuthorResponse{
		ID:               author.ID,
		Username:         author.Username,
		Email:            author.Email,
		FirstName:        author.FirstName,
		LastName:         author.LastName,
		Avatar:           author.Avatar,
		IsSubscribed:     true,
		Recipes:          short,
		RecipesCount:     count,
		SubscribersCount: subscribers,
	}, nil
}
