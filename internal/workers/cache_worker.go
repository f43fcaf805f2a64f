package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/services"
	"github.com/recipebox/recipebox/pkg/cache"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/queue"
)

// CacheWorker 消费菜谱和关系事件，负责购物清单缓存的失效。
// 请求路径只写缓存，跨用户的失效都在这里完成。
type CacheWorker struct {
	consumer   *queue.KafkaConsumer
	cache      *cache.RedisClient
	basketRepo *repository.BasketRepository
	logger     *logger.Logger
	cancel     context.CancelFunc
}

func NewCacheWorker(consumer *queue.KafkaConsumer, cache *cache.RedisClient, basketRepo *repository.BasketRepository, logger *logger.Logger) *CacheWorker {
	return &CacheWorker{
		consumer:   consumer,
		cache:      cache,
		basketRepo: basketRepo,
		logger:     logger,
	}
}

func (w *CacheWorker) Start(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info("Starting cache worker...")

	return w.consumer.Subscribe(ctx, func(msg queue.Message) error {
		return w.handleEvent(ctx, msg.Event)
	})
}

func (w *CacheWorker) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.consumer.Close()
}

func (w *CacheWorker) handleEvent(ctx context.Context, event queue.Event) error {
	switch event.Type {
	case queue.EventBasketAdded, queue.EventBasketRemoved:
		var data queue.RelationEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("failed to decode relation event: %w", err)
		}
		return w.invalidateShoppingList(ctx, data.UserID)

	case queue.EventRecipeUpdated, queue.EventRecipeDeleted:
		var data queue.RecipeEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("failed to decode recipe event: %w", err)
		}
		if len(data.AffectedUsers) > 0 {
			for _, userID := range data.AffectedUsers {
				if err := w.invalidateShoppingList(ctx, userID); err != nil {
					return err
				}
			}
			return nil
		}
		return w.invalidateForRecipe(ctx, data.RecipeID)
	}

	return nil
}

func (w *CacheWorker) invalidateShoppingList(ctx context.Context, userID string) error {
	if err := w.cache.Delete(ctx, services.ShoppingListCacheKey(userID)); err != nil {
		w.logger.WithError(err).WithField("user_id", userID).Error("Failed to invalidate shopping list cache")
		return err
	}

	w.logger.WithField("user_id", userID).Debug("Shopping list cache invalidated")
	return nil
}

// invalidateForRecipe 菜谱内容变化后，所有购物篮里含有它的用户的清单都过期
func (w *CacheWorker) invalidateForRecipe(ctx context.Context, recipeID string) error {
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return fmt.Errorf("invalid recipe ID in event: %w", err)
	}

	userIDs, err := w.basketRepo.ListUserIDsByRecipe(ctx, recipeUUID)
	if err != nil {
		return fmt.Errorf("failed to find affected baskets: %w", err)
	}

	for _, userID := range userIDs {
		if err := w.invalidateShoppingList(ctx, userID.String()); err != nil {
			return err
		}
	}
	return nil
}
