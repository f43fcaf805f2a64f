package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/pkg/cache"
	"github.com/recipebox/recipebox/pkg/logger"
)

const shoppingListHeader = "Shopping list:"

// BasketIngredientStore 购物清单聚合所需的仓库能力
type BasketIngredientStore interface {
	ListIngredients(ctx context.Context, userID uuid.UUID) ([]models.BasketIngredientRow, error)
}

type ShoppingListService struct {
	basketRepo BasketIngredientStore
	cache      *cache.RedisClient
	cacheTTL   time.Duration
	logger     *logger.Logger
}

func NewShoppingListService(basketRepo BasketIngredientStore, cache *cache.RedisClient, cacheTTL time.Duration, logger *logger.Logger) *ShoppingListService {
	return &ShoppingListService{
		basketRepo: basketRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// ShoppingItem 聚合后的一行购物清单
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int    `json:"total_amount"`
}

// ShoppingListCacheKey 渲染结果的缓存键
func ShoppingListCacheKey(userID string) string {
	return "shopping_list:" + userID
}

// Compute 生成用户购物篮的汇总购物清单文档
func (s *ShoppingListService) Compute(ctx context.Context, userID string) (string, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("invalid user ID: %w", err)
	}

	// 先查缓存，失效由 worker 在购物篮变更事件上完成
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, ShoppingListCacheKey(userID))
		if err == nil {
			return cached, nil
		}
		if !s.cache.IsNil(err) {
			s.logger.WithError(err).Warn("Failed to read shopping list cache")
		}
	}

	rows, err := s.basketRepo.ListIngredients(ctx, userUUID)
	if err != nil {
		return "", fmt.Errorf("failed to collect basket ingredients: %w", err)
	}

	document := RenderShoppingList(AggregateIngredients(rows))

	if s.cache != nil {
		if err := s.cache.Set(ctx, ShoppingListCacheKey(userID), document, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache shopping list")
		}
	}

	return document, nil
}

// AggregateIngredients 按 (名称, 计量单位) 分组求和，并按相同键排序。
// 同样的购物篮内容必须产生字节一致的结果。
func AggregateIngredients(rows []models.BasketIngredientRow) []ShoppingItem {
	type key struct {
		name string
		unit string
	}

	totals := make(map[key]int, len(rows))
	for _, row := range rows {
		totals[key{name: row.Name, unit: row.MeasurementUnit}] += row.Amount
	}

	items := make([]ShoppingItem, 0, len(totals))
	for k, total := range totals {
		items = append(items, ShoppingItem{
			Name:            k.name,
			MeasurementUnit: k.unit,
			TotalAmount:     total,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})

	return items
}

// RenderShoppingList 渲染为纯文本文档，空购物篮只有标题行
func RenderShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("- %s --- %d %s\n", item.Name, item.TotalAmount, item.MeasurementUnit))
	}
	return b.String()
}
