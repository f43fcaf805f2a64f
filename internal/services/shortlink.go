package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/pkg/logger"
)

const shortLinkLength = 8

// ShortLinkStore 短链解析所需的仓库能力
type ShortLinkStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	GetByShortLink(ctx context.Context, token string) (*models.Recipe, error)
}

type ShortLinkService struct {
	recipeRepo ShortLinkStore
	baseURL    string
	logger     *logger.Logger
}

func NewShortLinkService(recipeRepo ShortLinkStore, baseURL string, logger *logger.Logger) *ShortLinkService {
	return &ShortLinkService{
		recipeRepo: recipeRepo,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// NewToken 生成不携带任何语义的随机短链 token。
// 冲突由 recipes.short_link 的唯一约束兜底，调用方在冲突时重新生成。
func (s *ShortLinkService) NewToken() string {
	return uuid.NewString()[:shortLinkLength]
}

// Resolve 把 token 解析为菜谱的完整地址
func (s *ShortLinkService) Resolve(ctx context.Context, token string) (string, error) {
	recipe, err := s.recipeRepo.GetByShortLink(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to resolve short link: %w", err)
	}
	if recipe == nil {
		return "", ErrNotFound
	}

	return fmt.Sprintf("%s/recipes/%s/", s.baseURL, recipe.ID), nil
}

// LinkFor 返回菜谱对外分享的短链地址
func (s *ShortLinkService) LinkFor(recipe *models.Recipe) string {
	return fmt.Sprintf("%s/s/%s", s.baseURL, recipe.ShortLink)
}

// LinkForRecipe 按菜谱 ID 返回分享短链
func (s *ShortLinkService) LinkForRecipe(ctx context.Context, recipeID string) (string, error) {
	id, err := uuid.Parse(recipeID)
	if err != nil {
		return "", fmt.Errorf("invalid recipe ID: %w", err)
	}

	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe == nil {
		return "", ErrNotFound
	}

	return s.LinkFor(recipe), nil
}
