package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/queue"
)

const defaultShortLinkRetries = 5

// RecipeStore 菜谱服务所需的仓库能力
type RecipeStore interface {
	Create(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error
	Update(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	List(ctx context.Context, filter *repository.RecipeFilter, offset, limit int) ([]*models.Recipe, error)
}

type TagStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Tag, error)
}

type IngredientStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Ingredient, error)
}

type RecipeService struct {
	recipeRepo       RecipeStore
	tagRepo          TagStore
	ingredientRepo   IngredientStore
	favoriteRepo     FavoriteStore
	basketRepo       BasketStore
	shortLinks       *ShortLinkService
	producer         EventPublisher
	shortLinkRetries int
	logger           *logger.Logger
}

func NewRecipeService(
	recipeRepo RecipeStore,
	tagRepo TagStore,
	ingredientRepo IngredientStore,
	favoriteRepo FavoriteStore,
	basketRepo BasketStore,
	shortLinks *ShortLinkService,
	producer EventPublisher,
	shortLinkRetries int,
	logger *logger.Logger,
) *RecipeService {
	if shortLinkRetries < 1 {
		shortLinkRetries = defaultShortLinkRetries
	}
	return &RecipeService{
		recipeRepo:       recipeRepo,
		tagRepo:          tagRepo,
		ingredientRepo:   ingredientRepo,
		favoriteRepo:     favoriteRepo,
		basketRepo:       basketRepo,
		shortLinks:       shortLinks,
		producer:         producer,
		shortLinkRetries: shortLinkRetries,
		logger:           logger,
	}
}

type IngredientAmountRequest struct {
	ID     string `json:"id" binding:"required"`
	Amount int    `json:"amount" binding:"required"`
}

type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required,max=256"`
	Text        string                    `json:"text" binding:"required"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time" binding:"required"`
	Ingredients []IngredientAmountRequest `json:"ingredients" binding:"required"`
	Tags        []string                  `json:"tags" binding:"required"`
}

type ListRecipesRequest struct {
	Author           string   `form:"author"`
	Tags             []string `form:"tags"`
	IsFavorited      bool     `form:"is_favorited"`
	IsInShoppingCart bool     `form:"is_in_shopping_cart"`
	Offset           int      `form:"offset"`
	Limit            int      `form:"limit"`
}

type IngredientInRecipeResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID                    `json:"id"`
	Author           models.User                  `json:"author"`
	Tags             []models.Tag                 `json:"tags"`
	Ingredients      []IngredientInRecipeResponse `json:"ingredients"`
	IsFavorited      bool                         `json:"is_favorited"`
	IsInShoppingCart bool                         `json:"is_in_shopping_cart"`
	// FavoritesCount 只在详情响应中填充
	FavoritesCount int64 `json:"favorites_count"`
	Name             string                       `json:"name"`
	Image            string                       `json:"image"`
	Text             string                       `json:"text"`
	CookingTime      int                          `json:"cooking_time"`
	PubDate          time.Time                    `json:"pub_date"`
}

// validateRecipeRequest 统一的严格校验：配料和标签非空、无重复、数量为正
func validateRecipeRequest(req *RecipeRequest) ([]uuid.UUID, []uuid.UUID, error) {
	if req.CookingTime < 1 {
		return nil, nil, validationError("cooking time must be a positive integer")
	}
	if len(req.Ingredients) == 0 {
		return nil, nil, validationError("ingredients list is empty")
	}
	if len(req.Tags) == 0 {
		return nil, nil, validationError("tags list is empty")
	}

	ingredientIDs := make([]uuid.UUID, 0, len(req.Ingredients))
	seenIngredients := make(map[uuid.UUID]bool, len(req.Ingredients))
	for _, item := range req.Ingredients {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, nil, validationError("invalid ingredient ID %q", item.ID)
		}
		if item.Amount < 1 {
			return nil, nil, validationError("ingredient amount must be a positive integer")
		}
		if seenIngredients[id] {
			return nil, nil, validationError("duplicate ingredient %q", item.ID)
		}
		seenIngredients[id] = true
		ingredientIDs = append(ingredientIDs, id)
	}

	tagIDs := make([]uuid.UUID, 0, len(req.Tags))
	seenTags := make(map[uuid.UUID]bool, len(req.Tags))
	for _, raw := range req.Tags {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, validationError("invalid tag ID %q", raw)
		}
		if seenTags[id] {
			return nil, nil, validationError("duplicate tag %q", raw)
		}
		seenTags[id] = true
		tagIDs = append(tagIDs, id)
	}

	return ingredientIDs, tagIDs, nil
}

// resolveReferences 确认提交的配料和标签都存在
func (s *RecipeService) resolveReferences(ctx context.Context, req *RecipeRequest, ingredientIDs, tagIDs []uuid.UUID) ([]models.RecipeIngredient, []models.Tag, error) {
	ingredients, err := s.ingredientRepo.GetByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get ingredients: %w", err)
	}
	if len(ingredients) != len(ingredientIDs) {
		return nil, nil, fmt.Errorf("%w: unknown ingredient", ErrNotFound)
	}

	tags, err := s.tagRepo.GetByIDs(ctx, tagIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get tags: %w", err)
	}
	if len(tags) != len(tagIDs) {
		return nil, nil, fmt.Errorf("%w: unknown tag", ErrNotFound)
	}

	rows := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		id, _ := uuid.Parse(item.ID)
		rows = append(rows, models.RecipeIngredient{
			IngredientID: id,
			Amount:       item.Amount,
		})
	}

	tagModels := make([]models.Tag, 0, len(tags))
	for _, tag := range tags {
		tagModels = append(tagModels, *tag)
	}

	return rows, tagModels, nil
}

func (s *RecipeService) Create(ctx context.Context, authorID string, req *RecipeRequest) (*RecipeResponse, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %w", err)
	}

	ingredientIDs, tagIDs, err := validateRecipeRequest(req)
	if err != nil {
		return nil, err
	}

	rows, tags, err := s.resolveReferences(ctx, req, ingredientIDs, tagIDs)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       req.Image,
		CookingTime: req.CookingTime,
	}

	// 短链 token 冲突极少见，碰到唯一约束冲突就换一个 token 重试，
	// 对调用方完全不可见
	for attempt := 0; attempt < s.shortLinkRetries; attempt++ {
		recipe.ShortLink = s.shortLinks.NewToken()
		err = s.recipeRepo.Create(ctx, recipe, rows, tags)
		if err == nil {
			break
		}
		if isDuplicate(err) {
			s.logger.WithField("attempt", attempt+1).Warn("Short link collision, regenerating token")
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe after %d short link attempts: %w", s.shortLinkRetries, err)
	}

	event, err := queue.NewEvent(queue.EventRecipeCreated, queue.RecipeEventData{
		RecipeID: recipe.ID.String(),
		AuthorID: authorID,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, authorID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish recipe created event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"recipe_id": recipe.ID,
		"author_id": authorID,
	}).Info("Recipe created successfully")

	return s.Get(ctx, recipe.ID.String(), authorID)
}

func (s *RecipeService) Update(ctx context.Context, actorID, recipeID string, req *RecipeRequest) (*RecipeResponse, error) {
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
	if recipe.AuthorID.String() != actorID {
		return nil, ErrNotAuthorized
	}

	// 校验失败时不触碰任何行
	ingredientIDs, tagIDs, err := validateRecipeRequest(req)
	if err != nil {
		return nil, err
	}

	rows, tags, err := s.resolveReferences(ctx, req, ingredientIDs, tagIDs)
	if err != nil {
		return nil, err
	}

	// 短链和发布时间在创建后不再变化
	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.Image = req.Image
	recipe.CookingTime = req.CookingTime
	recipe.Ingredients = nil
	recipe.Tags = nil

	affected := s.affectedBasketUsers(ctx, recipeUUID)

	if err := s.recipeRepo.Update(ctx, recipe, rows, tags); err != nil {
		return nil, err
	}

	event, err := queue.NewEvent(queue.EventRecipeUpdated, queue.RecipeEventData{
		RecipeID:      recipeID,
		AuthorID:      actorID,
		AffectedUsers: affected,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, actorID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish recipe updated event")
		}
	}

	return s.Get(ctx, recipeID, actorID)
}

func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID string) error {
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return fmt.Errorf("invalid recipe ID: %w", err)
	}

	recipe, err := s.recipeRepo.GetByID(ctx, recipeUUID)
	if err != nil {
		return fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe == nil {
		return ErrNotFound
	}
	if recipe.AuthorID.String() != actorID {
		return ErrNotAuthorized
	}

	// 删除会级联清掉购物篮关联，受影响的用户要在删除前收集
	affected := s.affectedBasketUsers(ctx, recipeUUID)

	if err := s.recipeRepo.Delete(ctx, recipeUUID); err != nil {
		return err
	}

	event, err := queue.NewEvent(queue.EventRecipeDeleted, queue.RecipeEventData{
		RecipeID:      recipeID,
		AuthorID:      actorID,
		AffectedUsers: affected,
	})
	if err == nil {
		if err := s.producer.Publish(ctx, actorID, event); err != nil {
			s.logger.WithError(err).Error("Failed to publish recipe deleted event")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"recipe_id": recipeID,
		"actor_id":  actorID,
	}).Info("Recipe deleted successfully")

	return nil
}

// Get 返回菜谱详情，viewerID 为空表示匿名访问
func (s *RecipeService) Get(ctx context.Context, recipeID, viewerID string) (*RecipeResponse, error) {
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

	favorited, inBasket, err := s.viewerFlags(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	response := buildRecipeResponse(recipe, favorited, inBasket)

	count, err := s.favoriteRepo.CountByRecipeID(ctx, recipeUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	response.FavoritesCount = count

	return response, nil
}

func (s *RecipeService) List(ctx context.Context, viewerID string, req *ListRecipesRequest) ([]*RecipeResponse, error) {
	filter := &repository.RecipeFilter{TagSlugs: req.Tags}

	if req.Author != "" {
		authorUUID, err := uuid.Parse(req.Author)
		if err != nil {
			return nil, fmt.Errorf("invalid author ID: %w", err)
		}
		filter.AuthorID = &authorUUID
	}

	// is_favorited / is_in_shopping_cart 过滤只对已认证用户生效
	if viewerID != "" {
		viewerUUID, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, fmt.Errorf("invalid viewer ID: %w", err)
		}
		if req.IsFavorited {
			filter.FavoritedBy = &viewerUUID
		}
		if req.IsInShoppingCart {
			filter.InBasketOf = &viewerUUID
		}
	}

	recipes, err := s.recipeRepo.List(ctx, filter, req.Offset, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	return s.buildResponses(ctx, recipes, viewerID)
}

// ListBySubscriptions 返回当前用户订阅作者的菜谱
func (s *RecipeService) ListBySubscriptions(ctx context.Context, viewerID string, offset, limit int) ([]*RecipeResponse, error) {
	viewerUUID, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid viewer ID: %w", err)
	}

	recipes, err := s.recipeRepo.List(ctx, &repository.RecipeFilter{SubscribedBy: &viewerUUID}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription recipes: %w", err)
	}

	return s.buildResponses(ctx, recipes, viewerID)
}

// affectedBasketUsers 失败只影响缓存失效的及时性，不阻塞主流程
func (s *RecipeService) affectedBasketUsers(ctx context.Context, recipeID uuid.UUID) []string {
	userIDs, err := s.basketRepo.ListUserIDsByRecipe(ctx, recipeID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to collect affected basket users")
		return nil
	}

	affected := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		affected = append(affected, id.String())
	}
	return affected
}

func (s *RecipeService) viewerFlags(ctx context.Context, viewerID string) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	if viewerID == "" {
		return nil, nil, nil
	}

	viewerUUID, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid viewer ID: %w", err)
	}

	favoriteIDs, err := s.favoriteRepo.ListRecipeIDs(ctx, viewerUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	basketIDs, err := s.basketRepo.ListRecipeIDs(ctx, viewerUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list basket entries: %w", err)
	}

	favorited := make(map[uuid.UUID]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		favorited[id] = true
	}
	inBasket := make(map[uuid.UUID]bool, len(basketIDs))
	for _, id := range basketIDs {
		inBasket[id] = true
	}
	return favorited, inBasket, nil
}

func (s *RecipeService) buildResponses(ctx context.Context, recipes []*models.Recipe, viewerID string) ([]*RecipeResponse, error) {
	favorited, inBasket, err := s.viewerFlags(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	responses := make([]*RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		responses = append(responses, buildRecipeResponse(recipe, favorited, inBasket))
	}
	return responses, nil
}

func buildRecipeResponse(recipe *models.Recipe, favorited, inBasket map[uuid.UUID]bool) *RecipeResponse {
	ingredients := make([]IngredientInRecipeResponse, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		ingredients = append(ingredients, IngredientInRecipeResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	tags := recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return &RecipeResponse{
		ID:               recipe.ID,
		Author:           recipe.Author,
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      favorited[recipe.ID],
		IsInShoppingCart: inBasket[recipe.ID],
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		PubDate:          recipe.PubDate,
	}
}
