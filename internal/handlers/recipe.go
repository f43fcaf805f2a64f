package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/internal/middleware"
	"github.com/recipebox/recipebox/internal/services"
)

type RecipeHandler struct {
	recipeService       *services.RecipeService
	favoriteService     *services.FavoriteService
	basketService       *services.BasketService
	shoppingListService *services.ShoppingListService
	shortLinkService    *services.ShortLinkService
}

func NewRecipeHandler(
	recipeService *services.RecipeService,
	favoriteService *services.FavoriteService,
	basketService *services.BasketService,
	shoppingListService *services.ShoppingListService,
	shortLinkService *services.ShortLinkService,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		favoriteService:     favoriteService,
		basketService:       basketService,
		shoppingListService: shoppingListService,
		shortLinkService:    shortLinkService,
	}
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req services.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var req services.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipeService.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipeService.Get(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var req services.ListRecipesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit < 1 {
		req.Limit = defaultPageLimit
	}
	if req.Limit > maxPageLimit {
		req.Limit = maxPageLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	recipes, err := h.recipeService.List(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"offset":  req.Offset,
		"limit":   req.Limit,
	})
}

func (h *RecipeHandler) ListSubscriptionRecipes(c *gin.Context) {
	offset, limit := pageParams(c)

	recipes, err := h.recipeService.ListBySubscriptions(c.Request.Context(), middleware.GetUserID(c), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"offset":  offset,
		"limit":   limit,
	})
}

// GetShortLink 返回菜谱的分享短链
func (h *RecipeHandler) GetShortLink(c *gin.Context) {
	link, err := h.shortLinkService.LinkForRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"short-link": link})
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	recipe, err := h.favoriteService.Add(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	if err := h.favoriteService.Remove(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddToBasket(c *gin.Context) {
	recipe, err := h.basketService.Add(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) RemoveFromBasket(c *gin.Context) {
	if err := h.basketService.Remove(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart 下载汇总后的购物清单文本
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	document, err := h.shoppingListService.Compute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(document))
}

// RedirectShortLink 短链跳转到菜谱完整地址
func (h *RecipeHandler) RedirectShortLink(c *gin.Context) {
	target, err := h.shortLinkService.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, target)
}
