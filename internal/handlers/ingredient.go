package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/internal/services"
)

type IngredientHandler struct {
	ingredientService *services.IngredientService
}

func NewIngredientHandler(ingredientService *services.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	ingredient, err := h.ingredientService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}
