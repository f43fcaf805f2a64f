package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedRecipe(recipeRepo *fakeRecipeStore) *models.Recipe {
	recipe := &models.Recipe{
		ID:          uuid.New(),
		AuthorID:    uuid.New(),
		Name:        "Borscht",
		CookingTime: 90,
		ShortLink:   "12345678",
	}
	recipeRepo.recipes[recipe.ID] = recipe
	return recipe
}

func TestFavoriteAddAndRemove(t *testing.T) {
	recipeRepo := newFakeRecipeStore()
	recipe := storedRecipe(recipeRepo)
	producer := &fakePublisher{}
	service := NewFavoriteService(newFakeFavoriteStore(), recipeRepo, producer, testLogger())

	userID := uuid.NewString()
	response, err := service.Add(context.Background(), userID, recipe.ID.String())
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, response.ID)
	assert.Equal(t, "Borscht", response.Name)

	err = service.Remove(context.Background(), userID, recipe.ID.String())
	require.NoError(t, err)
	assert.Len(t, producer.published, 2)
}

func TestFavoriteAddTwice(t *testing.T) {
	recipeRepo := newFakeRecipeStore()
	recipe := storedRecipe(recipeRepo)
	service := NewFavoriteService(newFakeFavoriteStore(), recipeRepo, &fakePublisher{}, testLogger())

	userID := uuid.NewString()
	_, err := service.Add(context.Background(), userID, recipe.ID.String())
	require.NoError(t, err)

	_, err = service.Add(context.Background(), userID, recipe.ID.String())
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestFavoriteAddUnknownRecipe(t *testing.T) {
	service := NewFavoriteService(newFakeFavoriteStore(), newFakeRecipeStore(), &fakePublisher{}, testLogger())

	_, err := service.Add(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavoriteRemoveAbsent(t *testing.T) {
	recipeRepo := newFakeRecipeStore()
	recipe := storedRecipe(recipeRepo)
	service := NewFavoriteService(newFakeFavoriteStore(), recipeRepo, &fakePublisher{}, testLogger())

	err := service.Remove(context.Background(), uuid.NewString(), recipe.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}
