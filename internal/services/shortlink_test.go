package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenLength(t *testing.T) {
	service := NewShortLinkService(newFakeRecipeStore(), "http://localhost:8080", testLogger())

	for i := 0; i < 100; i++ {
		token := service.NewToken()
		assert.Len(t, token, 8)
		for _, r := range token {
			assert.Contains(t, "0123456789abcdef", string(r))
		}
	}
}

func TestResolve(t *testing.T) {
	recipeRepo := newFakeRecipeStore()
	recipe := &models.Recipe{
		ID:        uuid.New(),
		ShortLink: "ab12cd34",
	}
	recipeRepo.recipes[recipe.ID] = recipe
	service := NewShortLinkService(recipeRepo, "http://localhost:8080/", testLogger())

	target, err := service.Resolve(context.Background(), "ab12cd34")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/recipes/"+recipe.ID.String()+"/", target)
}

func TestResolveUnknownToken(t *testing.T) {
	service := NewShortLinkService(newFakeRecipeStore(), "http://localhost:8080", testLogger())

	_, err := service.Resolve(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkForRecipe(t *testing.T) {
	recipeRepo := newFakeRecipeStore()
	recipe := &models.Recipe{
		ID:        uuid.New(),
		ShortLink: "ab12cd34",
	}
	recipeRepo.recipes[recipe.ID] = recipe
	service := NewShortLinkService(recipeRepo, "http://localhost:8080", testLogger())

	link, err := service.LinkForRecipe(context.Background(), recipe.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/s/ab12cd34", link)
}

func TestLinkForRecipeNotFound(t *testing.T) {
	service := NewShortLinkService(newFakeRecipeStore(), "http://localhost:8080", testLogger())

	_, err := service.LinkForRecipe(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
