package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recipeFixture struct {
	service      *RecipeService
	recipeRepo   *fakeRecipeStore
	basketRepo   *fakeBasketStore
	favoriteRepo *fakeFavoriteStore
	producer     *fakePublisher
	ingredient   *models.Ingredient
	tag          *models.Tag
	authorID     string
}

func newRecipeFixture(retries int) *recipeFixture {
	ingredient := &models.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"}
	tag := &models.Tag{ID: uuid.New(), Name: "Dinner", Slug: "dinner"}

	recipeRepo := newFakeRecipeStore()
	basketRepo := newFakeBasketStore()
	favoriteRepo := newFakeFavoriteStore()
	producer := &fakePublisher{}
	log := testLogger()

	service := NewRecipeService(
		recipeRepo,
		newFakeTagStore(tag),
		newFakeIngredientStore(ingredient),
		favoriteRepo,
		basketRepo,
		NewShortLinkService(recipeRepo, "http://localhost:8080", log),
		producer,
		retries,
		log,
	)

	return &recipeFixture{
		service:      service,
		recipeRepo:   recipeRepo,
		basketRepo:   basketRepo,
		favoriteRepo: favoriteRepo,
		producer:     producer,
		ingredient:   ingredient,
		tag:          tag,
		authorID:     uuid.NewString(),
	}
}

func (f *recipeFixture) request() *RecipeRequest {
	return &RecipeRequest{
		Name:        "Pancakes",
		Text:        "Mix and fry",
		CookingTime: 20,
		Ingredients: []IngredientAmountRequest{
			{ID: f.ingredient.ID.String(), Amount: 200},
		},
		Tags: []string{f.tag.ID.String()},
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeFixture(0)

	response, err := f.service.Create(context.Background(), f.authorID, f.request())
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", response.Name)
	assert.Len(t, response.Ingredients, 1)
	assert.Equal(t, 200, response.Ingredients[0].Amount)
	require.Len(t, response.Tags, 1)
	assert.Equal(t, "dinner", response.Tags[0].Slug)
	assert.Len(t, f.producer.published, 1)

	stored, err := f.recipeRepo.GetByID(context.Background(), response.ID)
	require.NoError(t, err)
	assert.Len(t, stored.ShortLink, 8)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newRecipeFixture(0)

	tests := []struct {
		name   string
		mutate func(*RecipeRequest)
	}{
		{"zero cooking time", func(r *RecipeRequest) { r.CookingTime = 0 }},
		{"empty ingredients", func(r *RecipeRequest) { r.Ingredients = nil }},
		{"empty tags", func(r *RecipeRequest) { r.Tags = nil }},
		{"zero amount", func(r *RecipeRequest) { r.Ingredients[0].Amount = 0 }},
		{"malformed ingredient id", func(r *RecipeRequest) { r.Ingredients[0].ID = "nope" }},
		{"malformed tag id", func(r *RecipeRequest) { r.Tags[0] = "nope" }},
		{"duplicate ingredient", func(r *RecipeRequest) {
			r.Ingredients = append(r.Ingredients, r.Ingredients[0])
		}},
		{"duplicate tag", func(r *RecipeRequest) {
			r.Tags = append(r.Tags, r.Tags[0])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request()
			tt.mutate(req)

			_, err := f.service.Create(context.Background(), f.authorID, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateRecipeUnknownReferences(t *testing.T) {
	f := newRecipeFixture(0)

	req := f.request()
	req.Ingredients[0].ID = uuid.NewString()
	_, err := f.service.Create(context.Background(), f.authorID, req)
	assert.ErrorIs(t, err, ErrNotFound)

	req = f.request()
	req.Tags[0] = uuid.NewString()
	_, err = f.service.Create(context.Background(), f.authorID, req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRecipeRetriesShortLinkCollision(t *testing.T) {
	f := newRecipeFixture(5)
	f.recipeRepo.createErrs = []error{gorm.ErrDuplicatedKey}

	_, err := f.service.Create(context.Background(), f.authorID, f.request())
	require.NoError(t, err)

	require.Len(t, f.recipeRepo.seenTokens, 2)
	assert.NotEqual(t, f.recipeRepo.seenTokens[0], f.recipeRepo.seenTokens[1])
}

func TestCreateRecipeShortLinkRetriesExhausted(t *testing.T) {
	f := newRecipeFixture(3)
	f.recipeRepo.createErrs = []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey}

	_, err := f.service.Create(context.Background(), f.authorID, f.request())
	assert.Error(t, err)
}

func TestUpdateRecipeOnlyByAuthor(t *testing.T) {
	f := newRecipeFixture(0)

	created, err := f.service.Create(context.Background(), f.authorID, f.request())
	require.NoError(t, err)

	_, err = f.service.Update(context.Background(), uuid.NewString(), created.ID.String(), f.request())
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUpdateRecipeKeepsShortLink(t *testing.T) {
	f := newRecipeFixture(0)

	created, err := f.service.Create(context.Background(), f.authorID, f.request())
	require.NoError(t, err)
	before, err := f.recipeRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	token := before.ShortLink

	req := f.request()
	req.Name = "Thin pancakes"
	updated, err := f.service.Update(context.Background(), f.authorID, created.ID.String(), req)
	require.NoError(t, err)

	assert.Equal(t, "Thin pancakes", updated.Name)
	after, err := f.recipeRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, token, after.ShortLink)
}

func TestUpdateRecipeValidationLeavesRecipeIntact(t *testing.T) {
	f := newRecipeFixture(0)

	created, err := f.service.Create(context.Background(), f.authorID, f.request())
	require.NoError(t, err)

	req := f.request()
	req.Ingredients = nil
	_, err = f.service.Update(context.Background(), f.authorID, created.ID.String(), req)
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := f.recipeRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", stored.Name)
	assert.Len(t, stored.Ingredients, 1)
}

func TestDeleteRecipeOnlyByAuthor(t *testing.T) {
	f := newRecipeFixture(0)

	created, err := f.service.Create(context.Background(), f.authorID, f.request())
	require.NoError(t, err)

	err = f.service.Delete(context.Background(), uuid.NewString(), created.ID.String())
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = f.service.Delete(context.Background(), f.authorID, created.ID.String())
	require.NoError(t, err)

	_, err = f.service.Get(context.Background(), created.ID.String(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRecipeMissing(t *testing.T) {
	f := newRecipeFixture(0)

	err := f.service.Delete(context.Background(), f.authorID, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRecipeAnonymousViewer(t *testing.T) {
	f := newRecipeFixture(0)

	created, err := f.service.Create(context.Background(), f.authorID, f.request())
	require.NoError(t, err)

	response, err := f.service.Get(context.Background(), created.ID.String(), "")
	require.NoError(t, err)

	assert.False(t, response.IsFavorited)
	assert.False(t, response.IsInShoppingCart)
}

func TestGetRecipeFavoritesCount(t *testing.T) {
	f := newRecipeFixture(0)

	created, err := f.service.Create(context.Background(), f.authorID, f.request())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err := f.favoriteRepo.Create(context.Background(), &models.Favorite{
			UserID:   uuid.New(),
			RecipeID: created.ID,
		})
		require.NoError(t, err)
	}

	response, err := f.service.Get(context.Background(), created.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), response.FavoritesCount)
}
