package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/pkg/logger"
	"gorm.io/gorm"
)

func testLogger() *logger.Logger {
	return logger.NewLogger("panic")
}

type fakePublisher struct {
	published []interface{}
}

func (f *fakePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	f.published = append(f.published, value)
	return nil
}

type fakeRecipeStore struct {
	recipes    map[uuid.UUID]*models.Recipe
	createErrs []error
	seenTokens []string
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{recipes: make(map[uuid.UUID]*models.Recipe)}
}

func (f *fakeRecipeStore) Create(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	f.seenTokens = append(f.seenTokens, recipe.ShortLink)
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	for i := range ingredients {
		ingredients[i].RecipeID = recipe.ID
	}
	recipe.Ingredients = ingredients
	recipe.Tags = tags
	f.recipes[recipe.ID] = recipe
	return nil
}

func (f *fakeRecipeStore) Update(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	for i := range ingredients {
		ingredients[i].RecipeID = recipe.ID
	}
	recipe.Ingredients = ingredients
	recipe.Tags = tags
	f.recipes[recipe.ID] = recipe
	return nil
}

func (f *fakeRecipeStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.recipes, id)
	return nil
}

func (f *fakeRecipeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, nil
	}
	return recipe, nil
}

func (f *fakeRecipeStore) GetByShortLink(ctx context.Context, token string) (*models.Recipe, error) {
	for _, recipe := range f.recipes {
		if recipe.ShortLink == token {
			return recipe, nil
		}
	}
	return nil, nil
}

func (f *fakeRecipeStore) List(ctx context.Context, filter *repository.RecipeFilter, offset, limit int) ([]*models.Recipe, error) {
	var recipes []*models.Recipe
	for _, recipe := range f.recipes {
		if filter != nil && filter.AuthorID != nil && recipe.AuthorID != *filter.AuthorID {
			continue
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func (f *fakeRecipeStore) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	for _, recipe := range f.recipes {
		if recipe.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

type fakeTagStore struct {
	tags map[uuid.UUID]*models.Tag
}

func newFakeTagStore(tags ...*models.Tag) *fakeTagStore {
	store := &fakeTagStore{tags: make(map[uuid.UUID]*models.Tag)}
	for _, tag := range tags {
		store.tags[tag.ID] = tag
	}
	return store
}

func (f *fakeTagStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return nil, nil
	}
	return tag, nil
}

func (f *fakeTagStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Tag, error) {
	var tags []*models.Tag
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (f *fakeTagStore) List(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	for _, tag := range f.tags {
		tags = append(tags, tag)
	}
	return tags, nil
}

type fakeIngredientStore struct {
	ingredients map[uuid.UUID]*models.Ingredient
}

func newFakeIngredientStore(ingredients ...*models.Ingredient) *fakeIngredientStore {
	store := &fakeIngredientStore{ingredients: make(map[uuid.UUID]*models.Ingredient)}
	for _, ingredient := range ingredients {
		store.ingredients[ingredient.ID] = ingredient
	}
	return store
}

func (f *fakeIngredientStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Ingredient, error) {
	var ingredients []*models.Ingredient
	for _, id := range ids {
		if ingredient, ok := f.ingredients[id]; ok {
			ingredients = append(ingredients, ingredient)
		}
	}
	return ingredients, nil
}

type pair struct {
	userID   uuid.UUID
	targetID uuid.UUID
}

type fakeFavoriteStore struct {
	pairs map[pair]bool
}

func newFakeFavoriteStore() *fakeFavoriteStore {
	return &fakeFavoriteStore{pairs: make(map[pair]bool)}
}

func (f *fakeFavoriteStore) Create(ctx context.Context, favorite *models.Favorite) error {
	key := pair{userID: favorite.UserID, targetID: favorite.RecipeID}
	if f.pairs[key] {
		return gorm.ErrDuplicatedKey
	}
	f.pairs[key] = true
	return nil
}

func (f *fakeFavoriteStore) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	key := pair{userID: userID, targetID: recipeID}
	if !f.pairs[key] {
		return gorm.ErrRecordNotFound
	}
	delete(f.pairs, key)
	return nil
}

func (f *fakeFavoriteStore) ListRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for key := range f.pairs {
		if key.userID == userID {
			ids = append(ids, key.targetID)
		}
	}
	return ids, nil
}

func (f *fakeFavoriteStore) CountByRecipeID(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	var count int64
	for key := range f.pairs {
		if key.targetID == recipeID {
			count++
		}
	}
	return count, nil
}

type fakeBasketStore struct {
	pairs map[pair]bool
	rows  []models.BasketIngredientRow
}

func newFakeBasketStore() *fakeBasketStore {
	return &fakeBasketStore{pairs: make(map[pair]bool)}
}

func (f *fakeBasketStore) Create(ctx context.Context, entry *models.BasketEntry) error {
	key := pair{userID: entry.UserID, targetID: entry.RecipeID}
	if f.pairs[key] {
		return gorm.ErrDuplicatedKey
	}
	f.pairs[key] = true
	return nil
}

func (f *fakeBasketStore) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	key := pair{userID: userID, targetID: recipeID}
	if !f.pairs[key] {
		return gorm.ErrRecordNotFound
	}
	delete(f.pairs, key)
	return nil
}

func (f *fakeBasketStore) ListRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for key := range f.pairs {
		if key.userID == userID {
			ids = append(ids, key.targetID)
		}
	}
	return ids, nil
}

func (f *fakeBasketStore) ListUserIDsByRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for key := range f.pairs {
		if key.targetID == recipeID {
			ids = append(ids, key.userID)
		}
	}
	return ids, nil
}

func (f *fakeBasketStore) ListIngredients(ctx context.Context, userID uuid.UUID) ([]models.BasketIngredientRow, error) {
	return f.rows, nil
}

type fakeSubscriptionStore struct {
	pairs map[pair]bool
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{pairs: make(map[pair]bool)}
}

func (f *fakeSubscriptionStore) Create(ctx context.Context, subscription *models.Subscription) error {
	key := pair{userID: subscription.SubscriberID, targetID: subscription.AuthorID}
	if f.pairs[key] {
		return gorm.ErrDuplicatedKey
	}
	f.pairs[key] = true
	return nil
}

func (f *fakeSubscriptionStore) Delete(ctx context.Context, subscriberID, authorID uuid.UUID) error {
	key := pair{userID: subscriberID, targetID: authorID}
	if !f.pairs[key] {
		return gorm.ErrRecordNotFound
	}
	delete(f.pairs, key)
	return nil
}

func (f *fakeSubscriptionStore) Exists(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error) {
	return f.pairs[pair{userID: subscriberID, targetID: authorID}], nil
}

func (f *fakeSubscriptionStore) ListAuthors(ctx context.Context, subscriberID uuid.UUID, offset, limit int) ([]*models.User, error) {
	return nil, nil
}

func (f *fakeSubscriptionStore) CountSubscribers(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	for key := range f.pairs {
		if key.targetID == authorID {
			count++
		}
	}
	return count, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	store := &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	var users []*models.User
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}
