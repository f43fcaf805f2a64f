package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubscriptionService(users ...*models.User) (*SubscriptionService, *fakeRecipeStore) {
	recipeRepo := newFakeRecipeStore()
	service := NewSubscriptionService(
		newFakeSubscriptionStore(),
		newFakeUserStore(users...),
		recipeRepo,
		&fakePublisher{},
		testLogger(),
	)
	return service, recipeRepo
}

func TestSubscribe(t *testing.T) {
	author := &models.User{ID: uuid.New(), Username: "chef", Email: "chef@example.com"}
	service, recipeRepo := newSubscriptionService(author)
	recipeRepo.recipes[uuid.New()] = &models.Recipe{ID: uuid.New(), AuthorID: author.ID, Name: "Soup"}

	response, err := service.Subscribe(context.Background(), uuid.NewString(), author.ID.String())
	require.NoError(t, err)

	assert.Equal(t, author.ID, response.ID)
	assert.True(t, response.IsSubscribed)
	assert.Equal(t, int64(1), response.RecipesCount)
	assert.Equal(t, int64(1), response.SubscribersCount)
	require.Len(t, response.Recipes, 1)
	assert.Equal(t, "Soup", response.Recipes[0].Name)
}

func TestSubscribeToSelf(t *testing.T) {
	author := &models.User{ID: uuid.New(), Username: "chef"}
	service, _ := newSubscriptionService(author)

	_, err := service.Subscribe(context.Background(), author.ID.String(), author.ID.String())
	assert.ErrorIs(t, err, ErrSelfSubscription)
}

func TestSubscribeTwice(t *testing.T) {
	author := &models.User{ID: uuid.New(), Username: "chef"}
	service, _ := newSubscriptionService(author)

	subscriberID := uuid.NewString()
	_, err := service.Subscribe(context.Background(), subscriberID, author.ID.String())
	require.NoError(t, err)

	_, err = service.Subscribe(context.Background(), subscriberID, author.ID.String())
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	service, _ := newSubscriptionService()

	_, err := service.Subscribe(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnsubscribeAbsent(t *testing.T) {
	author := &models.User{ID: uuid.New(), Username: "chef"}
	service, _ := newSubscriptionService(author)

	err := service.Unsubscribe(context.Background(), uuid.NewString(), author.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsSubscribed(t *testing.T) {
	author := &models.User{ID: uuid.New(), Username: "chef"}
	service, _ := newSubscriptionService(author)

	subscriberID := uuid.NewString()
	subscribed, err := service.IsSubscribed(context.Background(), subscriberID, author.ID.String())
	require.NoError(t, err)
	assert.False(t, subscribed)

	subscribed, err = service.IsSubscribed(context.Background(), "", author.ID.String())
	require.NoError(t, err)
	assert.False(t, subscribed)

	_, err = service.Subscribe(context.Background(), subscriberID, author.ID.String())
	require.NoError(t, err)

	subscribed, err = service.IsSubscribed(context.Background(), subscriberID, author.ID.String())
	require.NoError(t, err)
	assert.True(t, subscribed)
}

func TestUnsubscribe(t *testing.T) {
	author := &models.User{ID: uuid.New(), Username: "chef"}
	service, _ := newSubscriptionService(author)

	subscriberID := uuid.NewString()
	_, err := service.Subscribe(context.Background(), subscriberID, author.ID.String())
	require.NoError(t, err)

	err = service.Unsubscribe(context.Background(), subscriberID, author.ID.String())
	require.NoError(t, err)

	err = service.Unsubscribe(context.Background(), subscriberID, author.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}
