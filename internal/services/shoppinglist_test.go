package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateIngredients(t *testing.T) {
	rows := []models.BasketIngredientRow{
		{Name: "flour", MeasurementUnit: "g", Amount: 200},
		{Name: "sugar", MeasurementUnit: "g", Amount: 50},
		{Name: "flour", MeasurementUnit: "g", Amount: 300},
		{Name: "milk", MeasurementUnit: "ml", Amount: 250},
	}

	items := AggregateIngredients(rows)

	require.Len(t, items, 3)
	assert.Equal(t, ShoppingItem{Name: "flour", MeasurementUnit: "g", TotalAmount: 500}, items[0])
	assert.Equal(t, ShoppingItem{Name: "milk", MeasurementUnit: "ml", TotalAmount: 250}, items[1])
	assert.Equal(t, ShoppingItem{Name: "sugar", MeasurementUnit: "g", TotalAmount: 50}, items[2])
}

func TestAggregateIngredientsSameNameDifferentUnit(t *testing.T) {
	rows := []models.BasketIngredientRow{
		{Name: "salt", MeasurementUnit: "tsp", Amount: 2},
		{Name: "salt", MeasurementUnit: "g", Amount: 10},
	}

	items := AggregateIngredients(rows)

	require.Len(t, items, 2)
	assert.Equal(t, "g", items[0].MeasurementUnit)
	assert.Equal(t, "tsp", items[1].MeasurementUnit)
}

func TestRenderShoppingListEmpty(t *testing.T) {
	assert.Equal(t, "Shopping list:\n", RenderShoppingList(nil))
}

func TestRenderShoppingList(t *testing.T) {
	items := []ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", TotalAmount: 500},
		{Name: "milk", MeasurementUnit: "ml", TotalAmount: 250},
	}

	document := RenderShoppingList(items)

	assert.Equal(t, "Shopping list:\n- flour --- 500 g\n- milk --- 250 ml\n", document)
}

func TestComputeIsDeterministic(t *testing.T) {
	basketRepo := newFakeBasketStore()
	basketRepo.rows = []models.BasketIngredientRow{
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 2},
		{Name: "butter", MeasurementUnit: "g", Amount: 100},
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 4},
	}
	service := NewShoppingListService(basketRepo, nil, 0, testLogger())

	userID := uuid.NewString()
	first, err := service.Compute(context.Background(), userID)
	require.NoError(t, err)
	second, err := service.Compute(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Shopping list:\n- butter --- 100 g\n- eggs --- 6 pcs\n", first)
}

func TestComputeEmptyBasket(t *testing.T) {
	service := NewShoppingListService(newFakeBasketStore(), nil, 0, testLogger())

	document, err := service.Compute(context.Background(), uuid.NewString())
	require.NoError(t, err)

	assert.Equal(t, "Shopping list:\n", document)
}

func TestComputeRejectsInvalidUserID(t *testing.T) {
	service := NewShoppingListService(newFakeBasketStore(), nil, 0, testLogger())

	_, err := service.Compute(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}
