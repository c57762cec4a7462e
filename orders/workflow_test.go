package orders

import (
	"context"
	"testing"

	"mercato/apperr"
	"mercato/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubProduct struct {
	price float64
	stock int
}

// stubReserver mimics the conditional decrement against an in-memory table.
func stubReserver(table map[string]*stubProduct) reserveFunc {
	return func(_ context.Context, productID primitive.ObjectID, quantity int) (float64, int, error) {
		p, ok := table[productID.Hex()]
		if !ok {
			return 0, 0, apperr.New(apperr.NotFound, "Product in order was not found")
		}
		if p.stock < quantity {
			return 0, 0, apperr.New(apperr.Conflict, "Quantity of product in stock less than quantity in order")
		}
		p.stock -= quantity
		return p.price, p.stock, nil
	}
}

func TestBuildOrderItemsTotalsAndDecrements(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	table := map[string]*stubProduct{
		p1.Hex(): {price: 10, stock: 5},
		p2.Hex(): {price: 2.5, stock: 4},
	}

	items, remaining, total, err := buildOrderItems(context.Background(), []LineItem{
		{Product: p1.Hex(), Quantity: 2},
		{Product: p2.Hex(), Quantity: 4},
	}, stubReserver(table))
	require.NoError(t, err)

	assert.Equal(t, 30.0, total)
	require.Len(t, items, 2)
	assert.Equal(t, p1, items[0].Product)
	assert.Equal(t, 2, items[0].Quantity)
	assert.False(t, items[0].ID.IsZero())
	assert.Equal(t, 3, remaining[p1.Hex()])
	assert.Equal(t, 0, remaining[p2.Hex()])
	assert.Equal(t, 3, table[p1.Hex()].stock)
}

func TestBuildOrderItemsInsufficientStock(t *testing.T) {
	p1 := primitive.NewObjectID()
	table := map[string]*stubProduct{
		p1.Hex(): {price: 10, stock: 1},
	}

	items, remaining, total, err := buildOrderItems(context.Background(), []LineItem{
		{Product: p1.Hex(), Quantity: 2},
	}, stubReserver(table))

	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Nil(t, items)
	assert.Nil(t, remaining)
	assert.Zero(t, total)
	assert.Equal(t, 1, table[p1.Hex()].stock)
}

func TestBuildOrderItemsUnknownProduct(t *testing.T) {
	_, _, _, err := buildOrderItems(context.Background(), []LineItem{
		{Product: primitive.NewObjectID().Hex(), Quantity: 1},
	}, stubReserver(map[string]*stubProduct{}))

	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestBuildOrderItemsValidation(t *testing.T) {
	reserve := stubReserver(map[string]*stubProduct{})

	_, _, _, err := buildOrderItems(context.Background(), nil, reserve)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, _, _, err = buildOrderItems(context.Background(), []LineItem{
		{Product: primitive.NewObjectID().Hex(), Quantity: 0},
	}, reserve)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, _, _, err = buildOrderItems(context.Background(), []LineItem{
		{Product: "not-a-hex-id", Quantity: 1},
	}, reserve)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCascadeOrderItemsPurgesOnlyItemDocs(t *testing.T) {
	itemIDs := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	order := models.Order{
		ID:         primitive.NewObjectID(),
		OrderItems: itemIDs,
	}

	var purged []primitive.ObjectID
	err := cascadeOrderItems(context.Background(), order, func(_ context.Context, ids []primitive.ObjectID) error {
		purged = ids
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, itemIDs, purged)
}

func TestCascadeOrderItemsSkipsEmptyOrders(t *testing.T) {
	err := cascadeOrderItems(context.Background(), models.Order{ID: primitive.NewObjectID()},
		func(context.Context, []primitive.ObjectID) error {
			t.Fatal("purge should not run for an itemless order")
			return nil
		})
	assert.NoError(t, err)
}

func TestBuildOrderItemsStopsAtFirstFailure(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	table := map[string]*stubProduct{
		p1.Hex(): {price: 5, stock: 10},
		p2.Hex(): {price: 5, stock: 0},
	}

	_, _, _, err := buildOrderItems(context.Background(), []LineItem{
		{Product: p1.Hex(), Quantity: 3},
		{Product: p2.Hex(), Quantity: 1},
	}, stubReserver(table))

	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	// the first reservation went through; the surrounding transaction is
	// what undoes it in production
	assert.Equal(t, 7, table[p1.Hex()].stock)
}
