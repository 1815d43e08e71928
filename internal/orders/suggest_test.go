package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delmas-dev/bartab/internal/memstore"
	"github.com/delmas-dev/bartab/internal/orders"
)

func TestGetOrderEditSuggestions(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)
	ale := seedDrink(t, store, "Pale Ale", 10, "2.00")
	port := seedDrink(t, store, "Vintage Port", 3, "30.00")
	gin := seedDrink(t, store, "Gin Tonic", 5, "7.50")

	o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{
		{DrinkID: ale.ID, Quantity: 2},  // stays fine
		{DrinkID: port.ID, Quantity: 3}, // will be short
		{DrinkID: gin.ID, Quantity: 1},  // will run out
	})
	require.NoError(t, err)
	require.True(t, o.TotalAmount.Equal(decimal.RequireFromString("101.50")))

	t.Run("no suggestions for a clean order", func(t *testing.T) {
		sugg, err := svc.GetOrderEditSuggestions(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, sugg.IsFullyAvailable)
		assert.Empty(t, sugg.Suggestions)
		assert.True(t, sugg.CurrentTotal.Equal(sugg.EstimatedNewTotal))
	})

	// stock shifts under the order
	setStock(t, store, port.ID, 1)
	setStock(t, store, gin.ID, 0)

	sugg, err := svc.GetOrderEditSuggestions(ctx, o.ID)
	require.NoError(t, err)

	t.Run("one remove per out-of-stock, reduce plus remove per shortfall", func(t *testing.T) {
		assert.False(t, sugg.IsFullyAvailable)
		require.Len(t, sugg.Issues, 2)
		require.Len(t, sugg.Suggestions, 3)

		var removes, reduces int
		for _, s := range sugg.Suggestions {
			switch s.Kind {
			case "remove":
				removes++
			case "reduce":
				reduces++
			}
			assert.NotEmpty(t, s.Description)
			assert.NotEmpty(t, s.ActionID)
		}
		assert.Equal(t, 2, removes)
		assert.Equal(t, 1, reduces)
	})

	t.Run("action ids are machine-applicable", func(t *testing.T) {
		var ids []string
		for _, s := range sugg.Suggestions {
			ids = append(ids, s.ActionID)
		}
		assert.Contains(t, ids, "reduce-quantity-"+port.ID+"-1")
		assert.Contains(t, ids, "remove-item-"+port.ID)
		assert.Contains(t, ids, "remove-item-"+gin.ID)
	})

	t.Run("estimated total prices the cheapest resolution", func(t *testing.T) {
		// 2 ale at 2.00 + 1 port at 30.00, gin dropped
		assert.True(t, sugg.CurrentTotal.Equal(decimal.RequireFromString("101.50")))
		assert.True(t, sugg.EstimatedNewTotal.Equal(decimal.RequireFromString("34.00")),
			"estimated %s", sugg.EstimatedNewTotal)
	})

	t.Run("the order itself is untouched", func(t *testing.T) {
		fresh, err := svc.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, orders.StatusPending, fresh.Status)
		assert.Len(t, fresh.Items, 3)
		assert.False(t, fresh.PartiallyModified)
	})
}

func setStock(t *testing.T, store *memstore.Store, id string, qty int64) {
	t.Helper()
	d, err := store.Drink(context.Background(), id)
	require.NoError(t, err)
	d.Quantity = decimal.NewFromInt(qty)
	require.NoError(t, store.SaveDrink(context.Background(), d))
}
