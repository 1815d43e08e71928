package orders_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/delmas-dev/bartab/internal/apperr"
	"github.com/delmas-dev/bartab/internal/catalog"
	"github.com/delmas-dev/bartab/internal/memstore"
	"github.com/delmas-dev/bartab/internal/orders"
)

// recorder captures notifications so tests can assert what was emitted.
type recorder struct {
	mu     sync.Mutex
	events []string
	stocks map[string]decimal.Decimal
}

func newRecorder() *recorder {
	return &recorder{stocks: make(map[string]decimal.Decimal)}
}

func (r *recorder) record(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) NewOrder(o *orders.Order)      { r.record("new:" + o.ID) }
func (r *recorder) StatusUpdated(o *orders.Order) { r.record("status:" + string(o.Status)) }
func (r *recorder) OrderReady(o *orders.Order)    { r.record("ready:" + o.ID) }
func (r *recorder) OrderModified(o *orders.Order, reason string) {
	r.record("modified:" + reason)
}

func (r *recorder) StockUpdated(drinkID string, quantity decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "stock:"+drinkID)
	r.stocks[drinkID] = quantity
}

func newService(t *testing.T) (*orders.Service, *memstore.Store, *recorder) {
	t.Helper()
	store := memstore.New()
	rec := newRecorder()
	svc := &orders.Service{
		Store:    store,
		Notifier: rec,
		Log:      zap.NewNop(),
	}
	return svc, store, rec
}

func seedDrink(t *testing.T, store *memstore.Store, name string, qty int64, price string) *catalog.Drink {
	t.Helper()
	p, err := decimal.NewFromString(price)
	require.NoError(t, err)
	d := &catalog.Drink{
		ID:        uuid.NewString(),
		Name:      name,
		Quantity:  decimal.NewFromInt(qty),
		Category:  catalog.CategoryBeer,
		Price:     p,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		Version:   1,
	}
	require.NoError(t, store.AddDrink(context.Background(), d))
	return d
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("pending with total from snapshot, stock untouched", func(t *testing.T) {
		svc, store, rec := newService(t)
		d := seedDrink(t, store, "Pale Ale", 5, "2.00")

		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 3}})
		require.NoError(t, err)

		assert.Equal(t, orders.StatusPending, o.Status)
		assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("6.00")),
			"total %s", o.TotalAmount)
		require.Len(t, o.Items, 1)
		assert.Equal(t, "Pale Ale", o.Items[0].DrinkName)

		// creation must not reserve stock
		fresh, err := store.Drink(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, fresh.Quantity.Equal(decimal.NewFromInt(5)))

		assert.Contains(t, rec.events, "new:"+o.ID)
	})

	t.Run("rejected when a drink is out of stock", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Empty Keg", 0, "4.50")

		_, err := svc.CreateOrder(ctx, "Bob", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
	})

	t.Run("rejected when stock covers only part of the request", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Stout", 2, "3.00")

		_, err := svc.CreateOrder(ctx, "Bob", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 3}})
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
	})

	t.Run("blank customer name", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Lager", 5, "2.00")

		_, err := svc.CreateOrder(ctx, "  ", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("no items", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.CreateOrder(ctx, "Alice", nil)
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("drink vanishing after the gate never yields an empty order", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 5, "2.00")
		vs := &vanishingStore{Store: store}
		svc.Store = vs

		_, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)

		pending, err := store.OrdersByStatus(ctx, orders.StatusPending)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("zero quantity item", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Cider", 5, "2.00")
		_, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 0}})
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
	})
}

func TestAcceptOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock and stamps AcceptedAt", func(t *testing.T) {
		svc, store, rec := newService(t)
		d := seedDrink(t, store, "Pale Ale", 5, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 3}})
		require.NoError(t, err)

		accepted, err := svc.AcceptOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, orders.StatusAccepted, accepted.Status)
		require.NotNil(t, accepted.AcceptedAt)

		fresh, err := store.Drink(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, fresh.Quantity.Equal(decimal.NewFromInt(2)), "stock %s", fresh.Quantity)

		assert.Contains(t, rec.events, "stock:"+d.ID)
		assert.True(t, rec.stocks[d.ID].Equal(decimal.NewFromInt(2)))
		assert.Contains(t, rec.events, "status:accepted")
	})

	t.Run("fails when stock moved since creation, nothing persisted", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 3, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 3}})
		require.NoError(t, err)

		// another order drains the stock in the meantime
		other, err := svc.CreateOrder(ctx, "Bob", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}})
		require.NoError(t, err)
		_, err = svc.AcceptOrder(ctx, other.ID)
		require.NoError(t, err)

		_, err = svc.AcceptOrder(ctx, o.ID)
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)

		// the losing order stays pending and stock is unchanged
		stale, err := svc.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, orders.StatusPending, stale.Status)
		fresh, err := store.Drink(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, fresh.Quantity.Equal(decimal.NewFromInt(1)))
	})

	t.Run("only pending orders may be accepted", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		require.NoError(t, err)
		_, err = svc.AcceptOrder(ctx, o.ID)
		require.NoError(t, err)

		_, err = svc.AcceptOrder(ctx, o.ID)
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
		assert.EqualError(t, err, "only pending orders may be accepted")
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.AcceptOrder(ctx, uuid.NewString())
		var nf *apperr.NotFoundError
		require.ErrorAs(t, err, &nf)
	})
}

func TestLifecycleTransitions(t *testing.T) {
	ctx := context.Background()
	svc, store, rec := newService(t)
	d := seedDrink(t, store, "Pale Ale", 10, "2.00")

	o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}})
	require.NoError(t, err)

	// pending -> ready and pending -> completed are invalid
	_, err = svc.MarkOrderReady(ctx, o.ID)
	assert.Error(t, err)
	_, err = svc.CompleteOrder(ctx, o.ID)
	assert.Error(t, err)

	_, err = svc.AcceptOrder(ctx, o.ID)
	require.NoError(t, err)

	ready, err := svc.MarkOrderReady(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusReady, ready.Status)
	require.NotNil(t, ready.ReadyAt)
	assert.Contains(t, rec.events, "ready:"+o.ID)

	done, err := svc.CompleteOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	// completed is terminal
	_, err = svc.AcceptOrder(ctx, o.ID)
	assert.Error(t, err)
	_, err = svc.MarkOrderReady(ctx, o.ID)
	assert.Error(t, err)
}

func TestCompleteOrderNotification(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, notify bool) []string {
		svc, store, rec := newService(t)
		svc.NotifyOnComplete = notify
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		require.NoError(t, err)
		_, err = svc.AcceptOrder(ctx, o.ID)
		require.NoError(t, err)
		_, err = svc.MarkOrderReady(ctx, o.ID)
		require.NoError(t, err)
		_, err = svc.CompleteOrder(ctx, o.ID)
		require.NoError(t, err)
		return rec.events
	}

	assert.Contains(t, run(t, true), "status:completed")
	assert.NotContains(t, run(t, false), "status:completed")
}

func TestRejectOrder(t *testing.T) {
	ctx := context.Background()
	svc, store, rec := newService(t)
	d := seedDrink(t, store, "Pale Ale", 5, "2.00")

	o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}})
	require.NoError(t, err)

	rejected, err := svc.RejectOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusRejected, rejected.Status)
	// the decision timestamp is recorded even on rejection
	require.NotNil(t, rejected.AcceptedAt)
	assert.Contains(t, rec.events, "status:rejected")

	// stock is never touched by a rejection
	fresh, err := store.Drink(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Quantity.Equal(decimal.NewFromInt(5)))

	// rejected is terminal
	_, err = svc.AcceptOrder(ctx, o.ID)
	assert.Error(t, err)
}

func TestGetOrdersByStatus(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)
	d := seedDrink(t, store, "Pale Ale", 20, "2.00")

	a, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
	require.NoError(t, err)
	b, err := svc.CreateOrder(ctx, "Bob", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.AcceptOrder(ctx, b.ID)
	require.NoError(t, err)

	pending, err := svc.GetOrdersByStatus(ctx, "Pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].ID)

	_, err = svc.GetOrdersByStatus(ctx, "bogus")
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestEditOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces items and audits the change", func(t *testing.T) {
		svc, store, rec := newService(t)
		ale := seedDrink(t, store, "Pale Ale", 10, "2.00")
		gin := seedDrink(t, store, "Gin Tonic", 10, "7.50")

		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: ale.ID, Quantity: 2}})
		require.NoError(t, err)

		edited, err := svc.EditOrder(ctx, o.ID,
			[]orders.ItemRequest{{DrinkID: gin.ID, Quantity: 1}}, "customer changed their mind")
		require.NoError(t, err)

		require.Len(t, edited.Items, 1)
		assert.Equal(t, "Gin Tonic", edited.Items[0].DrinkName)
		assert.True(t, edited.TotalAmount.Equal(decimal.RequireFromString("7.50")))
		assert.True(t, edited.PartiallyModified)
		assert.Equal(t, "customer changed their mind", edited.ModificationReason)
		require.NotNil(t, edited.LastModifiedAt)
		assert.Equal(t, orders.StatusPending, edited.Status)
		assert.Contains(t, rec.events, "modified:customer changed their mind")

		// editing never touches stock
		fresh, err := store.Drink(ctx, gin.ID)
		require.NoError(t, err)
		assert.True(t, fresh.Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("blank reason", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		require.NoError(t, err)

		_, err = svc.EditOrder(ctx, o.ID, []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}}, "   ")
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("non-pending orders cannot be edited", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		require.NoError(t, err)
		_, err = svc.AcceptOrder(ctx, o.ID)
		require.NoError(t, err)

		_, err = svc.EditOrder(ctx, o.ID, []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}}, "too late")
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
		assert.EqualError(t, err, "only pending orders may be edited")
	})

	t.Run("new items must be in stock", func(t *testing.T) {
		svc, store, _ := newService(t)
		ale := seedDrink(t, store, "Pale Ale", 10, "2.00")
		rare := seedDrink(t, store, "Vintage Port", 1, "30.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: ale.ID, Quantity: 1}})
		require.NoError(t, err)

		_, err = svc.EditOrder(ctx, o.ID, []orders.ItemRequest{{DrinkID: rare.ID, Quantity: 2}}, "upsell")
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
	})
}

func TestAcceptPartialOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("removes flagged items, accepts and decrements the rest", func(t *testing.T) {
		svc, store, rec := newService(t)
		ale := seedDrink(t, store, "Pale Ale", 10, "2.00")
		port := seedDrink(t, store, "Vintage Port", 5, "30.00")

		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{
			{DrinkID: ale.ID, Quantity: 2},
			{DrinkID: port.ID, Quantity: 1},
		})
		require.NoError(t, err)

		// port runs out before the barman gets to the order
		drainDrink(t, store, port.ID)

		var portItem string
		for _, it := range o.Items {
			if it.DrinkID == port.ID {
				portItem = it.ID
			}
		}
		require.NotEmpty(t, portItem)

		accepted, err := svc.AcceptPartialOrder(ctx, o.ID, []string{portItem}, "port out of stock")
		require.NoError(t, err)

		assert.Equal(t, orders.StatusAccepted, accepted.Status)
		require.Len(t, accepted.Items, 1)
		assert.Equal(t, ale.ID, accepted.Items[0].DrinkID)
		assert.True(t, accepted.TotalAmount.Equal(decimal.RequireFromString("4.00")))
		assert.True(t, accepted.PartiallyModified)
		assert.Equal(t, "port out of stock", accepted.ModificationReason)

		fresh, err := store.Drink(ctx, ale.ID)
		require.NoError(t, err)
		assert.True(t, fresh.Quantity.Equal(decimal.NewFromInt(8)))

		assert.Contains(t, rec.events, "modified:port out of stock")
		assert.Contains(t, rec.events, "status:accepted")
	})

	t.Run("cannot remove every item", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		require.NoError(t, err)

		_, err = svc.AcceptPartialOrder(ctx, o.ID, []string{o.Items[0].ID}, "all gone")
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
		assert.EqualError(t, err, "cannot remove all items from the order")
	})

	t.Run("empty removal list", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
		require.NoError(t, err)

		_, err = svc.AcceptPartialOrder(ctx, o.ID, nil, "nothing to remove")
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("remaining items must still be in stock", func(t *testing.T) {
		svc, store, _ := newService(t)
		ale := seedDrink(t, store, "Pale Ale", 10, "2.00")
		port := seedDrink(t, store, "Vintage Port", 5, "30.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{
			{DrinkID: ale.ID, Quantity: 2},
			{DrinkID: port.ID, Quantity: 1},
		})
		require.NoError(t, err)

		drainDrink(t, store, ale.ID)
		drainDrink(t, store, port.ID)

		var portItem string
		for _, it := range o.Items {
			if it.DrinkID == port.ID {
				portItem = it.ID
			}
		}
		_, err = svc.AcceptPartialOrder(ctx, o.ID, []string{portItem}, "port gone")
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
	})
}

func TestModifyOrderQuantities(t *testing.T) {
	ctx := context.Background()

	t.Run("adjusts quantity and recomputes the total", func(t *testing.T) {
		svc, store, rec := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 3}})
		require.NoError(t, err)

		modified, err := svc.ModifyOrderQuantities(ctx, o.ID,
			map[string]int{o.Items[0].ID: 2}, "only two left cold")
		require.NoError(t, err)

		assert.Equal(t, 2, modified.Items[0].Quantity)
		assert.True(t, modified.TotalAmount.Equal(decimal.RequireFromString("4.00")))
		assert.True(t, modified.PartiallyModified)
		assert.Equal(t, orders.StatusPending, modified.Status)
		assert.Contains(t, rec.events, "modified:only two left cold")

		// no decrement on a quantity edit
		fresh, err := store.Drink(ctx, d.ID)
		require.NoError(t, err)
		assert.True(t, fresh.Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("zero removes the line item", func(t *testing.T) {
		svc, store, _ := newService(t)
		ale := seedDrink(t, store, "Pale Ale", 10, "2.00")
		gin := seedDrink(t, store, "Gin Tonic", 10, "7.50")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{
			{DrinkID: ale.ID, Quantity: 1},
			{DrinkID: gin.ID, Quantity: 1},
		})
		require.NoError(t, err)

		modified, err := svc.ModifyOrderQuantities(ctx, o.ID,
			map[string]int{o.Items[1].ID: 0}, "no gin")
		require.NoError(t, err)
		require.Len(t, modified.Items, 1)
		assert.Equal(t, ale.ID, modified.Items[0].DrinkID)
	})

	t.Run("removing the only item fails", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}})
		require.NoError(t, err)

		_, err = svc.ModifyOrderQuantities(ctx, o.ID, map[string]int{o.Items[0].ID: 0}, "oops")
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
		assert.EqualError(t, err, "cannot remove all items from the order")
	})

	t.Run("same quantities is a no-op error", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}})
		require.NoError(t, err)

		_, err = svc.ModifyOrderQuantities(ctx, o.ID, map[string]int{o.Items[0].ID: 2}, "same")
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
		assert.EqualError(t, err, "no changes detected")
	})

	t.Run("blank reason", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 10, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}})
		require.NoError(t, err)

		_, err = svc.ModifyOrderQuantities(ctx, o.ID, map[string]int{o.Items[0].ID: 1}, "")
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("new quantities must be in stock", func(t *testing.T) {
		svc, store, _ := newService(t)
		d := seedDrink(t, store, "Pale Ale", 3, "2.00")
		o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}})
		require.NoError(t, err)

		_, err = svc.ModifyOrderQuantities(ctx, o.ID, map[string]int{o.Items[0].ID: 5}, "more please")
		var br *apperr.BusinessRuleError
		require.ErrorAs(t, err, &br)
	})
}

func TestVersionConflict(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)
	d := seedDrink(t, store, "Pale Ale", 10, "2.00")

	o, err := svc.CreateOrder(ctx, "Alice", []orders.ItemRequest{{DrinkID: d.ID, Quantity: 1}})
	require.NoError(t, err)

	stale, err := store.Order(ctx, o.ID)
	require.NoError(t, err)

	// a concurrent edit bumps the version
	_, err = svc.EditOrder(ctx, o.ID, []orders.ItemRequest{{DrinkID: d.ID, Quantity: 2}}, "bump")
	require.NoError(t, err)

	stale.Accept()
	_, err = store.SaveOrder(ctx, stale, nil)
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
}

// vanishingStore serves the first catalog lookup and reports every later one
// as missing, like a drink deleted right after the availability gate.
type vanishingStore struct {
	*memstore.Store
	seen bool
}

func (s *vanishingStore) Drink(ctx context.Context, id string) (*catalog.Drink, error) {
	if s.seen {
		return nil, apperr.NotFound("drink", id)
	}
	s.seen = true
	return s.Store.Drink(ctx, id)
}

// drainDrink forces a drink's stock to zero directly in the store.
func drainDrink(t *testing.T, store *memstore.Store, id string) {
	t.Helper()
	d, err := store.Drink(context.Background(), id)
	require.NoError(t, err)
	d.Quantity = decimal.Zero
	require.NoError(t, store.SaveDrink(context.Background(), d))
}
