package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture_back_end/internal/apperr"
	"furniture_back_end/internal/cache"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

// newRedisFixture : panier dans Redis, le reste en mémoire, comme cmd/server
// avec REDIS_ADDR renseigné.
func newRedisFixture(t *testing.T) (*fixture, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mem := store.NewMemory()
	t.Cleanup(mem.Reset)
	st := mem.Store()
	st.Carts = cache.NewCartStore(client, time.Hour)
	return fixtureOn(mem, st, false), mr
}

func TestRedisCartCheckoutEndToEnd(t *testing.T) {
	f, mr := newRedisFixture(t)
	ctx := context.Background()
	a := f.product(t, "Sofa", 1000, 10, 5)
	b := f.product(t, "Lamp", 700, 0, 2)
	addr := f.addressFor(t, "u1")

	_, _, err := f.cart.AddItem(ctx, "u1", a.ID, 2)
	require.NoError(t, err)
	_, _, err = f.cart.AddItem(ctx, "u1", b.ID, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("cart:u1"))

	res, err := f.checkout.Checkout(ctx, CheckoutInput{UserID: "u1", AddressID: addr.ID, Total: 2500})
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)
	qty := map[string]int{}
	for _, o := range res.Orders {
		assert.Equal(t, 2500.0, o.Total)
		assert.Equal(t, res.GroupID, o.OrderGroupID)
		qty[o.ProductID] = o.Qty
	}
	assert.Equal(t, map[string]int{a.ID: 2, b.ID: 1}, qty)

	assert.Equal(t, 3, f.stock(t, a.ID))
	assert.Equal(t, 1, f.stock(t, b.ID))
	assert.False(t, mr.Exists("cart:u1"))

	items, err := f.cart.ListItems(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRedisCartOutOfStockRestoresCart(t *testing.T) {
	f, mr := newRedisFixture(t)
	ctx := context.Background()
	a := f.product(t, "Sofa", 1000, 0, 5)
	b := f.product(t, "Lamp", 700, 0, 0)
	addr := f.addressFor(t, "u1")
	_, _, err := f.cart.AddItem(ctx, "u1", a.ID, 2)
	require.NoError(t, err)
	_, _, err = f.cart.AddItem(ctx, "u1", b.ID, 1)
	require.NoError(t, err)
	before, err := f.cart.ListItems(ctx, "u1")
	require.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, CheckoutInput{UserID: "u1", AddressID: addr.ID, Total: 2700})
	requireKind(t, err, apperr.KindOutOfStock, "Only 0 items of Lamp available in stock")

	assert.Equal(t, 5, f.stock(t, a.ID))
	all, _ := f.orders.ListAll(ctx)
	assert.Empty(t, all)

	assert.True(t, mr.Exists("cart:u1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:u1"))
	after, err := f.cart.ListItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, after, 2)
	want := map[string]int{}
	for _, v := range before {
		want[v.ID] = v.Qty
	}
	got := map[string]int{}
	for _, v := range after {
		got[v.ID] = v.Qty
	}
	assert.Equal(t, want, got)
}

func TestRedisCartUpdateQtyAndClear(t *testing.T) {
	f, mr := newRedisFixture(t)
	ctx := context.Background()
	p := f.product(t, "Chair", 100, 0, 3)
	line, _, err := f.cart.AddItem(ctx, "u1", p.ID, 1)
	require.NoError(t, err)

	_, err = f.cart.UpdateQty(ctx, "u1", line.ID, 4)
	requireKind(t, err, apperr.KindOutOfStock, "Only 3 items available in stock")

	updated, err := f.cart.UpdateQty(ctx, "u1", line.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Qty)
	items, _ := f.cart.ListItems(ctx, "u1")
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)

	_, err = f.cart.UpdateQty(ctx, "u2", line.ID, 1)
	requireKind(t, err, apperr.KindNotFound, "Cart item not found")

	require.NoError(t, f.cart.ClearCart(ctx, "u1"))
	assert.False(t, mr.Exists("cart:u1"))
	require.NoError(t, f.cart.ClearCart(ctx, "u1"))
}

func TestRedisCartConcurrentCheckoutSameUser(t *testing.T) {
	f, _ := newRedisFixture(t)
	ctx := context.Background()
	p := f.product(t, "Chair", 100, 0, 100)
	addr := f.addressFor(t, "u1")
	_, _, err := f.cart.AddItem(ctx, "u1", p.ID, 2)
	require.NoError(t, err)

	errs := make([]error, 3)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.checkout.Checkout(ctx, CheckoutInput{UserID: "u1", AddressID: addr.ID, Total: 200})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		requireKind(t, err, apperr.KindValidation, "Cart is empty")
	}
	assert.Equal(t, 1, ok)
	all, _ := f.orders.ListAll(ctx)
	assert.Len(t, all, 1)
	assert.Equal(t, 98, f.stock(t, p.ID))
}

func TestRedisCartConcurrentAddItem(t *testing.T) {
	f, _ := newRedisFixture(t)
	ctx := context.Background()
	p := f.product(t, "Chair", 100, 0, 20)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.cart.AddItem(ctx, "u1", p.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := f.cart.ListItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Qty)
	assert.Equal(t, models.CartSubtotal([]models.CartLine{items[0].CartLine}), 400.0)
}
