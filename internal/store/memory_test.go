package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture_back_end/internal/models"
)

func newProduct(t *testing.T, m *Memory, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Teak Sofa", Price: 1000, StockCount: stock}
	require.NoError(t, m.CreateProduct(context.Background(), p))
	return p
}

func TestDecrementStockIsGuarded(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := newProduct(t, m, 3)

	prev, next, err := m.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, prev)
	assert.Equal(t, 1, next)

	_, _, err = m.DecrementStock(ctx, p.ID, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err := m.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.StockCount)

	_, _, err = m.DecrementStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentDecrementsNeverGoNegative(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := newProduct(t, m, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := m.DecrementStock(ctx, p.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, _ := m.GetProduct(ctx, p.ID)
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, got.StockCount)
}

func TestTransactionRollsBackCompensations(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := newProduct(t, m, 5)
	boom := errors.New("boom")

	err := m.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if _, _, err := m.DecrementStock(ctx, p.ID, 4); err != nil {
			return err
		}
		tx.OnRollback("restore stock", func(ctx context.Context) error {
			_, _, err := m.IncrementStock(ctx, p.ID, 4)
			return err
		})
		o := &models.Order{OrderGroupID: "G1", ProductID: p.ID}
		if err := m.CreateOrder(ctx, o); err != nil {
			return err
		}
		tx.OnRollback("delete order", func(ctx context.Context) error {
			return m.DeleteOrder(ctx, o.ID)
		})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := m.GetProduct(ctx, p.ID)
	assert.Equal(t, 5, got.StockCount)
	orders, _ := m.ListOrdersByGroup(ctx, "G1")
	assert.Empty(t, orders)
}

func TestNestedTransactionDoesNotDeadlock(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	err := m.WithTransaction(ctx, func(ctx context.Context, _ Tx) error {
		return m.WithTransaction(ctx, func(ctx context.Context, _ Tx) error {
			_, err := m.ListProducts(ctx)
			return err
		})
	})
	assert.NoError(t, err)
}

func TestCreateAddressOnePerUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateAddress(ctx, &models.DeliveryAddress{UserID: "u1", City: "Chennai"}))
	err := m.CreateAddress(ctx, &models.DeliveryAddress{UserID: "u1", City: "Madurai"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	require.NoError(t, m.CreateAddress(ctx, &models.DeliveryAddress{UserID: "u2"}))
}

func TestCartLinesScopedByUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	l := &models.CartLine{UserID: "u1", ProductID: "p1", Qty: 1}
	require.NoError(t, m.SaveLine(ctx, l))

	_, err := m.GetLine(ctx, "u2", l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.DeleteLine(ctx, "u2", l.ID), ErrNotFound)

	merged, created, err := m.MergeLine(ctx, &models.CartLine{UserID: "u1", ProductID: "p1", Qty: 2})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, l.ID, merged.ID)
	assert.Equal(t, 3, merged.Qty)

	require.NoError(t, m.ClearLines(ctx, "u1"))
	require.NoError(t, m.ClearLines(ctx, "u1"))
	lines, _ := m.ListLines(ctx, "u1")
	assert.Empty(t, lines)
}

func TestListOrdersByGroupKeepsInsertionOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, pid := range []string{"a", "b", "c"} {
		require.NoError(t, m.CreateOrder(ctx, &models.Order{OrderGroupID: "G", ProductID: pid}))
	}
	rows, err := m.ListOrdersByGroup(ctx, "G")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].ProductID)
	assert.Equal(t, "c", rows[2].ProductID)
}

func TestResetClearsEverything(t *testing.T) {
	m := NewMemory()
	newProduct(t, m, 1)
	m.Reset()
	all, _ := m.ListProducts(context.Background())
	assert.Empty(t, all)
}

func TestConcurrentMergesKeepOneLine(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.MergeLine(ctx, &models.CartLine{UserID: "u1", ProductID: "chair", Qty: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := m.ListLines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 10, lines[0].Qty)
}

func TestTakeLinesEmptiesCartOnce(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, pid := range []string{"a", "b"} {
		_, _, err := m.MergeLine(ctx, &models.CartLine{UserID: "u1", ProductID: pid, Qty: 1})
		require.NoError(t, err)
	}
	_, _, err := m.MergeLine(ctx, &models.CartLine{UserID: "u2", ProductID: "a", Qty: 1})
	require.NoError(t, err)

	taken, err := m.TakeLines(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, taken, 2)

	again, err := m.TakeLines(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, again)

	other, _ := m.ListLines(ctx, "u2")
	assert.Len(t, other, 1)
}
