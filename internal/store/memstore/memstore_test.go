package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, s *Store, name string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:            name,
		BuyPrice:        decimal.NewFromInt(5),
		SellPriceGros:   decimal.NewFromInt(8),
		SellPriceDetail: decimal.NewFromInt(10),
		Stock:           stock,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func TestCommit_AppliesAllOps(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := New().WithClock(func() time.Time { return fixed })
	p := seedProduct(t, s, "Farine", 10)

	sale := &model.Sale{ClientName: "Ali", Status: model.SaleCompleted,
		Items: []model.CartItem{{ProductID: p.ID, Quantity: 3}}}
	b := store.NewBatch().CreateSale(sale).IncrementStock(p.ID, -3)
	require.NoError(t, s.Commit(ctx, b))

	assert.NotEqual(t, uuid.Nil, sale.ID)
	assert.Equal(t, fixed, sale.Date)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	stored, err := s.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, fixed, stored.Date)
	assert.Len(t, stored.Items, 1)
}

func TestCommit_IsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seedProduct(t, s, "A", 5)
	b := seedProduct(t, s, "B", 1)

	sale := &model.Sale{Status: model.SaleCompleted}
	batch := store.NewBatch().CreateSale(sale).IncrementStock(a.ID, -2).IncrementStock(b.ID, -2)
	err := s.Commit(ctx, batch)
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	gotA, _ := s.GetProduct(ctx, a.ID)
	gotB, _ := s.GetProduct(ctx, b.ID)
	assert.Equal(t, 5, gotA.Stock)
	assert.Equal(t, 1, gotB.Stock)

	sales, err := s.ListSales(ctx, store.SaleQuery{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCommit_MissingProduct(t *testing.T) {
	s := New()
	err := s.Commit(context.Background(), store.NewBatch().IncrementStock(uuid.New(), 1))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommit_TransitionIsConditional(t *testing.T) {
	ctx := context.Background()
	s := New()
	sale := &model.Sale{Status: model.SaleCompleted}
	require.NoError(t, s.Commit(ctx, store.NewBatch().CreateSale(sale)))

	flip := func() error {
		return s.Commit(ctx, store.NewBatch().TransitionSale(sale.ID, model.SaleCompleted, model.SaleReturned))
	}
	require.NoError(t, flip())
	assert.ErrorIs(t, flip(), store.ErrStatusConflict)

	got, _ := s.GetSale(ctx, sale.ID)
	assert.Equal(t, model.SaleReturned, got.Status)
}

func TestCommit_InjectedFailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedProduct(t, s, "A", 4)
	boom := errors.New("network down")
	s.FailNextCommit(boom)

	err := s.Commit(ctx, store.NewBatch().CreateSale(&model.Sale{}).IncrementStock(p.ID, -1))
	assert.ErrorIs(t, err, boom)

	got, _ := s.GetProduct(ctx, p.ID)
	assert.Equal(t, 4, got.Stock)

	// Only the next commit fails.
	require.NoError(t, s.Commit(ctx, store.NewBatch().IncrementStock(p.ID, -1)))
}

func TestListSales_FiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := New().WithClock(func() time.Time { return clock })

	old := &model.Sale{Status: model.SaleCompleted}
	require.NoError(t, s.Commit(ctx, store.NewBatch().CreateSale(old)))

	clock = clock.Add(26 * time.Hour)
	returned := &model.Sale{Status: model.SaleReturned}
	recent := &model.Sale{Status: model.SaleCompleted}
	require.NoError(t, s.Commit(ctx, store.NewBatch().CreateSale(returned)))
	clock = clock.Add(time.Minute)
	require.NoError(t, s.Commit(ctx, store.NewBatch().CreateSale(recent)))

	all, err := s.ListSales(ctx, store.SaleQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, recent.ID, all[0].ID)

	today, err := s.ListSales(ctx, store.SaleQuery{
		Status: model.SaleCompleted,
		Since:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, recent.ID, today[0].ID)
}

func TestGetSale_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	sale := &model.Sale{Items: []model.CartItem{{ProductName: "X", Quantity: 1}}}
	require.NoError(t, s.Commit(ctx, store.NewBatch().CreateSale(sale)))

	got, err := s.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	got.Items[0].Quantity = 99

	again, _ := s.GetSale(ctx, sale.ID)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestCRUD_NotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateClient(ctx, &model.Client{ID: uuid.New()}), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, uuid.New()), store.ErrNotFound)
}
