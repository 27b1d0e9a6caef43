package store_test

import (
	"context"
	"testing"
	"time"

	"gestionstock/internal/model"
	"gestionstock/internal/store"
	"gestionstock/internal/store/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextSnapshot[T any](t *testing.T, sub *store.Subscription[T]) []T {
	t.Helper()
	select {
	case snap, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestWatch_InitialSnapshotThenChanges(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.CreateProduct(ctx, &model.Product{Name: "Huile", SellPriceDetail: decimal.NewFromInt(20), Stock: 3}))

	sub := store.WatchProducts(ctx, st)
	defer sub.Close()

	first := nextSnapshot(t, sub)
	require.Len(t, first, 1)
	assert.Equal(t, "Huile", first[0].Name)

	require.NoError(t, st.CreateProduct(ctx, &model.Product{Name: "Sucre", Stock: 10}))

	// A change may coalesce with the initial snapshot; wait until it shows up.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-sub.Updates():
			if len(snap) == 2 {
				assert.Equal(t, "Sucre", snap[1].Name)
				return
			}
		case <-deadline:
			t.Fatal("change never delivered")
		}
	}
}

func TestSubscription_CloseStopsDelivery(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	sub := store.WatchClients(ctx, st)
	nextSnapshot(t, sub)
	sub.Close()
	sub.Close() // idempotent

	require.NoError(t, st.CreateClient(ctx, &model.Client{Name: "Ali", Type: model.ClientGros}))

	_, ok := <-sub.Updates()
	assert.False(t, ok, "updates channel must be closed after Close")
}

func TestSubscription_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := memstore.New()

	sub := store.WatchSales(ctx, st)
	nextSnapshot(t, sub)
	cancel()

	select {
	case _, ok := <-sub.Updates():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop on context cancel")
	}
	sub.Close()
}

func TestLocalNotifier_CoalescesSignals(t *testing.T) {
	n := store.NewLocalNotifier()
	ch, stop := n.Listen(store.Products)
	defer stop()

	for i := 0; i < 5; i++ {
		n.Publish(context.Background(), store.Products)
	}
	n.Publish(context.Background(), store.Clients)

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending signal")
	default:
	}
}

func TestBatch_Touched(t *testing.T) {
	b := store.NewBatch()
	assert.Empty(t, b.Touched())

	b.IncrementStock(model.Product{}.ID, -1)
	assert.Equal(t, []store.Collection{store.Products}, b.Touched())

	b.CreateSale(&model.Sale{})
	assert.Equal(t, []store.Collection{store.Products, store.Sales}, b.Touched())
	assert.Equal(t, 2, b.Len())
}
