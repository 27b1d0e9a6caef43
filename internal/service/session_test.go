package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gestionstock/internal/model"
	"gestionstock/internal/store"
	"gestionstock/internal/store/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingSales holds Commit until release is closed.
type blockingSales struct {
	SaleService
	entered chan struct{}
	release chan struct{}
	err     error
}

func (b *blockingSales) Commit(ctx context.Context, c *model.Client, items []model.CartItem, _ CommitOptions) (*model.Sale, error) {
	close(b.entered)
	<-b.release
	if b.err != nil {
		return nil, b.err
	}
	return &model.Sale{ID: uuid.New(), ClientID: c.ID, Items: items, Status: model.SaleCompleted}, nil
}

var _ SaleService = (*blockingSales)(nil)

func openTestSession(t *testing.T, st store.Store, sales SaleService) *Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := OpenSession(context.Background(), ctx, st, sales)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// eventually waits until cond holds, for changes that arrive through a
// subscription.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestSession_SeesInitialSnapshots(t *testing.T) {
	st := memstore.New()
	p, c := seedCatalog(t, st, 5)
	s := openTestSession(t, st, NewSaleService(st, time.UTC))

	require.NoError(t, s.SelectClient(c.ID))
	require.NoError(t, s.AddItem(p.ID))

	v := s.View()
	require.Len(t, v.Items, 1)
	assert.Equal(t, c.ID, v.Client.ID)
	assert.True(t, v.Total.Equal(dec("20")))
}

func TestSession_UnknownIDs(t *testing.T) {
	st := memstore.New()
	_, c := seedCatalog(t, st, 5)
	s := openTestSession(t, st, NewSaleService(st, time.UTC))

	assert.ErrorIs(t, s.SelectClient(uuid.New()), store.ErrNotFound)
	require.NoError(t, s.SelectClient(c.ID))
	assert.ErrorIs(t, s.AddItem(uuid.New()), store.ErrNotFound)
}

func TestSession_FollowsCatalogChanges(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p, c := seedCatalog(t, st, 1)
	s := openTestSession(t, st, NewSaleService(st, time.UTC))
	require.NoError(t, s.SelectClient(c.ID))
	require.NoError(t, s.AddItem(p.ID))
	assert.True(t, IsValidation(s.AdjustQuantity(p.ID, +1)))

	p.Stock = 4
	require.NoError(t, st.UpdateProduct(ctx, p))
	eventually(t, func() bool {
		got, ok := s.Product(p.ID)
		return ok && got.Stock == 4
	})
	require.NoError(t, s.AdjustQuantity(p.ID, +1))
	assert.Equal(t, 2, s.View().Items[0].Quantity)
}

func TestSession_CommitClearsCartOnSuccess(t *testing.T) {
	st := memstore.New()
	p, c := seedCatalog(t, st, 5)
	s := openTestSession(t, st, NewSaleService(st, time.UTC))
	require.NoError(t, s.SelectClient(c.ID))
	require.NoError(t, s.AddItem(p.ID))

	sale, err := s.Commit(context.Background(), CommitOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.SaleCompleted, sale.Status)

	v := s.View()
	assert.Empty(t, v.Items)
	assert.Nil(t, v.Client)

	// The session's cache catches up with the decrement.
	eventually(t, func() bool {
		got, _ := s.Product(p.ID)
		return got.Stock == 4
	})
}

func TestSession_CommitKeepsCartOnFailure(t *testing.T) {
	st := memstore.New()
	p, c := seedCatalog(t, st, 5)
	s := openTestSession(t, st, NewSaleService(st, time.UTC))
	require.NoError(t, s.SelectClient(c.ID))
	require.NoError(t, s.AddItem(p.ID))
	st.FailNextCommit(errors.New("timeout"))

	_, err := s.Commit(context.Background(), CommitOptions{})
	require.Error(t, err)

	v := s.View()
	require.Len(t, v.Items, 1)
	require.NotNil(t, v.Client)
	assert.False(t, v.Committing, "guard is released after a failure")

	// Retry succeeds.
	_, err = s.Commit(context.Background(), CommitOptions{})
	require.NoError(t, err)
}

func TestSession_CommitOnEmptyCart(t *testing.T) {
	st := memstore.New()
	_, c := seedCatalog(t, st, 5)
	s := openTestSession(t, st, NewSaleService(st, time.UTC))

	_, err := s.Commit(context.Background(), CommitOptions{})
	assert.True(t, IsValidation(err), "no client selected")

	require.NoError(t, s.SelectClient(c.ID))
	_, err = s.Commit(context.Background(), CommitOptions{})
	assert.True(t, IsValidation(err), "empty cart")
}

func TestSession_SingleFlightCommit(t *testing.T) {
	st := memstore.New()
	p, c := seedCatalog(t, st, 5)
	sales := &blockingSales{entered: make(chan struct{}), release: make(chan struct{})}
	s := openTestSession(t, st, sales)
	require.NoError(t, s.SelectClient(c.ID))
	require.NoError(t, s.AddItem(p.ID))

	done := make(chan error, 1)
	go func() {
		_, err := s.Commit(context.Background(), CommitOptions{})
		done <- err
	}()
	<-sales.entered

	_, err := s.Commit(context.Background(), CommitOptions{})
	assert.ErrorIs(t, err, ErrCommitInFlight)
	assert.ErrorIs(t, s.AddItem(p.ID), ErrCommitInFlight)
	assert.ErrorIs(t, s.SelectClient(c.ID), ErrCommitInFlight)
	assert.True(t, s.View().Committing)

	close(sales.release)
	require.NoError(t, <-done)
	assert.False(t, s.View().Committing)
	assert.Empty(t, s.View().Items)
}

func TestSession_CloseStopsSubscriptions(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p, _ := seedCatalog(t, st, 5)
	s := openTestSession(t, st, NewSaleService(st, time.UTC))
	s.Close()
	s.Close()

	p.Stock = 1
	require.NoError(t, st.UpdateProduct(ctx, p))
	time.Sleep(20 * time.Millisecond)
	got, _ := s.Product(p.ID)
	assert.Equal(t, 5, got.Stock, "a closed session no longer receives snapshots")
}

func TestSessionManager_Lifecycle(t *testing.T) {
	st := memstore.New()
	seedCatalog(t, st, 5)
	m := NewSessionManager(st, NewSaleService(st, time.UTC), time.Hour)
	defer m.Shutdown()

	s, err := m.Open(context.Background())
	require.NoError(t, err)
	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Close(s.ID))
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(s.ID), ErrSessionNotFound)
}

func TestSessionManager_ReapsIdleSessions(t *testing.T) {
	st := memstore.New()
	m := NewSessionManager(st, NewSaleService(st, time.UTC), time.Minute)
	defer m.Shutdown()

	idle, err := m.Open(context.Background())
	require.NoError(t, err)
	active, err := m.Open(context.Background())
	require.NoError(t, err)

	idle.mu.Lock()
	idle.lastUsed = time.Now().Add(-2 * time.Minute)
	idle.mu.Unlock()

	assert.Equal(t, 1, m.reap(time.Now()))
	_, err = m.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(active.ID)
	assert.NoError(t, err)
}

func TestSessionManager_ShutdownClosesAll(t *testing.T) {
	st := memstore.New()
	m := NewSessionManager(st, NewSaleService(st, time.UTC), time.Hour)
	for i := 0; i < 3; i++ {
		_, err := m.Open(context.Background())
		require.NoError(t, err)
	}
	m.Shutdown()
	assert.Equal(t, 0, m.Len())

	_, err := m.Open(context.Background())
	assert.Error(t, err, "no session can be opened after shutdown")
}
