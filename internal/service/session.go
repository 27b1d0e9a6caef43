package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gestionstock/internal/dto"
	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
)

// Session is one cashier's cart plus the live catalog and directory views it
// prices against. It owns its subscriptions and releases them on Close.
type Session struct {
	ID uuid.UUID

	sales SaleService

	mu       sync.Mutex
	cart     *Cart
	products map[uuid.UUID]model.Product
	clients  map[uuid.UUID]model.Client
	lastUsed time.Time

	committing atomic.Bool

	productsSub *store.Subscription[model.Product]
	clientsSub  *store.Subscription[model.Client]
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// OpenSession subscribes to products and clients and waits for both initial
// snapshots. The subscriptions live until Close or until ctx is done.
func OpenSession(ctx, waitCtx context.Context, st store.Store, sales SaleService) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ouverture de session: %w", err)
	}
	s := &Session{
		ID:       uuid.New(),
		sales:    sales,
		products: make(map[uuid.UUID]model.Product),
		clients:  make(map[uuid.UUID]model.Client),
		lastUsed: time.Now(),
	}
	s.cart = NewCart(s.stockOf)

	s.productsSub = store.WatchProducts(ctx, st)
	s.clientsSub = store.WatchClients(ctx, st)

	productsReady := make(chan struct{})
	clientsReady := make(chan struct{})
	s.wg.Add(2)
	go feed(s, s.productsSub, productsReady, func(snap []model.Product) {
		m := make(map[uuid.UUID]model.Product, len(snap))
		for _, p := range snap {
			m[p.ID] = p
		}
		s.products = m
	})
	go feed(s, s.clientsSub, clientsReady, func(snap []model.Client) {
		m := make(map[uuid.UUID]model.Client, len(snap))
		for _, c := range snap {
			m[c.ID] = c
		}
		s.clients = m
	})

	for _, ready := range []chan struct{}{productsReady, clientsReady} {
		select {
		case <-ready:
		case <-waitCtx.Done():
			s.Close()
			return nil, fmt.Errorf("ouverture de session: %w", waitCtx.Err())
		case <-ctx.Done():
			s.Close()
			return nil, fmt.Errorf("ouverture de session: %w", ctx.Err())
		}
	}
	return s, nil
}

// feed applies every snapshot of sub under the session lock.
func feed[T any](s *Session, sub *store.Subscription[T], ready chan struct{}, apply func([]T)) {
	defer s.wg.Done()
	first := true
	for snap := range sub.Updates() {
		s.mu.Lock()
		apply(snap)
		s.mu.Unlock()
		if first {
			close(ready)
			first = false
		}
	}
}

// Close releases the subscriptions. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.productsSub.Close()
		s.clientsSub.Close()
		s.wg.Wait()
	})
}

// stockOf is the cart's StockSource; callers hold s.mu.
func (s *Session) stockOf(id uuid.UUID) (int, bool) {
	p, ok := s.products[id]
	return p.Stock, ok
}

// mutate runs fn on the cart unless a commit is in flight.
func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	if s.committing.Load() {
		return ErrCommitInFlight
	}
	return fn()
}

func (s *Session) SelectClient(clientID uuid.UUID) error {
	return s.mutate(func() error {
		c, ok := s.clients[clientID]
		if !ok {
			return fmt.Errorf("client %s: %w", clientID, store.ErrNotFound)
		}
		s.cart.SelectClient(c)
		return nil
	})
}

func (s *Session) AddItem(productID uuid.UUID) error {
	return s.mutate(func() error {
		p, ok := s.products[productID]
		if !ok {
			return fmt.Errorf("produit %s: %w", productID, store.ErrNotFound)
		}
		return s.cart.AddItem(p)
	})
}

func (s *Session) AdjustQuantity(productID uuid.UUID, delta int) error {
	return s.mutate(func() error { return s.cart.AdjustQuantity(productID, delta) })
}

func (s *Session) RemoveItem(productID uuid.UUID) error {
	return s.mutate(func() error {
		s.cart.RemoveItem(productID)
		return nil
	})
}

// Commit records the cart as a sale. Only one commit per session runs at a
// time; on success the cart and client selection are cleared, on failure
// both are kept so the user can retry.
func (s *Session) Commit(ctx context.Context, opts CommitOptions) (*model.Sale, error) {
	if !s.committing.CompareAndSwap(false, true) {
		return nil, ErrCommitInFlight
	}
	defer s.committing.Store(false)

	s.mu.Lock()
	s.lastUsed = time.Now()
	client := s.cart.Client()
	items := s.cart.Items()
	s.mu.Unlock()

	sale, err := s.sales.Commit(ctx, client, items, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cart.Clear()
	s.mu.Unlock()
	return sale, nil
}

// View returns a snapshot of the session state.
func (s *Session) View() dto.SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.SessionResponse{
		ID:          s.ID.String(),
		Client:      s.cart.Client(),
		Items:       s.cart.Items(),
		Total:       s.cart.Total(),
		TotalProfit: s.cart.TotalProfit(),
		Committing:  s.committing.Load(),
	}
}

// Product returns the session's last known view of a product.
func (s *Session) Product(id uuid.UUID) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
