// Package memstore is an in-process implementation of store.Store, used by
// the "memory" backend and by tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gestionstock/internal/model"
	"gestionstock/internal/store"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	products map[uuid.UUID]model.Product
	clients  map[uuid.UUID]model.Client
	sales    map[uuid.UUID]model.Sale

	notifier store.Notifier
	now      func() time.Time

	// failNext makes the next Commit fail with the given error without
	// applying anything.
	failNext error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		products: make(map[uuid.UUID]model.Product),
		clients:  make(map[uuid.UUID]model.Client),
		sales:    make(map[uuid.UUID]model.Sale),
		notifier: store.NewLocalNotifier(),
		now:      time.Now,
	}
}

// WithClock replaces the commit timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// FailNextCommit arranges for the next Commit to return err.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

func (s *Store) Notifier() store.Notifier { return s.notifier }

// ── Products ─────────────────────────────────────────────────────────────────

func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	s.mu.Lock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = *p
	s.mu.Unlock()

	s.notifier.Publish(ctx, store.Products)
	return nil
}

func (s *Store) GetProduct(_ context.Context, id uuid.UUID) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *model.Product) error {
	s.mu.Lock()
	old, ok := s.products[p.ID]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = s.now()
	s.products[p.ID] = *p
	s.mu.Unlock()

	s.notifier.Publish(ctx, store.Products)
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.products[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.products, id)
	s.mu.Unlock()

	s.notifier.Publish(ctx, store.Products)
	return nil
}

// ── Clients ──────────────────────────────────────────────────────────────────

func (s *Store) CreateClient(ctx context.Context, c *model.Client) error {
	s.mu.Lock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.clients[c.ID] = *c
	s.mu.Unlock()

	s.notifier.Publish(ctx, store.Clients)
	return nil
}

func (s *Store) GetClient(_ context.Context, id uuid.UUID) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListClients(_ context.Context) ([]model.Client, error) {
	s.mu.RLock()
	out := make([]model.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *model.Client) error {
	s.mu.Lock()
	old, ok := s.clients[c.ID]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = s.now()
	s.clients[c.ID] = *c
	s.mu.Unlock()

	s.notifier.Publish(ctx, store.Clients)
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.clients[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.clients, id)
	s.mu.Unlock()

	s.notifier.Publish(ctx, store.Clients)
	return nil
}

// ── Sales ────────────────────────────────────────────────────────────────────

func (s *Store) GetSale(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := sale.Clone()
	return &out, nil
}

func (s *Store) ListSales(_ context.Context, q store.SaleQuery) ([]model.Sale, error) {
	s.mu.RLock()
	out := make([]model.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if q.Status != "" && sale.Status != q.Status {
			continue
		}
		if !q.Since.IsZero() && sale.Date.Before(q.Since) {
			continue
		}
		out = append(out, sale.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// ── Commit ───────────────────────────────────────────────────────────────────

// Commit validates every operation against a staged view of the data and
// only then applies the staged writes, so a failing operation leaves the
// store untouched.
func (s *Store) Commit(ctx context.Context, b *store.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		s.mu.Unlock()
		return err
	}

	now := s.now()
	stagedProducts := make(map[uuid.UUID]model.Product)
	stagedSales := make(map[uuid.UUID]model.Sale)
	var created []*model.Sale

	product := func(id uuid.UUID) (model.Product, bool) {
		if p, ok := stagedProducts[id]; ok {
			return p, true
		}
		p, ok := s.products[id]
		return p, ok
	}
	sale := func(id uuid.UUID) (model.Sale, bool) {
		if v, ok := stagedSales[id]; ok {
			return v, true
		}
		v, ok := s.sales[id]
		return v, ok
	}

	for i, op := range b.Ops() {
		switch op.Kind {
		case store.OpCreateSale:
			if op.Sale.ID == uuid.Nil {
				op.Sale.ID = uuid.New()
			}
			v := op.Sale.Clone()
			if _, exists := sale(v.ID); exists {
				s.mu.Unlock()
				return fmt.Errorf("op %d: sale %s already exists", i, v.ID)
			}
			v.Date = now
			stagedSales[v.ID] = v
			created = append(created, op.Sale)

		case store.OpIncrementStock:
			p, ok := product(op.ProductID)
			if !ok {
				s.mu.Unlock()
				return fmt.Errorf("op %d: product %s: %w", i, op.ProductID, store.ErrNotFound)
			}
			if p.Stock+op.Delta < 0 {
				s.mu.Unlock()
				return fmt.Errorf("op %d: product %s: %w", i, op.ProductID, store.ErrInsufficientStock)
			}
			p.Stock += op.Delta
			p.UpdatedAt = now
			stagedProducts[p.ID] = p

		case store.OpTransitionSale:
			v, ok := sale(op.SaleID)
			if !ok {
				s.mu.Unlock()
				return fmt.Errorf("op %d: sale %s: %w", i, op.SaleID, store.ErrNotFound)
			}
			if v.Status != op.From {
				s.mu.Unlock()
				return fmt.Errorf("op %d: sale %s is %s: %w", i, op.SaleID, v.Status, store.ErrStatusConflict)
			}
			v.Status = op.To
			stagedSales[v.ID] = v

		default:
			s.mu.Unlock()
			return fmt.Errorf("op %d: unknown kind %d", i, op.Kind)
		}
	}

	for id, p := range stagedProducts {
		s.products[id] = p
	}
	for id, v := range stagedSales {
		s.sales[id] = v
	}
	for _, out := range created {
		out.Date = now
	}
	s.mu.Unlock()

	for _, coll := range b.Touched() {
		s.notifier.Publish(ctx, coll)
	}
	return nil
}
