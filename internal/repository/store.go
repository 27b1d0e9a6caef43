package repository

import (
	"context"
	"fmt"
	"time"

	"gestionstock/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the GORM-backed store.Store. Batches run in one database
// transaction; change notifications are published only after it commits.
type Store struct {
	store.ProductStore
	store.ClientStore
	store.SaleStore

	db       *gorm.DB
	notifier store.Notifier
	now      func() time.Time
}

var _ store.Store = (*Store)(nil)

func NewStore(db *gorm.DB, n store.Notifier) *Store {
	return &Store{
		ProductStore: NewProductRepository(db, n),
		ClientStore:  NewClientRepository(db, n),
		SaleStore:    NewSaleRepository(db),
		db:           db,
		notifier:     n,
		now:          time.Now,
	}
}

func (s *Store) Notifier() store.Notifier { return s.notifier }

// DB exposes the underlying *gorm.DB for health probes.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Commit(ctx context.Context, b *store.Batch) error {
	now := s.now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, op := range b.Ops() {
			if err := applyOp(tx, op, now); err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, coll := range b.Touched() {
		s.notifier.Publish(ctx, coll)
	}
	return nil
}

func applyOp(tx *gorm.DB, op store.Op, now time.Time) error {
	switch op.Kind {
	case store.OpCreateSale:
		if op.Sale.ID == uuid.Nil {
			op.Sale.ID = uuid.New()
		}
		op.Sale.Date = now
		return tx.Create(op.Sale).Error
	case store.OpIncrementStock:
		if err := incrementStockTx(tx, op.ProductID, op.Delta); err != nil {
			return fmt.Errorf("product %s: %w", op.ProductID, err)
		}
		return nil
	case store.OpTransitionSale:
		if err := transitionSaleTx(tx, op.SaleID, op.From, op.To); err != nil {
			return fmt.Errorf("sale %s: %w", op.SaleID, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown kind %d", op.Kind)
	}
}
