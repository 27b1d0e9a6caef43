// Package store defines the document-store contract the point-of-sale core is
// written against: per-collection CRUD, live snapshot subscriptions and
// all-or-nothing batches carrying atomic stock increments.
package store

import (
	"context"
	"errors"
	"time"

	"gestionstock/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStatusConflict    = errors.New("sale status changed concurrently")
)

// Collection names a group of documents that change notifications are
// published for.
type Collection string

const (
	Products Collection = "products"
	Clients  Collection = "clients"
	Sales    Collection = "sales"
)

// SaleQuery filters sales by status equality and date range. Zero values
// disable the corresponding filter. Results are ordered newest first.
type SaleQuery struct {
	Status model.SaleStatus
	Since  time.Time
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ClientStore interface {
	CreateClient(ctx context.Context, c *model.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	UpdateClient(ctx context.Context, c *model.Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

// SaleStore is read-only: sales are only written through a Batch.
type SaleStore interface {
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, q SaleQuery) ([]model.Sale, error)
}

// Committer applies every operation of a batch or none of them.
type Committer interface {
	Commit(ctx context.Context, b *Batch) error
}

// Store is the full document store.
type Store interface {
	ProductStore
	ClientStore
	SaleStore
	Committer
	Notifier() Notifier
}
