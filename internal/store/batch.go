package store

import (
	"gestionstock/internal/model"

	"github.com/google/uuid"
)

type OpKind int

const (
	OpCreateSale OpKind = iota
	OpIncrementStock
	OpTransitionSale
)

// Op is a single write inside a Batch.
type Op struct {
	Kind OpKind

	// OpCreateSale. The store assigns ID (when nil) and Date at commit time
	// and writes them back into Sale.
	Sale *model.Sale

	// OpIncrementStock
	ProductID uuid.UUID
	Delta     int

	// OpTransitionSale: applied only while the sale is still in From.
	SaleID uuid.UUID
	From   model.SaleStatus
	To     model.SaleStatus
}

// Batch collects writes that must land together.
type Batch struct {
	ops []Op
}

func NewBatch() *Batch { return &Batch{} }

func (b *Batch) CreateSale(s *model.Sale) *Batch {
	b.ops = append(b.ops, Op{Kind: OpCreateSale, Sale: s})
	return b
}

// IncrementStock adds delta (possibly negative) to the product's stock. The
// batch fails if the result would drop below zero.
func (b *Batch) IncrementStock(productID uuid.UUID, delta int) *Batch {
	b.ops = append(b.ops, Op{Kind: OpIncrementStock, ProductID: productID, Delta: delta})
	return b
}

func (b *Batch) TransitionSale(id uuid.UUID, from, to model.SaleStatus) *Batch {
	b.ops = append(b.ops, Op{Kind: OpTransitionSale, SaleID: id, From: from, To: to})
	return b
}

func (b *Batch) Ops() []Op { return b.ops }

func (b *Batch) Len() int { return len(b.ops) }

// Touched lists the collections the batch writes to, for change notification.
func (b *Batch) Touched() []Collection {
	var products, sales bool
	for _, op := range b.ops {
		switch op.Kind {
		case OpIncrementStock:
			products = true
		case OpCreateSale, OpTransitionSale:
			sales = true
		}
	}
	var out []Collection
	if products {
		out = append(out, Products)
	}
	if sales {
		out = append(out, Sales)
	}
	return out
}
