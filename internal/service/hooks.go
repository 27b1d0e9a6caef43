package service

import (
	"context"

	"gestionstock/internal/model"
	"gestionstock/internal/receipt"
)

type SaleEventType string

const (
	SaleCompletedEvent SaleEventType = "sale.completed"
	SaleReturnedEvent  SaleEventType = "sale.returned"
	SaleReprintEvent   SaleEventType = "sale.reprint"
)

// SaleEvent is handed to every SaleHook after a ledger write has committed
// (or when a receipt is reprinted).
type SaleEvent struct {
	Type         SaleEventType `json:"type"`
	Sale         model.Sale    `json:"sale"`
	ReceiptEmail string        `json:"receiptEmail,omitempty"`
}

// SaleHook is a post-commit side effect. Hooks run on their own goroutine,
// are never waited for, and cannot affect the outcome of the commit.
type SaleHook interface {
	HandleSaleEvent(ctx context.Context, ev SaleEvent)
}

type SaleHookFunc func(ctx context.Context, ev SaleEvent)

func (f SaleHookFunc) HandleSaleEvent(ctx context.Context, ev SaleEvent) { f(ctx, ev) }

// ReceiptHook prints the receipt of every event in-process.
type ReceiptHook struct {
	Emitter receipt.Emitter
}

func (h ReceiptHook) HandleSaleEvent(ctx context.Context, ev SaleEvent) {
	h.Emitter.Emit(ctx, receipt.FromSale(ev.Sale))
}

// fire starts every hook and returns immediately. The hooks get a context
// detached from the request so they outlive it.
func fire(ctx context.Context, hooks []SaleHook, ev SaleEvent) {
	bg := context.WithoutCancel(ctx)
	for _, h := range hooks {
		ev := ev
		ev.Sale = ev.Sale.Clone()
		go h.HandleSaleEvent(bg, ev)
	}
}
