package service

import (
	"context"
	"time"

	"gestionstock/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EventPublisher ships ledger events to a broker (infra.EventPublisher).
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// LedgerEvent is the message published for every ledger write.
type LedgerEvent struct {
	Type        SaleEventType    `json:"type"`
	SaleID      uuid.UUID        `json:"saleId"`
	ClientID    uuid.UUID        `json:"clientId"`
	Status      model.SaleStatus `json:"status"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	TotalProfit decimal.Decimal  `json:"totalProfit"`
	Items       []model.CartItem `json:"items"`
	Date        time.Time        `json:"date"`
}

// EventHook publishes completed and returned sales. Reprints are not ledger
// writes and are skipped.
type EventHook struct {
	Publisher EventPublisher
}

func (h EventHook) HandleSaleEvent(ctx context.Context, ev SaleEvent) {
	if ev.Type == SaleReprintEvent {
		return
	}
	msg := LedgerEvent{
		Type:        ev.Type,
		SaleID:      ev.Sale.ID,
		ClientID:    ev.Sale.ClientID,
		Status:      ev.Sale.Status,
		TotalAmount: ev.Sale.TotalAmount,
		TotalProfit: ev.Sale.TotalProfit,
		Items:       ev.Sale.Items,
		Date:        ev.Sale.Date,
	}
	if err := h.Publisher.Publish(ctx, ev.Sale.ID.String(), msg); err != nil {
		log.Error().Err(err).Str("sale_id", ev.Sale.ID.String()).Str("type", string(ev.Type)).Msg("events: publish failed")
	}
}
